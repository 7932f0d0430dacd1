package identity

import "context"

// Role classifies the caller for authorization checks.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a wire value onto a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Actor identifies the authenticated caller. Services receive it as an
// explicit parameter; only the HTTP layer reads it from request context.
type Actor struct {
	ID   string
	Role Role
}

type ctxKey string

const actorKey ctxKey = "marketplace.actor"

// WithActor stores the caller identity in context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext extracts the caller identity if present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	val := ctx.Value(actorKey)
	if val == nil {
		return Actor{}, false
	}
	actor, ok := val.(Actor)
	return actor, ok && actor.ID != ""
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanManageBooking reports whether the actor may act on a booking owned by
// userID or assigned to providerID. Admins may act on any booking.
func (a Actor) CanManageBooking(userID, providerID string) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleCustomer:
		return a.ID == userID
	case RoleProvider:
		return providerID != "" && a.ID == providerID
	default:
		return false
	}
}
