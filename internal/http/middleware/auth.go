package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medhive/marketplace-platform/internal/identity"
)

// Identity reads the caller identity set by the upstream gateway from the
// X-User-Id and X-User-Role headers and stores it in the request context.
// Authentication itself happens before this service; requests without a
// usable identity are rejected.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
			role, ok := identity.ParseRole(strings.TrimSpace(r.Header.Get("X-User-Role")))
			if userID == "" || !ok {
				http.Error(w, "missing caller identity", http.StatusUnauthorized)
				return
			}
			ctx := identity.WithActor(r.Context(), identity.Actor{ID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminJWT enforces a simple HMAC-signed JWT for admin endpoints and stores
// an admin actor in the request context. The token subject is the admin id.
func AdminJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "admin auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			// A token without a subject would produce an actor with no id,
			// which downstream handlers treat as a missing identity.
			if claims.Subject == "" {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := identity.WithActor(r.Context(), identity.Actor{
				ID:   claims.Subject,
				Role: identity.RoleAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
