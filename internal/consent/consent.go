// Package consent tracks patient consent records and the append-only audit
// trail behind them.
package consent

import (
	"encoding/json"
	"errors"
	"time"
)

// Kind identifies what the user consented to.
type Kind string

const (
	// KindTreatment covers the delivery of the booked medical service.
	KindTreatment Kind = "treatment"
	// KindDataProcessing covers storage and processing of health data.
	KindDataProcessing Kind = "data_processing"
	// KindMarketing covers promotional email and SMS.
	KindMarketing Kind = "marketing"
	// KindReminders covers appointment reminder notifications.
	KindReminders Kind = "reminders"
)

// IsValid reports whether the kind is recognized.
func (k Kind) IsValid() bool {
	switch k {
	case KindTreatment, KindDataProcessing, KindMarketing, KindReminders:
		return true
	}
	return false
}

var (
	// ErrNotFound is returned when no consent record exists.
	ErrNotFound = errors.New("consent record not found")

	// ErrUnknownKind is returned for an unrecognized consent kind.
	ErrUnknownKind = errors.New("unknown consent kind")

	// ErrPermissionDenied is returned when the actor may not act on the record.
	ErrPermissionDenied = errors.New("permission denied")
)

// Record is the current consent state for one user and kind. Grants and
// revocations update this row; the history lives in the audit events.
type Record struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Kind      Kind       `json:"kind"`
	Granted   bool       `json:"granted"`
	GrantedAt time.Time  `json:"granted_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AuditEvent is an immutable entry in the consent audit trail. Rows are only
// ever inserted.
type AuditEvent struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Kind      Kind            `json:"kind"`
	Action    string          `json:"action"`
	ActorID   string          `json:"actor_id"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

const (
	// ActionGranted marks a consent grant in the audit trail.
	ActionGranted = "consent.granted"
	// ActionRevoked marks a consent revocation.
	ActionRevoked = "consent.revoked"
)
