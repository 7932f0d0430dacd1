package consent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medhive/marketplace-platform/internal/identity"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

// Service manages consent records and their audit trail on the relational
// database.
type Service struct {
	db     *sql.DB
	logger *logging.Logger
	clock  func() time.Time
}

// NewService creates the consent service.
func NewService(db *sql.DB, logger *logging.Logger) *Service {
	if db == nil {
		panic("consent: database required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{db: db, logger: logger, clock: time.Now}
}

// Grant records the user's consent of the given kind. Repeated grants
// refresh the timestamp; every call appends an audit event.
func (s *Service) Grant(ctx context.Context, actor identity.Actor, userID string, kind Kind, details json.RawMessage) (*Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, ErrPermissionDenied
	}

	now := s.clock().UTC()
	rec := &Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Granted:   true,
		GrantedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO consent_records (id, user_id, kind, granted, granted_at, revoked_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, NULL, $4)
		ON CONFLICT (user_id, kind)
		DO UPDATE SET granted = TRUE, granted_at = $4, revoked_at = NULL, updated_at = $4
	`
	if _, err := s.db.ExecContext(ctx, query, rec.ID, userID, string(kind), now); err != nil {
		return nil, fmt.Errorf("consent: grant: %w", err)
	}

	s.appendAudit(ctx, &AuditEvent{
		UserID:  userID,
		Kind:    kind,
		Action:  ActionGranted,
		ActorID: actor.ID,
		Details: details,
	})
	s.logger.Info("consent granted", "user_id", userID, "kind", string(kind), "actor_id", actor.ID)
	return rec, nil
}

// Revoke withdraws the user's consent of the given kind.
func (s *Service) Revoke(ctx context.Context, actor identity.Actor, userID string, kind Kind, details json.RawMessage) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if !actor.IsAdmin() && actor.ID != userID {
		return ErrPermissionDenied
	}

	now := s.clock().UTC()
	query := `
		UPDATE consent_records
		SET granted = FALSE, revoked_at = $3, updated_at = $3
		WHERE user_id = $1 AND kind = $2
	`
	res, err := s.db.ExecContext(ctx, query, userID, string(kind), now)
	if err != nil {
		return fmt.Errorf("consent: revoke: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	s.appendAudit(ctx, &AuditEvent{
		UserID:  userID,
		Kind:    kind,
		Action:  ActionRevoked,
		ActorID: actor.ID,
		Details: details,
	})
	s.logger.Info("consent revoked", "user_id", userID, "kind", string(kind), "actor_id", actor.ID)
	return nil
}

// Get returns the current consent record for a user and kind.
func (s *Service) Get(ctx context.Context, actor identity.Actor, userID string, kind Kind) (*Record, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, ErrPermissionDenied
	}
	query := `
		SELECT id, user_id, kind, granted, granted_at, revoked_at, updated_at
		FROM consent_records
		WHERE user_id = $1 AND kind = $2
	`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, userID, string(kind)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("consent: select: %w", err)
	}
	return rec, nil
}

// List returns all consent records for a user.
func (s *Service) List(ctx context.Context, actor identity.Actor, userID string) ([]*Record, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, ErrPermissionDenied
	}
	query := `
		SELECT id, user_id, kind, granted, granted_at, revoked_at, updated_at
		FROM consent_records
		WHERE user_id = $1
		ORDER BY kind
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("consent: list: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("consent: scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// HasConsent reports whether the user currently consents to the given kind.
// Used by collaborating services; missing records count as no consent.
func (s *Service) HasConsent(ctx context.Context, userID string, kind Kind) (bool, error) {
	var granted bool
	query := `SELECT granted FROM consent_records WHERE user_id = $1 AND kind = $2`
	if err := s.db.QueryRowContext(ctx, query, userID, string(kind)).Scan(&granted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("consent: check: %w", err)
	}
	return granted, nil
}

// ListAuditEvents returns the audit trail for a user, newest first. Admin
// only; the trail exposes who acted on whose consent.
func (s *Service) ListAuditEvents(ctx context.Context, actor identity.Actor, userID string) ([]*AuditEvent, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	query := `
		SELECT id, user_id, kind, action, actor_id, details, created_at
		FROM consent_audit_events
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("consent: list audit events: %w", err)
	}
	defer rows.Close()

	var out []*AuditEvent
	for rows.Next() {
		var (
			ev      AuditEvent
			kind    string
			details []byte
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &kind, &ev.Action, &ev.ActorID, &details, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("consent: scan audit event: %w", err)
		}
		ev.Kind = Kind(kind)
		ev.Details = details
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// appendAudit inserts an audit row. The trail must not block the consent
// change itself; failures are logged.
func (s *Service) appendAudit(ctx context.Context, ev *AuditEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = s.clock().UTC()
	}

	query := `
		INSERT INTO consent_audit_events (id, user_id, kind, action, actor_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		ev.ID, ev.UserID, string(ev.Kind), ev.Action, ev.ActorID, []byte(ev.Details), ev.CreatedAt)
	if err != nil {
		s.logger.Error("consent audit append failed", "error", err, "user_id", ev.UserID, "action", ev.Action)
	}
}

func scanRecord(row interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec     Record
		kind    string
		revoked sql.NullTime
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &kind, &rec.Granted, &rec.GrantedAt, &revoked, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Kind = Kind(kind)
	if revoked.Valid {
		rec.RevokedAt = &revoked.Time
	}
	return &rec, nil
}
