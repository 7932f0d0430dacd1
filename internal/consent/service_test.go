package consent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhive/marketplace-platform/internal/identity"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

var (
	customer = identity.Actor{ID: "user-1", Role: identity.RoleCustomer}
	admin    = identity.Actor{ID: "admin-1", Role: identity.RoleAdmin}
)

func newService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewService(db, logging.NewText("error"))
	svc.clock = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, mock
}

func TestGrant(t *testing.T) {
	svc, mock := newService(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO consent_records").
		WithArgs(sqlmock.AnyArg(), "user-1", "treatment", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO consent_audit_events").
		WithArgs(sqlmock.AnyArg(), "user-1", "treatment", ActionGranted, "user-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := svc.Grant(ctx, customer, "user-1", KindTreatment, json.RawMessage(`{"form":"intake-v2"}`))
	require.NoError(t, err)
	assert.True(t, rec.Granted)
	assert.Equal(t, KindTreatment, rec.Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, customer, "user-1", Kind("biometrics"), nil)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = svc.Grant(ctx, customer, "user-2", KindTreatment, nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGrantAuditFailureDoesNotFail(t *testing.T) {
	svc, mock := newService(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO consent_records").
		WithArgs(sqlmock.AnyArg(), "user-1", "marketing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO consent_audit_events").
		WillReturnError(errors.New("disk full"))

	_, err := svc.Grant(ctx, customer, "user-1", KindMarketing, nil)
	assert.NoError(t, err, "the audit trail must not block the consent change")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevoke(t *testing.T) {
	svc, mock := newService(t)
	ctx := context.Background()

	mock.ExpectExec("UPDATE consent_records").
		WithArgs("user-1", "marketing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO consent_audit_events").
		WithArgs(sqlmock.AnyArg(), "user-1", "marketing", ActionRevoked, "admin-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Revoke(ctx, admin, "user-1", KindMarketing, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeMissingRecord(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectExec("UPDATE consent_records").
		WithArgs("user-1", "reminders", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Revoke(context.Background(), customer, "user-1", KindReminders, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	// no audit row for a no-op revoke
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	svc, mock := newService(t)
	now := time.Now().UTC()
	revoked := now.Add(time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM consent_records").
		WithArgs("user-1", "treatment").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "kind", "granted", "granted_at", "revoked_at", "updated_at"}).
			AddRow("c1", "user-1", "treatment", false, now, revoked, revoked))

	rec, err := svc.Get(context.Background(), customer, "user-1", KindTreatment)
	require.NoError(t, err)
	assert.False(t, rec.Granted)
	require.NotNil(t, rec.RevokedAt)
	assert.Equal(t, revoked, *rec.RevokedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery("SELECT (.+) FROM consent_records").
		WithArgs("user-1", "treatment").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.Get(context.Background(), customer, "user-1", KindTreatment)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHasConsent(t *testing.T) {
	svc, mock := newService(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT granted FROM consent_records").
		WithArgs("user-1", "reminders").
		WillReturnRows(sqlmock.NewRows([]string{"granted"}).AddRow(true))

	ok, err := svc.HasConsent(ctx, "user-1", KindReminders)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery("SELECT granted FROM consent_records").
		WithArgs("user-2", "reminders").
		WillReturnError(sql.ErrNoRows)

	ok, err = svc.HasConsent(ctx, "user-2", KindReminders)
	require.NoError(t, err)
	assert.False(t, ok, "a missing record is no consent")
}

func TestListAuditEventsAdminOnly(t *testing.T) {
	svc, mock := newService(t)
	ctx := context.Background()

	_, err := svc.ListAuditEvents(ctx, customer, "user-1")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM consent_audit_events").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "kind", "action", "actor_id", "details", "created_at"}).
			AddRow("e2", "user-1", "marketing", ActionRevoked, "user-1", []byte(`{}`), now).
			AddRow("e1", "user-1", "marketing", ActionGranted, "user-1", []byte(`{}`), now.Add(-time.Hour)))

	events, err := svc.ListAuditEvents(ctx, admin, "user-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionRevoked, events[0].Action)
	require.NoError(t, mock.ExpectationsWereMet())
}
