package booking

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingColumnList = []string{
	"id", "user_id", "provider_id", "service_id", "scheduled_date",
	"start_minutes", "duration_minutes", "status", "payment_status",
	"amount_cents", "notes", "created_at", "updated_at",
}

func sampleBooking(now time.Time) *Booking {
	return &Booking{
		ID:            "b1",
		UserID:        "user-1",
		ProviderID:    "prov-1",
		ServiceID:     "svc-1",
		ScheduledDate: "2026-03-10",
		StartMinutes:  840,
		DurationMins:  60,
		Status:        StatusConfirmed,
		PaymentStatus: PaymentPaid,
		AmountCents:   10000,
		Notes:         "first visit",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func sampleRow(b *Booking) *pgxmock.Rows {
	date, _ := time.Parse(DateFormat, b.ScheduledDate)
	return pgxmock.NewRows(bookingColumnList).AddRow(
		b.ID, b.UserID,
		pgtype.Text{String: b.ProviderID, Valid: b.ProviderID != ""},
		b.ServiceID, date, b.StartMinutes, b.DurationMins,
		string(b.Status), string(b.PaymentStatus),
		b.AmountCents, b.Notes, b.CreatedAt, b.UpdatedAt,
	)
}

func TestPostgresCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	b := sampleBooking(now)

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(b.ID, b.UserID, pgtype.Text{String: b.ProviderID, Valid: true},
			b.ServiceID, b.ScheduledDate, b.StartMinutes, b.DurationMins,
			string(b.Status), string(b.PaymentStatus), b.AmountCents,
			b.Notes, b.CreatedAt, b.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.Create(context.Background(), b))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateNullProvider(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	b := sampleBooking(now)
	b.ProviderID = ""

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(b.ID, b.UserID, pgtype.Text{Valid: false},
			b.ServiceID, b.ScheduledDate, b.StartMinutes, b.DurationMins,
			string(b.Status), string(b.PaymentStatus), b.AmountCents,
			b.Notes, b.CreatedAt, b.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.Create(context.Background(), b))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	want := sampleBooking(now)
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs("b1").
		WillReturnRows(sampleRow(want))

	repo := NewPostgresRepository(mock)
	got, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.ProviderID, got.ProviderID)
	assert.Equal(t, want.ScheduledDate, got.ScheduledDate)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, PaymentPaid, got.PaymentStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(bookingColumnList))

	repo := NewPostgresRepository(mock)
	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	b := sampleBooking(now)

	mock.ExpectExec("UPDATE bookings").
		WithArgs(b.ID, pgtype.Text{String: b.ProviderID, Valid: true},
			b.ScheduledDate, b.StartMinutes, string(b.Status),
			string(b.PaymentStatus), b.Notes, b.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.Update(context.Background(), b))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	b := sampleBooking(now)
	b.ID = "ghost"

	mock.ExpectExec("UPDATE bookings").
		WithArgs(b.ID, pgtype.Text{String: b.ProviderID, Valid: true},
			b.ScheduledDate, b.StartMinutes, string(b.Status),
			string(b.PaymentStatus), b.Notes, b.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	assert.ErrorIs(t, repo.Update(context.Background(), b), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByProviderAndDate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	b := sampleBooking(now)
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE provider_id = (.+) AND scheduled_date").
		WithArgs("prov-1", "2026-03-10").
		WillReturnRows(sampleRow(b))

	repo := NewPostgresRepository(mock)
	got, err := repo.ListByProviderAndDate(context.Background(), "prov-1", "2026-03-10")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByUserEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(bookingColumnList))

	repo := NewPostgresRepository(mock)
	got, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
