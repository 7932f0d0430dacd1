package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores bookings in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const bookingColumns = `id, user_id, provider_id, service_id, scheduled_date, start_minutes, duration_minutes, status, payment_status, amount_cents, notes, created_at, updated_at`

// Create inserts a booking row.
func (r *PostgresRepository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.UserID,
		nullableText(b.ProviderID),
		b.ServiceID,
		b.ScheduledDate,
		b.StartMinutes,
		b.DurationMins,
		string(b.Status),
		string(b.PaymentStatus),
		b.AmountCents,
		b.Notes,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("booking: insert: %w", err)
	}
	return nil
}

// GetByID fetches a booking by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("booking: select: %w", err)
	}
	return b, nil
}

// Update replaces the mutable columns of the booking row.
func (r *PostgresRepository) Update(ctx context.Context, b *Booking) error {
	query := `
		UPDATE bookings
		SET provider_id = $2, scheduled_date = $3, start_minutes = $4,
		    status = $5, payment_status = $6, notes = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		b.ID,
		nullableText(b.ProviderID),
		b.ScheduledDate,
		b.StartMinutes,
		string(b.Status),
		string(b.PaymentStatus),
		b.Notes,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("booking: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns the user's bookings, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListByProvider returns the provider's bookings, newest first.
func (r *PostgresRepository) ListByProvider(ctx context.Context, providerID string) ([]*Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE provider_id = $1 ORDER BY created_at DESC`, providerID)
}

// ListByProviderAndDate returns the provider's bookings on a date, used
// for conflict detection.
func (r *PostgresRepository) ListByProviderAndDate(ctx context.Context, providerID, date string) ([]*Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE provider_id = $1 AND scheduled_date = $2 ORDER BY start_minutes`,
		providerID, date)
}

// ListByStatus returns all bookings in the given status, newest first.
func (r *PostgresRepository) ListByStatus(ctx context.Context, status Status) ([]*Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status = $1 ORDER BY created_at DESC`, string(status))
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("booking: list: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("booking: scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b          Booking
		providerID pgtype.Text
		date       time.Time
		status     string
		payment    string
	)
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&providerID,
		&b.ServiceID,
		&date,
		&b.StartMinutes,
		&b.DurationMins,
		&status,
		&payment,
		&b.AmountCents,
		&b.Notes,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if providerID.Valid {
		b.ProviderID = providerID.String
	}
	b.ScheduledDate = date.Format(DateFormat)
	b.Status = Status(status)
	b.PaymentStatus = PaymentStatus(payment)
	return &b, nil
}

func nullableText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
