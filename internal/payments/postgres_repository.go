package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores payments in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("payments: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const paymentColumns = `id, booking_id, user_id, amount_cents, refunded_cents, status, created_at, updated_at`

// Create inserts a payment row.
func (r *PostgresRepository) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.BookingID, p.UserID, p.AmountCents, p.RefundedCents,
		string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("payments: insert: %w", err)
	}
	return nil
}

// GetByBookingID fetches the payment for a booking.
func (r *PostgresRepository) GetByBookingID(ctx context.Context, bookingID string) (*Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id = $1`, bookingID)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("payments: select: %w", err)
	}
	return p, nil
}

// Update replaces the mutable columns of the payment row.
func (r *PostgresRepository) Update(ctx context.Context, p *Payment) error {
	query := `
		UPDATE payments
		SET refunded_cents = $2, status = $3, updated_at = $4
		WHERE booking_id = $1
	`
	tag, err := r.pool.Exec(ctx, query, p.BookingID, p.RefundedCents, string(p.Status), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("payments: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns the user's payments, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("payments: list: %w", err)
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("payments: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var (
		p      Payment
		status string
	)
	if err := row.Scan(
		&p.ID, &p.BookingID, &p.UserID, &p.AmountCents, &p.RefundedCents,
		&status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = Status(status)
	return &p, nil
}
