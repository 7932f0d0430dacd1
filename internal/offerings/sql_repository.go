package offerings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLRepository stores offering requests in the relational database. The
// requested services column is a text[] scanned through pq.Array.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository initializes a repo backed by *sql.DB.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	if db == nil {
		panic("offerings: db required")
	}
	return &SQLRepository{db: db}
}

const requestColumns = `id, provider_id, service_ids, status, reason, decided_by, decided_at, created_at`

func scanRequest(row interface{ Scan(...any) error }) (*Request, error) {
	var (
		req       Request
		status    string
		reason    sql.NullString
		decidedBy sql.NullString
		decidedAt sql.NullTime
	)
	if err := row.Scan(
		&req.ID,
		&req.ProviderID,
		pq.Array(&req.ServiceIDs),
		&status,
		&reason,
		&decidedBy,
		&decidedAt,
		&req.CreatedAt,
	); err != nil {
		return nil, err
	}
	req.Status = RequestStatus(status)
	req.Reason = reason.String
	req.DecidedBy = decidedBy.String
	if decidedAt.Valid {
		req.DecidedAt = &decidedAt.Time
	}
	return &req, nil
}

// Create inserts a request row.
func (r *SQLRepository) Create(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO offering_requests (id, provider_id, service_ids, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.ProviderID, pq.Array(req.ServiceIDs), string(req.Status), req.CreatedAt)
	if err != nil {
		return fmt.Errorf("offerings: insert: %w", err)
	}
	return nil
}

// GetByID fetches a request by id.
func (r *SQLRepository) GetByID(ctx context.Context, id string) (*Request, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM offering_requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("offerings: select: %w", err)
	}
	return req, nil
}

// Update writes the decision columns of the request row.
func (r *SQLRepository) Update(ctx context.Context, req *Request) error {
	query := `
		UPDATE offering_requests
		SET status = $2, reason = $3, decided_by = $4, decided_at = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		req.ID, string(req.Status), req.Reason, req.DecidedBy, req.DecidedAt)
	if err != nil {
		return fmt.Errorf("offerings: update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByProvider returns the provider's requests, newest first.
func (r *SQLRepository) ListByProvider(ctx context.Context, providerID string) ([]*Request, error) {
	return r.list(ctx,
		`SELECT `+requestColumns+` FROM offering_requests WHERE provider_id = $1 ORDER BY created_at DESC`,
		providerID)
}

// ListPending returns all undecided requests, oldest first.
func (r *SQLRepository) ListPending(ctx context.Context) ([]*Request, error) {
	return r.list(ctx,
		`SELECT `+requestColumns+` FROM offering_requests WHERE status = 'pending' ORDER BY created_at`)
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]*Request, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("offerings: list: %w", err)
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("offerings: scan: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
