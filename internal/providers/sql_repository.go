package providers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SQLRepository stores providers in the relational database. The offered
// services column is a text[] scanned through pq.Array.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository initializes a repo backed by *sql.DB.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	if db == nil {
		panic("providers: db required")
	}
	return &SQLRepository{db: db}
}

const providerColumns = `id, name, email, phone, verified, available, offered_service_ids, rating, created_at, updated_at`

func scanProvider(row interface{ Scan(...any) error }) (*Provider, error) {
	var p Provider
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Verified,
		&p.Available,
		pq.Array(&p.OfferedServiceIDs),
		&p.Rating,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if p.OfferedServiceIDs == nil {
		p.OfferedServiceIDs = []string{}
	}
	return &p, nil
}

// Create inserts a provider row, unverified and unavailable.
func (r *SQLRepository) Create(ctx context.Context, req *CreateProviderRequest) (*Provider, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	var createdAt, updatedAt time.Time
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO providers (id, name, email, phone, verified, available, offered_service_ids)
		VALUES ($1, $2, $3, $4, FALSE, FALSE, '{}')
		RETURNING created_at, updated_at`,
		id, req.Name, req.Email, req.Phone,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("providers: insert: %w", err)
	}

	return &Provider{
		ID:                id.String(),
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		OfferedServiceIDs: []string{},
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}, nil
}

// GetByID fetches a provider by id.
func (r *SQLRepository) GetByID(ctx context.Context, id string) (*Provider, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE id = $1`, id)
	p, err := scanProvider(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("providers: select: %w", err)
	}
	return p, nil
}

// List returns all providers ordered by name.
func (r *SQLRepository) List(ctx context.Context) ([]*Provider, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+providerColumns+` FROM providers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("providers: list: %w", err)
	}
	defer rows.Close()

	var out []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("providers: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListOffering returns providers whose offered set contains serviceID.
func (r *SQLRepository) ListOffering(ctx context.Context, serviceID string) ([]*Provider, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE $1 = ANY(offered_service_ids) ORDER BY name`,
		serviceID)
	if err != nil {
		return nil, fmt.Errorf("providers: list offering: %w", err)
	}
	defer rows.Close()

	var out []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("providers: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetVerified updates the verification flag.
func (r *SQLRepository) SetVerified(ctx context.Context, id string, verified bool) (*Provider, error) {
	return r.update(ctx,
		`UPDATE providers SET verified = $2, updated_at = NOW() WHERE id = $1 RETURNING `+providerColumns,
		id, verified)
}

// SetAvailable updates the availability flag.
func (r *SQLRepository) SetAvailable(ctx context.Context, id string, available bool) (*Provider, error) {
	return r.update(ctx,
		`UPDATE providers SET available = $2, updated_at = NOW() WHERE id = $1 RETURNING `+providerColumns,
		id, available)
}

// SetOfferedServices replaces the provider's offered service set.
func (r *SQLRepository) SetOfferedServices(ctx context.Context, id string, serviceIDs []string) (*Provider, error) {
	return r.update(ctx,
		`UPDATE providers SET offered_service_ids = $2, updated_at = NOW() WHERE id = $1 RETURNING `+providerColumns,
		id, pq.Array(serviceIDs))
}

func (r *SQLRepository) update(ctx context.Context, query string, args ...any) (*Provider, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	p, err := scanProvider(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("providers: update: %w", err)
	}
	return p, nil
}
