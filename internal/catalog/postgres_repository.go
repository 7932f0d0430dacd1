package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores the catalog in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// CreateService inserts a new service row.
func (r *PostgresRepository) CreateService(ctx context.Context, req *CreateServiceRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := r.GetCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO services (id, category_id, name, description, price_cents, duration_minutes, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.CategoryID,
		req.Name,
		req.Description,
		req.PriceCents,
		req.DurationMins,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("catalog: insert service: %w", err)
	}

	return &Service{
		ID:           id.String(),
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		DurationMins: req.DurationMins,
		Active:       true,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// GetService fetches a service by id.
func (r *PostgresRepository) GetService(ctx context.Context, id string) (*Service, error) {
	query := `
		SELECT id, category_id, name, description, price_cents, duration_minutes, active, created_at, updated_at
		FROM services
		WHERE id = $1
	`
	var svc Service
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.CategoryID,
		&svc.Name,
		&svc.Description,
		&svc.PriceCents,
		&svc.DurationMins,
		&svc.Active,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("catalog: select service: %w", err)
	}
	return &svc, nil
}

// UpdateService applies the non-nil fields of req to the row.
func (r *PostgresRepository) UpdateService(ctx context.Context, id string, req *UpdateServiceRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	idx := 2
	add := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}
	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.PriceCents != nil {
		add("price_cents", *req.PriceCents)
	}
	if req.DurationMins != nil {
		add("duration_minutes", *req.DurationMins)
	}
	if req.Active != nil {
		add("active", *req.Active)
	}

	query := fmt.Sprintf(`
		UPDATE services SET %s
		WHERE id = $1
		RETURNING id, category_id, name, description, price_cents, duration_minutes, active, created_at, updated_at
	`, strings.Join(sets, ", "))

	var svc Service
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&svc.ID,
		&svc.CategoryID,
		&svc.Name,
		&svc.Description,
		&svc.PriceCents,
		&svc.DurationMins,
		&svc.Active,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("catalog: update service: %w", err)
	}
	return &svc, nil
}

// ListServices returns services ordered by name.
func (r *PostgresRepository) ListServices(ctx context.Context, activeOnly bool) ([]*Service, error) {
	query := `
		SELECT id, category_id, name, description, price_cents, duration_minutes, active, created_at, updated_at
		FROM services
	`
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	defer rows.Close()

	var out []*Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(
			&svc.ID,
			&svc.CategoryID,
			&svc.Name,
			&svc.Description,
			&svc.PriceCents,
			&svc.DurationMins,
			&svc.Active,
			&svc.CreatedAt,
			&svc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, &svc)
	}
	return out, rows.Err()
}

// CreateCategory inserts a category row.
func (r *PostgresRepository) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query, id, req.Name, req.Description).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("catalog: insert category: %w", err)
	}

	return &Category{
		ID:          id.String(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   createdAt,
	}, nil
}

// GetCategory fetches a category by id.
func (r *PostgresRepository) GetCategory(ctx context.Context, id string) (*Category, error) {
	query := `SELECT id, name, description, created_at FROM categories WHERE id = $1`
	var cat Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("catalog: select category: %w", err)
	}
	return &cat, nil
}

// ListCategories returns all categories ordered by name.
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list categories: %w", err)
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan category: %w", err)
		}
		out = append(out, &cat)
	}
	return out, rows.Err()
}
