package catalog

import (
	"strings"
	"time"
)

// Service is a bookable medical service offered through the marketplace.
type Service struct {
	ID           string    `json:"id"`
	CategoryID   string    `json:"category_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	DurationMins int       `json:"duration_minutes"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Category groups services for browsing and admin management.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateServiceRequest is the admin payload for adding a service.
type CreateServiceRequest struct {
	CategoryID   string `json:"category_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents"`
	DurationMins int    `json:"duration_minutes"`
}

// Validate checks the create service request.
func (r *CreateServiceRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.CategoryID) == "" {
		return ErrMissingCategory
	}
	if r.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if r.DurationMins <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// UpdateServiceRequest carries mutable service fields. Nil pointers mean
// "leave unchanged".
type UpdateServiceRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	PriceCents   *int64  `json:"price_cents,omitempty"`
	DurationMins *int    `json:"duration_minutes,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

func (r *UpdateServiceRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return ErrInvalidName
	}
	if r.PriceCents != nil && *r.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if r.DurationMins != nil && *r.DurationMins <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// CreateCategoryRequest is the admin payload for adding a category.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *CreateCategoryRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	return nil
}
