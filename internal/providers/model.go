package providers

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a provider does not exist.
	ErrNotFound = errors.New("provider not found")

	// ErrInvalidName is returned when the provider name is missing.
	ErrInvalidName = errors.New("name is required")

	// ErrMissingContact is returned when both email and phone are missing.
	ErrMissingContact = errors.New("either email or phone is required")
)

// Provider is a healthcare service provider eligible for booking
// assignment. Only verified and available providers are offered to
// customers.
type Provider struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Verified          bool      `json:"verified"`
	Available         bool      `json:"available"`
	OfferedServiceIDs []string  `json:"offered_service_ids"`
	Rating            float64   `json:"rating,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// OffersService reports whether the provider offers the given service.
func (p *Provider) OffersService(serviceID string) bool {
	for _, id := range p.OfferedServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// Bookable reports whether the provider can receive new assignments.
func (p *Provider) Bookable() bool {
	return p.Verified && p.Available
}

// CreateProviderRequest is the admin payload for registering a provider.
type CreateProviderRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate checks the create provider request.
func (r *CreateProviderRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if r.Email == "" && r.Phone == "" {
		return ErrMissingContact
	}
	return nil
}
