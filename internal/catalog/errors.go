package catalog

import "errors"

var (
	// ErrServiceNotFound is returned when a service is not found
	ErrServiceNotFound = errors.New("service not found")

	// ErrCategoryNotFound is returned when a category is not found
	ErrCategoryNotFound = errors.New("category not found")

	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrMissingCategory is returned when a service has no category
	ErrMissingCategory = errors.New("category id is required")

	// ErrInvalidPrice is returned for negative prices
	ErrInvalidPrice = errors.New("price must not be negative")

	// ErrInvalidDuration is returned for non-positive durations
	ErrInvalidDuration = errors.New("duration must be positive")
)
