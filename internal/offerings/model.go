// Package offerings manages provider requests to offer catalog services.
// Providers submit requests; admins approve or reject. Approval merges the
// requested services into the provider's offered set.
package offerings

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an offering request does not exist.
	ErrNotFound = errors.New("offering request not found")

	// ErrAlreadyDecided is returned when acting on an approved or rejected
	// request. Decided requests are immutable.
	ErrAlreadyDecided = errors.New("offering request already decided")

	// ErrNoServices is returned when a request names no services.
	ErrNoServices = errors.New("at least one service is required")

	// ErrPermissionDenied is returned when the actor may not act on the request.
	ErrPermissionDenied = errors.New("permission denied")
)

// RequestStatus is the decision state of an offering request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Request is a provider's application to offer a set of catalog services.
type Request struct {
	ID         string        `json:"id"`
	ProviderID string        `json:"provider_id"`
	ServiceIDs []string      `json:"service_ids"`
	Status     RequestStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	DecidedBy  string        `json:"decided_by,omitempty"`
	DecidedAt  *time.Time    `json:"decided_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Decided reports whether the request has reached a terminal state.
func (r *Request) Decided() bool {
	return r.Status != RequestPending
}
