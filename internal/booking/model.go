package booking

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the wire and storage format for scheduled dates.
const DateFormat = "2006-01-02"

// minutesPerDay bounds scheduled times; times are minutes from midnight.
const minutesPerDay = 24 * 60

// Booking links a customer, a service and (once assigned) a provider to an
// appointment slot. Bookings are never deleted; cancellation is a status
// transition.
type Booking struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	ProviderID     string        `json:"provider_id,omitempty"`
	ServiceID      string        `json:"service_id"`
	ScheduledDate  string        `json:"scheduled_date"`
	StartMinutes   int           `json:"start_minutes"`
	DurationMins   int           `json:"duration_minutes"`
	Status         Status        `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	AmountCents    int64         `json:"amount_cents"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// EndMinutes is the exclusive end of the appointment interval.
func (b *Booking) EndMinutes() int {
	return b.StartMinutes + b.DurationMins
}

// ScheduledStart resolves the appointment start as a point in time, in loc.
func (b *Booking) ScheduledStart(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateFormat, b.ScheduledDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("booking: parse scheduled date: %w", err)
	}
	return day.Add(time.Duration(b.StartMinutes) * time.Minute), nil
}

// appendNote adds a line to the booking's free-text notes. Existing notes
// are never overwritten.
func (b *Booking) appendNote(line string) {
	if line == "" {
		return
	}
	if b.Notes == "" {
		b.Notes = line
		return
	}
	b.Notes = b.Notes + "\n" + line
}

// CreateRequest is the payload for creating a booking.
type CreateRequest struct {
	UserID        string `json:"user_id"`
	ServiceID     string `json:"service_id"`
	ScheduledDate string `json:"scheduled_date"`
	StartMinutes  int    `json:"start_minutes"`
	Notes         string `json:"notes"`
}

// Validate checks structural preconditions; existence checks and the
// past-date rule live in the service, which owns the clock.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(r.ServiceID) == "" {
		return fmt.Errorf("%w: service id is required", ErrInvalidArgument)
	}
	if _, err := time.Parse(DateFormat, r.ScheduledDate); err != nil {
		return fmt.Errorf("%w: scheduled date must be YYYY-MM-DD", ErrInvalidArgument)
	}
	if r.StartMinutes < 0 || r.StartMinutes >= minutesPerDay {
		return fmt.Errorf("%w: start time out of range", ErrInvalidArgument)
	}
	return nil
}

// RescheduleRequest carries a new appointment slot.
type RescheduleRequest struct {
	ScheduledDate string `json:"scheduled_date"`
	StartMinutes  int    `json:"start_minutes"`
}

func (r *RescheduleRequest) Validate() error {
	if _, err := time.Parse(DateFormat, r.ScheduledDate); err != nil {
		return fmt.Errorf("%w: scheduled date must be YYYY-MM-DD", ErrInvalidArgument)
	}
	if r.StartMinutes < 0 || r.StartMinutes >= minutesPerDay {
		return fmt.Errorf("%w: start time out of range", ErrInvalidArgument)
	}
	return nil
}
