package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/medhive/marketplace-platform/internal/booking"
	"github.com/medhive/marketplace-platform/internal/providers"
	"github.com/medhive/marketplace-platform/internal/users"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

type fakeSender struct {
	sent []EmailMessage
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newNotifyService(t *testing.T) (*Service, *fakeSender) {
	t.Helper()
	usr := users.NewInMemoryRepository()
	usr.Put(&users.User{ID: "user-1", Name: "Casey", Email: "casey@example.com"})

	dir := providers.NewInMemoryRepository()
	dir.Put(&providers.Provider{ID: "prov-1", Name: "Pat", Email: "pat@example.com"})
	dir.Put(&providers.Provider{ID: "prov-mute", Name: "Quiet"})

	sender := &fakeSender{}
	return NewService(sender, usr, dir, logging.NewText("error")), sender
}

func sampleBooking() *booking.Booking {
	return &booking.Booking{
		ID:            "b1",
		UserID:        "user-1",
		ProviderID:    "prov-1",
		ScheduledDate: "2026-03-10",
		StartMinutes:  14 * 60,
		Status:        booking.StatusConfirmed,
	}
}

func TestBookingCreated(t *testing.T) {
	svc, sender := newNotifyService(t)

	if err := svc.BookingCreated(context.Background(), sampleBooking()); err != nil {
		t.Fatalf("BookingCreated: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "casey@example.com" {
		t.Errorf("To = %q", msg.To)
	}
	if !strings.Contains(msg.Body, "2026-03-10") || !strings.Contains(msg.Body, "14:00") {
		t.Errorf("body missing slot details: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "b1") {
		t.Errorf("body missing booking reference: %q", msg.Body)
	}
}

func TestBookingStatusChanged(t *testing.T) {
	svc, sender := newNotifyService(t)

	b := sampleBooking()
	b.Status = booking.StatusInProgress
	if err := svc.BookingStatusChanged(context.Background(), b, booking.StatusConfirmed); err != nil {
		t.Fatalf("BookingStatusChanged: %v", err)
	}
	msg := sender.sent[0]
	if !strings.Contains(msg.Subject, "in progress") {
		t.Errorf("subject should use the readable label: %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "confirmed") {
		t.Errorf("body should name the previous status: %q", msg.Body)
	}
}

func TestProviderAssigned(t *testing.T) {
	svc, sender := newNotifyService(t)

	if err := svc.ProviderAssigned(context.Background(), sampleBooking()); err != nil {
		t.Fatalf("ProviderAssigned: %v", err)
	}
	if sender.sent[0].To != "pat@example.com" {
		t.Errorf("To = %q", sender.sent[0].To)
	}
}

func TestProviderAssignedNoProvider(t *testing.T) {
	svc, sender := newNotifyService(t)

	b := sampleBooking()
	b.ProviderID = ""
	if err := svc.ProviderAssigned(context.Background(), b); err != nil {
		t.Fatalf("ProviderAssigned: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("no email expected without an assigned provider")
	}
}

func TestProviderWithoutEmailIsSkipped(t *testing.T) {
	svc, sender := newNotifyService(t)

	b := sampleBooking()
	b.ProviderID = "prov-mute"
	if err := svc.ProviderAssigned(context.Background(), b); err != nil {
		t.Fatalf("ProviderAssigned: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("no email expected for a provider without an address")
	}
}

func TestUnknownRecipientErrors(t *testing.T) {
	svc, _ := newNotifyService(t)

	b := sampleBooking()
	b.UserID = "ghost"
	if err := svc.BookingCreated(context.Background(), b); err == nil {
		t.Fatal("expected an error for an unknown recipient")
	}
}

func TestSenderErrorPropagates(t *testing.T) {
	svc, sender := newNotifyService(t)
	sender.err = errors.New("smtp down")

	if err := svc.BookingCreated(context.Background(), sampleBooking()); err == nil {
		t.Fatal("sender failures surface to the caller, who logs them")
	}
}

func TestNilSenderDropsQuietly(t *testing.T) {
	usr := users.NewInMemoryRepository()
	usr.Put(&users.User{ID: "user-1", Name: "Casey", Email: "casey@example.com"})
	svc := NewService(nil, usr, providers.NewInMemoryRepository(), logging.NewText("error"))

	if err := svc.BookingCreated(context.Background(), sampleBooking()); err != nil {
		t.Fatalf("nil sender should drop, not fail: %v", err)
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := map[int]string{0: "00:00", 540: "09:00", 845: "14:05", 1439: "23:59"}
	for in, want := range cases {
		if got := formatMinutes(in); got != want {
			t.Errorf("formatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}
