package booking

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusInProgress, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, false},
		{StatusConfirmed, StatusPending, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{Status("bogus"), StatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusPending:    false,
		StatusConfirmed:  false,
		StatusInProgress: false,
		StatusCompleted:  true,
		StatusCancelled:  true,
		Status("bogus"):  true,
	}
	for s, want := range terminal {
		if got := s.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, want)
		}
	}
}

func TestStatusIsCancellable(t *testing.T) {
	cancellable := map[Status]bool{
		StatusPending:    true,
		StatusConfirmed:  true,
		StatusInProgress: true,
		StatusCompleted:  false,
		StatusCancelled:  false,
	}
	for s, want := range cancellable {
		if got := s.IsCancellable(); got != want {
			t.Errorf("%s.IsCancellable() = %v, want %v", s, got, want)
		}
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("PENDING").IsValid() {
		t.Error("statuses are lowercase on the wire; PENDING should be invalid")
	}
}

func TestBlocksProviderSchedule(t *testing.T) {
	blocking := map[Status]bool{
		StatusPending:    false,
		StatusConfirmed:  true,
		StatusInProgress: true,
		StatusCompleted:  false,
		StatusCancelled:  false,
	}
	for s, want := range blocking {
		if got := s.blocksProviderSchedule(); got != want {
			t.Errorf("%s.blocksProviderSchedule() = %v, want %v", s, got, want)
		}
	}
}

func TestPaymentStatusIsValid(t *testing.T) {
	for _, p := range []PaymentStatus{PaymentPending, PaymentPaid, PaymentRefunded} {
		if !p.IsValid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if PaymentStatus("charged").IsValid() {
		t.Error("charged is not a payment status")
	}
}
