package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundPercentTiers(t *testing.T) {
	cases := []struct {
		lead time.Duration
		want int64
	}{
		{72 * time.Hour, 100},
		{48 * time.Hour, 100},
		{48*time.Hour - time.Minute, 75},
		{24 * time.Hour, 75},
		{24*time.Hour - time.Minute, 50},
		{6 * time.Hour, 50},
		{6*time.Hour - time.Minute, 25},
		{time.Hour, 25},
		{time.Hour - time.Minute, 0},
		{30 * time.Minute, 0},
		{0, 0},
		{-2 * time.Hour, 0},
	}
	for _, tc := range cases {
		if got := refundPercent(tc.lead); got != tc.want {
			t.Errorf("refundPercent(%v) = %d, want %d", tc.lead, got, tc.want)
		}
	}
}

func TestCalculateRefundAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t) // 2026-03-10 at 14:00, 10000 cents

	start, err := b.ScheduledStart(time.UTC)
	require.NoError(t, err)

	cases := []struct {
		name string
		lead time.Duration
		want int64
	}{
		{"two days out", 49 * time.Hour, 10000},
		{"one day out", 30 * time.Hour, 7500},
		{"same morning", 7 * time.Hour, 5000},
		{"last minute", 90 * time.Minute, 2500},
		{"too late", 10 * time.Minute, 0},
		{"already started", -time.Hour, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f.now = start.Add(-tc.lead)
			quote, err := f.svc.CalculateRefundAmount(ctx, b.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, quote.AmountCents)
			assert.Equal(t, int64(10000), quote.TotalCents)
			assert.Equal(t, b.ID, quote.BookingID)
		})
	}
}

// Cancelling earlier never refunds less, and quotes stay within
// [0, TotalCents] at every lead time.
func TestRefundMonotonicAndBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t)

	start, err := b.ScheduledStart(time.UTC)
	require.NoError(t, err)

	prev := int64(-1)
	for lead := 96 * time.Hour; lead >= -4*time.Hour; lead -= 15 * time.Minute {
		f.now = start.Add(-lead)
		quote, err := f.svc.CalculateRefundAmount(ctx, b.ID)
		require.NoError(t, err)

		if quote.AmountCents < 0 || quote.AmountCents > quote.TotalCents {
			t.Fatalf("quote %d out of bounds at lead %v", quote.AmountCents, lead)
		}
		if prev >= 0 && quote.AmountCents > prev {
			t.Fatalf("refund grew from %d to %d as lead shrank to %v", prev, quote.AmountCents, lead)
		}
		prev = quote.AmountCents
	}
}

func TestCalculateRefundHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t)

	_, err := f.svc.CalculateRefundAmount(ctx, b.ID)
	require.NoError(t, err)

	after, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, after.Status)
	assert.Equal(t, PaymentPending, after.PaymentStatus)
	assert.Equal(t, b.UpdatedAt, after.UpdatedAt)
}

func TestCalculateRefundUnknownBooking(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CalculateRefundAmount(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
