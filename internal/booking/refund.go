package booking

import (
	"context"
	"time"
)

// Cancellation refund tiers, keyed on lead time before the scheduled
// start. Cancelling earlier always refunds at least as much as cancelling
// later, and the amount stays within [0, AmountCents].
var refundTiers = []struct {
	lead time.Duration
	pct  int64
}{
	{48 * time.Hour, 100},
	{24 * time.Hour, 75},
	{6 * time.Hour, 50},
	{1 * time.Hour, 25},
}

// RefundQuote is the outcome of a refund calculation. Quoting has no side
// effects; executing the refund belongs to the payments collaborator.
type RefundQuote struct {
	BookingID   string        `json:"booking_id"`
	AmountCents int64         `json:"amount_cents"`
	TotalCents  int64         `json:"total_cents"`
	Percent     int64         `json:"percent"`
	LeadTime    time.Duration `json:"-"`
}

// CalculateRefundAmount quotes the refund owed if the booking were
// cancelled now.
func (s *Service) CalculateRefundAmount(ctx context.Context, id string) (*RefundQuote, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start, err := b.ScheduledStart(s.loc)
	if err != nil {
		return nil, err
	}

	lead := start.Sub(s.clock())
	pct := refundPercent(lead)
	quote := &RefundQuote{
		BookingID:   b.ID,
		AmountCents: b.AmountCents * pct / 100,
		TotalCents:  b.AmountCents,
		Percent:     pct,
		LeadTime:    lead,
	}
	s.metrics.ObserveRefundQuote(float64(quote.AmountCents) / 100)
	return quote, nil
}

// refundPercent maps lead time to a refund percentage. Lead times at or
// past the appointment start refund nothing.
func refundPercent(lead time.Duration) int64 {
	for _, tier := range refundTiers {
		if lead >= tier.lead {
			return tier.pct
		}
	}
	return 0
}
