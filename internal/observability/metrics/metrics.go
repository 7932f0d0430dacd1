package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking lifecycle.
// A nil receiver is safe everywhere so callers can run without metrics.
type BookingMetrics struct {
	transitionsTotal    *prometheus.CounterVec
	refundQuoteAmount   prometheus.Histogram
	availabilityLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Booking lifecycle operations by outcome",
		}, []string{"operation", "outcome"}),
		refundQuoteAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: "booking",
			Name:      "refund_quote_amount",
			Help:      "Quoted refund amounts in currency units",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		availabilityLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: "booking",
			Name:      "availability_check_seconds",
			Help:      "Latency of provider availability checks",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cached"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal, m.refundQuoteAmount, m.availabilityLatency)
	return m
}

func (m *BookingMetrics) ObserveTransition(operation, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *BookingMetrics) ObserveRefundQuote(amount float64) {
	if m == nil {
		return
	}
	m.refundQuoteAmount.Observe(amount)
}

func (m *BookingMetrics) ObserveAvailabilityCheck(seconds float64, cached bool) {
	if m == nil {
		return
	}
	label := "false"
	if cached {
		label = "true"
	}
	m.availabilityLatency.WithLabelValues(label).Observe(seconds)
}
