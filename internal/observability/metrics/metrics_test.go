package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveTransition("accept", "ok")
	m.ObserveTransition("accept", "ok")
	m.ObserveTransition("cancel", "rejected")
	m.ObserveRefundQuote(75.50)
	m.ObserveAvailabilityCheck(0.02, false)
	m.ObserveAvailabilityCheck(0.001, true)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var transitions *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "marketplace_booking_transitions_total" {
			transitions = mf
		}
	}
	if transitions == nil {
		t.Fatalf("expected transitions metric family to be registered")
	}

	var acceptOK float64
	for _, metric := range transitions.GetMetric() {
		labels := map[string]string{}
		for _, lp := range metric.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		if labels["operation"] == "accept" && labels["outcome"] == "ok" {
			acceptOK = metric.GetCounter().GetValue()
		}
	}
	if acceptOK != 2 {
		t.Fatalf("expected accept/ok counter of 2, got %v", acceptOK)
	}
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveTransition("accept", "ok")
	m.ObserveRefundQuote(10)
	m.ObserveAvailabilityCheck(0.1, true)
}
