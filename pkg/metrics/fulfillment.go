package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records placement and dispatch outcomes.
type FulfillmentMetrics struct {
	placementDuration *prometheus.HistogramVec
	placements        *prometheus.CounterVec
	dispatchAccepts   *prometheus.CounterVec
	dispatchRejects   *prometheus.CounterVec
	dispatchPublishes *prometheus.CounterVec
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	placementDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_placement_duration_seconds",
		Help:    "Duration of order placement attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_placements_total",
		Help: "Order placement attempts by result.",
	}, []string{"result"})
	dispatchAccepts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_accepts_total",
		Help: "Courier accept attempts by result.",
	}, []string{"result"})
	dispatchRejects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_rejects_total",
		Help: "Courier reject attempts by result.",
	}, []string{"result"})
	dispatchPublishes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_publishes_total",
		Help: "Dispatch publish attempts by result.",
	}, []string{"result"})
	reg.MustRegister(placementDuration, placements, dispatchAccepts, dispatchRejects, dispatchPublishes)
	return &FulfillmentMetrics{
		placementDuration: placementDuration,
		placements:        placements,
		dispatchAccepts:   dispatchAccepts,
		dispatchRejects:   dispatchRejects,
		dispatchPublishes: dispatchPublishes,
	}
}

// ObservePlacement records one placement attempt and its duration.
func (m *FulfillmentMetrics) ObservePlacement(result string, duration time.Duration) {
	if m == nil || m.placements == nil {
		return
	}
	label := normalizeLabel(result)
	m.placements.WithLabelValues(label).Inc()
	m.placementDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// IncDispatchAccept counts one accept attempt by result.
func (m *FulfillmentMetrics) IncDispatchAccept(result string) {
	if m == nil || m.dispatchAccepts == nil {
		return
	}
	m.dispatchAccepts.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncDispatchReject counts one reject attempt by result.
func (m *FulfillmentMetrics) IncDispatchReject(result string) {
	if m == nil || m.dispatchRejects == nil {
		return
	}
	m.dispatchRejects.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncDispatchPublish counts one publish attempt by result.
func (m *FulfillmentMetrics) IncDispatchPublish(result string) {
	if m == nil || m.dispatchPublishes == nil {
		return
	}
	m.dispatchPublishes.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
