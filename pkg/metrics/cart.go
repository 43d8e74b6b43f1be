package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeNoop    = "noop"
)

// CartMetrics records cart mutation outcomes.
type CartMetrics struct {
	duration   *prometheus.HistogramVec
	operations *prometheus.CounterVec
	items      prometheus.Gauge
}

// NewCartMetrics registers the cart metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_operation_duration_seconds",
		Help:    "Duration of cart operations in seconds, queueing and remote lookups included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operation_total",
		Help: "Cart operations by outcome and failure reason.",
	}, []string{"op", "outcome", "reason"})
	items := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_line_items",
		Help: "Number of line items currently in the cart.",
	})
	reg.MustRegister(duration, operations, items)
	return &CartMetrics{
		duration:   duration,
		operations: operations,
		items:      items,
	}
}

// Observe records the duration and outcome of one operation. reason is only
// meaningful for failures and may be empty.
func (c *CartMetrics) Observe(op, outcome, reason string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	op = normalizeLabel(op)
	c.duration.WithLabelValues(op).Observe(duration.Seconds())
	c.operations.WithLabelValues(op, normalizeLabel(outcome), reason).Inc()
}

// SetLineItems publishes the current cart size.
func (c *CartMetrics) SetLineItems(n int) {
	if c == nil || c.items == nil {
		return
	}
	c.items.Set(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
