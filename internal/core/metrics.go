package core

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/giantswarm/simenv/internal/lifecycle"
)

// Metrics holds Prometheus metrics for a Runner. All metrics use the
// simenv namespace.
type Metrics struct {
	VariantsTotal   *prometheus.CounterVec
	VariantDuration *prometheus.HistogramVec
	ExpansionErrors prometheus.Counter
	ActiveVariants  prometheus.Gauge
}

// NewMetrics creates runner metrics and registers them, together with cache
// counters read from services, on reg. Returns nil if reg is nil.
func NewMetrics(reg prometheus.Registerer, services *Services) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		VariantsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simenv",
			Subsystem: "variant",
			Name:      "total",
			Help:      "Total variants by final status.",
		}, []string{"status"}),

		VariantDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "simenv",
			Subsystem: "variant",
			Name:      "duration_seconds",
			Help:      "Variant duration in seconds, from Selecting to the terminal state.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"status"}),

		ExpansionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "simenv",
			Subsystem: "expansion",
			Name:      "errors_total",
			Help:      "Total methods whose variant expansion failed.",
		}),

		ActiveVariants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "simenv",
			Subsystem: "variant",
			Name:      "active",
			Help:      "Number of variants currently running.",
		}),
	}

	reg.MustRegister(
		m.VariantsTotal,
		m.VariantDuration,
		m.ExpansionErrors,
		m.ActiveVariants,
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "simenv",
			Subsystem: "manifest_cache",
			Name:      "hits_total",
			Help:      "Manifest resolutions served from the cache.",
		}, func() float64 { return float64(services.Manifests.Stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "simenv",
			Subsystem: "manifest_cache",
			Name:      "misses_total",
			Help:      "Manifest resolutions that built a descriptor.",
		}, func() float64 { return float64(services.Manifests.Stats().Misses) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "simenv",
			Subsystem: "environment_cache",
			Name:      "hits_total",
			Help:      "Environment requests served from the cache.",
		}, func() float64 { return float64(services.Environments.Stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "simenv",
			Subsystem: "environment_cache",
			Name:      "misses_total",
			Help:      "Environment requests that created an environment.",
		}, func() float64 { return float64(services.Environments.Stats().Misses) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "simenv",
			Subsystem: "environment_cache",
			Name:      "size",
			Help:      "Environments currently cached.",
		}, func() float64 { return float64(services.Environments.Stats().Size) }),
	)

	return m
}

func (m *Metrics) observe(r *lifecycle.Result) {
	if m == nil {
		return
	}
	status := r.Status.String()
	m.VariantsTotal.WithLabelValues(status).Inc()
	if r.Status != lifecycle.StatusIgnored {
		m.VariantDuration.WithLabelValues(status).Observe(r.Duration.Seconds())
	}
}

func (m *Metrics) expansionFailed() {
	if m != nil {
		m.ExpansionErrors.Inc()
	}
}

func (m *Metrics) variantStarted() {
	if m != nil {
		m.ActiveVariants.Inc()
	}
}

func (m *Metrics) variantFinished() {
	if m != nil {
		m.ActiveVariants.Dec()
	}
}
