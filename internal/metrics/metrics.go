package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sharemitra"

// Metrics is nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	submissions   *prometheus.CounterVec
	payouts       *prometheus.CounterVec
	oracleLatency *prometheus.HistogramVec
	providerCalls *prometheus.CounterVec
	reconciled    prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Task submissions by outcome.",
		}, []string{"outcome"}),
		payouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payouts_total",
			Help:      "Withdrawal requests by outcome.",
		}, []string{"outcome"}),
		oracleLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_request_seconds",
			Help:      "Latency of evidence oracle calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"check"}),
		providerCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payout_provider_calls_total",
			Help:      "Payout provider calls by operation and result.",
		}, []string{"op", "result"}),
		reconciled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payout_status_updates_total",
			Help:      "Payout status changes picked up by polling.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Payout(outcome string) {
	if m == nil {
		return
	}
	m.payouts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveOracle(check string, started time.Time) {
	if m == nil {
		return
	}
	m.oracleLatency.WithLabelValues(check).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ProviderCall(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.providerCalls.WithLabelValues(op, result).Inc()
}

func (m *Metrics) StatusUpdated() {
	if m == nil {
		return
	}
	m.reconciled.Inc()
}
