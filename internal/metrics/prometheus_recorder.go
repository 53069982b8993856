package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docagent"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	duration    *prom.HistogramVec
	settlements *prom.CounterVec
	rejected    *prom.CounterVec
	inFlight    prom.Gauge
	sessions    prom.Gauge
	retries     prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time from submission to settlement",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"provider"}),
		settlements: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settled generation requests by outcome and error category",
		}, []string{"outcome", "category"}),
		rejected: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_submissions_total",
			Help:      "Submissions rejected before reaching the provider",
		}, []string{"reason"}),
		inFlight: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "generations_in_flight",
			Help:      "Provider calls currently in flight",
		}),
		sessions: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Open sessions",
		}),
		retries: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "generation_retries_total",
			Help:      "Caller retries after a retryable settlement",
		}),
	}
	reg.MustRegister(pr.duration, pr.settlements, pr.rejected, pr.inFlight, pr.sessions, pr.retries)
	return pr
}

func (p *PrometheusRecorder) ObserveGenerationDuration(provider string, d time.Duration) {
	if p == nil {
		return
	}
	p.duration.WithLabelValues(provider).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSettlement(outcome OutcomeLabel, category string) {
	if p == nil {
		return
	}
	p.settlements.WithLabelValues(string(outcome), category).Inc()
}

func (p *PrometheusRecorder) IncRejected(reason string) {
	if p == nil {
		return
	}
	p.rejected.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) AddInFlight(delta int) {
	if p == nil {
		return
	}
	p.inFlight.Add(float64(delta))
}

func (p *PrometheusRecorder) SetActiveSessions(n int) {
	if p == nil {
		return
	}
	p.sessions.Set(float64(n))
}

func (p *PrometheusRecorder) IncRetry() {
	if p == nil {
		return
	}
	p.retries.Inc()
}
