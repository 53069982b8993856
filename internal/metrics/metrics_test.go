package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docagent/internal/generator"
	"git.home.luguber.info/inful/docagent/internal/lifecycle"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

// value returns the current value of the series name{labels}, or -1 when absent.
func value(t *testing.T, reg *prom.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if !labelsMatch(m, labels) {
				continue
			}
			switch {
			case m.Counter != nil:
				return m.GetCounter().GetValue()
			case m.Gauge != nil:
				return m.GetGauge().GetValue()
			case m.Histogram != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return -1
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	if len(m.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

func settled(t *testing.T, err error) lifecycle.Settlement {
	t.Helper()
	ref, perr := reference.Parse("https://example.com/org/repo")
	require.NoError(t, perr)
	s := lifecycle.Settlement{
		Request:  lifecycle.Request{ID: "r1", Reference: ref},
		State:    lifecycle.Succeeded,
		Err:      err,
		Duration: 1500 * time.Millisecond,
	}
	if err != nil {
		s.State = lifecycle.Failed
	}
	return s
}

func TestObserverRecordsSettlements(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	o := NewObserver(pr, "sample")

	req := lifecycle.Request{ID: "r1"}
	o.OnTransition(req, lifecycle.Idle, lifecycle.Validating)
	o.OnTransition(req, lifecycle.Validating, lifecycle.InFlight)
	assert.InDelta(t, 1, value(t, reg, "docagent_generations_in_flight", nil), 0)
	o.OnTransition(req, lifecycle.InFlight, lifecycle.Succeeded)
	assert.InDelta(t, 0, value(t, reg, "docagent_generations_in_flight", nil), 0)

	o.OnSettled(settled(t, nil))
	o.OnSettled(settled(t, lifecycle.ErrTimeout))
	o.OnSettled(settled(t, lifecycle.ErrCanceled.WithContext("reason", "teardown")))
	o.OnSettled(settled(t, generator.NewProviderError("x", "y")))

	const settlements = "docagent_settlements_total"
	assert.InDelta(t, 1, value(t, reg, settlements, map[string]string{"outcome": "succeeded", "category": ""}), 0)
	assert.InDelta(t, 1, value(t, reg, settlements, map[string]string{"outcome": "failed", "category": "timeout"}), 0)
	assert.InDelta(t, 1, value(t, reg, settlements, map[string]string{"outcome": "canceled", "category": "runtime"}), 0)
	assert.InDelta(t, 1, value(t, reg, settlements, map[string]string{"outcome": "failed", "category": "provider"}), 0)
	assert.InDelta(t, 4, value(t, reg, "docagent_generation_duration_seconds", map[string]string{"provider": "sample"}), 0)
}

func TestObserverSkipsDurationForUnvalidatedRequests(t *testing.T) {
	reg := prom.NewRegistry()
	o := NewObserver(NewPrometheusRecorder(reg), "sample")

	o.OnSettled(lifecycle.Settlement{State: lifecycle.Failed, Err: lifecycle.ErrInvalidReference})
	assert.InDelta(t, 1, value(t, reg, "docagent_settlements_total", map[string]string{"outcome": "failed", "category": "validation"}), 0)
	assert.InDelta(t, -1, value(t, reg, "docagent_generation_duration_seconds", map[string]string{"provider": "sample"}), 0)
}

func TestRecorderCounters(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRejected("in_progress")
	pr.IncRetry()
	pr.SetActiveSessions(3)

	assert.InDelta(t, 1, value(t, reg, "docagent_rejected_submissions_total", map[string]string{"reason": "in_progress"}), 0)
	assert.InDelta(t, 1, value(t, reg, "docagent_generation_retries_total", nil), 0)
	assert.InDelta(t, 3, value(t, reg, "docagent_active_sessions", nil), 0)

	var nilRecorder *PrometheusRecorder
	assert.NotPanics(t, func() { nilRecorder.IncRetry() })
}

func TestNoopObserver(t *testing.T) {
	o := NewObserver(nil, "sample")
	assert.NotPanics(t, func() {
		o.OnTransition(lifecycle.Request{}, lifecycle.Validating, lifecycle.InFlight)
		o.OnSettled(settled(t, nil))
	})
}

func TestHTTPHandlerServesMetrics(t *testing.T) {
	reg := NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRetry()

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "docagent_generation_retries_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
