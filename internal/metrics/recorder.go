package metrics

import "time"

// OutcomeLabel enumerates settlement outcomes for counters.
type OutcomeLabel string

const (
	OutcomeSucceeded OutcomeLabel = "succeeded"
	OutcomeFailed    OutcomeLabel = "failed"
	OutcomeCanceled  OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for generation requests.
type Recorder interface {
	ObserveGenerationDuration(provider string, d time.Duration)
	IncSettlement(outcome OutcomeLabel, category string)
	IncRejected(reason string)
	AddInFlight(delta int)
	SetActiveSessions(n int)
	IncRetry()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveGenerationDuration(string, time.Duration) {}
func (NoopRecorder) IncSettlement(OutcomeLabel, string)             {}
func (NoopRecorder) IncRejected(string)                             {}
func (NoopRecorder) AddInFlight(int)                                {}
func (NoopRecorder) SetActiveSessions(int)                          {}
func (NoopRecorder) IncRetry()                                      {}
