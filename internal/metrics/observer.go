package metrics

import (
	stderrors "errors"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/lifecycle"
)

// Observer forwards lifecycle events of one session to a Recorder.
type Observer struct {
	recorder Recorder
	provider string
}

// NewObserver creates an observer labeling durations with provider.
func NewObserver(r Recorder, provider string) *Observer {
	if r == nil {
		r = NoopRecorder{}
	}
	return &Observer{recorder: r, provider: provider}
}

func (o *Observer) OnTransition(_ lifecycle.Request, from, to lifecycle.State) {
	switch {
	case to == lifecycle.InFlight:
		o.recorder.AddInFlight(1)
	case from == lifecycle.InFlight:
		o.recorder.AddInFlight(-1)
	}
}

func (o *Observer) OnSettled(s lifecycle.Settlement) {
	if s.Succeeded() {
		o.recorder.IncSettlement(OutcomeSucceeded, "")
		o.recorder.ObserveGenerationDuration(o.provider, s.Duration)
		return
	}

	outcome := OutcomeFailed
	if stderrors.Is(s.Err, lifecycle.ErrCanceled) {
		outcome = OutcomeCanceled
	}
	o.recorder.IncSettlement(outcome, string(errors.GetCategory(s.Err)))
	if !s.Request.Reference.IsZero() {
		o.recorder.ObserveGenerationDuration(o.provider, s.Duration)
	}
}
