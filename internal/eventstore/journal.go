package eventstore

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/lifecycle"
	"git.home.luguber.info/inful/docagent/internal/logfields"
)

const appendTimeout = 5 * time.Second

// Journal records one session's lifecycle events in a Store and keeps an
// optional projection current. Write failures are logged, never returned.
type Journal struct {
	store      Store
	projection *HistoryProjection
	sessionID  string
	now        func() time.Time
}

// NewJournal creates a journal for sessionID. projection may be nil.
func NewJournal(store Store, projection *HistoryProjection, sessionID string) *Journal {
	return &Journal{store: store, projection: projection, sessionID: sessionID, now: time.Now}
}

func (j *Journal) OnTransition(req lifecycle.Request, from, to lifecycle.State) {
	if from == lifecycle.Idle && to == lifecycle.Validating {
		e, err := NewGenerationRequested(j.sessionID, req.ID, req.SubmittedAt, GenerationRequestedPayload{
			Reference: req.RawReference,
			DocTypes:  req.TypeIDs,
		})
		j.record(e, err)
	}
	e, err := NewStateChanged(j.sessionID, req.ID, j.now(), from.String(), to.String())
	j.record(e, err)
}

func (j *Journal) OnSettled(s lifecycle.Settlement) {
	payload := GenerationSettledPayload{
		Reference:  s.Request.RawReference,
		DocTypes:   s.Request.TypeIDs,
		State:      s.State.String(),
		DurationMS: s.Duration.Milliseconds(),
	}
	if s.Err != nil {
		payload.Error = s.Err.Error()
		payload.ErrorCategory = string(errors.GetCategory(s.Err))
	}
	at := s.SettledAt
	if at.IsZero() {
		at = j.now()
	}
	e, err := NewGenerationSettled(j.sessionID, s.Request.ID, at, payload)
	j.record(e, err)
}

func (j *Journal) record(e *BaseEvent, err error) {
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		err = j.store.Append(ctx, e)
		cancel()
	}
	if err != nil {
		slog.Warn("Failed to journal lifecycle event",
			logfields.SessionID(j.sessionID),
			logfields.Error(err))
		return
	}
	if j.projection != nil {
		j.projection.Apply(e)
	}
}
