package lifecycle

import (
	"time"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

// State is the position of the lifecycle in its state machine.
type State int

const (
	Idle State = iota
	Validating
	InFlight
	Succeeded
	Failed
)

var stateNames = [...]string{"idle", "validating", "in_flight", "succeeded", "failed"}

func (s State) String() string {
	if s < Idle || s > Failed {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText renders the state name in JSON and logs.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	// ErrInvalidReference is returned for empty or malformed repository references.
	ErrInvalidReference = reference.ErrInvalid

	// ErrAlreadyInProgress rejects a submission while another request is not yet settled.
	ErrAlreadyInProgress = errors.ConflictError("generation already in progress").Build()

	// ErrTimeout settles a request whose provider call exceeded the configured timeout.
	ErrTimeout = errors.TimeoutError("generation timed out").Build()

	// ErrCanceled settles a request canceled by its caller or by session teardown.
	ErrCanceled = errors.RuntimeError("generation canceled").Build()
)

// Request is one pass through the lifecycle. Reference is zero until validation succeeds.
type Request struct {
	ID           string              `json:"id"`
	RawReference string              `json:"reference"`
	Reference    reference.Reference `json:"-"`
	TypeIDs      []string            `json:"doc_types"`
	SubmittedAt  time.Time           `json:"submitted_at"`
}

// Settlement is the outcome of a request. State is Succeeded or Failed.
type Settlement struct {
	Request   Request       `json:"request"`
	State     State         `json:"state"`
	Err       error         `json:"-"`
	SettledAt time.Time     `json:"settled_at"`
	Duration  time.Duration `json:"duration"`
}

// Succeeded reports whether the settlement committed results.
func (s Settlement) Succeeded() bool { return s.State == Succeeded }

// Observer receives lifecycle events in order. Observers run synchronously on
// the goroutine driving the transition and must not call Start or Submit.
type Observer interface {
	OnTransition(req Request, from, to State)
	OnSettled(s Settlement)
}
