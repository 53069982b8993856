// Package lifecycle drives one generation request at a time through
// Idle -> Validating -> InFlight -> Succeeded|Failed -> Idle.
//
// The InFlight guard is the only concurrency control: a submission made while
// a request is unsettled is rejected with ErrAlreadyInProgress, never queued.
// Results reach the store only through a single atomic PutAll on success.
package lifecycle

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/generator"
	"git.home.luguber.info/inful/docagent/internal/logfields"
	"git.home.luguber.info/inful/docagent/internal/reference"
	"git.home.luguber.info/inful/docagent/internal/results"
)

// DefaultTimeout bounds a provider call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Lifecycle owns the generation state of one session.
type Lifecycle struct {
	catalog   *catalog.Catalog
	generator generator.Generator
	store     *results.Store
	now       func() time.Time

	base       context.Context
	baseCancel context.CancelFunc

	// notifyMu serializes transitions with their observer callbacks so
	// observers see events in the order they happened.
	notifyMu  sync.Mutex
	observers []Observer

	mu      sync.Mutex
	timeout time.Duration
	state   State
	pending *Request
	failure error
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates an idle lifecycle writing successful results to store.
func New(cat *catalog.Catalog, gen generator.Generator, store *results.Store) *Lifecycle {
	if gen == nil {
		panic("lifecycle.New: generator is required")
	}
	base, cancel := context.WithCancel(context.Background())
	return &Lifecycle{
		catalog:    cat,
		generator:  gen,
		store:      store,
		now:        time.Now,
		base:       base,
		baseCancel: cancel,
		timeout:    DefaultTimeout,
	}
}

// AddObserver registers o for all subsequent events.
func (l *Lifecycle) AddObserver(o Observer) {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()
	l.observers = append(l.observers, o)
}

// SetTimeout changes the provider timeout for subsequent submissions.
// Non-positive values restore DefaultTimeout.
func (l *Lifecycle) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	l.mu.Lock()
	l.timeout = d
	l.mu.Unlock()
}

// Timeout returns the current provider timeout.
func (l *Lifecycle) Timeout() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.timeout
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Pending returns a copy of the unsettled request, or nil when Idle.
func (l *Lifecycle) Pending() *Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil {
		return nil
	}
	req := *l.pending
	req.TypeIDs = append([]string(nil), l.pending.TypeIDs...)
	return &req
}

// TakeFailure returns the reason of the last failed settlement and clears it.
// A second call returns nil until another request fails.
func (l *Lifecycle) TakeFailure() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.failure
	l.failure = nil
	return err
}

// Start validates raw and, if the lifecycle is Idle, launches the provider call
// for typeIDs (all catalog types when empty). The returned channel receives
// exactly one Settlement. Synchronous rejections return a nil channel:
// ErrInvalidReference (also recorded as a failed settlement),
// ErrAlreadyInProgress and catalog.ErrNotFound.
func (l *Lifecycle) Start(ctx context.Context, raw string, typeIDs []string) (Request, <-chan Settlement, error) {
	req, ch, _, err := l.start(ctx, raw, typeIDs)
	return req, ch, err
}

// Submit runs Start and waits for the settlement. If ctx ends first the
// request is canceled and its settlement returned. The error is the
// settlement's failure reason or the synchronous rejection.
func (l *Lifecycle) Submit(ctx context.Context, raw string, typeIDs []string) (Settlement, error) {
	_, ch, rejected, err := l.start(ctx, raw, typeIDs)
	if err != nil {
		if rejected != nil {
			return *rejected, err
		}
		return Settlement{}, err
	}

	select {
	case s := <-ch:
		return s, s.Err
	case <-ctx.Done():
		l.Cancel()
		s := <-ch
		return s, s.Err
	}
}

// Cancel aborts the in-flight provider call, if any. The request settles as
// Failed(ErrCanceled).
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close cancels any in-flight call, waits for it to settle and refuses
// further work. It is safe to call more than once.
func (l *Lifecycle) Close(ctx context.Context) error {
	l.baseCancel()

	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Lifecycle) start(ctx context.Context, raw string, typeIDs []string) (Request, <-chan Settlement, *Settlement, error) {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	if l.state != Idle {
		pending := l.pending.ID
		l.mu.Unlock()
		slog.Debug("Rejected submission while in flight", logfields.RequestID(pending))
		return Request{}, nil, nil, ErrAlreadyInProgress.WithContext("pending_request", pending)
	}
	if l.base.Err() != nil {
		l.mu.Unlock()
		return Request{}, nil, nil, ErrCanceled.WithContext("reason", "lifecycle closed")
	}

	req := Request{
		ID:           uuid.NewString(),
		RawReference: raw,
		SubmittedAt:  l.now().UTC(),
	}

	if reference.IsBlank(raw) {
		err := ErrInvalidReference.WithContext("reason", "empty")
		l.failure = err
		l.mu.Unlock()
		s := l.settlement(req, Failed, err)
		l.emitSettled(s)
		return req, nil, &s, err
	}

	ids, err := l.catalog.Normalize(typeIDs)
	if err != nil {
		l.mu.Unlock()
		return Request{}, nil, nil, err
	}
	req.TypeIDs = ids

	l.failure = nil
	l.state = Validating
	l.pending = &req
	l.mu.Unlock()
	l.emitTransition(req, Idle, Validating)

	ref, err := reference.Parse(raw)
	if err != nil {
		l.finish(req, err)
		s := l.settlement(req, Failed, err)
		l.emitSettled(s)
		return req, nil, &s, err
	}
	req.Reference = ref

	l.mu.Lock()
	runCtx, cancel := context.WithTimeout(l.base, l.timeout)
	timeout := l.timeout
	done := make(chan struct{})
	l.state = InFlight
	l.pending = &req
	l.cancel = cancel
	l.done = done
	l.mu.Unlock()
	l.emitTransition(req, Validating, InFlight)

	slog.InfoContext(ctx, "Generation started",
		logfields.RequestID(req.ID),
		logfields.Reference(ref.String()),
		logfields.DocTypes(ids),
		logfields.Provider(l.generator.Name()))

	ch := make(chan Settlement, 1)
	go l.run(runCtx, cancel, timeout, req, ch, done)
	return req, ch, nil, nil
}

type outcome struct {
	docs map[string]string
	err  error
}

func (l *Lifecycle) run(ctx context.Context, cancel context.CancelFunc, timeout time.Duration, req Request, ch chan<- Settlement, done chan struct{}) {
	defer close(done)
	defer cancel()

	// The provider runs on its own goroutine so a provider ignoring ctx
	// cannot hold the lifecycle past its deadline.
	outcomes := make(chan outcome, 1)
	go func() {
		docs, err := l.generator.Generate(ctx, req.Reference, req.TypeIDs)
		outcomes <- outcome{docs: docs, err: err}
	}()

	var out outcome
	select {
	case out = <-outcomes:
	case <-ctx.Done():
		out.err = ctx.Err()
	}

	err := l.classify(out.err, timeout)
	if err == nil {
		var docs map[string]string
		docs, err = generator.Complete(req.TypeIDs, out.docs)
		if err == nil {
			err = l.store.PutAll(docs, req.Reference)
		}
	}

	l.notifyMu.Lock()
	state := l.finish(req, err)
	s := l.settlement(req, state, err)
	l.emitSettled(s)
	l.notifyMu.Unlock()

	if err != nil {
		attrs := []any{logfields.RequestID(req.ID), logfields.Duration(s.Duration), logfields.Error(err)}
		if category := errors.GetCategory(err); category != "" {
			attrs = append(attrs, logfields.ErrorCategory(string(category)))
		}
		slog.Warn("Generation failed", attrs...)
	} else {
		slog.Info("Generation succeeded", logfields.RequestID(req.ID), logfields.Duration(s.Duration))
	}

	ch <- s
	close(ch)
}

// finish moves the pending request through its terminal state back to Idle.
// Callers hold notifyMu.
func (l *Lifecycle) finish(req Request, err error) State {
	to := Succeeded
	l.mu.Lock()
	from := l.state
	if err != nil {
		to = Failed
		l.failure = err
	}
	l.state = to
	l.mu.Unlock()
	l.emitTransition(req, from, to)

	l.mu.Lock()
	l.state = Idle
	l.pending = nil
	l.cancel = nil
	l.mu.Unlock()
	l.emitTransition(req, to, Idle)
	return to
}

func (l *Lifecycle) classify(err error, timeout time.Duration) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.DeadlineExceeded):
		return ErrTimeout.WithCause(err).WithContext("timeout", timeout.String())
	case stderrors.Is(err, context.Canceled):
		return ErrCanceled.WithCause(err)
	case stderrors.Is(err, generator.ErrProvider):
		return err
	default:
		return generator.ErrProvider.WithCause(err).WithContext("code", generator.CodeUpstream)
	}
}

func (l *Lifecycle) settlement(req Request, state State, err error) Settlement {
	at := l.now().UTC()
	return Settlement{
		Request:   req,
		State:     state,
		Err:       err,
		SettledAt: at,
		Duration:  at.Sub(req.SubmittedAt),
	}
}

func (l *Lifecycle) emitTransition(req Request, from, to State) {
	slog.Debug("Lifecycle transition",
		logfields.RequestID(req.ID),
		logfields.Lifecycle(from.String()),
		logfields.TransitionTo(to.String()))
	for _, o := range l.observers {
		o.OnTransition(req, from, to)
	}
}

func (l *Lifecycle) emitSettled(s Settlement) {
	for _, o := range l.observers {
		o.OnSettled(s)
	}
}
