// Package session owns the per-user workflow state: selection, results and
// the generation lifecycle, created at Init and released at Teardown.
package session

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/forge"
	"git.home.luguber.info/inful/docagent/internal/generator"
	"git.home.luguber.info/inful/docagent/internal/lifecycle"
	"git.home.luguber.info/inful/docagent/internal/logfields"
	"git.home.luguber.info/inful/docagent/internal/metrics"
	"git.home.luguber.info/inful/docagent/internal/reference"
	"git.home.luguber.info/inful/docagent/internal/results"
	"git.home.luguber.info/inful/docagent/internal/selection"
	"git.home.luguber.info/inful/docagent/internal/view"
)

const metadataTimeout = 10 * time.Second

// ObserverFactory builds a lifecycle observer bound to one session.
type ObserverFactory func(sessionID string) lifecycle.Observer

// Dependencies are the shared collaborators every session is wired with.
type Dependencies struct {
	Catalog   *catalog.Catalog
	Generator generator.Generator
	Metadata  forge.Provider
	Recorder  metrics.Recorder
	Timeout   time.Duration
	Observers []ObserverFactory
}

// Session is one user's workflow. It is safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	catalog   *catalog.Catalog
	selection *selection.Model
	store     *results.Store
	lifecycle *lifecycle.Lifecycle
	view      *view.Adapter
	metadata  forge.Provider
	recorder  metrics.Recorder
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.RWMutex
	lastActive time.Time
	repository *forge.RepositoryInfo
	repoRef    string
}

// Init creates a session with a fresh selection, an empty store and an idle lifecycle.
func Init(id string, deps Dependencies) *Session {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	metadata := deps.Metadata
	if metadata == nil {
		metadata = forge.NoneProvider{}
	}

	store := results.New(deps.Catalog)
	sel := selection.New(deps.Catalog)
	lc := lifecycle.New(deps.Catalog, deps.Generator, store)
	lc.SetTimeout(deps.Timeout)
	lc.AddObserver(metrics.NewObserver(recorder, deps.Generator.Name()))
	for _, factory := range deps.Observers {
		if o := factory(id); o != nil {
			lc.AddObserver(o)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	s := &Session{
		ID:         id,
		CreatedAt:  now,
		catalog:    deps.Catalog,
		selection:  sel,
		store:      store,
		lifecycle:  lc,
		metadata:   metadata,
		recorder:   recorder,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		lastActive: now,
	}
	s.view = view.NewAdapter(deps.Catalog, sel, store, lc).WithRepository(s.Repository)
	return s
}

// Touch marks the session as active now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

// LastActive returns when the session was last touched.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Select changes the active document type.
func (s *Session) Select(typeID string) error {
	return s.selection.Select(typeID)
}

// View returns the presentation snapshot.
func (s *Session) View() view.View {
	return s.view.GetView()
}

// Preview renders the stored document for typeID.
func (s *Session) Preview(typeID string) (*view.Preview, error) {
	return s.view.Preview(typeID)
}

// Document returns the stored result for typeID.
func (s *Session) Document(typeID string) (results.GeneratedDocument, bool) {
	return s.store.Get(typeID)
}

// Documents returns every stored result in catalog order.
func (s *Session) Documents() []results.GeneratedDocument {
	return s.store.Snapshot()
}

// State returns the lifecycle state.
func (s *Session) State() lifecycle.State {
	return s.lifecycle.State()
}

// TakeFailure returns and clears the reason of the last failed request.
func (s *Session) TakeFailure() error {
	return s.lifecycle.TakeFailure()
}

// SetTimeout changes the provider timeout for later submissions.
func (s *Session) SetTimeout(d time.Duration) {
	s.lifecycle.SetTimeout(d)
}

// Repository returns metadata for the most recently submitted repository, if fetched.
func (s *Session) Repository() *forge.RepositoryInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repository
}

// Start submits a generation request and returns without waiting for it.
// Repository metadata is fetched alongside; its failure only logs.
func (s *Session) Start(ctx context.Context, raw string, typeIDs []string) (lifecycle.Request, <-chan lifecycle.Settlement, error) {
	s.Touch()
	req, ch, err := s.lifecycle.Start(ctx, raw, typeIDs)
	if err != nil {
		s.recordRejection(err)
		return req, nil, err
	}
	s.fetchMetadata(req.Reference)
	return req, ch, nil
}

// Submit submits a generation request and waits for its settlement.
func (s *Session) Submit(ctx context.Context, raw string, typeIDs []string) (lifecycle.Settlement, error) {
	_, ch, err := s.Start(ctx, raw, typeIDs)
	if err != nil {
		return lifecycle.Settlement{}, err
	}
	select {
	case st := <-ch:
		return st, st.Err
	case <-ctx.Done():
		s.lifecycle.Cancel()
		st := <-ch
		return st, st.Err
	}
}

// Wait blocks until pending metadata fetches have finished or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Teardown cancels any in-flight request and metadata fetch and waits for
// them to settle. The session refuses work afterwards.
func (s *Session) Teardown(ctx context.Context) error {
	s.cancel()
	err := s.lifecycle.Close(ctx)
	if werr := s.Wait(ctx); err == nil {
		err = werr
	}
	slog.Debug("Session torn down", logfields.SessionID(s.ID))
	return err
}

func (s *Session) recordRejection(err error) {
	switch {
	case stderrors.Is(err, lifecycle.ErrAlreadyInProgress):
		s.recorder.IncRejected("in_progress")
	case stderrors.Is(err, lifecycle.ErrInvalidReference):
		s.recorder.IncRejected("invalid_reference")
	case stderrors.Is(err, catalog.ErrNotFound):
		s.recorder.IncRejected("unknown_type")
	}
}

func (s *Session) fetchMetadata(ref reference.Reference) {
	// The previous metadata stays visible until the new lookup succeeds.
	s.mu.Lock()
	s.repoRef = ref.String()
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, metadataTimeout)
		defer cancel()

		info, err := s.metadata.FetchRepositoryInfo(ctx, ref)
		if err != nil {
			slog.Warn("Repository metadata unavailable",
				logfields.SessionID(s.ID),
				logfields.Reference(ref.String()),
				logfields.Forge(string(s.metadata.Kind())),
				logfields.Error(err))
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		// A newer submission may have replaced the reference meanwhile.
		if s.repoRef == ref.String() {
			s.repository = info
		}
	}()
}
