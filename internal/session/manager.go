package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/lifecycle"
	"git.home.luguber.info/inful/docagent/internal/logfields"
	"git.home.luguber.info/inful/docagent/internal/metrics"
)

// ErrNotFound is returned for unknown or already released session IDs.
var ErrNotFound = errors.NotFoundError("session not found").Build()

// Manager owns the live sessions of a server process.
type Manager struct {
	deps    Dependencies
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	sessions  map[string]*Session
	scheduler gocron.Scheduler
}

// NewManager creates a manager. Sessions idle longer than idleTTL are
// released by the reaper; a zero TTL disables reaping.
func NewManager(deps Dependencies, idleTTL time.Duration) *Manager {
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}
	return &Manager{
		deps:     deps,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with a random ID.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	s := Init(uuid.NewString(), m.deps)
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.deps.Recorder.SetActiveSessions(n)
	slog.Info("Session created", logfields.SessionID(s.ID))
	return s
}

// Get returns the session with id and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound.WithContext("session_id", id)
	}
	s.Touch()
	return s, nil
}

// Delete tears down and forgets the session with id.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound.WithContext("session_id", id)
	}

	m.deps.Recorder.SetActiveSessions(n)
	slog.Info("Session deleted", logfields.SessionID(id))
	return s.Teardown(ctx)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the live session IDs, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// SetTimeout changes the provider timeout of every live session and of
// sessions created later.
func (m *Manager) SetTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deps.Timeout = d
	for _, s := range m.sessions {
		s.SetTimeout(d)
	}
}

// ReapIdle releases sessions that are Idle and have not been touched within
// the TTL. It returns the number of sessions released.
func (m *Manager) ReapIdle(ctx context.Context) int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.State() != lifecycle.Idle || s.LastActive().After(cutoff) {
			continue
		}
		stale = append(stale, s)
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if len(stale) == 0 {
		return 0
	}
	m.deps.Recorder.SetActiveSessions(n)
	for _, s := range stale {
		if err := s.Teardown(ctx); err != nil {
			slog.Warn("Session teardown failed", logfields.SessionID(s.ID), logfields.Error(err))
		}
	}
	slog.Info("Reaped idle sessions", slog.Int("count", len(stale)))
	return len(stale)
}

// StartReaper schedules ReapIdle every interval.
func (m *Manager) StartReaper(interval time.Duration) error {
	if m.idleTTL <= 0 || interval <= 0 {
		return nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { m.ReapIdle(context.Background()) }),
		gocron.WithName("session-reaper"),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to create session reaper job: %w", err)
	}

	m.mu.Lock()
	m.scheduler = s
	m.mu.Unlock()

	slog.Info("Starting session reaper", logfields.Duration(interval), slog.Duration("idle_ttl", m.idleTTL))
	s.Start()
	return nil
}

// Close stops the reaper and tears down every session.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	scheduler := m.scheduler
	m.scheduler = nil
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var firstErr error
	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			firstErr = err
		}
	}
	for _, s := range all {
		if err := s.Teardown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.deps.Recorder.SetActiveSessions(0)
	return firstErr
}
