// Package eventstore journals generation requests in SQLite and projects
// them into a request history.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

const (
	statusRunning   = "running"
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// RequestSummary is the read model of one generation request.
type RequestSummary struct {
	RequestID     string        `json:"request_id"`
	SessionID     string        `json:"session_id"`
	Reference     string        `json:"reference"`
	DocTypes      []string      `json:"doc_types,omitempty"`
	Status        string        `json:"status"`
	StartedAt     time.Time     `json:"started_at"`
	SettledAt     *time.Time    `json:"settled_at,omitempty"`
	Duration      time.Duration `json:"duration,omitempty"`
	Error         string        `json:"error,omitempty"`
	ErrorCategory string        `json:"error_category,omitempty"`
}

// HistoryProjection keeps a bounded, newest-first history of requests per
// session, rebuilt from the journal and updated as events are appended.
type HistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	requests map[string]*RequestSummary
	history  map[string][]*RequestSummary // by session
	maxSize  int
}

// NewHistoryProjection creates a projection over store.
func NewHistoryProjection(store Store, maxHistorySize int) *HistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &HistoryProjection{
		store:    store,
		requests: make(map[string]*RequestSummary),
		history:  make(map[string][]*RequestSummary),
		maxSize:  maxHistorySize,
	}
}

// Rebuild replays every stored event.
func (p *HistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = make(map[string]*RequestSummary)
	p.history = make(map[string][]*RequestSummary)
	for _, event := range events {
		p.applyEventLocked(event)
	}
	for _, list := range p.history {
		sortNewestFirst(list)
	}
	return nil
}

// Apply processes a single event.
func (p *HistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

func (p *HistoryProjection) applyEventLocked(event Event) {
	id := event.RequestID()
	if id == "" {
		return
	}

	summary, exists := p.requests[id]
	if !exists {
		summary = &RequestSummary{
			RequestID: id,
			SessionID: event.SessionID(),
			Status:    statusRunning,
			StartedAt: event.Timestamp(),
		}
		p.requests[id] = summary
	}

	switch event.Type() {
	case TypeGenerationRequested:
		var payload GenerationRequestedPayload
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Reference = payload.Reference
			summary.DocTypes = payload.DocTypes
		}
		summary.StartedAt = event.Timestamp()

	case TypeGenerationSettled:
		var payload GenerationSettledPayload
		if err := json.Unmarshal(event.Payload(), &payload); err != nil {
			return
		}
		at := event.Timestamp()
		summary.SettledAt = &at
		summary.Duration = time.Duration(payload.DurationMS) * time.Millisecond
		summary.Status = statusFailed
		if payload.State == statusSucceeded {
			summary.Status = statusSucceeded
		}
		summary.Error = payload.Error
		summary.ErrorCategory = payload.ErrorCategory
		if summary.Reference == "" {
			summary.Reference = payload.Reference
		}
		if len(summary.DocTypes) == 0 {
			summary.DocTypes = payload.DocTypes
		}
		p.addToHistoryLocked(summary)
	}
}

func (p *HistoryProjection) addToHistoryLocked(summary *RequestSummary) {
	list := p.history[summary.SessionID]
	for _, h := range list {
		if h.RequestID == summary.RequestID {
			return
		}
	}
	list = append([]*RequestSummary{summary}, list...)
	if len(list) <= p.maxSize {
		p.history[summary.SessionID] = list
		return
	}

	// Drop the settled requests that fell out of this session's history.
	for _, h := range list[p.maxSize:] {
		delete(p.requests, h.RequestID)
	}
	p.history[summary.SessionID] = list[:p.maxSize:p.maxSize]
}

// History returns the settled requests of one session, newest first. An empty
// sessionID returns every session's history merged.
func (p *HistoryProjection) History(sessionID string) []RequestSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var list []*RequestSummary
	if sessionID != "" {
		list = p.history[sessionID]
	} else {
		for _, l := range p.history {
			list = append(list, l...)
		}
		sortNewestFirst(list)
	}

	out := make([]RequestSummary, 0, len(list))
	for _, h := range list {
		out = append(out, *h)
	}
	return out
}

func sortNewestFirst(list []*RequestSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].StartedAt.After(list[j].StartedAt)
	})
}

// Get returns the summary of one request.
func (p *HistoryProjection) Get(requestID string) (RequestSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.requests[requestID]
	if !ok {
		return RequestSummary{}, false
	}
	return *s, true
}
