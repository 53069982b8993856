// Package notify publishes generation settlements to a message bus.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/generator"
	"git.home.luguber.info/inful/docagent/internal/lifecycle"
	"git.home.luguber.info/inful/docagent/internal/logfields"
)

const (
	queueSize      = 64
	publishTimeout = 5 * time.Second
)

// Publisher delivers one message.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// SettlementEvent is the message body published for every settlement.
type SettlementEvent struct {
	SessionID     string    `json:"session_id"`
	RequestID     string    `json:"request_id"`
	Reference     string    `json:"reference"`
	DocTypes      []string  `json:"doc_types,omitempty"`
	State         string    `json:"state"`
	Error         string    `json:"error,omitempty"`
	ErrorCategory string    `json:"error_category,omitempty"`
	ProviderCode  string    `json:"provider_code,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	SettledAt     time.Time `json:"settled_at"`
}

type message struct {
	subject string
	data    []byte
}

// Notifier publishes settlements from any number of sessions through one
// background worker, preserving their order. A full queue drops messages.
type Notifier struct {
	publisher Publisher
	subject   string

	mu     sync.Mutex
	closed bool
	queue  chan message
	done   chan struct{}
}

// New starts a notifier publishing below subject, e.g. subject.succeeded.
func New(p Publisher, subject string) *Notifier {
	n := &Notifier{
		publisher: p,
		subject:   subject,
		queue:     make(chan message, queueSize),
		done:      make(chan struct{}),
	}
	go n.loop()
	return n
}

// ForSession returns a lifecycle observer tagging events with sessionID.
func (n *Notifier) ForSession(sessionID string) lifecycle.Observer {
	return &sessionObserver{notifier: n, sessionID: sessionID}
}

// Close stops accepting messages and waits for queued ones to be published.
func (n *Notifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	<-n.done
}

func (n *Notifier) enqueue(ev SettlementEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("Failed to encode settlement notification", logfields.RequestID(ev.RequestID), logfields.Error(err))
		return
	}
	msg := message{subject: n.subject + "." + ev.State, data: data}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		slog.Debug("Notifier closed, dropping settlement", logfields.RequestID(ev.RequestID))
		return
	}
	select {
	case n.queue <- msg:
	default:
		slog.Warn("Notification queue full, dropping settlement", logfields.RequestID(ev.RequestID))
	}
}

func (n *Notifier) loop() {
	defer close(n.done)
	for msg := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := n.publisher.Publish(ctx, msg.subject, msg.data)
		cancel()
		if err != nil {
			slog.Warn("Failed to publish settlement", "subject", msg.subject, logfields.Error(err))
		}
	}
}

type sessionObserver struct {
	notifier  *Notifier
	sessionID string
}

func (o *sessionObserver) OnTransition(lifecycle.Request, lifecycle.State, lifecycle.State) {}

func (o *sessionObserver) OnSettled(s lifecycle.Settlement) {
	ev := SettlementEvent{
		SessionID:  o.sessionID,
		RequestID:  s.Request.ID,
		Reference:  s.Request.RawReference,
		DocTypes:   s.Request.TypeIDs,
		State:      s.State.String(),
		DurationMS: s.Duration.Milliseconds(),
		SettledAt:  s.SettledAt,
	}
	if s.Err != nil {
		ev.Error = s.Err.Error()
		ev.ErrorCategory = string(errors.GetCategory(s.Err))
		if f, ok := generator.FailureOf(s.Err); ok {
			ev.ProviderCode = f.Code
		}
	}
	o.notifier.enqueue(ev)
}
