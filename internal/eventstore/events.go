package eventstore

import (
	"encoding/json"
	"time"
)

// Event type names.
const (
	TypeGenerationRequested = "GenerationRequested"
	TypeStateChanged        = "StateChanged"
	TypeGenerationSettled   = "GenerationSettled"
)

// GenerationRequestedPayload is recorded when a request enters validation.
type GenerationRequestedPayload struct {
	Reference string   `json:"reference"`
	DocTypes  []string `json:"doc_types"`
}

// StateChangedPayload is recorded for every lifecycle transition.
type StateChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GenerationSettledPayload is recorded once per request.
type GenerationSettledPayload struct {
	Reference     string   `json:"reference"`
	DocTypes      []string `json:"doc_types,omitempty"`
	State         string   `json:"state"`
	Error         string   `json:"error,omitempty"`
	ErrorCategory string   `json:"error_category,omitempty"`
	DurationMS    int64    `json:"duration_ms"`
}

func newEvent(sessionID, requestID, eventType string, at time.Time, payload any) (*BaseEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, ErrPayload.WithCause(err).
			WithContext("request_id", requestID).
			WithContext("event_type", eventType)
	}
	return &BaseEvent{
		EventSessionID: sessionID,
		EventRequestID: requestID,
		EventType:      eventType,
		EventTimestamp: at,
		EventPayload:   data,
	}, nil
}

// NewGenerationRequested creates a GenerationRequested event.
func NewGenerationRequested(sessionID, requestID string, at time.Time, p GenerationRequestedPayload) (*BaseEvent, error) {
	return newEvent(sessionID, requestID, TypeGenerationRequested, at, p)
}

// NewStateChanged creates a StateChanged event.
func NewStateChanged(sessionID, requestID string, at time.Time, from, to string) (*BaseEvent, error) {
	return newEvent(sessionID, requestID, TypeStateChanged, at, StateChangedPayload{From: from, To: to})
}

// NewGenerationSettled creates a GenerationSettled event.
func NewGenerationSettled(sessionID, requestID string, at time.Time, p GenerationSettledPayload) (*BaseEvent, error) {
	return newEvent(sessionID, requestID, TypeGenerationSettled, at, p)
}
