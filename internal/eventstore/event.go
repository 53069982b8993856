package eventstore

import "time"

// Event is one journal entry of a generation request.
type Event interface {
	// ID returns the store-assigned sequence number.
	ID() int64
	// SessionID returns the session the request belongs to.
	SessionID() string
	// RequestID returns the generation request this event belongs to.
	RequestID() string
	// Type returns the event type name.
	Type() string
	// Timestamp returns when the event occurred.
	Timestamp() time.Time
	// Payload returns the event data as JSON.
	Payload() []byte
	// Metadata returns optional event metadata.
	Metadata() map[string]string
}

// BaseEvent provides a default implementation of Event.
type BaseEvent struct {
	EventID        int64
	EventSessionID string
	EventRequestID string
	EventType      string
	EventTimestamp time.Time
	EventPayload   []byte
	EventMetadata  map[string]string
}

func (e *BaseEvent) ID() int64                   { return e.EventID }
func (e *BaseEvent) SessionID() string           { return e.EventSessionID }
func (e *BaseEvent) RequestID() string           { return e.EventRequestID }
func (e *BaseEvent) Type() string                { return e.EventType }
func (e *BaseEvent) Timestamp() time.Time        { return e.EventTimestamp }
func (e *BaseEvent) Payload() []byte             { return e.EventPayload }
func (e *BaseEvent) Metadata() map[string]string { return e.EventMetadata }
