package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append persists e and assigns its ID.
	Append(ctx context.Context, e *BaseEvent) error

	// GetByRequestID retrieves all events for one generation request.
	GetByRequestID(ctx context.Context, requestID string) ([]Event, error)

	// GetBySessionID retrieves all events recorded for a session.
	GetBySessionID(ctx context.Context, sessionID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}
