package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const selectColumns = "SELECT id, session_id, request_id, event_type, timestamp, payload, metadata FROM events"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based event store.
// Use ":memory:" for in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ErrOpen.WithCause(err).WithContext("path", dbPath)
	}
	// A :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, ErrSchema.WithCause(err).WithContext("path", dbPath)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		request_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB NOT NULL,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_session_id ON events(session_id);
	CREATE INDEX IF NOT EXISTS idx_request_id ON events(request_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON events(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append persists e. A zero timestamp is set to the current time.
func (s *SQLiteStore) Append(ctx context.Context, e *BaseEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var metadataJSON []byte
	if e.EventMetadata != nil {
		var err error
		metadataJSON, err = json.Marshal(e.EventMetadata)
		if err != nil {
			return ErrPayload.WithCause(err).WithContext("request_id", e.EventRequestID)
		}
	}
	if e.EventTimestamp.IsZero() {
		e.EventTimestamp = time.Now()
	}
	payload := e.EventPayload
	if payload == nil {
		payload = []byte("{}")
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO events (session_id, request_id, event_type, timestamp, payload, metadata) VALUES (?, ?, ?, ?, ?, ?)",
		e.EventSessionID, e.EventRequestID, e.EventType, e.EventTimestamp.UnixMilli(), payload, metadataJSON,
	)
	if err != nil {
		return ErrAppend.WithCause(err).
			WithContext("request_id", e.EventRequestID).
			WithContext("event_type", e.EventType)
	}
	if id, err := res.LastInsertId(); err == nil {
		e.EventID = id
	}
	return nil
}

// GetByRequestID retrieves all events for one generation request.
func (s *SQLiteStore) GetByRequestID(ctx context.Context, requestID string) ([]Event, error) {
	return s.query(ctx, selectColumns+" WHERE request_id = ? ORDER BY id", requestID)
}

// GetBySessionID retrieves all events recorded for a session.
func (s *SQLiteStore) GetBySessionID(ctx context.Context, sessionID string) ([]Event, error) {
	return s.query(ctx, selectColumns+" WHERE session_id = ? ORDER BY id", sessionID)
}

// GetRange retrieves events within a time range.
func (s *SQLiteStore) GetRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	return s.query(ctx, selectColumns+" WHERE timestamp >= ? AND timestamp <= ? ORDER BY id", start.UnixMilli(), end.UnixMilli())
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, ErrQuery.WithCause(err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e BaseEvent
		var timestampMilli int64
		var metadataJSON []byte

		err := rows.Scan(&e.EventID, &e.EventSessionID, &e.EventRequestID, &e.EventType, &timestampMilli, &e.EventPayload, &metadataJSON)
		if err != nil {
			return nil, ErrDecode.WithCause(err)
		}

		e.EventTimestamp = time.UnixMilli(timestampMilli)

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.EventMetadata); err != nil {
				return nil, ErrDecode.WithCause(err).WithContext("event_id", e.EventID)
			}
		}

		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, ErrDecode.WithCause(err)
	}

	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
