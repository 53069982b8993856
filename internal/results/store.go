// Package results holds the latest generated document per document type.
package results

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

// GeneratedDocument is the stored output for one document type.
type GeneratedDocument struct {
	TypeID          string              `json:"type_id"`
	Content         string              `json:"content"`
	GeneratedAt     time.Time           `json:"generated_at"`
	SourceReference reference.Reference `json:"-"`
}

// Store keeps one GeneratedDocument per type id. Absence (Get returning false)
// is distinct from a stored empty string.
type Store struct {
	catalog *catalog.Catalog
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]GeneratedDocument
	source  reference.Reference
}

// New creates an empty store whose keys are restricted to the catalog's ids.
func New(c *catalog.Catalog) *Store {
	return &Store{
		catalog: c,
		now:     time.Now,
		entries: make(map[string]GeneratedDocument, c.Len()),
	}
}

// Put overwrites the entry for typeID.
func (s *Store) Put(typeID string, content string, source reference.Reference) error {
	return s.PutAll(map[string]string{typeID: content}, source)
}

// PutAll commits every entry of batch or none of them. All keys are checked
// against the catalog before anything is written, and all entries share one
// generatedAt timestamp.
func (s *Store) PutAll(batch map[string]string, source reference.Reference) error {
	for id := range batch {
		if !s.catalog.Contains(id) {
			return catalog.ErrNotFound.WithContext("type", id)
		}
	}

	at := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, content := range batch {
		s.entries[id] = GeneratedDocument{
			TypeID:          id,
			Content:         content,
			GeneratedAt:     at,
			SourceReference: source,
		}
	}
	if len(batch) > 0 {
		s.source = source
	}
	return nil
}

// Get returns the entry for typeID; ok is false when nothing has been stored.
func (s *Store) Get(typeID string) (GeneratedDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.entries[typeID]
	return doc, ok
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]GeneratedDocument, s.catalog.Len())
	s.source = reference.Reference{}
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Source returns the reference of the most recent committed batch.
func (s *Store) Source() reference.Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Snapshot returns all stored entries in catalog order.
func (s *Store) Snapshot() []GeneratedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]GeneratedDocument, 0, len(s.entries))
	for _, id := range s.catalog.IDs() {
		if doc, ok := s.entries[id]; ok {
			out = append(out, doc)
		}
	}
	return out
}
