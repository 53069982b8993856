// Package selection tracks which document type is currently displayed.
package selection

import (
	"sync"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

// ErrInvalidSelection is returned when selecting an id the catalog does not know.
var ErrInvalidSelection = errors.NotFoundError("invalid document selection").Build()

// Model holds exactly one active type id. It starts on the first catalog
// entry and changes only through Select.
type Model struct {
	catalog *catalog.Catalog

	mu     sync.RWMutex
	active string
}

// New returns a model selecting the first entry of c.
func New(c *catalog.Catalog) *Model {
	return &Model{catalog: c, active: c.First().ID}
}

// Select makes id the active type. Selecting the active id again is a no-op.
func (m *Model) Select(id string) error {
	if !m.catalog.Contains(id) {
		return ErrInvalidSelection.WithContext("type", id)
	}
	m.mu.Lock()
	m.active = id
	m.mu.Unlock()
	return nil
}

// Current returns the active document type.
func (m *Model) Current() catalog.DocumentType {
	m.mu.RLock()
	id := m.active
	m.mu.RUnlock()
	t, _ := m.catalog.GetType(id)
	return t
}

// ActiveID returns the active type id.
func (m *Model) ActiveID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Reset restores the initial selection.
func (m *Model) Reset() {
	m.mu.Lock()
	m.active = m.catalog.First().ID
	m.mu.Unlock()
}
