package catalog

import (
	"strings"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

// ErrNotFound is returned when a type id outside the registered set is requested.
var ErrNotFound = errors.NotFoundError("document type not registered").Build()

// DocumentType is one category of documentation artifact.
type DocumentType struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
}

// Catalog is an ordered, immutable set of document types.
type Catalog struct {
	types   []DocumentType
	index   map[string]int
	samples map[string]string
}

// New builds a catalog from entries, preserving their order.
// Ids are trimmed; empty ids, duplicate ids and an empty entry list are rejected.
func New(entries []DocumentType) (*Catalog, error) {
	return newCatalog(entries, nil)
}

func newCatalog(entries []DocumentType, samples map[string]string) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.ConfigError("document catalog is empty").Build()
	}
	c := &Catalog{
		types:   make([]DocumentType, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
		samples: make(map[string]string, len(samples)),
	}
	for i, e := range entries {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			return nil, errors.ConfigError("document type id is empty").
				WithContext("position", i).
				Build()
		}
		if _, dup := c.index[e.ID]; dup {
			return nil, errors.ConfigError("duplicate document type id").
				WithContext("type", e.ID).
				Build()
		}
		if strings.TrimSpace(e.Label) == "" {
			e.Label = deriveLabel(e.ID)
		}
		c.index[e.ID] = len(c.types)
		c.types = append(c.types, e)
	}
	for id, body := range samples {
		if _, ok := c.index[id]; ok {
			c.samples[id] = body
		}
	}
	return c, nil
}

// ListTypes returns the document types in display order. The slice is a copy.
func (c *Catalog) ListTypes() []DocumentType {
	out := make([]DocumentType, len(c.types))
	copy(out, c.types)
	return out
}

// GetType returns the document type registered under id.
func (c *Catalog) GetType(id string) (DocumentType, error) {
	i, ok := c.index[id]
	if !ok {
		return DocumentType{}, ErrNotFound.WithContext("type", id)
	}
	return c.types[i], nil
}

// Contains reports whether id is registered.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// First returns the first entry; it is the default selection.
func (c *Catalog) First() DocumentType {
	return c.types[0]
}

// IDs returns the registered ids in display order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.types))
	for i, t := range c.types {
		ids[i] = t.ID
	}
	return ids
}

// Len returns the number of registered types.
func (c *Catalog) Len() int { return len(c.types) }

// Sample returns the example body configured for id, if any.
func (c *Catalog) Sample(id string) (string, bool) {
	s, ok := c.samples[id]
	return s, ok
}

// Normalize validates ids against the catalog, drops duplicates and returns
// them in catalog order. An empty input selects every registered type.
func (c *Catalog) Normalize(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return c.IDs(), nil
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if !c.Contains(id) {
			return nil, ErrNotFound.WithContext("type", id)
		}
		wanted[id] = struct{}{}
	}
	out := make([]string, 0, len(wanted))
	for _, t := range c.types {
		if _, ok := wanted[t.ID]; ok {
			out = append(out, t.ID)
		}
	}
	return out, nil
}
