// Package view projects a session's selection, results and lifecycle state
// into a read-only snapshot for presentation layers.
package view

import (
	"time"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/forge"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/lifecycle"
	"git.home.luguber.info/inful/docagent/internal/markdown"
	"git.home.luguber.info/inful/docagent/internal/results"
	"git.home.luguber.info/inful/docagent/internal/selection"
)

// ErrNoDocument is returned by Preview when nothing was generated for a type.
var ErrNoDocument = errors.NotFoundError("no generated document for type").Build()

// View is everything a presentation layer needs to draw the page.
// ActiveDocument is nil when the active type has no stored result.
type View struct {
	ActiveType     catalog.DocumentType       `json:"active_type"`
	ActiveDocument *results.GeneratedDocument `json:"active_document"`
	LifecycleState lifecycle.State            `json:"lifecycle_state"`
	AvailableTypes []catalog.DocumentType     `json:"available_types"`
	Source         string                     `json:"source,omitempty"`
	Repository     *forge.RepositoryInfo      `json:"repository,omitempty"`
}

// Preview is a stored document rendered for display.
type Preview struct {
	Type        catalog.DocumentType `json:"type"`
	HTML        string               `json:"html"`
	Outline     []markdown.Heading   `json:"outline"`
	Links       []markdown.Link      `json:"links"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// Adapter reads the session components. It never mutates them.
type Adapter struct {
	catalog    *catalog.Catalog
	selection  *selection.Model
	store      *results.Store
	lifecycle  *lifecycle.Lifecycle
	repository func() *forge.RepositoryInfo
}

// NewAdapter creates an adapter over one session's components.
func NewAdapter(cat *catalog.Catalog, sel *selection.Model, store *results.Store, lc *lifecycle.Lifecycle) *Adapter {
	return &Adapter{catalog: cat, selection: sel, store: store, lifecycle: lc}
}

// WithRepository sets the source of repository metadata shown in the view.
func (a *Adapter) WithRepository(fn func() *forge.RepositoryInfo) *Adapter {
	a.repository = fn
	return a
}

// GetView returns the current snapshot. While a request is in flight the
// active document is the last settled one.
func (a *Adapter) GetView() View {
	active := a.selection.Current()
	v := View{
		ActiveType:     active,
		LifecycleState: a.lifecycle.State(),
		AvailableTypes: a.catalog.ListTypes(),
	}
	if doc, ok := a.store.Get(active.ID); ok {
		v.ActiveDocument = &doc
		v.Source = doc.SourceReference.String()
	}
	if a.repository != nil {
		v.Repository = a.repository()
	}
	return v
}

// Preview renders the stored document for typeID.
func (a *Adapter) Preview(typeID string) (*Preview, error) {
	docType, err := a.catalog.GetType(typeID)
	if err != nil {
		return nil, err
	}
	doc, ok := a.store.Get(typeID)
	if !ok {
		return nil, ErrNoDocument.WithContext("type", typeID)
	}

	rendered, err := markdown.Render([]byte(doc.Content))
	if err != nil {
		return nil, err
	}
	return &Preview{
		Type:        docType,
		HTML:        string(rendered.HTML),
		Outline:     rendered.Outline,
		Links:       rendered.Links,
		GeneratedAt: doc.GeneratedAt,
	}, nil
}
