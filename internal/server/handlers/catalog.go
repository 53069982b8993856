package handlers

import (
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/forge"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/logfields"
	"git.home.luguber.info/inful/docagent/internal/reference"
	"git.home.luguber.info/inful/docagent/internal/server/responses"
)

// CatalogHandlers serves session-independent lookups.
type CatalogHandlers struct {
	catalog      *catalog.Catalog
	metadata     forge.Provider
	errorAdapter *errors.HTTPErrorAdapter
}

// NewCatalogHandlers creates catalog and repository handlers. A nil provider
// answers from the reference alone.
func NewCatalogHandlers(cat *catalog.Catalog, metadata forge.Provider) *CatalogHandlers {
	if metadata == nil {
		metadata = forge.NoneProvider{}
	}
	return &CatalogHandlers{
		catalog:      cat,
		metadata:     metadata,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleCatalog lists the document types in catalog order.
func (h *CatalogHandlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	respond(h.errorAdapter, w, r, http.StatusOK, &responses.CatalogResponse{Types: h.catalog.ListTypes()})
}

// HandleRepository looks up forge metadata for the url query parameter.
func (h *CatalogHandlers) HandleRepository(w http.ResponseWriter, r *http.Request) {
	ref, err := reference.Parse(r.URL.Query().Get("url"))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	info, err := h.metadata.FetchRepositoryInfo(r.Context(), ref)
	if err != nil {
		slog.Debug("Repository lookup failed",
			logfields.Reference(ref.String()),
			logfields.Forge(string(h.metadata.Kind())),
			logfields.Error(err))
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(h.errorAdapter, w, r, http.StatusOK, &responses.RepositoryResponse{
		Reference:  ref.String(),
		Repository: info,
	})
}
