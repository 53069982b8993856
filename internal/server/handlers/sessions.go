package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/eventstore"
	"git.home.luguber.info/inful/docagent/internal/export"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/generator"
	"git.home.luguber.info/inful/docagent/internal/logfields"
	"git.home.luguber.info/inful/docagent/internal/server/responses"
	"git.home.luguber.info/inful/docagent/internal/session"
	"git.home.luguber.info/inful/docagent/internal/view"
)

// HistoryReader returns the journaled requests of a session.
type HistoryReader interface {
	History(sessionID string) []eventstore.RequestSummary
}

// ErrHistoryDisabled is returned by the history endpoint when no journal is configured.
var ErrHistoryDisabled = errors.NotFoundError("request history is not enabled").Build()

// SessionHandlers drive the per-session workflow.
type SessionHandlers struct {
	manager      *session.Manager
	catalog      *catalog.Catalog
	history      HistoryReader
	errorAdapter *errors.HTTPErrorAdapter
}

// NewSessionHandlers creates session handlers. history may be nil.
func NewSessionHandlers(manager *session.Manager, cat *catalog.Catalog, history HistoryReader) *SessionHandlers {
	return &SessionHandlers{
		manager:      manager,
		catalog:      cat,
		history:      history,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

func (h *SessionHandlers) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return nil, false
	}
	return s, true
}

// HandleCreate starts a new session.
func (h *SessionHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	s := h.manager.Create()
	respond(h.errorAdapter, w, r, http.StatusCreated, &responses.SessionResponse{ID: s.ID, CreatedAt: s.CreatedAt})
}

// HandleDelete tears a session down, canceling any in-flight request.
func (h *SessionHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleView returns the presentation snapshot.
func (h *SessionHandlers) HandleView(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	respond(h.errorAdapter, w, r, http.StatusOK, viewResponse(s.View()))
}

// HandleSelect changes the active document type and returns the new view.
func (h *SessionHandlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req responses.SelectRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if err := s.Select(req.Type); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(h.errorAdapter, w, r, http.StatusOK, viewResponse(s.View()))
}

// HandleGenerate submits a generation request and answers 202 without waiting
// for it to settle.
func (h *SessionHandlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var body responses.GenerateRequest
	if err := decodeJSON(r, &body); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	// The request outlives this handler; the lifecycle owns its context.
	req, _, err := s.Start(r.Context(), body.URL, body.Types)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	slog.Debug("Generation accepted",
		logfields.SessionID(s.ID),
		logfields.RequestID(req.ID),
		logfields.DocTypes(req.TypeIDs))
	respond(h.errorAdapter, w, r, http.StatusAccepted, &responses.GenerateResponse{
		RequestID: req.ID,
		Types:     req.TypeIDs,
		State:     s.State().String(),
	})
}

// HandleSettlement reports the lifecycle state and consumes the unread
// failure of the last request, if any.
func (h *SessionHandlers) HandleSettlement(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	resp := &responses.SettlementResponse{State: s.State().String()}
	if err := s.TakeFailure(); err != nil {
		resp.Failed = true
		resp.Error = err.Error()
		if c, ok := errors.AsClassified(err); ok {
			resp.Error = c.Message()
			resp.Category = string(c.Category())
		}
		if f, ok := generator.FailureOf(err); ok {
			resp.ProviderCode = f.Code
		}
	}
	respond(h.errorAdapter, w, r, http.StatusOK, resp)
}

// HandlePreview renders the stored document of a type.
func (h *SessionHandlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	p, err := s.Preview(r.PathValue("type"))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(h.errorAdapter, w, r, http.StatusOK, &responses.PreviewResponse{
		Type:        p.Type.ID,
		HTML:        p.HTML,
		Outline:     p.Outline,
		Links:       p.Links,
		GeneratedAt: p.GeneratedAt,
	})
}

// HandleDocument serves a stored document as a markdown attachment with
// export frontmatter.
func (h *SessionHandlers) HandleDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	t, err := h.catalog.GetType(r.PathValue("type"))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	doc, found := s.Document(t.ID)
	if !found {
		h.errorAdapter.WriteErrorResponse(w, r, view.ErrNoDocument.WithContext("type", t.ID))
		return
	}
	body, err := export.Render(t, doc)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(export.FileName(t)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed writing document body", logfields.Error(err))
	}
}

// HandleHistory lists the journaled requests of a session.
func (h *SessionHandlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.errorAdapter.WriteErrorResponse(w, r, ErrHistoryDisabled)
		return
	}
	id := r.PathValue("id")
	respond(h.errorAdapter, w, r, http.StatusOK, &responses.HistoryResponse{
		SessionID: id,
		Requests:  h.history.History(id),
	})
}

func viewResponse(v view.View) *responses.ViewResponse {
	resp := &responses.ViewResponse{
		ActiveType:     v.ActiveType,
		State:          v.LifecycleState.String(),
		AvailableTypes: v.AvailableTypes,
		Source:         v.Source,
		Repository:     v.Repository,
	}
	if v.ActiveDocument != nil {
		resp.ActiveDocument = &responses.DocumentResponse{
			Type:        v.ActiveDocument.TypeID,
			Content:     v.ActiveDocument.Content,
			GeneratedAt: v.ActiveDocument.GeneratedAt,
		}
	}
	return resp
}
