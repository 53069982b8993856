// Package responses defines the JSON bodies returned by the docagent HTTP API.
package responses

import (
	"time"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/eventstore"
	"git.home.luguber.info/inful/docagent/internal/forge"
	"git.home.luguber.info/inful/docagent/internal/markdown"
)

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	Uptime         float64   `json:"uptime"`
	ActiveSessions int       `json:"active_sessions"`
}

// CatalogResponse lists the document types on offer.
type CatalogResponse struct {
	Types []catalog.DocumentType `json:"types"`
}

// RepositoryResponse carries metadata looked up for a repository URL.
type RepositoryResponse struct {
	Reference  string                `json:"reference"`
	Repository *forge.RepositoryInfo `json:"repository"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentResponse is a stored document as shown in a view.
type DocumentResponse struct {
	Type        string    `json:"type"`
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ViewResponse is the presentation snapshot of a session.
type ViewResponse struct {
	ActiveType     catalog.DocumentType   `json:"active_type"`
	ActiveDocument *DocumentResponse      `json:"active_document"`
	State          string                 `json:"state"`
	AvailableTypes []catalog.DocumentType `json:"available_types"`
	Source         string                 `json:"source,omitempty"`
	Repository     *forge.RepositoryInfo  `json:"repository,omitempty"`
}

// SelectRequest is the body of a select call.
type SelectRequest struct {
	Type string `json:"type"`
}

// GenerateRequest is the body of a generate call. Empty Types requests the whole catalog.
type GenerateRequest struct {
	URL   string   `json:"url"`
	Types []string `json:"types,omitempty"`
}

// GenerateResponse acknowledges an accepted generation request.
type GenerateResponse struct {
	RequestID string   `json:"request_id"`
	Types     []string `json:"types"`
	State     string   `json:"state"`
}

// SettlementResponse reports the state of a session and its unread failure, if any.
type SettlementResponse struct {
	State        string `json:"state"`
	Failed       bool   `json:"failed"`
	Error        string `json:"error,omitempty"`
	Category     string `json:"category,omitempty"`
	ProviderCode string `json:"provider_code,omitempty"`
}

// PreviewResponse is a rendered document.
type PreviewResponse struct {
	Type        string             `json:"type"`
	HTML        string             `json:"html"`
	Outline     []markdown.Heading `json:"outline"`
	Links       []markdown.Link    `json:"links"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// HistoryResponse lists the journaled requests of a session, newest first.
type HistoryResponse struct {
	SessionID string                      `json:"session_id"`
	Requests  []eventstore.RequestSummary `json:"requests"`
}
