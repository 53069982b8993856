package httpserver

import (
	"net/http"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/forge"
	"git.home.luguber.info/inful/docagent/internal/server/handlers"
	"git.home.luguber.info/inful/docagent/internal/session"
)

// Options wires the API to its collaborators.
type Options struct {
	Address  string
	Catalog  *catalog.Catalog
	Sessions *session.Manager
	Metadata forge.Provider

	// Optional: request history from the journal.
	History handlers.HistoryReader

	// Optional: Prometheus exposition mounted at MetricsPath.
	PrometheusHandler http.Handler
	MetricsPath       string
}
