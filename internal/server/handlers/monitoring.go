package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/server/responses"
	"git.home.luguber.info/inful/docagent/internal/version"
)

// SessionCounter reports the number of live sessions.
type SessionCounter interface {
	Len() int
}

// MonitoringHandlers contains health endpoints.
type MonitoringHandlers struct {
	sessions     SessionCounter
	startTime    time.Time
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(sessions SessionCounter) *MonitoringHandlers {
	return &MonitoringHandlers{
		sessions:     sessions,
		startTime:    time.Now(),
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealthCheck handles the health check endpoint.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.startTime).Seconds(),
	}
	if h.sessions != nil {
		health.ActiveSessions = h.sessions.Len()
	}
	respond(h.errorAdapter, w, r, http.StatusOK, health)
}
