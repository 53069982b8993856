// Package httpserver wires the docagent HTTP API: routes, middleware and the
// listener lifecycle.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	derrors "git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/server/handlers"
	smw "git.home.luguber.info/inful/docagent/internal/server/middleware"
)

const (
	defaultMetricsPath = "/metrics"
	readHeaderTimeout  = 10 * time.Second
)

// Server serves the session API.
type Server struct {
	srv          *http.Server
	opts         Options
	errorAdapter *derrors.HTTPErrorAdapter

	monitoringHandlers *handlers.MonitoringHandlers
	catalogHandlers    *handlers.CatalogHandlers
	sessionHandlers    *handlers.SessionHandlers

	mchain func(http.Handler) http.Handler
}

// New constructs the server and its handler modules.
func New(opts Options) *Server {
	if opts.MetricsPath == "" {
		opts.MetricsPath = defaultMetricsPath
	}
	s := &Server{
		opts:         opts,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}

	s.monitoringHandlers = handlers.NewMonitoringHandlers(opts.Sessions)
	s.catalogHandlers = handlers.NewCatalogHandlers(opts.Catalog, opts.Metadata)
	s.sessionHandlers = handlers.NewSessionHandlers(opts.Sessions, opts.Catalog, opts.History)

	s.mchain = smw.Chain(slog.Default(), s.errorAdapter)
	return s
}

// Handler returns the routed, middleware-wrapped API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("GET /api/catalog", s.catalogHandlers.HandleCatalog)
	mux.HandleFunc("GET /api/repository", s.catalogHandlers.HandleRepository)

	sh := s.sessionHandlers
	mux.HandleFunc("POST /api/sessions", sh.HandleCreate)
	mux.HandleFunc("DELETE /api/sessions/{id}", sh.HandleDelete)
	mux.HandleFunc("GET /api/sessions/{id}/view", sh.HandleView)
	mux.HandleFunc("POST /api/sessions/{id}/select", sh.HandleSelect)
	mux.HandleFunc("POST /api/sessions/{id}/generate", sh.HandleGenerate)
	mux.HandleFunc("GET /api/sessions/{id}/settlement", sh.HandleSettlement)
	mux.HandleFunc("GET /api/sessions/{id}/preview/{type}", sh.HandlePreview)
	mux.HandleFunc("GET /api/sessions/{id}/documents/{type}", sh.HandleDocument)
	mux.HandleFunc("GET /api/sessions/{id}/history", sh.HandleHistory)

	if s.opts.PrometheusHandler != nil {
		mux.Handle("GET "+s.opts.MetricsPath, s.opts.PrometheusHandler)
	}
	return s.mchain(mux)
}

// Start binds the listener first so an occupied port fails fast, then serves
// in the background.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Address)
	if err != nil {
		return fmt.Errorf("http startup failed: %w", err)
	}

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("API server error", "error", err)
		}
	}()
	slog.Info("HTTP server started", slog.String("address", ln.Addr().String()))
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}
