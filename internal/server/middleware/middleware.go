// Package middleware provides request logging and panic recovery for the docagent API.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/logfields"
)

// RequestIDHeader carries the correlation id of an API call. A client-supplied
// value is kept; otherwise one is generated.
const RequestIDHeader = "X-Request-ID"

// Chain wraps a handler with request ids, access logging and panic recovery, outermost first.
func Chain(logger *slog.Logger, adapter *errors.HTTPErrorAdapter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return withRequestID(logRequests(logger, recoverPanics(logger, adapter, next)))
	}
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "API request",
			logfields.RequestID(r.Header.Get(RequestIDHeader)),
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(rec.status),
			logfields.Duration(time.Since(start)),
			logfields.UserAgent(r.UserAgent()),
			logfields.RemoteAddr(r.RemoteAddr))
	})
}

// recoverPanics answers a handler panic with a classified 500.
func recoverPanics(logger *slog.Logger, adapter *errors.HTTPErrorAdapter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error("API handler panic",
				slog.Any("panic", rec),
				logfields.RequestID(r.Header.Get(RequestIDHeader)),
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path))

			adapter.WriteErrorResponse(w, r, errors.InternalError("internal server error").
				WithContext("request_id", r.Header.Get(RequestIDHeader)).
				Build())
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
