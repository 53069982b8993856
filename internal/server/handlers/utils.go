package handlers

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/logfields"
)

const maxBodyBytes = 1 << 20

// writeJSON encodes v into a buffer before touching w, so an encode failure
// leaves the response unwritten. ?pretty=1 or ?pretty=true indents the body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if r != nil {
		if p := r.URL.Query().Get("pretty"); p == "1" || p == "true" {
			enc.SetIndent("", "  ")
		}
	}
	if err := enc.Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("Failed writing response body", logfields.Error(err))
	}
	return nil
}

// decodeJSON reads a JSON request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.WrapError(err, errors.CategoryValidation, "invalid request body").
			WithSeverity(errors.SeverityWarning).
			Build()
	}
	return nil
}

// respond writes v, or a classified 500 when v cannot be encoded.
func respond(adapter *errors.HTTPErrorAdapter, w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := writeJSON(w, r, status, v); err != nil {
		adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to encode response").Build())
	}
}
