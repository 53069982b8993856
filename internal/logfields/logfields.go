package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeySessionID     = "session_id"
	KeyRequestID     = "request_id"
	KeyReference     = "reference"
	KeyDocType       = "doc_type"
	KeyDocTypes      = "doc_types"
	KeyLifecycle     = "lifecycle_state"
	KeyTransitionTo  = "to"
	KeyProvider      = "provider"
	KeyForge         = "forge"
	KeyDurationMS    = "duration_ms"
	KeyPath          = "path"
	KeyMethod        = "method"
	KeyStatus        = "status"
	KeyUserAgent     = "user_agent"
	KeyRemoteAddr    = "remote_addr"
	KeyError         = "error"
	KeyErrorCategory = "error_category"
)

func SessionID(id string) slog.Attr       { return slog.String(KeySessionID, id) }
func RequestID(id string) slog.Attr       { return slog.String(KeyRequestID, id) }
func Reference(ref string) slog.Attr      { return slog.String(KeyReference, ref) }
func DocType(id string) slog.Attr         { return slog.String(KeyDocType, id) }
func DocTypes(ids []string) slog.Attr     { return slog.Any(KeyDocTypes, ids) }
func Lifecycle(state string) slog.Attr    { return slog.String(KeyLifecycle, state) }
func TransitionTo(state string) slog.Attr { return slog.String(KeyTransitionTo, state) }
func Provider(name string) slog.Attr      { return slog.String(KeyProvider, name) }
func Forge(name string) slog.Attr         { return slog.String(KeyForge, name) }
func Path(p string) slog.Attr             { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr           { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr           { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr       { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr    { return slog.String(KeyRemoteAddr, addr) }

// Duration reports d in fractional milliseconds under the canonical key.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCategory tags a log line with a classified error category.
func ErrorCategory(category string) slog.Attr { return slog.String(KeyErrorCategory, category) }
