package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"SessionID", KeySessionID, "s1", SessionID("s1")},
		{"RequestID", KeyRequestID, "r1", RequestID("r1")},
		{"Reference", KeyReference, "https://example.com/org/repo", Reference("https://example.com/org/repo")},
		{"DocType", KeyDocType, "readme", DocType("readme")},
		{"Lifecycle", KeyLifecycle, "in_flight", Lifecycle("in_flight")},
		{"Provider", KeyProvider, "http", Provider("http")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Path", KeyPath, "/healthz", Path("/healthz")},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Errorf("%s: key = %q, want %q", c.name, c.attr.Key, c.attrKey)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Errorf("%s: value = %q, want %q", c.name, c.attr.Value.String(), c.attrVal)
		}
	}
}

func TestDurationAndError(t *testing.T) {
	d := Duration(1500 * time.Microsecond)
	if d.Key != KeyDurationMS || d.Value.Float64() != 1.5 {
		t.Fatalf("unexpected duration attr: %v", d)
	}
	if e := Error(nil); e.Value.String() != "" {
		t.Fatalf("nil error should produce empty value, got %q", e.Value.String())
	}
	if e := Error(errors.New("boom")); e.Value.String() != "boom" {
		t.Fatalf("unexpected error value %q", e.Value.String())
	}
}
