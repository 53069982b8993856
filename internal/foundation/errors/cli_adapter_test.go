package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad reference").Build(), 2},
		{"not found", NotFoundError("unknown type").Build(), 4},
		{"config", ConfigError("bad config").Build(), 7},
		{"provider", ProviderError("upstream failed").Build(), 8},
		{"timeout", TimeoutError("too slow").Build(), 8},
		{"conflict", ConflictError("busy").Build(), 9},
		{"wrapped conflict", fmt.Errorf("serve: %w", ConflictError("busy").Build()), 9},
		{"unclassified", errors.New("unknown"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	err := ProviderError("generation failed").WithContext("code", "rate_limited").Build()

	if got := quiet.FormatError(err); got != "Error: generation failed (rate_limited)" {
		t.Errorf("quiet FormatError() = %q", got)
	}
	if got := verbose.FormatError(err); !strings.Contains(got, "[provider:error]") {
		t.Errorf("verbose FormatError() should include classification, got %q", got)
	}
	if got := quiet.FormatError(errors.New("boom")); got != "Error: boom" {
		t.Errorf("unclassified FormatError() = %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	var code int
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	adapter.out = &out
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ValidationError("repository reference is empty").Build())

	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(out.String(), "repository reference is empty") {
		t.Fatalf("expected message on stderr, got %q", out.String())
	}
}
