package normalization

import (
	"testing"
)

type backoff string

const (
	backoffFixed  backoff = "fixed"
	backoffLinear backoff = "linear"
	backoffExp    backoff = "exponential"
)

func newBackoffNormalizer() *Normalizer[backoff] {
	return NewNormalizer(map[string]backoff{
		"fixed":       backoffFixed,
		"Linear":      backoffLinear,
		"exponential": backoffExp,
	}, backoffFixed)
}

func TestNormalizer_Basic(t *testing.T) {
	normalizer := newBackoffNormalizer()

	tests := []struct {
		name     string
		input    string
		expected backoff
	}{
		{"exact match", "fixed", backoffFixed},
		{"case insensitive", "EXPONENTIAL", backoffExp},
		{"mixed case key", "linear", backoffLinear},
		{"with spaces", "  linear  ", backoffLinear},
		{"invalid input", "jitter", backoffFixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizer.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizer_WithError(t *testing.T) {
	normalizer := newBackoffNormalizer()

	got, err := normalizer.NormalizeWithError(" Fixed ")
	if err != nil {
		t.Fatalf("NormalizeWithError(valid) returned error: %v", err)
	}
	if got != backoffFixed {
		t.Errorf("NormalizeWithError(valid) = %v, want %v", got, backoffFixed)
	}

	if _, err := normalizer.NormalizeWithError("jitter"); err == nil {
		t.Error("NormalizeWithError(invalid) should return error")
	}
}

func TestValidKeys(t *testing.T) {
	keys := newBackoffNormalizer().ValidKeys()
	expected := []string{"exponential", "fixed", "linear"}
	if len(keys) != len(expected) {
		t.Fatalf("ValidKeys() length = %d, want %d", len(keys), len(expected))
	}
	for i, key := range keys {
		if key != expected[i] {
			t.Errorf("ValidKeys()[%d] = %q, want %q", i, key, expected[i])
		}
	}
}
