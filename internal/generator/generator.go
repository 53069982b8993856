// Package generator contains the content generation providers.
//
// A Generator receives a validated repository reference and an ordered list of
// document type ids and returns one markdown body per id. Providers report
// failures as ErrProvider carrying a *Failure with the provider's code and
// message. Context cancellation is returned unwrapped so callers can tell a
// deadline from a provider failure.
package generator

import (
	"context"
	stderrors "errors"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

// Failure codes produced by the built-in providers.
const (
	CodeIncompleteResponse = "incomplete_response"
	CodeBadResponse        = "bad_response"
	CodeUnavailable        = "unavailable"
	CodeUpstream           = "upstream_error"
	CodeModel              = "model_error"
	CodeEmptyCompletion    = "empty_completion"
)

// ErrProvider is the sentinel for every failure reported by a generation provider.
var ErrProvider = errors.ProviderError("generation provider failed").Build()

// Generator produces document bodies for a repository.
type Generator interface {
	Name() string
	Generate(ctx context.Context, ref reference.Reference, typeIDs []string) (map[string]string, error)
}

// Failure is the {code, message} pair reported by a provider.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return f.Code
	}
	return f.Code + ": " + f.Message
}

// NewProviderError wraps a provider-reported failure in ErrProvider.
func NewProviderError(code, message string) *errors.ClassifiedError {
	return ErrProvider.
		WithCause(&Failure{Code: code, Message: message}).
		WithContext("code", code)
}

// FailureOf extracts the provider failure from err.
func FailureOf(err error) (*Failure, bool) {
	var f *Failure
	if stderrors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Complete checks that results holds an entry for every requested id and
// returns only those entries. Extra keys are dropped.
func Complete(typeIDs []string, results map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(typeIDs))
	var missing []string
	for _, id := range typeIDs {
		content, ok := results[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out[id] = content
	}
	if len(missing) > 0 {
		return nil, NewProviderError(CodeIncompleteResponse, "provider returned no content for some document types").
			WithContext("missing", missing)
	}
	return out, nil
}

// Func adapts a function to the Generator interface.
type Func func(ctx context.Context, ref reference.Reference, typeIDs []string) (map[string]string, error)

// Name returns "func".
func (f Func) Name() string { return "func" }

// Generate calls f.
func (f Func) Generate(ctx context.Context, ref reference.Reference, typeIDs []string) (map[string]string, error) {
	return f(ctx, ref, typeIDs)
}
