// Package errors provides the classified error primitives used across docagent.
//
// Every error that crosses a package boundary in docagent is a *ClassifiedError
// carrying a category, a severity, a retry strategy and optional structured
// context. The CLI and HTTP adapters map categories to exit codes and status
// codes so callers never have to string-match messages.
//
// Example usage:
//
//	err := errors.ProviderError("generation request failed").
//		WithContext("code", "rate_limited").
//		WithCause(respErr).
//		Build()
package errors
