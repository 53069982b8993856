// Package retry implements caller-side backoff for failed generation attempts.
package retry

import (
	"context"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/docagent/internal/config"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       config.RetryBackoffMode // fixed|linear|exponential
	Initial    time.Duration           // base delay
	Max        time.Duration           // cap for growth
	MaxRetries int                     // maximum retry attempts after the first failure
}

// DefaultPolicy returns a policy that never retries (linear, 1s initial, 30s cap).
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 30 * time.Second}
}

// NewPolicy builds a policy from raw fields; zero/invalid values fall back to defaults.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// FromConfig builds a policy from the retry configuration section.
func FromConfig(rc config.RetryConfig) Policy {
	return NewPolicy(rc.Backoff, rc.InitialDelayDuration(), rc.MaxDelayDuration(), rc.MaxRetries)
}

// WithMaxRetries returns a copy of p with a different retry budget.
func (p Policy) WithMaxRetries(n int) Policy {
	if n >= 0 {
		p.MaxRetries = n
	}
	return p
}

// Delay returns the backoff delay for the given retry attempt number (1-based: first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	switch p.Mode {
	case config.RetryBackoffFixed:
		return p.Initial
	case config.RetryBackoffExponential:
		if retryCount > 32 {
			return p.Max
		}
		d := p.Initial * (1 << (retryCount - 1))
		if d > p.Max || d <= 0 {
			return p.Max
		}
		return d
	default: // linear
		d := time.Duration(retryCount) * p.Initial
		if d > p.Max {
			return p.Max
		}
		return d
	}
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return errors.ConfigError("retry initial delay must be > 0").WithContext("initial", p.Initial).Build()
	}
	if p.Max <= 0 {
		return errors.ConfigError("retry max delay must be > 0").WithContext("max", p.Max).Build()
	}
	if p.MaxRetries < 0 {
		return errors.ConfigError("max retries cannot be negative").WithContext("max_retries", p.MaxRetries).Build()
	}
	return nil
}

// Do calls fn until it succeeds, the error is not retryable, the retry budget
// is spent or ctx is done. attempt is 0 for the first call. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error, retryable func(error) bool) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(attempt)
		if err == nil || attempt >= p.MaxRetries || !retryable(err) {
			return err
		}
		timer := time.NewTimer(p.wait(attempt+1, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// wait is Delay(retryCount), stretched to a server-requested Retry-After
// (whole seconds, carried as "retry_after" error context) but never past Max.
func (p Policy) wait(retryCount int, err error) time.Duration {
	d := p.Delay(retryCount)
	ce, ok := errors.AsClassified(err)
	if !ok {
		return d
	}
	raw, ok := ce.Context().GetString("retry_after")
	if !ok {
		return d
	}
	secs, convErr := strconv.Atoi(strings.TrimSpace(raw))
	if convErr != nil || secs <= 0 {
		return d
	}
	if after := time.Duration(secs) * time.Second; after > d {
		d = min(after, p.Max)
	}
	return d
}
