package errors

// ErrorCategory groups errors by who has to act on them. Adapters map
// categories to HTTP statuses and CLI exit codes.
type ErrorCategory string

// Caller mistakes: bad input, bad configuration, unknown ids, conflicts.
const (
	CategoryConfig        ErrorCategory = "config"
	CategoryValidation    ErrorCategory = "validation"
	CategoryAuth          ErrorCategory = "auth"
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryAlreadyExists ErrorCategory = "already_exists"
)

// Collaborator failures: generation providers, forges and the network between.
const (
	CategoryProvider ErrorCategory = "provider"
	CategoryTimeout  ErrorCategory = "timeout"
	CategoryNetwork  ErrorCategory = "network"
	CategoryForge    ErrorCategory = "forge"
)

// Local failures.
const (
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryEventStore ErrorCategory = "eventstore"
	CategoryRuntime    ErrorCategory = "runtime"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
	SeverityInfo    ErrorSeverity = "info"
)

// RetryStrategy tells a caller whether, and how, to try again.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryImmediate  RetryStrategy = "immediate"  // e.g. a request already in flight
	RetryBackoff    RetryStrategy = "backoff"    // transient upstream failure
	RetryRateLimit  RetryStrategy = "rate_limit" // wait for the upstream window, see "retry_after"
	RetryUserAction RetryStrategy = "user"       // the input has to change first
)

// ErrorContext carries structured key/value detail for logs and API responses.
type ErrorContext map[string]any

// Set adds or updates a context value, allocating the map when needed.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// GetString retrieves a context value that was stored as a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	str, ok := c[key].(string)
	return str, ok
}
