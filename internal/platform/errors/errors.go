// Package errors provides structured errors with machine-readable codes.
//
// The fetch path uses codes as explicit failure-kind tags: callers branch on
// Code (via Is) instead of inspecting wrapped causes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeFetchNetwork marks a live fetch that produced no response at all.
	CodeFetchNetwork Code = "FETCH_NETWORK"

	// CodeFetchUpstreamStatus marks a live fetch answered with an HTTP error status.
	CodeFetchUpstreamStatus Code = "FETCH_UPSTREAM_STATUS"

	// CodeInstallIncomplete marks a shell pre-cache that did not store every asset.
	CodeInstallIncomplete Code = "INSTALL_INCOMPLETE"

	// CodeStoreUnavailable marks a cache store that could not be opened or queried.
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"

	// CodeConfigInvalid marks rejected relay configuration.
	CodeConfigInvalid Code = "CONFIG_INVALID"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Internal message (for logs)
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code carried by err, or CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	if e, ok := err.(*Error); ok && e != nil {
		return e.Code
	}
	return CodeUnknown
}
