package verification

import "errors"

// ErrorKind classifies fatal verification failures.
type ErrorKind string

const (
	// ErrorKindConfiguration covers incomplete setup: an enabled profile
	// without a usable phone number, or missing provider credentials.
	// Not retryable by resubmitting the same request.
	ErrorKindConfiguration ErrorKind = "configuration"

	// ErrorKindProviderTransport covers network failures and malformed
	// provider responses. Safe to retry by logging in again.
	ErrorKindProviderTransport ErrorKind = "provider_transport"

	// ErrorKindProviderRejected covers explicit provider refusals that
	// are not concurrency-related.
	ErrorKindProviderRejected ErrorKind = "provider_rejected"

	// ErrorKindSessionMismatch covers a code submission whose user or
	// request token does not match the session's binding. The message is
	// deliberately vague about which part mismatched.
	ErrorKindSessionMismatch ErrorKind = "session_mismatch"

	// ErrorKindInternal covers unexpected storage failures.
	ErrorKindInternal ErrorKind = "internal"
)

// Error is a classified fatal verification failure. Message is safe to
// show to the end user.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// IsKind reports whether err is a verification Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
