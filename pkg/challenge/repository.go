// Package challenge stores the pending verification challenge for each
// authentication session.
//
// A session holds at most one pending challenge: the binding between the
// user who passed primary authentication and the provider request id
// issued for them. Binding again for the same session always supersedes
// the previous entry. A binding is consumed atomically by
// ValidateAndClear, which succeeds only when both the user and the
// request id presented at verification time exactly match the stored
// pair; any mismatch leaves the store untouched.
package challenge

import "context"

// PendingChallenge binds a provider-issued verification request to the
// user it was issued for.
type PendingChallenge struct {
	UserID    string `json:"user_id"`
	RequestID string `json:"request_id"`
}

// Repository defines session-scoped challenge storage. Implementations
// must isolate entries per session id with no cross-session visibility.
type Repository interface {
	// Bind stores the pending challenge for a session, overwriting any
	// existing entry.
	Bind(ctx context.Context, sessionID, userID, requestID string) error

	// Lookup returns the pending challenge for a session, if any.
	Lookup(ctx context.Context, sessionID string) (PendingChallenge, bool, error)

	// ValidateAndClear clears the session's entry and returns true only
	// if both userID and requestID exactly match the stored binding.
	// On mismatch it returns false and leaves the entry in place.
	ValidateAndClear(ctx context.Context, sessionID, userID, requestID string) (bool, error)
}
