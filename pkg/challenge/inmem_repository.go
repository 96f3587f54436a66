package challenge

import (
	"context"
	"sync"
)

// InMemChallengeRepository implements Repository with an in-process map.
// Suitable for single-instance deployments and tests.
type InMemChallengeRepository struct {
	mutex      sync.RWMutex
	challenges map[string]PendingChallenge // keyed by session ID
}

// NewInMemChallengeRepository creates a new in-memory challenge repository.
func NewInMemChallengeRepository() *InMemChallengeRepository {
	return &InMemChallengeRepository{
		challenges: make(map[string]PendingChallenge),
	}
}

// Bind stores the pending challenge for a session, overwriting any
// existing entry.
func (r *InMemChallengeRepository) Bind(ctx context.Context, sessionID, userID, requestID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.challenges[sessionID] = PendingChallenge{
		UserID:    userID,
		RequestID: requestID,
	}
	return nil
}

// Lookup returns the pending challenge for a session, if any.
func (r *InMemChallengeRepository) Lookup(ctx context.Context, sessionID string) (PendingChallenge, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	pending, exists := r.challenges[sessionID]
	return pending, exists, nil
}

// ValidateAndClear clears and returns true only on an exact match of
// both fields; otherwise the stored entry is left untouched.
func (r *InMemChallengeRepository) ValidateAndClear(ctx context.Context, sessionID, userID, requestID string) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	pending, exists := r.challenges[sessionID]
	if !exists || pending.UserID != userID || pending.RequestID != requestID {
		return false, nil
	}

	delete(r.challenges, sessionID)
	return true, nil
}
