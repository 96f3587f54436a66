package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultChallengeTTL = 30 * time.Minute

// validateAndClearScript deletes the stored binding only when it matches
// the presented one exactly. Running it server-side keeps the
// compare-and-delete atomic across concurrent submissions.
var validateAndClearScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 1
end
return 0
`)

// RedisChallengeRepository implements Repository on Redis, one key per
// session. The TTL bounds how long an abandoned challenge survives; a
// fresh Bind resets it.
type RedisChallengeRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisChallengeRepository creates a Redis-backed challenge repository.
// A zero ttl falls back to 30 minutes.
func NewRedisChallengeRepository(client *redis.Client, ttl time.Duration) *RedisChallengeRepository {
	if ttl == 0 {
		ttl = defaultChallengeTTL
	}
	return &RedisChallengeRepository{
		client: client,
		ttl:    ttl,
	}
}

func challengeKey(sessionID string) string {
	return "verify:challenge:" + sessionID
}

// Bind stores the pending challenge for a session, overwriting any
// existing entry and resetting its TTL.
func (r *RedisChallengeRepository) Bind(ctx context.Context, sessionID, userID, requestID string) error {
	data, err := json.Marshal(PendingChallenge{UserID: userID, RequestID: requestID})
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	if err := r.client.Set(ctx, challengeKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	return nil
}

// Lookup returns the pending challenge for a session, if any.
func (r *RedisChallengeRepository) Lookup(ctx context.Context, sessionID string) (PendingChallenge, bool, error) {
	data, err := r.client.Get(ctx, challengeKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return PendingChallenge{}, false, nil
	}
	if err != nil {
		return PendingChallenge{}, false, fmt.Errorf("failed to load challenge: %w", err)
	}

	var pending PendingChallenge
	if err := json.Unmarshal(data, &pending); err != nil {
		return PendingChallenge{}, false, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return pending, true, nil
}

// ValidateAndClear clears and returns true only on an exact match of
// both fields; otherwise the stored entry is left untouched.
func (r *RedisChallengeRepository) ValidateAndClear(ctx context.Context, sessionID, userID, requestID string) (bool, error) {
	expected, err := json.Marshal(PendingChallenge{UserID: userID, RequestID: requestID})
	if err != nil {
		return false, fmt.Errorf("failed to marshal challenge: %w", err)
	}

	matched, err := validateAndClearScript.Run(ctx, r.client, []string{challengeKey(sessionID)}, string(expected)).Int()
	if err != nil {
		return false, fmt.Errorf("failed to validate challenge: %w", err)
	}
	return matched == 1, nil
}
