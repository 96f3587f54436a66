package challenge

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RepositoryConfig contains configuration for creating a challenge repository.
type RepositoryConfig struct {
	// RedisClient is required for Redis repositories
	RedisClient *redis.Client
	// TTL bounds how long an abandoned challenge survives (Redis only)
	TTL time.Duration
}

// NewChallengeRepository creates a challenge repository based on the
// persistence type.
func NewChallengeRepository(persistenceType string, config RepositoryConfig) (Repository, error) {
	switch persistenceType {
	case "inmem", "memory":
		return NewInMemChallengeRepository(), nil
	case "redis":
		if config.RedisClient == nil {
			return nil, fmt.Errorf("redis client required for redis repository")
		}
		return NewRedisChallengeRepository(config.RedisClient, config.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: inmem, redis)", persistenceType)
	}
}
