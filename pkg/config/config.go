// Package config defines the environment-driven configuration for the
// verification service. All values are read with cleanenv from env vars.
package config

import (
	"fmt"
	"time"

	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
)

// VonageConfig holds the Verify provider credentials and endpoint. The
// values here are the environment fallback; credentials saved through the
// admin API take precedence.
type VonageConfig struct {
	APIKey    string        `env:"VONAGE_API_KEY" env-default:""`
	APISecret string        `env:"VONAGE_API_SECRET" env-default:""`
	Brand     string        `env:"VONAGE_BRAND" env-default:"SimpleVerify"`
	BaseURL   string        `env:"VONAGE_BASE_URL" env-default:"https://api.nexmo.com"`
	Timeout   time.Duration `env:"VONAGE_TIMEOUT" env-default:"30s"`
}

// SessionConfig holds the signed session cookie settings.
type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET" env-default:"verify-session-secret"`
	CookieName   string        `env:"SESSION_COOKIE_NAME" env-default:"verifySession"`
	TTL          time.Duration `env:"SESSION_TTL" env-default:"30m"`
	CookieSecure bool          `env:"COOKIE_SECURE" env-default:"false"`
}

// DbConfig holds the Postgres connection settings, used when
// PERSISTENCE_TYPE is "postgres".
type DbConfig struct {
	Host     string `env:"VERIFY_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"VERIFY_PG_PORT" env-default:"5432"`
	Database string `env:"VERIFY_PG_DATABASE" env-default:"verify_db"`
	User     string `env:"VERIFY_PG_USER" env-default:"verify"`
	Password string `env:"VERIFY_PG_PASSWORD" env-default:"pwd"`
}

// URL returns the pgx connection string.
func (c DbConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// ToDbConfig converts the config to a db-utils DbConfig.
func (c DbConfig) ToDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     c.Host,
		Port:     c.Port,
		Database: c.Database,
		User:     c.User,
		Password: c.Password,
	}
}

// RedisConfig holds the Redis connection settings, used when
// CHALLENGE_STORE is "redis".
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// PersistenceConfig selects the storage backends.
type PersistenceConfig struct {
	// Type selects profile/settings/user storage: "file" or "postgres".
	Type    string `env:"PERSISTENCE_TYPE" env-default:"file"`
	DataDir string `env:"DATA_DIR" env-default:"./data"`
	// ChallengeStore selects the pending-challenge backend: "inmem" or
	// "redis". inmem does not survive restarts or scale past one process.
	ChallengeStore string `env:"CHALLENGE_STORE" env-default:"inmem"`
	// ChallengeTTL bounds how long an unanswered challenge stays bound.
	ChallengeTTL time.Duration `env:"CHALLENGE_TTL" env-default:"30m"`
}

// Config is the root configuration for cmd/verify.
type Config struct {
	AppConfig   app.AppConfig
	Vonage      VonageConfig
	Session     SessionConfig
	Db          DbConfig
	Redis       RedisConfig
	Persistence PersistenceConfig
}
