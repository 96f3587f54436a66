package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProfileRepository implements Repository using PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE verify_profile (
//		user_id          TEXT PRIMARY KEY,
//		phone            TEXT NOT NULL,
//		enabled          BOOLEAN NOT NULL DEFAULT FALSE,
//		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
//		last_modified_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProfileRepository creates a new PostgreSQL-based profile repository.
func NewPostgresProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{
		pool: pool,
	}
}

// GetProfile retrieves the profile for a user.
func (r *PostgresProfileRepository) GetProfile(ctx context.Context, userID string) (Profile, error) {
	const query = `
		SELECT user_id, phone, enabled, created_at, last_modified_at
		FROM verify_profile
		WHERE user_id = $1`

	var profile Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Phone,
		&profile.Enabled,
		&profile.CreatedAt,
		&profile.LastModifiedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// SetProfile creates or replaces the profile for a user.
func (r *PostgresProfileRepository) SetProfile(ctx context.Context, profile Profile) error {
	const query = `
		INSERT INTO verify_profile (user_id, phone, enabled, created_at, last_modified_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (user_id) DO UPDATE
		SET phone = EXCLUDED.phone,
		    enabled = EXCLUDED.enabled,
		    last_modified_at = now()`

	if _, err := r.pool.Exec(ctx, query, profile.UserID, profile.Phone, profile.Enabled); err != nil {
		return fmt.Errorf("failed to set profile: %w", err)
	}
	return nil
}

// DeleteProfile removes the profile for a user.
func (r *PostgresProfileRepository) DeleteProfile(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM verify_profile WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
