package profile

import "context"

// Repository defines the interface for profile storage.
type Repository interface {
	// GetProfile retrieves the profile for a user. Returns
	// ErrProfileNotFound if the user has never saved one.
	GetProfile(ctx context.Context, userID string) (Profile, error)

	// SetProfile creates or replaces the profile for a user.
	SetProfile(ctx context.Context, profile Profile) error

	// DeleteProfile removes the profile for a user.
	DeleteProfile(ctx context.Context, userID string) error
}
