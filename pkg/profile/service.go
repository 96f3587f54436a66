package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/simple-verify/pkg/phone"
)

// ProfileService validates and stores second-factor profiles. The phone
// number is checked at save time so an enabled profile always carries a
// well-formed number; the verification flow re-checks this invariant
// before any provider call rather than trusting stored state.
type ProfileService struct {
	repo Repository
}

// NewProfileService creates a new profile service.
func NewProfileService(repo Repository) *ProfileService {
	return &ProfileService{
		repo: repo,
	}
}

// GetProfile retrieves the profile for a user. A user who never saved a
// profile gets a disabled zero profile, not an error.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (Profile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err == ErrProfileNotFound {
		return Profile{UserID: userID}, nil
	}
	if err != nil {
		slog.Error("Failed to get profile", "userId", userID, "error", err)
		return Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// SaveProfile normalizes and stores a user's second-factor settings.
// Enabling verification requires a valid phone number: digits only with
// country code, 10-15 digits.
func (s *ProfileService) SaveProfile(ctx context.Context, userID, rawPhone string, enabled bool) (Profile, error) {
	normalized := phone.Normalize(rawPhone)

	if enabled && !phone.IsValid(normalized) {
		return Profile{}, fmt.Errorf("please enter a valid phone number with country code (digits only, e.g. 16193278653)")
	}
	if rawPhone != "" && normalized == "" {
		return Profile{}, fmt.Errorf("phone number must contain digits")
	}

	p := Profile{
		UserID:  userID,
		Phone:   normalized,
		Enabled: enabled,
	}
	if err := s.repo.SetProfile(ctx, p); err != nil {
		slog.Error("Failed to save profile", "userId", userID, "error", err)
		return Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}

	slog.Info("Saved second-factor profile", "userId", userID, "enabled", enabled)
	return s.repo.GetProfile(ctx, userID)
}

// DeleteProfile removes the profile for a user.
func (s *ProfileService) DeleteProfile(ctx context.Context, userID string) error {
	if err := s.repo.DeleteProfile(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
