package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tendant/simple-verify/pkg/vonage"
)

// ErrMissingCredentials is returned when an update or connection test is
// attempted without both credentials present.
var ErrMissingCredentials = errors.New("Please enter both API Key and API Secret")

const DefaultBrand = "SimpleVerify"

// SettingsService manages provider credentials and builds the effective
// provider configuration. Environment-supplied defaults act as the
// fallback when nothing has been saved through the admin API.
type SettingsService struct {
	repo     SettingsRepository
	defaults vonage.Config
}

// NewSettingsService creates a settings service. defaults typically come
// from the environment and fill in anything the stored settings omit.
func NewSettingsService(repo SettingsRepository, defaults vonage.Config) *SettingsService {
	if defaults.Brand == "" {
		defaults.Brand = DefaultBrand
	}
	return &SettingsService{repo: repo, defaults: defaults}
}

// GetSettings returns the stored settings. Callers exposing them over
// HTTP must not leak the secret; see the api package.
func (s *SettingsService) GetSettings(ctx context.Context) (Settings, error) {
	return s.repo.Get(ctx)
}

// UpdateSettings validates and persists new provider credentials.
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	settings.APIKey = strings.TrimSpace(settings.APIKey)
	settings.APISecret = strings.TrimSpace(settings.APISecret)
	settings.Brand = strings.TrimSpace(settings.Brand)

	if !settings.Configured() {
		return ErrMissingCredentials
	}

	settings.LastModifiedAt = time.Now().UTC()
	if err := s.repo.Set(ctx, settings); err != nil {
		return fmt.Errorf("failed to store settings: %w", err)
	}

	slog.Info("Provider settings updated")
	return nil
}

// ProviderConfig builds the effective provider configuration: stored
// credentials when present, environment defaults otherwise.
func (s *SettingsService) ProviderConfig(ctx context.Context) (vonage.Config, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return vonage.Config{}, fmt.Errorf("failed to read settings: %w", err)
	}

	config := s.defaults
	if settings.Configured() {
		config.APIKey = settings.APIKey
		config.APISecret = settings.APISecret
	}
	if settings.Brand != "" {
		config.Brand = settings.Brand
	}
	return config, nil
}

// TestConnection checks the effective credentials against the provider
// using a dummy destination number. No SMS is sent.
func (s *SettingsService) TestConnection(ctx context.Context) error {
	config, err := s.ProviderConfig(ctx)
	if err != nil {
		return err
	}
	if config.APIKey == "" || config.APISecret == "" {
		return ErrMissingCredentials
	}

	client := vonage.NewClient(config)
	if err := client.CheckCredentials(ctx); err != nil {
		slog.Warn("Provider connection test failed", "err", err)
		return err
	}

	slog.Info("Provider connection test succeeded")
	return nil
}
