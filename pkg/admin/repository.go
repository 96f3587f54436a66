package admin

import "context"

// SettingsRepository persists provider settings. Get on an empty store
// returns zero Settings and no error.
type SettingsRepository interface {
	Get(ctx context.Context) (Settings, error)
	Set(ctx context.Context, settings Settings) error
}
