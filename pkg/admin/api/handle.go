package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-verify/pkg/admin"
)

// Handle exposes provider settings management.
type Handle struct {
	settingsService *admin.SettingsService
}

func NewHandle(settingsService *admin.SettingsService) Handle {
	return Handle{settingsService: settingsService}
}

// Routes mounts the settings endpoints on the given router. Protect the
// router with admin authentication before mounting.
func Routes(r chi.Router, handle Handle) {
	r.Get("/verify-settings", handle.GetSettings)
	r.Put("/verify-settings", handle.UpdateSettings)
	r.Post("/verify-settings/test", handle.TestConnection)
}

// SettingsResponse is the stored settings with the secret redacted.
type SettingsResponse struct {
	APIKey       string `json:"api_key"`
	APISecretSet bool   `json:"api_secret_set"`
	Brand        string `json:"brand"`
}

// UpdateSettingsRequest carries new provider credentials.
type UpdateSettingsRequest struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	Brand     string `json:"brand"`
}

// GetSettings returns the current settings. The secret itself is never
// echoed back, only whether one is set.
// (GET /verify-settings)
func (h Handle) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.GetSettings(r.Context())
	if err != nil {
		slog.Error("Failed to read settings", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to read settings"})
		return
	}

	render.JSON(w, r, SettingsResponse{
		APIKey:       settings.APIKey,
		APISecretSet: settings.APISecret != "",
		Brand:        settings.Brand,
	})
}

// UpdateSettings replaces the stored provider credentials.
// (PUT /verify-settings)
func (h Handle) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var data UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}

	err := h.settingsService.UpdateSettings(r.Context(), admin.Settings{
		APIKey:    data.APIKey,
		APISecret: data.APISecret,
		Brand:     data.Brand,
	})
	if err != nil {
		if errors.Is(err, admin.ErrMissingCredentials) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}
		slog.Error("Failed to update settings", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to update settings"})
		return
	}

	render.JSON(w, r, map[string]string{"message": "Settings updated successfully"})
}

// TestConnection checks the stored credentials against the provider.
// (POST /verify-settings/test)
func (h Handle) TestConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.settingsService.TestConnection(r.Context()); err != nil {
		if errors.Is(err, admin.ErrMissingCredentials) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}

	render.JSON(w, r, map[string]string{"message": "Connection successful! Your API credentials are working."})
}
