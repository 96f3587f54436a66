package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-verify/pkg/phone"
	"github.com/tendant/simple-verify/pkg/profile"
)

// Handle exposes per-user second-factor settings.
type Handle struct {
	profileService *profile.ProfileService
}

func NewHandle(profileService *profile.ProfileService) Handle {
	return Handle{profileService: profileService}
}

// Routes mounts the profile endpoints on the given router. Protect the
// router so users can only reach their own profile before mounting.
func Routes(r chi.Router, handle Handle) {
	r.Get("/users/{userID}/2fa", handle.GetProfile)
	r.Put("/users/{userID}/2fa", handle.SaveProfile)
	r.Delete("/users/{userID}/2fa", handle.DeleteProfile)
}

// ProfileResponse is a second-factor profile with the phone masked.
type ProfileResponse struct {
	UserID      string `json:"user_id"`
	MaskedPhone string `json:"masked_phone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// SaveProfileRequest carries new second-factor settings.
type SaveProfileRequest struct {
	Phone   string `json:"phone"`
	Enabled bool   `json:"enabled"`
}

// GetProfile returns the user's settings with the phone number masked.
// (GET /users/{userID}/2fa)
func (h Handle) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	p, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to get profile", "userId", userID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to get profile"})
		return
	}

	render.JSON(w, r, toResponse(p))
}

// SaveProfile stores new second-factor settings for the user.
// (PUT /users/{userID}/2fa)
func (h Handle) SaveProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var data SaveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}

	p, err := h.profileService.SaveProfile(r.Context(), userID, data.Phone, data.Enabled)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}

	render.JSON(w, r, toResponse(p))
}

// DeleteProfile removes the user's second-factor settings.
// (DELETE /users/{userID}/2fa)
func (h Handle) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.profileService.DeleteProfile(r.Context(), userID); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Profile not found"})
			return
		}
		slog.Error("Failed to delete profile", "userId", userID, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to delete profile"})
		return
	}

	render.JSON(w, r, map[string]string{"message": "Profile deleted"})
}

func toResponse(p profile.Profile) ProfileResponse {
	resp := ProfileResponse{UserID: p.UserID, Enabled: p.Enabled}
	if p.Phone != "" {
		resp.MaskedPhone = phone.Mask(p.Phone)
	}
	return resp
}
