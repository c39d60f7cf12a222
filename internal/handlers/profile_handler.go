package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NewMtnGoat/new-status/internal/models"
	"github.com/NewMtnGoat/new-status/internal/services"
	"github.com/NewMtnGoat/new-status/pkg/logger"
	"github.com/NewMtnGoat/new-status/pkg/middleware"
)

// ProfileHandler manages the user's own profile document.
type ProfileHandler struct {
	Service *services.ProfileService
	Hub     *services.Hub
}

// NewProfileHandler initializes a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService, hub *services.Hub) *ProfileHandler {
	return &ProfileHandler{Service: service, Hub: hub}
}

// GetProfileHandler returns the caller's profile.
func (h *ProfileHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.Service.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to load profile for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// UpdateProfileHandler changes the display name.
func (h *ProfileHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.Service.UpdateDisplayName(r.Context(), claims.UserID, body.DisplayName); err != nil {
		if errors.Is(err, services.ErrEmptyDisplayName) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.Errorf("Failed to update display name for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Profile updated"})
}

// UpdateStatusHandler publishes a new mood status.
func (h *ProfileHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.Service.UpdateStatus(r.Context(), claims.UserID, body.Status); err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.Errorf("Failed to update status for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": body.Status})
}

// UpgradeHandler grants the premium entitlement.
func (h *ProfileHandler) UpgradeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.Upgrade(r.Context(), claims.UserID); err != nil {
		logger.Log.Errorf("Failed to upgrade user %s: %v", claims.UserID, err)
		http.Error(w, "Failed to upgrade", http.StatusInternalServerError)
		return
	}

	h.Hub.PushLocal(claims.UserID, models.NotifSuccess, "Welcome to Premium! All features unlocked.")
	logger.Log.Infof("User %s upgraded to premium", claims.UserID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Welcome to Premium! All features unlocked."})
}
