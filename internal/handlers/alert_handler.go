package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NewMtnGoat/new-status/internal/models"
	"github.com/NewMtnGoat/new-status/internal/services"
	"github.com/NewMtnGoat/new-status/pkg/logger"
	"github.com/NewMtnGoat/new-status/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertHandler manages HTTP endpoints for the alert lifecycle.
type AlertHandler struct {
	Service  *services.AlertService
	Profiles *services.ProfileService
	Hub      *services.Hub
}

// NewAlertHandler initializes a new AlertHandler.
func NewAlertHandler(service *services.AlertService, profiles *services.ProfileService, hub *services.Hub) *AlertHandler {
	return &AlertHandler{Service: service, Profiles: profiles, Hub: hub}
}

// SendAlertHandler broadcasts a crisis or support alert to the circle.
func (h *AlertHandler) SendAlertHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Level string `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	sender, err := h.Profiles.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to load sender profile %s: %v", claims.UserID, err)
		http.Error(w, "Failed to send alert", http.StatusInternalServerError)
		return
	}

	alert, err := h.Service.Send(r.Context(), sender, body.Level)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCircle):
			h.Hub.PushLocal(claims.UserID, models.NotifError, "Add friends to your circle first.")
			http.Error(w, "Add friends to your circle first.", http.StatusUnprocessableEntity)
		case errors.Is(err, services.ErrInvalidLevel):
			http.Error(w, "Unknown alert level", http.StatusBadRequest)
		default:
			logger.Log.Errorf("Failed to send alert for %s: %v", claims.UserID, err)
			http.Error(w, "Failed to send alert", http.StatusInternalServerError)
		}
		return
	}

	if alert.Level == models.LevelYellow {
		h.Hub.PushLocal(claims.UserID, models.NotifSuccess, "Support request sent to your circle.")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(alert)
}

// RespondToAlertHandler lets a circle member acknowledge an alert.
func (h *AlertHandler) RespondToAlertHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	alertID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	responder, err := h.Profiles.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to load responder profile %s: %v", claims.UserID, err)
		http.Error(w, "Failed to respond to alert", http.StatusInternalServerError)
		return
	}

	alert, err := h.Service.Respond(r.Context(), responder, alertID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlertResolved):
			http.Error(w, "Alert is already resolved", http.StatusConflict)
		case errors.Is(err, services.ErrSelfResponse):
			http.Error(w, "You cannot respond to your own alert", http.StatusForbidden)
		case errors.Is(err, services.ErrNotCircleMember):
			http.Error(w, "Alert is not addressed to you", http.StatusForbidden)
		default:
			logger.Log.Errorf("Failed to respond to alert %s: %v", alertID.Hex(), err)
			http.Error(w, "Failed to respond to alert", http.StatusInternalServerError)
		}
		return
	}

	logger.Log.Infof("User %s responded to alert %s", claims.UserID, alertID.Hex())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alert)
}

// ResolveAlertHandler lets the original sender close their alert.
func (h *AlertHandler) ResolveAlertHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	alertID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	sender, err := h.Profiles.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to load sender profile %s: %v", claims.UserID, err)
		http.Error(w, "Failed to resolve alert", http.StatusInternalServerError)
		return
	}

	alert, err := h.Service.Resolve(r.Context(), sender, alertID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlertResolved):
			http.Error(w, "Alert is already resolved", http.StatusConflict)
		case errors.Is(err, services.ErrNotAlertOwner):
			http.Error(w, "Only the sender can resolve an alert", http.StatusForbidden)
		default:
			logger.Log.Errorf("Failed to resolve alert %s: %v", alertID.Hex(), err)
			http.Error(w, "Failed to resolve alert", http.StatusInternalServerError)
		}
		return
	}

	logger.Log.Infof("User %s resolved alert %s", claims.UserID, alertID.Hex())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alert)
}

// GetIncomingAlertsHandler lists non-resolved alerts addressed to the caller.
func (h *AlertHandler) GetIncomingAlertsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	alerts, err := h.Service.Incoming(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch incoming alerts for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to get alerts", http.StatusInternalServerError)
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alerts)
}

// GetCrisisAlertHandler surfaces the first active red alert, if any.
func (h *AlertHandler) GetCrisisAlertHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	alert, err := h.Service.Crisis(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to derive crisis alert for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to get crisis alert", http.StatusInternalServerError)
		return
	}
	if alert == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alert)
}
