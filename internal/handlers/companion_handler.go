package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NewMtnGoat/new-status/internal/gemini"
	"github.com/NewMtnGoat/new-status/internal/models"
	"github.com/NewMtnGoat/new-status/internal/services"
	"github.com/NewMtnGoat/new-status/pkg/logger"
	"github.com/NewMtnGoat/new-status/pkg/middleware"
)

// CompanionHandler exposes the generative features. Chat history is
// supplied by the client and never persisted; a failed generation is
// surfaced as a generic try-again message so the caller can roll back
// any optimistic state.
type CompanionHandler struct {
	Service *services.CompanionService
	Hub     *services.Hub
}

// NewCompanionHandler initializes a new CompanionHandler.
func NewCompanionHandler(service *services.CompanionService, hub *services.Hub) *CompanionHandler {
	return &CompanionHandler{Service: service, Hub: hub}
}

// ChatHandler is the premium AI-companion conversation turn.
func (h *CompanionHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Message string           `json:"message"`
		History []gemini.Content `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	reply, err := h.Service.Chat(r.Context(), body.History, body.Message)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			http.Error(w, "Message is required", http.StatusBadRequest)
			return
		}
		logger.Log.Warnf("Companion chat failed for %s: %v", claims.UserID, err)
		h.Hub.PushLocal(claims.UserID, models.NotifError, "I'm having a little trouble connecting right now. Please try again in a moment.")
		http.Error(w, "I'm having a little trouble connecting right now. Please try again in a moment.", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"reply": reply})
}

// DraftCheckInHandler generates a short check-in message from a topic.
func (h *CompanionHandler) DraftCheckInHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	message, err := h.Service.DraftCheckIn(r.Context(), body.Topic)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTopic) {
			h.Hub.PushLocal(claims.UserID, models.NotifError, "Please enter a topic for the message.")
			http.Error(w, "Please enter a topic for the message.", http.StatusBadRequest)
			return
		}
		logger.Log.Warnf("Check-in draft failed for %s: %v", claims.UserID, err)
		h.Hub.PushLocal(claims.UserID, models.NotifError, "Could not generate message. Try again.")
		http.Error(w, "Could not generate message. Try again.", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// CrisisGuidanceHandler returns responder tips for a crisis alert.
// It always answers 200: generation failure degrades to a fixed reminder.
func (h *CompanionHandler) CrisisGuidanceHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	guidance := h.Service.CrisisGuidance(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"guidance": guidance})
}

// GroundingExerciseHandler returns a generated grounding exercise.
func (h *CompanionHandler) GroundingExerciseHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	exercise, err := h.Service.GroundingExercise(r.Context())
	if err != nil {
		logger.Log.Warnf("Grounding exercise failed for %s: %v", claims.UserID, err)
		h.Hub.PushLocal(claims.UserID, models.NotifError, "Could not generate exercise.")
		http.Error(w, "Could not generate exercise.", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"exercise": exercise})
}
