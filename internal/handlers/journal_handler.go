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

// JournalHandler manages HTTP endpoints for the private journal.
type JournalHandler struct {
	Service *services.JournalService
	Hub     *services.Hub
}

// NewJournalHandler initializes a new JournalHandler.
func NewJournalHandler(service *services.JournalService, hub *services.Hub) *JournalHandler {
	return &JournalHandler{Service: service, Hub: hub}
}

// CreateEntryHandler appends a journal entry.
func (h *JournalHandler) CreateEntryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Mood string `json:"mood"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	entry, err := h.Service.AddEntry(r.Context(), claims.UserID, body.Mood, body.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyEntryText):
			h.Hub.PushLocal(claims.UserID, models.NotifError, "Entry text cannot be empty.")
			http.Error(w, "Entry text cannot be empty.", http.StatusBadRequest)
		case errors.Is(err, services.ErrInvalidMood):
			http.Error(w, "Unknown mood", http.StatusBadRequest)
		default:
			logger.Log.Errorf("Failed to create journal entry for %s: %v", claims.UserID, err)
			http.Error(w, "Failed to save entry", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// GetEntriesHandler lists the caller's entries, newest first.
func (h *JournalHandler) GetEntriesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.Service.Entries(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch journal entries for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to get entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// AskJournalHandler answers a question from the caller's recent entries.
// Routed behind the premium middleware.
func (h *JournalHandler) AskJournalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	answer, err := h.Service.Ask(r.Context(), claims.UserID, body.Question)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyQuestion):
			h.Hub.PushLocal(claims.UserID, models.NotifError, "Please enter a question.")
			http.Error(w, "Please enter a question.", http.StatusBadRequest)
		case errors.Is(err, services.ErrNotEnoughEntries):
			h.Hub.PushLocal(claims.UserID, models.NotifInfo, "Need at least 2 entries to ask a question.")
			http.Error(w, "Need at least 2 entries to ask a question.", http.StatusPreconditionFailed)
		default:
			logger.Log.Warnf("Journal question failed for %s: %v", claims.UserID, err)
			h.Hub.PushLocal(claims.UserID, models.NotifError, "Could not get an answer.")
			http.Error(w, "Could not get an answer.", http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"answer": answer})
}
