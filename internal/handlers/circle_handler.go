package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/NewMtnGoat/new-status/internal/models"
	"github.com/NewMtnGoat/new-status/internal/services"
	"github.com/NewMtnGoat/new-status/pkg/logger"
	"github.com/NewMtnGoat/new-status/pkg/middleware"
	"github.com/gorilla/mux"
)

// CircleHandler manages HTTP endpoints for the user's support circle.
type CircleHandler struct {
	Service *services.CircleService
	Hub     *services.Hub
}

// NewCircleHandler initializes a new CircleHandler.
func NewCircleHandler(service *services.CircleService, hub *services.Hub) *CircleHandler {
	return &CircleHandler{Service: service, Hub: hub}
}

// AddMemberHandler adds a friend to the caller's circle by user id.
// Every precondition failure surfaces as one local error notification.
func (h *CircleHandler) AddMemberHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		FriendID string `json:"friend_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	member, err := h.Service.AddMember(r.Context(), claims.UserID, body.FriendID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfAdd):
			h.Hub.PushLocal(claims.UserID, models.NotifError, "You cannot add yourself.")
			http.Error(w, "You cannot add yourself.", http.StatusBadRequest)
		case errors.Is(err, services.ErrAlreadyInCircle):
			h.Hub.PushLocal(claims.UserID, models.NotifError, "This user is already in your circle.")
			http.Error(w, "This user is already in your circle.", http.StatusConflict)
		case errors.Is(err, services.ErrFriendNotFound):
			h.Hub.PushLocal(claims.UserID, models.NotifError, "User ID not found.")
			http.Error(w, "User ID not found.", http.StatusNotFound)
		case errors.Is(err, services.ErrEmptyFriendID):
			http.Error(w, "Friend ID is required", http.StatusBadRequest)
		default:
			logger.Log.Errorf("Failed to add circle member for %s: %v", claims.UserID, err)
			h.Hub.PushLocal(claims.UserID, models.NotifError, "Could not add friend.")
			http.Error(w, "Could not add friend.", http.StatusInternalServerError)
		}
		return
	}

	h.Hub.PushLocal(claims.UserID, models.NotifSuccess, fmt.Sprintf("%s added to your circle.", member.Name))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(member)
}

// RemoveMemberHandler removes a friend from the caller's circle.
func (h *CircleHandler) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	friendID := mux.Vars(r)["id"]
	if err := h.Service.RemoveMember(r.Context(), claims.UserID, friendID); err != nil {
		if errors.Is(err, services.ErrNotInCircle) {
			http.Error(w, "This user is not in your circle.", http.StatusNotFound)
			return
		}
		logger.Log.Errorf("Failed to remove circle member for %s: %v", claims.UserID, err)
		h.Hub.PushLocal(claims.UserID, models.NotifError, "Could not remove friend.")
		http.Error(w, "Could not remove friend.", http.StatusInternalServerError)
		return
	}

	h.Hub.PushLocal(claims.UserID, models.NotifSuccess, "Friend removed from circle.")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Friend removed from circle."})
}

// GetCircleHandler lists the caller's circle members.
func (h *CircleHandler) GetCircleHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	members, err := h.Service.Members(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch circle for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to get circle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(members)
}

// GetCircleStatusesHandler returns each member's current mood status.
func (h *CircleHandler) GetCircleStatusesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	statuses, err := h.Service.MemberStatuses(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch circle statuses for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to get circle statuses", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statuses)
}
