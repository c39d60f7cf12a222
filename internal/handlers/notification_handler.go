package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/NewMtnGoat/new-status/internal/models"
	"github.com/NewMtnGoat/new-status/internal/services"
	"github.com/NewMtnGoat/new-status/pkg/logger"
	"github.com/NewMtnGoat/new-status/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler manages HTTP endpoints for per-recipient
// notifications, including the check-in and wellbeing-chat sends.
type NotificationHandler struct {
	Service  *services.NotificationService
	Profiles *services.ProfileService
	Hub      *services.Hub
}

// NewNotificationHandler initializes a new NotificationHandler.
func NewNotificationHandler(service *services.NotificationService, profiles *services.ProfileService, hub *services.Hub) *NotificationHandler {
	return &NotificationHandler{Service: service, Profiles: profiles, Hub: hub}
}

// GetUserNotificationsHandler lists the caller's pending notifications.
func (h *NotificationHandler) GetUserNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notifications, err := h.Service.GetUserNotifications(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch notifications: %v", err)
		http.Error(w, "Failed to get notifications", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}

// DeleteNotificationHandler removes one of the caller's notifications.
func (h *NotificationHandler) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notifID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid notification ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(r.Context(), claims.UserID, notifID); err != nil {
		logger.Log.Errorf("Failed to delete notification: %v", err)
		http.Error(w, "Failed to delete notification", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Notification deleted"})
}

// SendCheckInHandler sends a check-in message to a circle member.
func (h *NotificationHandler) SendCheckInHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		To      string `json:"to"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	sender, recipient, ok := h.resolveRecipient(w, r, claims.UserID, body.To)
	if !ok {
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		h.Hub.PushLocal(claims.UserID, models.NotifError, "Please generate a message first.")
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	from := models.UserRef{ID: sender.ID, Name: sender.DisplayName}
	if _, err := h.Service.Send(r.Context(), recipient.ID, body.Message, models.NotifCheckIn, &from); err != nil {
		logger.Log.Errorf("Failed to send check-in from %s: %v", claims.UserID, err)
		h.Hub.PushLocal(claims.UserID, models.NotifError, "Could not send status check.")
		http.Error(w, "Could not send status check.", http.StatusInternalServerError)
		return
	}

	h.Hub.PushLocal(claims.UserID, models.NotifSuccess, "Status check sent!")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Status check sent!"})
}

// SendWellbeingRequestHandler asks a circle member for a wellbeing chat.
func (h *NotificationHandler) SendWellbeingRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	sender, recipient, ok := h.resolveRecipient(w, r, claims.UserID, body.To)
	if !ok {
		return
	}

	from := models.UserRef{ID: sender.ID, Name: sender.DisplayName}
	if _, err := h.Service.Send(r.Context(), recipient.ID, "would like to have a wellbeing chat.", models.NotifWellbeing, &from); err != nil {
		logger.Log.Errorf("Failed to send wellbeing request from %s: %v", claims.UserID, err)
		h.Hub.PushLocal(claims.UserID, models.NotifError, "Could not send chat request.")
		http.Error(w, "Could not send chat request.", http.StatusInternalServerError)
		return
	}

	message := "Chat request sent to " + recipient.Name + "."
	h.Hub.PushLocal(claims.UserID, models.NotifSuccess, message)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// resolveRecipient checks that the target is a member of the sender's
// circle before any notification write.
func (h *NotificationHandler) resolveRecipient(w http.ResponseWriter, r *http.Request, userID, to string) (*models.Profile, *models.UserRef, bool) {
	if strings.TrimSpace(to) == "" {
		h.Hub.PushLocal(userID, models.NotifError, "Please select a friend.")
		http.Error(w, "Please select a friend.", http.StatusBadRequest)
		return nil, nil, false
	}

	sender, err := h.Profiles.GetProfile(r.Context(), userID)
	if err != nil {
		logger.Log.Errorf("Failed to load profile %s: %v", userID, err)
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return nil, nil, false
	}

	for i := range sender.Circle {
		if sender.Circle[i].ID == to {
			return sender, &sender.Circle[i], true
		}
	}

	h.Hub.PushLocal(userID, models.NotifError, "This user is not in your circle.")
	http.Error(w, "This user is not in your circle.", http.StatusForbidden)
	return nil, nil, false
}
