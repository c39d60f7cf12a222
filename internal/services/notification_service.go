package services

import (
	"context"
	"fmt"

	"github.com/NewMtnGoat/new-status/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationStore is the persistence surface the notification service
// needs, satisfied by repository.NotificationRepository.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error)
	GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	DeleteNotification(ctx context.Context, userID string, id primitive.ObjectID) error
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

// NotificationService delivers per-recipient notifications: one document
// write followed by one stream publish. The two are independent and
// unguarded; a recipient may observe either first.
type NotificationService struct {
	repo   NotificationStore
	events EventSink
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo NotificationStore, events EventSink) *NotificationService {
	return &NotificationService{
		repo:   repo,
		events: events,
	}
}

// Send writes a notification into the recipient's list and publishes the
// "added" event to their stream.
func (s *NotificationService) Send(ctx context.Context, recipientID, message, notifType string, from *models.UserRef) (*models.Notification, error) {
	notif := &models.Notification{
		UserID:  recipientID,
		Message: message,
		Type:    notifType,
		From:    from,
	}

	created, err := s.repo.CreateNotification(ctx, notif)
	if err != nil {
		return nil, fmt.Errorf("failed to send notification: %v", err)
	}

	s.events.PublishNotification(recipientID, *created)
	return created, nil
}

// GetUserNotifications returns a user's pending notifications.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// Delete removes one of the user's own notifications.
func (s *NotificationService) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	return s.repo.DeleteNotification(ctx, userID, id)
}

// DeleteExpired is called by the scheduler to sweep undelivered leftovers.
func (s *NotificationService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredNotifications(ctx)
}
