package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/NewMtnGoat/new-status/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository handles database operations on per-recipient
// notification documents.
type NotificationRepository struct {
	collection *mongo.Collection
	retention  time.Duration
}

// NewNotificationRepository creates a new instance of NotificationRepository.
// retention caps how long an undelivered notification document survives.
func NewNotificationRepository(db *mongo.Database, retention time.Duration) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
		retention:  retention,
	}
}

// CreateNotification inserts a new notification for its recipient.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(r.retention)

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return nil, fmt.Errorf("failed to create notification: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	notif.ID = insertedID

	return notif, nil
}

// GetUserNotifications returns a user's pending notifications, newest first.
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	filter := bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

// DeleteNotification deletes a notification. The user id is part of the
// filter so one user can never delete from another's list.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, userID string, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %v", err)
	}
	return nil
}

// DeleteExpiredNotifications removes documents past their retention window.
func (r *NotificationRepository) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	filter := bson.M{"expires_at": bson.M{"$lte": time.Now()}}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %v", err)
	}
	logrus.Infof("Deleted %d expired notifications", result.DeletedCount)
	return result.DeletedCount, nil
}
