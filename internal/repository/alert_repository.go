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

// AlertRepository handles database operations on the shared alerts collection.
type AlertRepository struct {
	collection *mongo.Collection
}

// NewAlertRepository creates a new instance of AlertRepository.
func NewAlertRepository(db *mongo.Database) *AlertRepository {
	return &AlertRepository{
		collection: db.Collection("alerts"),
	}
}

// CreateAlert inserts a new alert with its recipient snapshot.
func (r *AlertRepository) CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	alert.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, alert)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert alert")
		return nil, fmt.Errorf("failed to create alert: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	alert.ID = insertedID

	return alert, nil
}

// GetAlertByID retrieves a single alert.
func (r *AlertRepository) GetAlertByID(ctx context.Context, id primitive.ObjectID) (*models.Alert, error) {
	var alert models.Alert
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&alert)
	if err != nil {
		return nil, fmt.Errorf("failed to find alert: %v", err)
	}
	return &alert, nil
}

// GetAlertsForRecipient returns the non-resolved alerts whose recipient
// snapshot contains the given user, newest first. Resolved alerts are
// never deleted, only filtered out here.
func (r *AlertRepository) GetAlertsForRecipient(ctx context.Context, userID string) ([]models.Alert, error) {
	filter := bson.M{
		"circle_user_ids": userID,
		"status":          bson.M{"$in": []string{models.AlertActive, models.AlertAcknowledged}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %v", err)
	}
	defer cursor.Close(ctx)

	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %v", err)
	}
	return alerts, nil
}

// UpdateAlertStatus sets an alert's status and, when responding, the
// responder reference. Last writer wins; there is no transactional guard.
func (r *AlertRepository) UpdateAlertStatus(ctx context.Context, id primitive.ObjectID, status string, responder *models.UserRef) error {
	fields := bson.M{"status": status}
	if responder != nil {
		fields["responder"] = responder
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"alertID": id.Hex(),
			"status":  status,
			"error":   err,
		}).Error("Failed to update alert status")
		return fmt.Errorf("failed to update alert status: %v", err)
	}
	return nil
}
