package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/NewMtnGoat/new-status/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProfileRepository handles database operations on user profile documents.
type ProfileRepository struct {
	collection *mongo.Collection
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{
		collection: db.Collection("profiles"),
	}
}

// CreateProfile inserts a new profile document keyed by the user's id.
func (r *ProfileRepository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()
	if profile.Circle == nil {
		profile.Circle = []models.UserRef{}
	}

	if _, err := r.collection.InsertOne(ctx, profile); err != nil {
		logrus.WithError(err).Error("Failed to insert profile")
		return fmt.Errorf("failed to create profile: %v", err)
	}

	logrus.WithField("userID", profile.ID).Info("Profile created")
	return nil
}

// GetProfile retrieves a profile by user id. Returns mongo.ErrNoDocuments
// when the profile has not been created yet.
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfilesByIDs retrieves the profiles for a set of user ids.
func (r *ProfileRepository) GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %v", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %v", err)
	}
	return profiles, nil
}

// UpdateDisplayName sets a profile's display name.
func (r *ProfileRepository) UpdateDisplayName(ctx context.Context, id, name string) error {
	return r.setFields(ctx, id, bson.M{"display_name": name})
}

// UpdateStatus sets a profile's mood status.
func (r *ProfileRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.setFields(ctx, id, bson.M{"status": status})
}

// UpdateCircle replaces a profile's circle member list.
func (r *ProfileRepository) UpdateCircle(ctx context.Context, id string, circle []models.UserRef) error {
	if circle == nil {
		circle = []models.UserRef{}
	}
	return r.setFields(ctx, id, bson.M{"circle": circle})
}

// SetPremium flips the premium entitlement flag.
func (r *ProfileRepository) SetPremium(ctx context.Context, id string, premium bool) error {
	return r.setFields(ctx, id, bson.M{"is_premium": premium})
}

func (r *ProfileRepository) setFields(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id,
			"error":  err,
		}).Error("Failed to update profile")
		return fmt.Errorf("failed to update profile: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile %s not found", id)
	}
	return nil
}
