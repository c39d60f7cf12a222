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

// JournalRepository handles database operations on private journal entries.
type JournalRepository struct {
	collection *mongo.Collection
}

// NewJournalRepository creates a new instance of JournalRepository.
func NewJournalRepository(db *mongo.Database) *JournalRepository {
	return &JournalRepository{
		collection: db.Collection("journal_entries"),
	}
}

// CreateEntry appends a new journal entry for its owner.
func (r *JournalRepository) CreateEntry(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error) {
	entry.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert journal entry")
		return nil, fmt.Errorf("failed to create journal entry: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	entry.ID = insertedID

	return entry, nil
}

// GetEntriesByUser returns a user's entries, newest first. A limit of 0
// means no limit.
func (r *JournalRepository) GetEntriesByUser(ctx context.Context, userID string, limit int64) ([]models.JournalEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journal entries: %v", err)
	}
	defer cursor.Close(ctx)

	var entries []models.JournalEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode journal entries: %v", err)
	}
	return entries, nil
}
