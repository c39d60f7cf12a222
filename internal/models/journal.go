package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Journal entry moods.
const (
	MoodGood = "good"
	MoodOK   = "ok"
	MoodBad  = "bad"
)

// ValidMood reports whether mood is a known journal mood.
func ValidMood(mood string) bool {
	return mood == MoodGood || mood == MoodOK || mood == MoodBad
}

// JournalEntry is an append-only private record. Entries are never
// updated or deleted through the application.
type JournalEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Mood      string             `bson:"mood" json:"mood"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
