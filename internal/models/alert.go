package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alert lifecycle states. Resolved is terminal: no transition leaves it.
const (
	AlertActive       = "active"
	AlertAcknowledged = "acknowledged"
	AlertResolved     = "resolved"
)

// Alert levels. Red is a crisis, yellow a support request.
const (
	LevelRed    = "red"
	LevelYellow = "yellow"
)

// ValidLevel reports whether level is a known alert level.
func ValidLevel(level string) bool {
	return level == LevelRed || level == LevelYellow
}

// Alert is a broadcast record from one user to their circle.
// CircleUserIDs is snapshotted at send time and never changes: adding
// someone to the circle later does not grant visibility of past alerts.
type Alert struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromUser      UserRef            `bson:"from_user" json:"from_user"`
	CircleUserIDs []string           `bson:"circle_user_ids" json:"circle_user_ids"`
	Status        string             `bson:"status" json:"status"`
	Responder     *UserRef           `bson:"responder,omitempty" json:"responder,omitempty"`
	Level         string             `bson:"level" json:"level"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// AddressedTo reports whether the alert's recipient snapshot contains userID.
func (a *Alert) AddressedTo(userID string) bool {
	for _, id := range a.CircleUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
