package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification type tags, mirrored in the client toast styling.
const (
	NotifInfo         = "info"
	NotifCheckIn      = "check-in"
	NotifWellbeing    = "wellbeing-request"
	NotifAcknowledged = "acknowledged"
	NotifResolved     = "resolved"
	NotifRedAlert     = "red-alert"
	NotifYellowAlert  = "yellow-alert"
	NotifError        = "error"
	NotifSuccess      = "success"
)

// Notification is a transient per-recipient message. A delivered
// notification is deleted by the recipient's client shortly after it is
// shown; the hourly sweep removes whatever was never delivered.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Message   string             `bson:"message" json:"message"`
	Type      string             `bson:"type" json:"type"`
	From      *UserRef           `bson:"from,omitempty" json:"from,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
}
