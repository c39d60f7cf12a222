package models

import (
	"time"
)

// Mood statuses a user can publish to their circle.
const (
	StatusOK         = "ok"
	StatusGood       = "good"
	StatusUneasy     = "uneasy"
	StatusStruggling = "struggling"
)

// ValidStatus reports whether s is one of the allowed mood statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusOK, StatusGood, StatusUneasy, StatusStruggling:
		return true
	}
	return false
}

// UserRef is the {id, name} pair embedded wherever one user points at
// another: circle membership, alert sender/responder, notification origin.
type UserRef struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Profile is a user's document. The ID is the opaque identity-provider
// user id; profiles are created on first sign-in and never deleted.
type Profile struct {
	ID          string    `bson:"_id" json:"id"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	Circle      []UserRef `bson:"circle" json:"circle"`
	Status      string    `bson:"status" json:"status"`
	IsPremium   bool      `bson:"is_premium" json:"is_premium"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// InCircle reports whether the given user id is in the profile's circle.
func (p *Profile) InCircle(userID string) bool {
	for _, member := range p.Circle {
		if member.ID == userID {
			return true
		}
	}
	return false
}
