package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NewMtnGoat/new-status/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrEmptyFriendID   = errors.New("friend id cannot be empty")
	ErrSelfAdd         = errors.New("you cannot add yourself")
	ErrAlreadyInCircle = errors.New("this user is already in your circle")
	ErrFriendNotFound  = errors.New("user id not found")
	ErrNotInCircle     = errors.New("this user is not in your circle")
)

// CircleService manages a user's curated list of trusted contacts.
// All guards run before any write; a circle never contains its owner.
type CircleService struct {
	profiles ProfileStore
}

// NewCircleService creates a new CircleService.
func NewCircleService(profiles ProfileStore) *CircleService {
	return &CircleService{profiles: profiles}
}

// AddMember looks up the friend's profile by id and appends {id, name}
// to the owner's circle.
func (s *CircleService) AddMember(ctx context.Context, userID, friendID string) (*models.UserRef, error) {
	friendID = strings.TrimSpace(friendID)
	if friendID == "" {
		return nil, ErrEmptyFriendID
	}
	if friendID == userID {
		return nil, ErrSelfAdd
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %v", err)
	}
	if profile.InCircle(friendID) {
		return nil, ErrAlreadyInCircle
	}

	friend, err := s.profiles.GetProfile(ctx, friendID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFriendNotFound
		}
		return nil, fmt.Errorf("failed to look up friend: %v", err)
	}

	member := models.UserRef{ID: friend.ID, Name: friend.DisplayName}
	circle := append(profile.Circle, member)
	if err := s.profiles.UpdateCircle(ctx, userID, circle); err != nil {
		return nil, err
	}

	logrus.Infof("User %s added %s to their circle", userID, friendID)
	return &member, nil
}

// RemoveMember filters the friend out of the owner's circle.
func (s *CircleService) RemoveMember(ctx context.Context, userID, friendID string) error {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %v", err)
	}
	if !profile.InCircle(friendID) {
		return ErrNotInCircle
	}

	circle := make([]models.UserRef, 0, len(profile.Circle))
	for _, member := range profile.Circle {
		if member.ID != friendID {
			circle = append(circle, member)
		}
	}
	return s.profiles.UpdateCircle(ctx, userID, circle)
}

// Members returns the owner's circle list.
func (s *CircleService) Members(ctx context.Context, userID string) ([]models.UserRef, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %v", err)
	}
	return profile.Circle, nil
}

// MemberStatuses point-reads every circle member's profile and returns
// their current mood statuses. Members whose profile cannot be found
// default to "ok".
func (s *CircleService) MemberStatuses(ctx context.Context, userID string) (map[string]string, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %v", err)
	}

	statuses := make(map[string]string, len(profile.Circle))
	if len(profile.Circle) == 0 {
		return statuses, nil
	}

	ids := make([]string, 0, len(profile.Circle))
	for _, member := range profile.Circle {
		ids = append(ids, member.ID)
		statuses[member.ID] = models.StatusOK
	}

	members, err := s.profiles.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		if member.Status != "" {
			statuses[member.ID] = member.Status
		}
	}
	return statuses, nil
}
