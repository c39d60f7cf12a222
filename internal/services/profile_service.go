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
	ErrEmptyDisplayName = errors.New("display name cannot be empty")
	ErrInvalidStatus    = errors.New("unknown status")
)

// ProfileStore is the persistence surface the profile and circle
// services need, satisfied by repository.ProfileRepository.
type ProfileStore interface {
	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	UpdateDisplayName(ctx context.Context, id, name string) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateCircle(ctx context.Context, id string, circle []models.UserRef) error
	SetPremium(ctx context.Context, id string, premium bool) error
}

// ProfileService encapsulates the business logic for profile documents.
type ProfileService struct {
	repo ProfileStore
}

// NewProfileService creates a new instance of ProfileService.
func NewProfileService(repo ProfileStore) *ProfileService {
	return &ProfileService{repo: repo}
}

// EnsureProfile returns the user's profile, creating it with defaults on
// first sign-in: a generated display name, empty circle, status "ok",
// not premium.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to load profile: %v", err)
	}

	short := userID
	if len(short) > 6 {
		short = short[:6]
	}
	profile = &models.Profile{
		ID:          userID,
		DisplayName: fmt.Sprintf("User-%s", short),
		Circle:      []models.UserRef{},
		Status:      models.StatusOK,
		IsPremium:   false,
	}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	logrus.WithField("userID", userID).Info("Created profile on first sign-in")
	return profile, nil
}

// GetProfile retrieves a profile by user id.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %v", err)
	}
	return profile, nil
}

// UpdateDisplayName sets the user's display name after trimming it.
func (s *ProfileService) UpdateDisplayName(ctx context.Context, userID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyDisplayName
	}
	return s.repo.UpdateDisplayName(ctx, userID, name)
}

// UpdateStatus publishes a new mood status to the user's profile.
func (s *ProfileService) UpdateStatus(ctx context.Context, userID, status string) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, userID, status)
}

// Upgrade grants the premium entitlement.
func (s *ProfileService) Upgrade(ctx context.Context, userID string) error {
	return s.repo.SetPremium(ctx, userID, true)
}

// IsPremium reports the premium flag, used by the gating middleware.
func (s *ProfileService) IsPremium(ctx context.Context, userID string) (bool, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load profile: %v", err)
	}
	return profile.IsPremium, nil
}
