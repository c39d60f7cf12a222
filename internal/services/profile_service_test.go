package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NewMtnGoat/new-status/internal/models"
)

func TestProfileService_EnsureProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("first sign-in creates a default profile", func(t *testing.T) {
		store := newFakeProfileStore()
		service := NewProfileService(store)

		profile, err := service.EnsureProfile(ctx, "abcdef123456")

		require.NoError(t, err)
		assert.Equal(t, "abcdef123456", profile.ID)
		assert.Equal(t, "User-abcdef", profile.DisplayName)
		assert.Equal(t, models.StatusOK, profile.Status)
		assert.Empty(t, profile.Circle)
		assert.False(t, profile.IsPremium)
		assert.Contains(t, store.profiles, "abcdef123456")
	})

	t.Run("returning user keeps their profile", func(t *testing.T) {
		existing := &models.Profile{ID: "alice", DisplayName: "Alice", Status: models.StatusUneasy, IsPremium: true}
		service := NewProfileService(newFakeProfileStore(existing))

		profile, err := service.EnsureProfile(ctx, "alice")

		require.NoError(t, err)
		assert.Equal(t, "Alice", profile.DisplayName)
		assert.Equal(t, models.StatusUneasy, profile.Status)
		assert.True(t, profile.IsPremium)
	})
}

func TestProfileService_UpdateDisplayName(t *testing.T) {
	ctx := context.Background()
	store := newFakeProfileStore(&models.Profile{ID: "alice", DisplayName: "Alice"})
	service := NewProfileService(store)

	require.ErrorIs(t, service.UpdateDisplayName(ctx, "alice", "   "), ErrEmptyDisplayName)

	require.NoError(t, service.UpdateDisplayName(ctx, "alice", "  Ally  "))
	assert.Equal(t, "Ally", store.profiles["alice"].DisplayName)
}

func TestProfileService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeProfileStore(&models.Profile{ID: "alice", Status: models.StatusOK})
	service := NewProfileService(store)

	require.ErrorIs(t, service.UpdateStatus(ctx, "alice", "thriving"), ErrInvalidStatus)

	require.NoError(t, service.UpdateStatus(ctx, "alice", models.StatusStruggling))
	assert.Equal(t, models.StatusStruggling, store.profiles["alice"].Status)
}

func TestProfileService_Premium(t *testing.T) {
	ctx := context.Background()
	store := newFakeProfileStore(&models.Profile{ID: "alice"})
	service := NewProfileService(store)

	premium, err := service.IsPremium(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, premium)

	require.NoError(t, service.Upgrade(ctx, "alice"))

	premium, err = service.IsPremium(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, premium)
}
