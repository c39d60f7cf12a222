package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NewMtnGoat/new-status/internal/models"
)

type fakeJournalStore struct {
	entries []models.JournalEntry
}

func (f *fakeJournalStore) CreateEntry(_ context.Context, entry *models.JournalEntry) (*models.JournalEntry, error) {
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return entry, nil
}

func (f *fakeJournalStore) GetEntriesByUser(_ context.Context, userID string, limit int64) ([]models.JournalEntry, error) {
	var out []models.JournalEntry
	for _, entry := range f.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func TestJournalService_AddEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects blank text", func(t *testing.T) {
		service := NewJournalService(&fakeJournalStore{}, &fakeBridge{})
		_, err := service.AddEntry(ctx, "alice", models.MoodGood, "   ")
		require.ErrorIs(t, err, ErrEmptyEntryText)
	})

	t.Run("rejects an unknown mood", func(t *testing.T) {
		service := NewJournalService(&fakeJournalStore{}, &fakeBridge{})
		_, err := service.AddEntry(ctx, "alice", "ecstatic", "a good day")
		require.ErrorIs(t, err, ErrInvalidMood)
	})

	t.Run("persists the entry", func(t *testing.T) {
		store := &fakeJournalStore{}
		service := NewJournalService(store, &fakeBridge{})

		entry, err := service.AddEntry(ctx, "alice", models.MoodBad, "rough night")

		require.NoError(t, err)
		assert.Equal(t, "alice", entry.UserID)
		assert.Equal(t, models.MoodBad, entry.Mood)
		assert.Len(t, store.entries, 1)
	})
}

func TestJournalService_Ask(t *testing.T) {
	ctx := context.Background()

	seeded := func() *fakeJournalStore {
		return &fakeJournalStore{entries: []models.JournalEntry{
			{UserID: "alice", Mood: models.MoodGood, Text: "went for a walk", CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
			{UserID: "alice", Mood: models.MoodBad, Text: "barely slept", CreatedAt: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)},
		}}
	}

	t.Run("rejects a blank question", func(t *testing.T) {
		service := NewJournalService(seeded(), &fakeBridge{})
		_, err := service.Ask(ctx, "alice", "  ")
		require.ErrorIs(t, err, ErrEmptyQuestion)
	})

	t.Run("requires at least two entries", func(t *testing.T) {
		store := &fakeJournalStore{entries: []models.JournalEntry{
			{UserID: "alice", Mood: models.MoodOK, Text: "only one"},
		}}
		service := NewJournalService(store, &fakeBridge{})

		_, err := service.Ask(ctx, "alice", "how am I sleeping?")
		require.ErrorIs(t, err, ErrNotEnoughEntries)
	})

	t.Run("prompt carries the dated entries and the question", func(t *testing.T) {
		bridge := &fakeBridge{reply: "You slept poorly on the 15th."}
		service := NewJournalService(seeded(), bridge)

		answer, err := service.Ask(ctx, "alice", "how am I sleeping?")

		require.NoError(t, err)
		assert.Equal(t, "You slept poorly on the 15th.", answer)
		require.Len(t, bridge.prompts, 1)
		prompt := bridge.prompts[0]
		assert.Contains(t, prompt, "On 3/14/2026, I felt good and wrote: 'went for a walk'")
		assert.Contains(t, prompt, "On 3/15/2026, I felt bad and wrote: 'barely slept'")
		assert.Contains(t, prompt, `"how am I sleeping?"`)
		assert.Contains(t, prompt, "Do not give medical advice.")
	})

	t.Run("bridge failures propagate", func(t *testing.T) {
		bridge := &fakeBridge{failWith: errors.New("unavailable")}
		service := NewJournalService(seeded(), bridge)

		_, err := service.Ask(ctx, "alice", "how am I sleeping?")
		require.Error(t, err)
	})
}
