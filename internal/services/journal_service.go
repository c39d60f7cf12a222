package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NewMtnGoat/new-status/internal/models"
)

var (
	ErrEmptyEntryText   = errors.New("entry text cannot be empty")
	ErrInvalidMood      = errors.New("unknown mood")
	ErrEmptyQuestion    = errors.New("please enter a question")
	ErrNotEnoughEntries = errors.New("need at least 2 entries to ask a question")
)

// askEntryLimit caps how many recent entries feed the Q&A prompt.
const askEntryLimit = 15

// JournalStore is the persistence surface the journal service needs,
// satisfied by repository.JournalRepository.
type JournalStore interface {
	CreateEntry(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error)
	GetEntriesByUser(ctx context.Context, userID string, limit int64) ([]models.JournalEntry, error)
}

// JournalService manages a user's append-only private journal and the
// premium Q&A over it.
type JournalService struct {
	repo   JournalStore
	bridge TextGenerator
}

// NewJournalService creates a new JournalService.
func NewJournalService(repo JournalStore, bridge TextGenerator) *JournalService {
	return &JournalService{
		repo:   repo,
		bridge: bridge,
	}
}

// AddEntry appends a new entry. Entries are never edited or removed.
func (s *JournalService) AddEntry(ctx context.Context, userID, mood, text string) (*models.JournalEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyEntryText
	}
	if !models.ValidMood(mood) {
		return nil, ErrInvalidMood
	}

	entry := &models.JournalEntry{
		UserID: userID,
		Mood:   mood,
		Text:   text,
	}
	return s.repo.CreateEntry(ctx, entry)
}

// Entries returns the user's journal, newest first.
func (s *JournalService) Entries(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	return s.repo.GetEntriesByUser(ctx, userID, 0)
}

// Ask answers a question strictly from the user's recent entries. It
// requires at least two entries and feeds the 15 most recent into the
// prompt.
func (s *JournalService) Ask(ctx context.Context, userID, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	entries, err := s.repo.GetEntriesByUser(ctx, userID, askEntryLimit)
	if err != nil {
		return "", err
	}
	if len(entries) < 2 {
		return "", ErrNotEnoughEntries
	}

	return s.bridge.Generate(ctx, buildJournalPrompt(entries, question), nil)
}

func buildJournalPrompt(entries []models.JournalEntry, question string) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("On %s, I felt %s and wrote: '%s'",
			entry.CreatedAt.Format("1/2/2006"), entry.Mood, entry.Text))
	}

	return fmt.Sprintf("I am reviewing my journal to understand myself better. "+
		"Based *only* on the following entries, please answer my question. "+
		"Do not give medical advice. Be supportive and base your answer strictly on the provided text.\n\n"+
		"Journal Entries:\n%s\n\nMy Question: %q", strings.Join(lines, "\n"), question)
}
