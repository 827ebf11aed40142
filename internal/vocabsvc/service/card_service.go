package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/models"
	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/srs"
)

// ErrValidation marks user input rejected before touching storage or the
// scheduler: empty term/translation, or a quality outside the allowed set.
var ErrValidation = errors.New("validation failed")

const recentLimit = 20

type CardService struct {
	store CardStore
	now   func() time.Time
}

func NewCardService(store CardStore) *CardService {
	return &CardService{store: store, now: time.Now}
}

// ParsePair splits "term ; translation" style input. Also accepts
// " - " and " — " as separators, matching what users actually type.
func ParsePair(text string) (string, string, bool) {
	text = strings.TrimSpace(text)

	var parts []string
	switch {
	case strings.Contains(text, ";"):
		parts = strings.SplitN(text, ";", 2)
	case strings.Contains(text, " - "):
		parts = strings.SplitN(text, " - ", 2)
	case strings.Contains(text, " — "):
		parts = strings.SplitN(text, " — ", 2)
	default:
		return "", "", false
	}

	term := strings.TrimSpace(parts[0])
	translation := strings.TrimSpace(parts[1])
	if term == "" || translation == "" {
		return "", "", false
	}
	return term, translation, true
}

// AddCard stores a new pair, immediately due so it shows up in the next quiz.
func (s *CardService) AddCard(ctx context.Context, userID int64, term, translation string) (*models.Card, error) {
	term = strings.TrimSpace(term)
	translation = strings.TrimSpace(translation)
	if term == "" || translation == "" {
		return nil, fmt.Errorf("%w: term and translation must be non-empty", ErrValidation)
	}

	now := s.now().UTC()
	cardID, err := s.store.Insert(ctx, userID, term, translation, now)
	if err != nil {
		return nil, fmt.Errorf("could not add card: %w", err)
	}

	stats := srs.NewStats()
	return &models.Card{
		ID:          cardID,
		UserID:      userID,
		Term:        term,
		Translation: translation,
		Ease:        stats.Ease,
		Interval:    stats.Interval,
		Reps:        stats.Reps,
		NextReview:  now,
		CreatedAt:   now,
	}, nil
}

// ListRecent returns the user's newest cards, for the /list command.
func (s *CardService) ListRecent(ctx context.Context, userID int64) ([]models.Card, error) {
	return s.store.ListByUser(ctx, userID, recentLimit)
}

// DueCount returns how many cards are ready for review right now.
func (s *CardService) DueCount(ctx context.Context, userID int64) (int, error) {
	return s.store.CountDue(ctx, userID, s.now().UTC())
}
