package service

import (
	"context"
	"time"

	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/models"
)

// CardStore is the narrow persistence contract the services rely on.
// store.CardStore is the pgx implementation; tests use an in-memory fake.
type CardStore interface {
	Insert(ctx context.Context, userID int64, term, translation string, nextReview time.Time) (int64, error)
	GetByID(ctx context.Context, cardID int64) (*models.Card, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.Card, error)
	ListDue(ctx context.Context, userID int64, now time.Time, limit int) ([]models.Card, error)
	ListRandomSample(ctx context.Context, userID int64, limit int) ([]models.Card, error)
	ListAll(ctx context.Context, userID int64) ([]models.Card, error)
	UpdateScheduling(ctx context.Context, cardID int64, ease float64, interval, reps int, nextReview time.Time) error
	CountDue(ctx context.Context, userID int64, now time.Time) (int, error)
}
