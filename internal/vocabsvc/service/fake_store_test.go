package service

import (
	"context"
	"sort"
	"time"

	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/models"
)

// fakeStore is an in-memory CardStore for the service tests.
type fakeStore struct {
	cards     map[int64]*models.Card
	nextID    int64
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{cards: make(map[int64]*models.Card)}
}

func (f *fakeStore) add(c models.Card) models.Card {
	f.nextID++
	c.ID = f.nextID
	f.cards[c.ID] = &c
	return c
}

func (f *fakeStore) Insert(ctx context.Context, userID int64, term, translation string, nextReview time.Time) (int64, error) {
	c := f.add(models.Card{
		UserID:      userID,
		Term:        term,
		Translation: translation,
		Ease:        2.5,
		Interval:    1,
		Reps:        0,
		NextReview:  nextReview,
		CreatedAt:   nextReview,
	})
	return c.ID, nil
}

func (f *fakeStore) GetByID(ctx context.Context, cardID int64) (*models.Card, error) {
	c, ok := f.cards[cardID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) byUser(userID int64) []models.Card {
	var out []models.Card
	for _, c := range f.cards {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out
}

func (f *fakeStore) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Card, error) {
	out := f.byUser(userID)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListDue(ctx context.Context, userID int64, now time.Time, limit int) ([]models.Card, error) {
	var out []models.Card
	for _, c := range f.byUser(userID) {
		if !c.NextReview.After(now) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextReview.Before(out[j].NextReview) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListRandomSample(ctx context.Context, userID int64, limit int) ([]models.Card, error) {
	out := f.byUser(userID) // map iteration order is as random as we need
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListAll(ctx context.Context, userID int64) ([]models.Card, error) {
	out := f.byUser(userID)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateScheduling(ctx context.Context, cardID int64, ease float64, interval, reps int, nextReview time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	c, ok := f.cards[cardID]
	if !ok {
		return nil
	}
	c.Ease = ease
	c.Interval = interval
	c.Reps = reps
	c.NextReview = nextReview
	return nil
}

func (f *fakeStore) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	due, err := f.ListDue(ctx, userID, now, len(f.cards)+1)
	if err != nil {
		return 0, err
	}
	return len(due), nil
}
