package service

import (
	"context"
	"testing"
	"time"

	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/models"
)

var queueNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newQueueServiceAt(store CardStore, now time.Time) *QueueService {
	s := NewQueueService(store)
	s.now = func() time.Time { return now }
	return s
}

func dueCard(userID int64, term string, due time.Time) models.Card {
	return models.Card{
		UserID:      userID,
		Term:        term,
		Translation: term + "-ru",
		Ease:        2.5,
		Interval:    1,
		NextReview:  due,
	}
}

func TestBuildQueueDueOnly(t *testing.T) {
	store := newFakeStore()
	c3 := store.add(dueCard(7, "later", queueNow.Add(-1*time.Hour)))
	c1 := store.add(dueCard(7, "oldest", queueNow.Add(-72*time.Hour)))
	c2 := store.add(dueCard(7, "middle", queueNow.Add(-24*time.Hour)))

	svc := newQueueServiceAt(store, queueNow)
	queue, err := svc.BuildQueue(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildQueue returned error: %v", err)
	}

	if len(queue) != 3 {
		t.Fatalf("queue length = %d, want 3", len(queue))
	}
	wantOrder := []int64{c1.ID, c2.ID, c3.ID}
	for i, want := range wantOrder {
		if queue[i].ID != want {
			t.Errorf("queue[%d].ID = %d, want %d (ascending next_review)", i, queue[i].ID, want)
		}
	}
}

func TestBuildQueueBackfillCap(t *testing.T) {
	store := newFakeStore()
	// 15 cards, none due
	for i := 0; i < 15; i++ {
		store.add(dueCard(7, "future", queueNow.Add(48*time.Hour)))
	}

	svc := newQueueServiceAt(store, queueNow)
	queue, err := svc.BuildQueue(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildQueue returned error: %v", err)
	}

	if len(queue) != 10 {
		t.Errorf("queue length = %d, want 10 (random sample cap)", len(queue))
	}
}

func TestBuildQueueBackfillDedupsById(t *testing.T) {
	store := newFakeStore()
	// 3 due out of 5 total: the random sample will contain the due ones too
	for i := 0; i < 3; i++ {
		store.add(dueCard(7, "due", queueNow.Add(-time.Hour)))
	}
	for i := 0; i < 2; i++ {
		store.add(dueCard(7, "future", queueNow.Add(48*time.Hour)))
	}

	svc := newQueueServiceAt(store, queueNow)
	queue, err := svc.BuildQueue(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildQueue returned error: %v", err)
	}

	seen := make(map[int64]bool)
	for _, c := range queue {
		if seen[c.ID] {
			t.Errorf("card %d appears twice in the queue", c.ID)
		}
		seen[c.ID] = true
	}
	if len(queue) != 5 {
		t.Errorf("queue length = %d, want 5", len(queue))
	}
	// due segment leads
	for i := 0; i < 3; i++ {
		if queue[i].Term != "due" {
			t.Errorf("queue[%d] = %q, want a due card before backfill", i, queue[i].Term)
		}
	}
}

func TestBuildQueueNoBackfillWhenEnoughDue(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 12; i++ {
		store.add(dueCard(7, "due", queueNow.Add(-time.Hour)))
	}
	store.add(dueCard(7, "future", queueNow.Add(48*time.Hour)))

	svc := newQueueServiceAt(store, queueNow)
	queue, err := svc.BuildQueue(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildQueue returned error: %v", err)
	}

	if len(queue) != 12 {
		t.Errorf("queue length = %d, want 12 (no backfill)", len(queue))
	}
	for _, c := range queue {
		if c.Term == "future" {
			t.Error("undue card backfilled although the due set was large enough")
		}
	}
}

func TestBuildQueueEmptyUser(t *testing.T) {
	store := newFakeStore()
	store.add(dueCard(99, "other user", queueNow.Add(-time.Hour)))

	svc := newQueueServiceAt(store, queueNow)
	queue, err := svc.BuildQueue(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildQueue returned error: %v", err)
	}
	if len(queue) != 0 {
		t.Errorf("queue length = %d, want 0 for a user with no cards", len(queue))
	}
}
