package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/models"
	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/srs"
)

// ErrStaleCard marks a reveal or grade that does not reference the card
// currently at the front of the user's queue: a button press from a
// superseded session, a double click, or a session that no longer exists.
// The state machine treats all of these as guarded no-ops.
var ErrStaleCard = errors.New("card is not the current one")

// session is one user's in-progress review. Guarded by its own mutex so
// two button presses from the same user cannot race the queue, while
// different users never contend.
type session struct {
	mu       sync.Mutex
	queue    []models.Card
	revealed bool
}

// GradeOutcome is what a successful grade transition produces.
type GradeOutcome struct {
	Reviewed  models.Card  // the graded card with its new scheduling fields
	Next      *models.Card // nil when the session is complete
	Remaining int
}

// SessionService drives the per-user question/reveal/grade state machine.
// Sessions live in process memory only; a restart simply forgets them.
type SessionService struct {
	store    CardStore
	queues   *QueueService
	sessions sync.Map // userID -> *session
	now      func() time.Time
}

func NewSessionService(store CardStore, queues *QueueService) *SessionService {
	return &SessionService{store: store, queues: queues, now: time.Now}
}

// Start builds a fresh queue and replaces any session the user already
// had. Returns (nil, 0, nil) when there is nothing to review.
func (s *SessionService) Start(ctx context.Context, userID int64) (*models.Card, int, error) {
	queue, err := s.queues.BuildQueue(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if len(queue) == 0 {
		return nil, 0, nil
	}

	sess := &session{queue: queue}
	s.sessions.Store(userID, sess)

	front := queue[0]
	return &front, len(queue), nil
}

// Reveal shows the translation of the current card. The card id must
// match the queue front; anything else is a stale action and mutates
// nothing.
func (s *SessionService) Reveal(userID, cardID int64) (*models.Card, error) {
	sess, ok := s.load(userID)
	if !ok {
		return nil, ErrStaleCard
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.queue) == 0 || sess.queue[0].ID != cardID {
		return nil, ErrStaleCard
	}

	sess.revealed = true
	front := sess.queue[0]
	return &front, nil
}

// Grade applies the scheduler to the current card, persists the result
// and advances the queue. The pop happens only after the store write
// succeeds, so a storage failure leaves the session exactly as it was
// and the user can retry the same button.
func (s *SessionService) Grade(ctx context.Context, userID, cardID int64, quality int) (*GradeOutcome, error) {
	if quality != srs.Forgot && quality != srs.Knew {
		return nil, fmt.Errorf("%w: quality must be %d or %d", ErrValidation, srs.Forgot, srs.Knew)
	}

	sess, ok := s.load(userID)
	if !ok {
		return nil, ErrStaleCard
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.revealed || len(sess.queue) == 0 || sess.queue[0].ID != cardID {
		return nil, ErrStaleCard
	}

	card := sess.queue[0]
	stats, next, err := srs.Apply(srs.Stats{Ease: card.Ease, Interval: card.Interval, Reps: card.Reps}, quality, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.store.UpdateScheduling(ctx, card.ID, stats.Ease, stats.Interval, stats.Reps, next); err != nil {
		return nil, fmt.Errorf("could not save review for card %d: %w", card.ID, err)
	}

	card.Ease = stats.Ease
	card.Interval = stats.Interval
	card.Reps = stats.Reps
	card.NextReview = next

	sess.queue = sess.queue[1:]
	sess.revealed = false

	out := &GradeOutcome{Reviewed: card, Remaining: len(sess.queue)}
	if len(sess.queue) == 0 {
		// do not wipe a newer session that replaced this one mid-grade
		s.sessions.CompareAndDelete(userID, sess)
		return out, nil
	}

	front := sess.queue[0]
	out.Next = &front
	return out, nil
}

// Active reports whether the user currently has a session in progress.
func (s *SessionService) Active(userID int64) bool {
	_, ok := s.sessions.Load(userID)
	return ok
}

func (s *SessionService) load(userID int64) (*session, bool) {
	v, ok := s.sessions.Load(userID)
	if !ok {
		return nil, false
	}
	return v.(*session), true
}
