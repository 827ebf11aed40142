package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/models"
)

const (
	dueLimit       = 100 // hard cap on one sitting
	backfillBelow  = 10  // queues shorter than this get random extras
	backfillSample = 10
)

// QueueService selects and orders the cards for one review sitting:
// overdue cards first (most overdue leading), topped up with a random
// sample when there is little due. Read-only, no stored state touched.
type QueueService struct {
	store CardStore
	now   func() time.Time
}

func NewQueueService(store CardStore) *QueueService {
	return &QueueService{store: store, now: time.Now}
}

// BuildQueue returns an empty slice when the user has nothing at all;
// that is "nothing to review", not an error.
func (s *QueueService) BuildQueue(ctx context.Context, userID int64) ([]models.Card, error) {
	now := s.now().UTC()

	queue, err := s.store.ListDue(ctx, userID, now, dueLimit)
	if err != nil {
		return nil, fmt.Errorf("could not build queue: %w", err)
	}

	if len(queue) < backfillBelow {
		sample, err := s.store.ListRandomSample(ctx, userID, backfillSample)
		if err != nil {
			return nil, fmt.Errorf("could not build queue: %w", err)
		}

		// dedup by card id, not by row equality
		seen := make(map[int64]bool, len(queue))
		for _, c := range queue {
			seen[c.ID] = true
		}
		for _, c := range sample {
			if !seen[c.ID] {
				queue = append(queue, c)
				seen[c.ID] = true
			}
		}
	}

	return queue, nil
}
