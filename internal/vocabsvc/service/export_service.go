package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

type ExportService struct {
	store CardStore
}

func NewExportService(store CardStore) *ExportService {
	return &ExportService{store: store}
}

// ExportCSV renders every card of the user as CSV, ordered by id.
// Returns (nil, nil) when the user has no cards.
func (s *ExportService) ExportCSV(ctx context.Context, userID int64) ([]byte, error) {
	cards, err := s.store.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not export cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"term", "translation", "ease", "interval", "reps", "next_review_iso"}); err != nil {
		return nil, fmt.Errorf("could not write csv header: %w", err)
	}
	for _, c := range cards {
		record := []string{
			c.Term,
			c.Translation,
			strconv.FormatFloat(c.Ease, 'g', -1, 64),
			strconv.Itoa(c.Interval),
			strconv.Itoa(c.Reps),
			c.NextReview.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("could not write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("could not flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
