package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/models"
)

func TestExportCSV(t *testing.T) {
	store := newFakeStore()
	next := time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)
	store.add(models.Card{
		UserID:      7,
		Term:        "apple",
		Translation: "яблоко",
		Ease:        2.6,
		Interval:    6,
		Reps:        2,
		NextReview:  next,
	})
	store.add(dueCard(8, "other user", next))

	svc := NewExportService(store)
	data, err := svc.ExportCSV(context.Background(), 7)
	if err != nil {
		t.Fatalf("ExportCSV returned error: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("%d rows, want header + 1 card", len(records))
	}

	header := []string{"term", "translation", "ease", "interval", "reps", "next_review_iso"}
	for i, h := range header {
		if records[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}
	row := records[1]
	want := []string{"apple", "яблоко", "2.6", "6", "2", "2025-03-11T12:00:00Z"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d] = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestExportCSVEmpty(t *testing.T) {
	svc := NewExportService(newFakeStore())
	data, err := svc.ExportCSV(context.Background(), 7)
	if err != nil {
		t.Fatalf("ExportCSV returned error: %v", err)
	}
	if data != nil {
		t.Errorf("export for empty user = %q, want nil", data)
	}
}
