package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

var cardNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newCardServiceAt(store CardStore, now time.Time) *CardService {
	s := NewCardService(store)
	s.now = func() time.Time { return now }
	return s
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in       string
		term     string
		trans    string
		ok       bool
	}{
		{"apple; яблоко", "apple", "яблоко", true},
		{"apple ; яблоко", "apple", "яблоко", true},
		{"to give up - сдаваться", "to give up", "сдаваться", true},
		{"cat — кошка", "cat", "кошка", true},
		{"just a sentence", "", "", false},
		{"; яблоко", "", "", false},
		{"apple;", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			term, trans, ok := ParsePair(tt.in)
			if ok != tt.ok || term != tt.term || trans != tt.trans {
				t.Errorf("ParsePair(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.in, term, trans, ok, tt.term, tt.trans, tt.ok)
			}
		})
	}
}

func TestAddCard(t *testing.T) {
	store := newFakeStore()
	svc := newCardServiceAt(store, cardNow)

	card, err := svc.AddCard(context.Background(), 7, "  apple  ", " яблоко ")
	if err != nil {
		t.Fatalf("AddCard returned error: %v", err)
	}
	if card.Term != "apple" || card.Translation != "яблоко" {
		t.Errorf("card not trimmed: %+v", card)
	}
	if card.Ease != 2.5 || card.Interval != 1 || card.Reps != 0 {
		t.Errorf("unexpected initial stats: %+v", card)
	}
	if !card.NextReview.Equal(cardNow) {
		t.Errorf("next review = %v, want creation time (immediately due)", card.NextReview)
	}

	stored, _ := store.GetByID(context.Background(), card.ID)
	if stored == nil || stored.Term != "apple" {
		t.Errorf("card not persisted: %v", stored)
	}
}

func TestAddCardValidation(t *testing.T) {
	store := newFakeStore()
	svc := newCardServiceAt(store, cardNow)

	for _, tt := range [][2]string{{"", "x"}, {"x", ""}, {"  ", "x"}, {"", ""}} {
		if _, err := svc.AddCard(context.Background(), 7, tt[0], tt[1]); !errors.Is(err, ErrValidation) {
			t.Errorf("AddCard(%q, %q) error = %v, want ErrValidation", tt[0], tt[1], err)
		}
	}
	if len(store.cards) != 0 {
		t.Errorf("%d cards stored by rejected input", len(store.cards))
	}
}

func TestListRecentNewestFirst(t *testing.T) {
	store := newFakeStore()
	svc := newCardServiceAt(store, cardNow)

	for i := 0; i < 25; i++ {
		if _, err := svc.AddCard(context.Background(), 7, "term", "translation"); err != nil {
			t.Fatalf("AddCard returned error: %v", err)
		}
	}

	cards, err := svc.ListRecent(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(cards) != 20 {
		t.Fatalf("ListRecent returned %d cards, want 20", len(cards))
	}
	for i := 1; i < len(cards); i++ {
		if cards[i-1].ID < cards[i].ID {
			t.Fatalf("cards not newest first: %d before %d", cards[i-1].ID, cards[i].ID)
		}
	}
}

func TestDueCount(t *testing.T) {
	store := newFakeStore()
	store.add(dueCard(7, "due", cardNow.Add(-time.Hour)))
	store.add(dueCard(7, "due too", cardNow))
	store.add(dueCard(7, "future", cardNow.Add(time.Hour)))
	store.add(dueCard(8, "other user", cardNow.Add(-time.Hour)))

	svc := newCardServiceAt(store, cardNow)
	n, err := svc.DueCount(context.Background(), 7)
	if err != nil {
		t.Fatalf("DueCount returned error: %v", err)
	}
	if n != 2 {
		t.Errorf("DueCount = %d, want 2", n)
	}
}
