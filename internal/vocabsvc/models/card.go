package models

import "time"

// Card represents one term/translation pair in the cards table.
// Scheduling fields (Ease, Interval, Reps, NextReview) are owned by the
// srs package and must not be written by anything else.
type Card struct {
	ID          int64     `json:"id"`      // Primary key
	UserID      int64     `json:"user_id"` // Owning chat user
	Term        string    `json:"term"`
	Translation string    `json:"translation"`
	Ease        float64   `json:"ease"`        // >= 1.3, starts at 2.5
	Interval    int       `json:"interval"`    // days until next exposure
	Reps        int       `json:"reps"`        // consecutive successful reviews
	NextReview  time.Time `json:"next_review"` // UTC, card is due when <= now
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
