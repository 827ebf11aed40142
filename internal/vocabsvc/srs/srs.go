package srs

import (
	"fmt"
	"math"
	"time"
)

// Quality is the user's answer to a review: forgot or knew it.
// The two values map onto the 0..5 SM-2 quality scale so the standard
// ease formula applies unchanged.
const (
	Forgot = 1
	Knew   = 5
)

// MinEase is the floor the ease factor is clamped to after every review.
const MinEase = 1.3

// Stats are the scheduling fields of a card. The zero value is not a
// valid state; new cards start with NewStats().
type Stats struct {
	Ease     float64
	Interval int // days
	Reps     int // consecutive successful reviews
}

// NewStats returns the stats a freshly added card starts with.
func NewStats() Stats {
	return Stats{Ease: 2.5, Interval: 1, Reps: 0}
}

// Apply runs one SM-2 update and returns the new stats plus the next
// review time. It performs no I/O; now is passed in so callers control
// the clock.
//
// The interval ladder is deliberate: the first two successful reviews
// are fixed at 1 and 6 days regardless of ease, and only from the third
// on does the interval grow by the new ease factor. A failed review
// resets reps and forces a next-day repeat, whatever the prior interval.
func Apply(stats Stats, quality int, now time.Time) (Stats, time.Time, error) {
	if quality != Forgot && quality != Knew {
		return Stats{}, time.Time{}, fmt.Errorf("invalid quality %d: must be %d or %d", quality, Forgot, Knew)
	}

	ease := stats.Ease + (0.1 - float64(5-quality)*(0.08+float64(5-quality)*0.02))
	if ease < MinEase {
		ease = MinEase
	}

	reps := stats.Reps
	interval := stats.Interval

	if quality < 3 {
		reps = 0
		interval = 1
	} else {
		reps++
		switch reps {
		case 1:
			interval = 1
		case 2:
			interval = 6
		default:
			// previous interval times the NEW ease, rounded to whole days
			interval = int(math.Round(float64(stats.Interval) * ease))
		}
	}

	next := now.Add(time.Duration(interval) * 24 * time.Hour)

	return Stats{Ease: ease, Interval: interval, Reps: reps}, next, nil
}
