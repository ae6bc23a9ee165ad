package srs

import (
	"fmt"
	"math"
	"time"
)

// Advance applies one review outcome to a memory state and returns the next
// state. The input state is not modified.
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02)), floored at 1.3
//
// A failing rating (q < 3) resets the repetition chain and schedules the
// record for tomorrow. A passing rating grows the interval: 1 day for the
// first success, 6 days for the second, round(previous * EF') after that.
// The stored ease factor is rounded to two decimal places.
func Advance(state MemoryState, quality Rating, now time.Time) (MemoryState, error) {
	if !quality.Valid() {
		return MemoryState{}, fmt.Errorf("advance: %w: %d", ErrInvalidRating, int(quality))
	}

	q := float64(quality)
	ease := state.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}

	next := MemoryState{EaseFactor: ease}
	if quality.Passing() {
		next.Repetition = state.Repetition + 1
		switch next.Repetition {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(state.IntervalDays) * ease))
		}
	} else {
		next.Repetition = 0
		next.IntervalDays = 1
	}

	// Interval growth uses the unrounded ease; only the stored value is
	// truncated to two decimals.
	next.EaseFactor = math.Round(ease*100) / 100
	next.Due = now.UTC().AddDate(0, 0, next.IntervalDays)
	return next, nil
}
