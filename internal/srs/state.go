package srs

import "time"

// Defaults for a freshly confirmed record.
const (
	InitialEaseFactor = 2.5
	// MinEaseFactor is the SM-2 floor; stored ease never drops below it.
	MinEaseFactor = 1.3
)

// MemoryState is the scheduling state embedded in every mistake record.
// It is mutated only by Advance; nothing else hand-edits these fields.
type MemoryState struct {
	// Repetition counts consecutive successful recalls since the last failure.
	Repetition int
	// EaseFactor controls interval growth, floored at MinEaseFactor.
	EaseFactor float64
	// IntervalDays is the gap until the next scheduled review. It is 0 until
	// the first successful repetition and at least 1 afterwards.
	IntervalDays int
	// Due is when the record becomes eligible for review. Only meaningful
	// while the record is active.
	Due time.Time
}

// NewMemoryState returns the state assigned when a record is confirmed into
// the review rotation: no repetitions yet, default ease, due immediately.
func NewMemoryState(now time.Time) MemoryState {
	return MemoryState{
		Repetition:   0,
		EaseFactor:   InitialEaseFactor,
		IntervalDays: 0,
		Due:          now.UTC(),
	}
}

// MasteryLevel is the display-facing metric derived from the repetition count.
func (s MemoryState) MasteryLevel() int {
	return s.Repetition
}

// DueAt reports whether the state is due at the given instant.
func (s MemoryState) DueAt(now time.Time) bool {
	return !s.Due.After(now)
}
