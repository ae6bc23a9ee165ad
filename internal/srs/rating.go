package srs

import "fmt"

// Rating is the learner's 0-5 self-assessment of a recall attempt.
type Rating int

const (
	// RatingBlackout means the answer was completely forgotten.
	RatingBlackout Rating = 0
	// RatingIncorrect means the answer was wrong.
	RatingIncorrect Rating = 1
	// RatingAlmost means the answer was wrong but partially recalled.
	RatingAlmost Rating = 2
	// RatingHard means the answer was correct with serious difficulty.
	RatingHard Rating = 3
	// RatingGood means the answer was correct after some hesitation.
	RatingGood Rating = 4
	// RatingEasy means the answer was recalled effortlessly.
	RatingEasy Rating = 5
)

// Valid reports whether the rating is within the SM-2 contract range.
func (r Rating) Valid() bool {
	return r >= RatingBlackout && r <= RatingEasy
}

// Passing reports whether the rating counts as a successful recall.
// SM-2 treats anything below 3 as a failure that resets the repetition chain.
func (r Rating) Passing() bool {
	return r >= RatingHard
}

// String returns a short label for display and logs.
func (r Rating) String() string {
	switch r {
	case RatingBlackout:
		return "blackout"
	case RatingIncorrect:
		return "incorrect"
	case RatingAlmost:
		return "almost"
	case RatingHard:
		return "hard"
	case RatingGood:
		return "good"
	case RatingEasy:
		return "easy"
	default:
		return fmt.Sprintf("rating(%d)", int(r))
	}
}

// ParseRating converts a numeric CLI/API input into a Rating.
func ParseRating(value int) (Rating, error) {
	r := Rating(value)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRating, value)
	}
	return r, nil
}
