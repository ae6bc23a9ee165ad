package mistake

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition reports a status change outside the transition table.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrIncompleteClassification reports a confirmation attempt with empty
// classification fields.
var ErrIncompleteClassification = errors.New("classification incomplete")

func transitionError(from, to Status) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
