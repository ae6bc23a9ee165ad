package srs

import "errors"

// ErrInvalidRating reports a rating outside the 0-5 contract range.
// Out-of-range ratings are a caller bug; silently clamping them would
// corrupt the ease-factor curve, so they are rejected instead.
var ErrInvalidRating = errors.New("rating must be between 0 and 5")
