// Package srs implements the SM-2 spaced-repetition schedule used for
// confirmed mistake records.
//
// Advance is a pure function from (memory state, rating) to the next memory
// state; it performs no I/O and never mutates its input. Callers own
// persistence of the returned state. Ratings outside 0-5 are rejected rather
// than clamped so a bad caller cannot bend the ease-factor curve.
package srs
