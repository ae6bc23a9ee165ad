// Package pipeline drains captured mistakes through the external analyzer.
//
// A batch run is deliberately sequential: one analyzer call in flight at a
// time, a polite delay between calls, and per-item failure isolation so a
// timeout or malformed reply sends that record back to pending without
// touching the rest of the batch. A file lock keeps concurrent runs from
// interleaving calls against the provider's rate limit.
//
// Progress is reported through an incremental event callback suitable for a
// progress bar; the returned Summary is the terminal event.
package pipeline
