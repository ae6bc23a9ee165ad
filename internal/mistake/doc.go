// Package mistake defines the mistake record entity and owns its lifecycle.
//
// A record moves through a closed status set: pending (captured, unanalyzed),
// analyzing (AI call in flight), review_needed (analysis awaiting human
// confirmation), and active (confirmed, scheduled for spaced review). Every
// legal transition is enumerated in the transition table and applied through
// a guarded method on Record; anything else fails with ErrInvalidTransition.
//
// Treat this package as the single source of truth for record semantics: the
// store persists whatever a transition method produced and never edits status
// or memory state on its own.
package mistake
