// Package store persists mistake records in SQLite and exposes the queries
// the pipeline, review controller, and CLI need.
//
// The Store manages the database connection, schema initialization, FIFO and
// due-date queries, stats, and stuck-item recovery. Every Update is guarded
// by an optimistic compare-and-swap on updated_at so a batch retry and a
// manual edit can never silently overwrite each other; callers reload and
// retry on ErrStaleRecord.
//
// Status and memory-state semantics live in the mistake package; the store
// persists whatever a transition produced and never edits them on its own.
// Schema changes bump schemaVersion in schema.go.
package store
