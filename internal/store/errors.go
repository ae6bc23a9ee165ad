package store

import "errors"

// ErrStaleRecord reports an Update whose compare-and-swap failed because the
// record changed (or was deleted) since it was loaded.
var ErrStaleRecord = errors.New("record modified concurrently")

// ErrSchemaMismatch indicates the database schema version does not match the
// version this build expects.
var ErrSchemaMismatch = errors.New("schema version mismatch")
