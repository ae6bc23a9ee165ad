// Package logging centralizes slog construction and the structured field
// vocabulary shared by the pipeline, store, and CLI.
//
// Use New (or NewFromConfig) to build the process logger, the Attr helpers to
// keep call sites terse, and WithContext to stamp batch and record
// identifiers that the pipeline attached to the context. Field keys are
// exported constants so log consumers can rely on stable names.
package logging
