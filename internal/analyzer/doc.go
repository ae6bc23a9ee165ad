// Package analyzer wraps the external OpenAI-compatible vision endpoint that
// transcribes and explains a captured mistake image.
//
// The pipeline consumes this as an opaque collaborator: one image reference
// in, one structured Analysis out. Any non-success HTTP status, unparseable
// payload, or payload missing the required fields is reported as an error;
// the caller decides retry policy.
package analyzer
