// Package migration transforms in-memory module state across version
// transitions.
//
// A migration is described by a Context (from/to versions, strategy, opaque
// payload, timeout, retries) and executed by the Engine. Strategies form a
// closed set: None, Auto, Manual, Rollback, Force, and Custom with a
// caller-supplied handler. Auto rewrites only the embedded version field of
// the payload; a failed execution is reported to the caller, who is expected
// to restore the pre-migration snapshot.
package migration
