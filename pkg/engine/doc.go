// Package engine wires the dependency graph, version registry,
// compatibility checker, migration engine, and rollback pool into one
// hot-swap pipeline.
//
// The Engine is an explicit context object: the embedding application
// constructs it, feeds it asset change events, and hands the resulting
// reload plans to its module loader. Multiple independent engines can
// coexist in one process.
//
// # Control Flow
//
// A changed path produces the cascade reload order; for every affected
// module the registry resolves a target version, the checker classifies the
// transition, and a migration strategy is chosen. Applying a migration is
// always bracketed by a rollback snapshot; a failed migration triggers an
// automatic restore before the failure is reported upward.
package engine
