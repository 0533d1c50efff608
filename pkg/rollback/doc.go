// Package rollback snapshots module state before risky version transitions.
//
// The manager owns a bounded pool of snapshots addressed by handle id with
// O(1) lookup. When the pool is full the oldest snapshot is evicted, so
// callers must not assume unbounded retention: a restore against an evicted
// handle fails with ErrNotFound.
package rollback
