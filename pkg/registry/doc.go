// Package registry catalogs the versions registered for each module name.
//
// The registry answers "latest" and "best version satisfying a requirement"
// queries in time proportional to the entry count for one module. Per-module
// history is bounded; the oldest entry is evicted once the cap is reached.
// Compatible-version lookups are memoized in an expiring LRU cache that is
// purged on any mutation.
package registry
