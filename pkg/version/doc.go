// Package version implements semantic versioning for hot-swappable modules.
//
// A Version is an immutable major.minor.patch.build tuple with a flags bitset
// describing release characteristics (stable, beta, deprecated, ...). Ordering
// is total and purely numeric; flags and the integrity hash never participate
// in comparisons. Constraints express acceptable version ranges for dependency
// resolution.
package version
