// Package compatibility classifies version transitions for hot swaps.
//
// Check is a pure function over a (required, available) version pair. It
// returns a classification (compatible, migration required, major breaking,
// deprecated, unknown flags) and a bitmask of recommended actions the caller
// should take before swapping. Unknown flag bits fail closed: they are never
// classified as compatible.
package compatibility
