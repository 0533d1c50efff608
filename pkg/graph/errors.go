package graph

import "errors"

var (
	// ErrInvalidArgument is returned for empty or malformed identifiers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a node or edge does not exist.
	ErrNotFound = errors.New("not found")

	// ErrOutOfCapacity is returned when the fixed node budget is exhausted.
	ErrOutOfCapacity = errors.New("node capacity exhausted")

	// ErrCycleDetected is returned when an operation that requires an acyclic
	// graph finds a cycle.
	ErrCycleDetected = errors.New("cycle detected")
)
