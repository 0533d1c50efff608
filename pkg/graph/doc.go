// Package graph tracks dependencies between hot-swappable assets and
// modules.
//
// # Overview
//
// The graph owns an arena of nodes addressed by stable integer handles; an
// edge A -> B means "A depends on B". Every forward edge keeps a matching
// back-reference so cascade reloads can walk dependents without a full scan,
// and ValidateIntegrity can confirm the two directions agree.
//
// # Key Features
//
// Cycle Detection: whole-graph DFS with white/gray/black coloring
// Cascade Reloads: breadth-first reload ordering seeded at a changed asset
// Integrity Validation: per-edge back-reference verification
// Bounded Capacity: fixed node budget, no unbounded growth
//
// # Usage Example
//
//	g := graph.New(graph.DefaultConfig())
//	_ = g.AddDependency("ui/hud.shader", "lib/common.shader", true)
//
//	if g.HasCycle() {
//		// reject before acting on the graph
//	}
//	order, truncated, err := g.ReloadOrder("lib/common.shader", 64)
//
// # Related Packages
//
//   - pkg/registry: resolves target versions for modules in the reload order
//   - pkg/engine: drives the reload pipeline end to end
package graph
