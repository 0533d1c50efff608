package graph

import "fmt"

// ReloadOrder computes the cascade reload sequence for a changed asset. The
// changed asset is always first, followed by its transitive dependents in
// breadth-first order, each exactly once. The result is cut off at max
// entries; the second return value reports whether dependents were left out,
// in which case the order is a best-effort prefix, not a complete cascade.
//
// A cycle anywhere in the graph blocks the computation: reloading in cycle
// order would be meaningless.
func (g *Graph) ReloadOrder(changed string, max int) ([]string, bool, error) {
	if changed == "" {
		return nil, false, fmt.Errorf("%w: empty asset path", ErrInvalidArgument)
	}
	if max <= 0 {
		return nil, false, fmt.Errorf("%w: non-positive reload cap %d", ErrInvalidArgument, max)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	changedID, ok := g.byPath[changed]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrNotFound, changed)
	}

	if g.detectCycleLocked() {
		return nil, false, fmt.Errorf("%w: reload order is undefined", ErrCycleDetected)
	}

	// Reset transient marks from any previous computation.
	for _, n := range g.nodes {
		n.NeedsReload = false
		n.ReloadOrder = 0
	}

	changedNode := g.nodes[changedID]
	changedNode.NeedsReload = true

	order := make([]string, 0, max)
	order = append(order, changed)

	// Multi-source BFS seeded at the direct dependents of the changed node.
	queue := make([]NodeID, 0, len(changedNode.dependents))
	for _, dep := range changedNode.dependents {
		n := g.nodes[dep]
		n.NeedsReload = true
		n.ReloadOrder = 1
		queue = append(queue, dep)
	}

	for len(queue) > 0 && len(order) < max {
		id := queue[0]
		queue = queue[1:]
		current := g.nodes[id]
		order = append(order, current.Path)

		for _, dep := range current.dependents {
			n := g.nodes[dep]
			if !n.NeedsReload {
				n.NeedsReload = true
				n.ReloadOrder = current.ReloadOrder + 1
				queue = append(queue, dep)
			}
		}
	}

	g.cascadeReloads++
	// Anything still queued was cut off by the cap.
	return order, len(queue) > 0, nil
}
