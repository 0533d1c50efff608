package graph

// DFS coloring for cycle detection.
type color uint8

const (
	white color = iota // unvisited
	gray               // on the current path
	black              // fully explored
)

// HasCycle runs whole-graph cycle detection using DFS with white/gray/black
// coloring. A self-dependency is always a cycle. Traversals deeper than the
// configured guard are reported as cycles rather than explored further.
func (g *Graph) HasCycle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.detectCycleLocked()
}

func (g *Graph) detectCycleLocked() bool {
	g.cycleChecks++

	colors := make([]color, len(g.nodes))
	for i := range g.nodes {
		if colors[i] == white && g.visit(NodeID(i), colors, 0) {
			g.hasCycle = true
			return true
		}
	}
	g.hasCycle = false
	return false
}

func (g *Graph) visit(id NodeID, colors []color, depth int) bool {
	if depth > g.cfg.MaxTraversalDepth {
		// Pathological input guard: fail safe by treating it as a cycle.
		return true
	}

	colors[id] = gray
	for _, dep := range g.nodes[id].deps {
		switch colors[dep] {
		case gray:
			return true
		case white:
			if g.visit(dep, colors, depth+1) {
				return true
			}
		}
	}
	colors[id] = black
	return false
}
