package graph

import "fmt"

// ViolationKind distinguishes the ways an edge can lose its mirror.
type ViolationKind int

const (
	// MissingBackReference: a forward edge A -> B with no B <- A entry.
	MissingBackReference ViolationKind = iota
	// MissingForwardEdge: a back-reference B <- A with no A -> B edge.
	MissingForwardEdge
	// DanglingReference: an adjacency entry pointing outside the arena.
	DanglingReference
)

func (k ViolationKind) String() string {
	return []string{"missing_back_reference", "missing_forward_edge", "dangling_reference"}[k]
}

// IntegrityViolation describes one broken edge invariant. Violations are
// reported, never acted on: the caller decides whether to rebuild or abort.
type IntegrityViolation struct {
	Kind ViolationKind
	From string
	To   string
}

func (v IntegrityViolation) String() string {
	return fmt.Sprintf("%s: %s -> %s", v.Kind, v.From, v.To)
}

// ValidateIntegrity scans every edge and confirms its mirror exists. One
// violation is returned per missing or dangling reference.
func (g *Graph) ValidateIntegrity() []IntegrityViolation {
	g.mu.Lock()
	defer g.mu.Unlock()

	var violations []IntegrityViolation

	for _, n := range g.nodes {
		for _, depID := range n.deps {
			if !g.validID(depID) {
				violations = append(violations, IntegrityViolation{
					Kind: DanglingReference,
					From: n.Path,
					To:   fmt.Sprintf("node#%d", depID),
				})
				continue
			}
			dep := g.nodes[depID]
			if indexOf(dep.dependents, n.ID) == -1 {
				violations = append(violations, IntegrityViolation{
					Kind: MissingBackReference,
					From: n.Path,
					To:   dep.Path,
				})
			}
		}

		for _, depID := range n.dependents {
			if !g.validID(depID) {
				violations = append(violations, IntegrityViolation{
					Kind: DanglingReference,
					From: fmt.Sprintf("node#%d", depID),
					To:   n.Path,
				})
				continue
			}
			dependent := g.nodes[depID]
			if indexOf(dependent.deps, n.ID) == -1 {
				violations = append(violations, IntegrityViolation{
					Kind: MissingForwardEdge,
					From: dependent.Path,
					To:   n.Path,
				})
			}
		}
	}

	return violations
}

// dropBackReference removes only the back-reference of an edge, leaving the
// forward edge in place. It exists for integrity-validation tests; regular
// callers go through RemoveDependency.
func (g *Graph) dropBackReference(asset, dependency string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	assetID, ok1 := g.byPath[asset]
	depID, ok2 := g.byPath[dependency]
	if !ok1 || !ok2 {
		return
	}
	dep := g.nodes[depID]
	if idx := indexOf(dep.dependents, assetID); idx != -1 {
		dep.dependents = removeAt(dep.dependents, idx)
	}
}

func (g *Graph) validID(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}
