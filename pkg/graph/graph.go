package graph

import (
	"fmt"
	"sync"
)

// NodeID is a stable handle into the graph's node arena.
type NodeID int32

// InvalidNode is the zero-value handle for "no node".
const InvalidNode NodeID = -1

// AssetKind categorizes what a node represents.
type AssetKind int

const (
	AssetUnknown AssetKind = iota
	AssetModule
	AssetShader
	AssetTexture
	AssetConfig
	AssetData
)

func (k AssetKind) String() string {
	return []string{"unknown", "module", "shader", "texture", "config", "data"}[k]
}

// Node is a single asset or module in the dependency graph. Adjacency is
// stored as handle lists in both directions; the dependents list is purely a
// traversal aid, ownership of the edge lives with the forward direction.
type Node struct {
	ID          NodeID
	Path        string
	Kind        AssetKind
	ContentHash uint64
	NeedsReload bool
	IsCritical  bool

	// ReloadOrder is transient: it is only meaningful during the reload-order
	// computation that set it.
	ReloadOrder uint32

	// RefCount counts incoming dependency edges.
	RefCount uint32

	deps       []NodeID
	dependents []NodeID
}

// Dependencies returns a copy of the node's forward edges.
func (n *Node) Dependencies() []NodeID {
	out := make([]NodeID, len(n.deps))
	copy(out, n.deps)
	return out
}

// Dependents returns a copy of the node's back-references.
func (n *Node) Dependents() []NodeID {
	out := make([]NodeID, len(n.dependents))
	copy(out, n.dependents)
	return out
}

// Config holds graph tunables.
type Config struct {
	// Capacity is the fixed node budget. AddDependency fails once reached.
	Capacity int

	// MaxTraversalDepth bounds DFS depth during cycle detection. It is a
	// guard against pathological inputs, not the correctness mechanism; a
	// traversal that exceeds it is reported as a cycle.
	MaxTraversalDepth int
}

// DefaultConfig returns the default graph tunables.
func DefaultConfig() Config {
	return Config{
		Capacity:          1024,
		MaxTraversalDepth: 256,
	}
}

// Stats is a snapshot of graph counters.
type Stats struct {
	Nodes            int
	Edges            int
	HasCycle         bool
	DependencyChecks uint64
	CycleChecks      uint64
	CascadeReloads   uint64
}

// Graph owns the dependency arena. All public operations are atomic with
// respect to other callers; a single mutex serializes access.
type Graph struct {
	mu     sync.Mutex
	cfg    Config
	nodes  []*Node
	byPath map[string]NodeID

	hasCycle bool

	dependencyChecks uint64
	cycleChecks      uint64
	cascadeReloads   uint64
}

// New creates an empty graph with the given tunables.
func New(cfg Config) *Graph {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	if cfg.MaxTraversalDepth <= 0 {
		cfg.MaxTraversalDepth = DefaultConfig().MaxTraversalDepth
	}
	return &Graph{
		cfg:    cfg,
		nodes:  make([]*Node, 0, cfg.Capacity),
		byPath: make(map[string]NodeID),
	}
}

// AddDependency records that asset depends on dependency, creating either
// node on demand. Re-adding an existing edge is a no-op success: real asset
// graphs declare the same include from multiple paths. The dependency's
// critical flag is updated either way.
func (g *Graph) AddDependency(asset, dependency string, critical bool) error {
	if asset == "" || dependency == "" {
		return fmt.Errorf("%w: empty asset path", ErrInvalidArgument)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.dependencyChecks++

	assetNode, err := g.findOrCreate(asset)
	if err != nil {
		return err
	}
	depNode, err := g.findOrCreate(dependency)
	if err != nil {
		return err
	}

	depNode.IsCritical = critical

	for _, id := range assetNode.deps {
		if id == depNode.ID {
			return nil
		}
	}

	assetNode.deps = append(assetNode.deps, depNode.ID)
	depNode.dependents = append(depNode.dependents, assetNode.ID)
	depNode.RefCount++
	return nil
}

// RemoveDependency deletes the edge asset -> dependency. The forward edge
// and its back-reference are removed under the same lock hold, so no caller
// can observe one without the other.
func (g *Graph) RemoveDependency(asset, dependency string) error {
	if asset == "" || dependency == "" {
		return fmt.Errorf("%w: empty asset path", ErrInvalidArgument)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	assetID, ok := g.byPath[asset]
	if !ok {
		return fmt.Errorf("%w: asset %q", ErrNotFound, asset)
	}
	depID, ok := g.byPath[dependency]
	if !ok {
		return fmt.Errorf("%w: dependency %q", ErrNotFound, dependency)
	}

	assetNode := g.nodes[assetID]
	depNode := g.nodes[depID]

	idx := indexOf(assetNode.deps, depID)
	if idx == -1 {
		return fmt.Errorf("%w: edge %q -> %q", ErrNotFound, asset, dependency)
	}

	assetNode.deps = removeAt(assetNode.deps, idx)
	if ridx := indexOf(depNode.dependents, assetID); ridx != -1 {
		depNode.dependents = removeAt(depNode.dependents, ridx)
	}
	if depNode.RefCount > 0 {
		depNode.RefCount--
	}
	return nil
}

// Lookup returns the node for a path, or nil if absent. The returned node
// must be treated as read-only.
func (g *Graph) Lookup(path string) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.byPath[path]; ok {
		return g.nodes[id]
	}
	return nil
}

// SetNodeInfo updates the kind and content hash recorded for an existing
// node.
func (g *Graph) SetNodeInfo(path string, kind AssetKind, contentHash uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.byPath[path]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	g.nodes[id].Kind = kind
	g.nodes[id].ContentHash = contentHash
	return nil
}

// Len returns the current node count.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// Stats returns a snapshot of the graph's counters. HasCycle reflects the
// most recent cycle check, not a fresh one.
func (g *Graph) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	edges := 0
	for _, n := range g.nodes {
		edges += len(n.deps)
	}
	return Stats{
		Nodes:            len(g.nodes),
		Edges:            edges,
		HasCycle:         g.hasCycle,
		DependencyChecks: g.dependencyChecks,
		CycleChecks:      g.cycleChecks,
		CascadeReloads:   g.cascadeReloads,
	}
}

// findOrCreate must be called with the lock held.
func (g *Graph) findOrCreate(path string) (*Node, error) {
	if id, ok := g.byPath[path]; ok {
		return g.nodes[id], nil
	}
	if len(g.nodes) >= g.cfg.Capacity {
		return nil, fmt.Errorf("%w: %d nodes", ErrOutOfCapacity, g.cfg.Capacity)
	}
	node := &Node{
		ID:   NodeID(len(g.nodes)),
		Path: path,
		Kind: ClassifyPath(path),
	}
	g.nodes = append(g.nodes, node)
	g.byPath[path] = node.ID
	return node, nil
}

func indexOf(ids []NodeID, id NodeID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeAt(ids []NodeID, i int) []NodeID {
	copy(ids[i:], ids[i+1:])
	return ids[:len(ids)-1]
}
