package graph

import (
	"errors"
	"fmt"
	"testing"
)

func TestGraph_AddDependency(t *testing.T) {
	g := New(DefaultConfig())

	if err := g.AddDependency("B", "A", true); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}

	if g.Len() != 2 {
		t.Errorf("Expected 2 nodes, got %d", g.Len())
	}

	dep := g.Lookup("A")
	if dep == nil {
		t.Fatal("Expected node A to exist")
	}
	if !dep.IsCritical {
		t.Error("Expected A to be marked critical")
	}
	if dep.RefCount != 1 {
		t.Errorf("Expected refcount 1, got %d", dep.RefCount)
	}
	if len(dep.Dependents()) != 1 {
		t.Errorf("Expected 1 dependent, got %d", len(dep.Dependents()))
	}
}

func TestGraph_AddDependency_DuplicateIsNoOp(t *testing.T) {
	g := New(DefaultConfig())

	for i := 0; i < 3; i++ {
		if err := g.AddDependency("B", "A", false); err != nil {
			t.Fatalf("duplicate add %d failed: %v", i, err)
		}
	}

	stats := g.Stats()
	if stats.Edges != 1 {
		t.Errorf("Expected 1 edge after duplicate adds, got %d", stats.Edges)
	}
	if a := g.Lookup("A"); a.RefCount != 1 {
		t.Errorf("Expected refcount 1 after duplicate adds, got %d", a.RefCount)
	}
}

func TestGraph_AddDependency_InvalidArgument(t *testing.T) {
	g := New(DefaultConfig())

	if err := g.AddDependency("", "A", false); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
	if err := g.AddDependency("B", "", false); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestGraph_AddDependency_OutOfCapacity(t *testing.T) {
	g := New(Config{Capacity: 2, MaxTraversalDepth: 16})

	if err := g.AddDependency("B", "A", false); err != nil {
		t.Fatalf("first edge failed: %v", err)
	}
	if err := g.AddDependency("C", "A", false); !errors.Is(err, ErrOutOfCapacity) {
		t.Errorf("Expected ErrOutOfCapacity, got %v", err)
	}
}

func TestGraph_RemoveDependency(t *testing.T) {
	g := New(DefaultConfig())

	if err := g.AddDependency("B", "A", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}
	if err := g.RemoveDependency("B", "A"); err != nil {
		t.Fatalf("RemoveDependency failed: %v", err)
	}

	if stats := g.Stats(); stats.Edges != 0 {
		t.Errorf("Expected 0 edges, got %d", stats.Edges)
	}
	if a := g.Lookup("A"); len(a.Dependents()) != 0 {
		t.Errorf("Expected back-reference removed, got %d dependents", len(a.Dependents()))
	}

	// Both the nodes and the edge must exist.
	if err := g.RemoveDependency("B", "A"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for removed edge, got %v", err)
	}
	if err := g.RemoveDependency("X", "A"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown node, got %v", err)
	}
}

func TestGraph_CycleDetection(t *testing.T) {
	g := New(DefaultConfig())

	// B depends on A (critical), C depends on B.
	if err := g.AddDependency("B", "A", true); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}
	if err := g.AddDependency("C", "B", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}

	if g.HasCycle() {
		t.Error("Expected acyclic graph")
	}

	// Closing the loop A -> C creates a cycle.
	if err := g.AddDependency("A", "C", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}
	if !g.HasCycle() {
		t.Error("Expected cycle after adding A -> C")
	}

	// Removing the closing edge restores acyclicity.
	if err := g.RemoveDependency("A", "C"); err != nil {
		t.Fatalf("RemoveDependency failed: %v", err)
	}
	if g.HasCycle() {
		t.Error("Expected cycle gone after removing A -> C")
	}
}

func TestGraph_SelfDependencyIsCycle(t *testing.T) {
	g := New(DefaultConfig())

	if err := g.AddDependency("A", "A", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}
	if !g.HasCycle() {
		t.Error("Expected self-dependency to be a cycle")
	}
}

func TestGraph_DepthGuardReportsCycle(t *testing.T) {
	g := New(Config{Capacity: 64, MaxTraversalDepth: 4})

	// A linear chain deeper than the guard.
	for i := 0; i < 10; i++ {
		if err := g.AddDependency(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i+1), false); err != nil {
			t.Fatalf("AddDependency failed: %v", err)
		}
	}

	if !g.HasCycle() {
		t.Error("Expected depth guard to fail safe and report a cycle")
	}
}

func TestGraph_ReloadOrder(t *testing.T) {
	g := New(DefaultConfig())

	// B depends on A, C depends on B: changing A cascades A, B, C.
	if err := g.AddDependency("B", "A", true); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}
	if err := g.AddDependency("C", "B", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}

	order, truncated, err := g.ReloadOrder("A", 10)
	if err != nil {
		t.Fatalf("ReloadOrder failed: %v", err)
	}
	if truncated {
		t.Error("Expected complete cascade, got truncated")
	}

	want := []string{"A", "B", "C"}
	if len(order) != len(want) {
		t.Fatalf("Expected order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Expected order %v, got %v", want, order)
			break
		}
	}
}

func TestGraph_ReloadOrder_EachNodeOnce(t *testing.T) {
	g := New(DefaultConfig())

	// Diamond: B and C depend on A, D depends on both B and C.
	edges := [][2]string{{"B", "A"}, {"C", "A"}, {"D", "B"}, {"D", "C"}}
	for _, e := range edges {
		if err := g.AddDependency(e[0], e[1], false); err != nil {
			t.Fatalf("AddDependency failed: %v", err)
		}
	}

	order, _, err := g.ReloadOrder("A", 10)
	if err != nil {
		t.Fatalf("ReloadOrder failed: %v", err)
	}

	if order[0] != "A" {
		t.Errorf("Expected changed asset first, got %v", order)
	}
	seen := make(map[string]int)
	for _, p := range order {
		seen[p]++
	}
	for p, n := range seen {
		if n != 1 {
			t.Errorf("Node %s appears %d times in %v", p, n, order)
		}
	}
	if len(order) != 4 {
		t.Errorf("Expected all 4 nodes, got %v", order)
	}
	// D must come after both of its dependencies.
	pos := make(map[string]int)
	for i, p := range order {
		pos[p] = i
	}
	if pos["D"] < pos["B"] || pos["D"] < pos["C"] {
		t.Errorf("D reloaded before its dependencies: %v", order)
	}
}

func TestGraph_ReloadOrder_Truncates(t *testing.T) {
	g := New(DefaultConfig())

	// Fan-out of 5 dependents, cap at 3.
	for i := 0; i < 5; i++ {
		if err := g.AddDependency(fmt.Sprintf("dep%d", i), "A", false); err != nil {
			t.Fatalf("AddDependency failed: %v", err)
		}
	}

	order, truncated, err := g.ReloadOrder("A", 3)
	if err != nil {
		t.Fatalf("ReloadOrder failed: %v", err)
	}
	if len(order) != 3 {
		t.Errorf("Expected truncated order of 3, got %v", order)
	}
	if !truncated {
		t.Error("Expected truncation to be reported")
	}
	if order[0] != "A" {
		t.Errorf("Expected changed asset first even when truncated, got %v", order)
	}
}

func TestGraph_ReloadOrder_FullAtCapIsNotTruncated(t *testing.T) {
	g := New(DefaultConfig())

	// Cascade of exactly 3 nodes against a cap of 3.
	if err := g.AddDependency("B", "A", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}
	if err := g.AddDependency("C", "A", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}

	order, truncated, err := g.ReloadOrder("A", 3)
	if err != nil {
		t.Fatalf("ReloadOrder failed: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("Expected complete order of 3, got %v", order)
	}
	if truncated {
		t.Error("Complete cascade at exactly the cap reported as truncated")
	}
}

func TestGraph_ReloadOrder_Errors(t *testing.T) {
	g := New(DefaultConfig())
	if err := g.AddDependency("B", "A", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}

	if _, _, err := g.ReloadOrder("missing", 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, _, err := g.ReloadOrder("A", 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestGraph_ReloadOrder_BlockedByCycle(t *testing.T) {
	g := New(DefaultConfig())

	if err := g.AddDependency("B", "A", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}
	if err := g.AddDependency("A", "B", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}

	if _, _, err := g.ReloadOrder("A", 10); !errors.Is(err, ErrCycleDetected) {
		t.Errorf("Expected ErrCycleDetected, got %v", err)
	}
}

func TestGraph_ValidateIntegrity(t *testing.T) {
	g := New(DefaultConfig())

	if err := g.AddDependency("B", "A", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}
	if violations := g.ValidateIntegrity(); len(violations) != 0 {
		t.Errorf("Expected clean graph, got %v", violations)
	}

	// Break the invariant: forward edge stays, back-reference removed.
	g.dropBackReference("B", "A")

	violations := g.ValidateIntegrity()
	if len(violations) != 1 {
		t.Fatalf("Expected exactly 1 violation, got %v", violations)
	}
	v := violations[0]
	if v.Kind != MissingBackReference || v.From != "B" || v.To != "A" {
		t.Errorf("Unexpected violation: %v", v)
	}
}

func TestGraph_Stats(t *testing.T) {
	g := New(DefaultConfig())

	if err := g.AddDependency("B", "A", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}
	if err := g.AddDependency("C", "A", false); err != nil {
		t.Fatalf("AddDependency failed: %v", err)
	}
	g.HasCycle()
	if _, _, err := g.ReloadOrder("A", 10); err != nil {
		t.Fatalf("ReloadOrder failed: %v", err)
	}

	stats := g.Stats()
	if stats.Nodes != 3 || stats.Edges != 2 {
		t.Errorf("Expected 3 nodes / 2 edges, got %d / %d", stats.Nodes, stats.Edges)
	}
	if stats.HasCycle {
		t.Error("Expected no cycle recorded")
	}
	if stats.DependencyChecks != 2 || stats.CascadeReloads != 1 {
		t.Errorf("Unexpected counters: %+v", stats)
	}
	if stats.CycleChecks < 2 {
		t.Errorf("Expected at least 2 cycle checks, got %d", stats.CycleChecks)
	}
}

func TestClassifyPath(t *testing.T) {
	tests := []struct {
		path string
		want AssetKind
	}{
		{"shaders/hud.metal", AssetShader},
		{"textures/grass.PNG", AssetTexture},
		{"config/world.yaml", AssetConfig},
		{"modules/physics.dylib", AssetModule},
		{"data/level1.pak", AssetData},
		{"notes/readme.txt", AssetUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyPath(tt.path); got != tt.want {
			t.Errorf("ClassifyPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}
