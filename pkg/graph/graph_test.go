package graph

import "testing"

func TestAddNodeFreshVsExisting(t *testing.T) {
	g := New[string, int]()
	if _, existed := g.AddNode(0, "a"); existed {
		t.Fatal("expected fresh insert")
	}
	if prev, existed := g.AddNode(0, "b"); !existed || prev != "a" {
		t.Fatalf("expected collision returning previous weight, got %q existed=%v", prev, existed)
	}
}

func TestAddEdgeRequiresEndpoints(t *testing.T) {
	g := New[string, int]()
	g.AddNode(0, "a")
	if _, err := g.AddEdge(1, 0, 5); err == nil {
		t.Fatal("expected error for missing destination node")
	}
}

func TestOutputsInputsOrdering(t *testing.T) {
	g := New[string, int]()
	g.AddNode(0, "a")
	g.AddNode(1, "b")
	g.AddNode(2, "c")
	g.AddEdge(10, 0, 1)
	g.AddEdge(20, 0, 2)

	outs := g.Outputs(0)
	if len(outs) != 2 {
		t.Fatalf("expected 2 outgoing edges, got %d", len(outs))
	}
	// Most-recently-added edge is first in the intrusive list.
	if g.EdgeWeight(outs[0]) != 20 || g.EdgeWeight(outs[1]) != 10 {
		t.Fatalf("unexpected edge order: %v", outs)
	}

	ins := g.Inputs(1)
	if len(ins) != 1 || g.EdgeWeight(ins[0]) != 10 {
		t.Fatalf("unexpected inputs for node 1: %v", ins)
	}
}

func TestTryPrevNextNode(t *testing.T) {
	g := New[string, int]()
	g.AddNode(0, "a")
	g.AddNode(10, "b")
	g.AddNode(20, "c")

	if k, ok := g.TryPrevNode(15); !ok || k != 10 {
		t.Fatalf("TryPrevNode(15) = %d, %v; want 10, true", k, ok)
	}
	if k, ok := g.TryPrevNode(10); !ok || k != 10 {
		t.Fatalf("TryPrevNode(10) = %d, %v; want 10, true (exact match)", k, ok)
	}
	if _, ok := g.TryPrevNode(0); !ok {
		t.Fatal("TryPrevNode(0) should find node 0 itself")
	}

	if k, ok := g.TryNextNode(15); !ok || k != 20 {
		t.Fatalf("TryNextNode(15) = %d, %v; want 20, true", k, ok)
	}
	if _, ok := g.TryNextNode(21); ok {
		t.Fatal("TryNextNode(21) should find nothing past the last key")
	}
}

type block struct {
	data []int
}

func TestSplitNodeRehomesOutgoingEdgesOnly(t *testing.T) {
	g := New[*block, string]()
	g.AddNode(0, &block{data: []int{0, 1, 2, 3, 4}})
	g.AddNode(100, &block{})
	// Pre-existing outgoing edge from 0, and an incoming edge into 0.
	g.AddNode(200, &block{})
	g.AddEdge("out", 0, 100)
	g.AddEdge("in", 200, 0)

	err := g.SplitNode(0, 3, func(old **block) *block {
		// Truncate old to [0,3) and return the tail [3,5) as the new block.
		tail := (*old).data[3:]
		(*old).data = (*old).data[:3]
		return &block{data: tail}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	oldW, _ := g.NodeWeight(0)
	if len(oldW.data) != 3 {
		t.Fatalf("old node data = %v, want length 3", oldW.data)
	}
	newW, ok := g.NodeWeight(3)
	if !ok {
		t.Fatal("expected new node at key 3")
	}
	if len(newW.data) != 2 {
		t.Fatalf("new node data = %v, want length 2", newW.data)
	}

	outs := g.Outputs(3)
	if len(outs) != 1 || g.EdgeTo(outs[0]) != 100 {
		t.Fatalf("expected outgoing edge re-homed to new node, got %v", outs)
	}
	if len(g.Outputs(0)) != 0 {
		t.Fatal("old node should have no outgoing edges after split")
	}
	ins := g.Inputs(0)
	if len(ins) != 1 || g.EdgeFrom(ins[0]) != 200 {
		t.Fatalf("old node should keep its incoming edges, got %v", ins)
	}
}

func TestSplitNodeRejectsBadKeys(t *testing.T) {
	g := New[int, int]()
	g.AddNode(5, 1)
	if err := g.SplitNode(5, 3, func(old *int) int { return 0 }); err == nil {
		t.Fatal("expected error: new key must exceed old key")
	}
	g.AddNode(7, 1)
	if err := g.SplitNode(5, 7, func(old *int) int { return 0 }); err == nil {
		t.Fatal("expected error: node already exists at new key")
	}
}

func TestStructureCopyResetsPayloadsKeepsTopology(t *testing.T) {
	g := New[int, string]()
	g.AddNode(0, 42)
	g.AddNode(1, 99)
	g.AddEdge("e", 0, 1)

	ng := StructureCopy[string](g)
	if ng.NodeCount() != 2 || ng.EdgeCount() != 1 {
		t.Fatalf("topology mismatch: nodes=%d edges=%d", ng.NodeCount(), ng.EdgeCount())
	}
	w, ok := ng.NodeWeight(0)
	if !ok || w != "" {
		t.Fatalf("expected zero-valued payload, got %q ok=%v", w, ok)
	}
	outs := ng.Outputs(0)
	if len(outs) != 1 || ng.EdgeTo(outs[0]) != 1 || ng.EdgeWeight(outs[0]) != "e" {
		t.Fatalf("expected copied edge, got %v", outs)
	}
}
