package linker

import (
	"testing"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/parser"
	"github.com/codegraphls/codegraphls/internal/symbolindex"
)

func mkFunc(g graph.Store, idx *symbolindex.Index, path, name string) string {
	id := graph.NewNodeID(graph.NodeFunction, path, name)
	n := graph.NewNode(id, graph.NodeFunction)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, path)
	_ = g.AddNode(n)
	_ = idx.AddFile(path, &symbolindex.FileInfo{Functions: append(idx.ByFile(path), id)}, g)
	return id
}

func TestResolveFileAddsCallsEdge(t *testing.T) {
	g := graph.NewMemoryStore()
	idx := symbolindex.New()

	callerID := mkFunc(g, idx, "a.go", "caller")
	calleeID := mkFunc(g, idx, "b.go", "callee")

	lk := New(g, idx)
	fi := &parser.FileInfo{
		PendingCalls: []parser.PendingCall{{CallerID: callerID, CalleeName: "callee"}},
	}
	n := lk.ResolveFile(fi)
	if n != 1 {
		t.Fatalf("ResolveFile resolved %d, want 1", n)
	}

	neighbors, err := g.GetNeighbors(callerID, graph.EdgeCalls, graph.Outgoing)
	if err != nil {
		t.Fatalf("GetNeighbors: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0].ID != calleeID {
		t.Fatalf("neighbors = %v, want [%s]", neighbors, calleeID)
	}
}

func TestResolveFileUnresolvableCalleeIsSkipped(t *testing.T) {
	g := graph.NewMemoryStore()
	idx := symbolindex.New()
	callerID := mkFunc(g, idx, "a.go", "caller")

	lk := New(g, idx)
	fi := &parser.FileInfo{
		PendingCalls: []parser.PendingCall{{CallerID: callerID, CalleeName: "nosuchfunc"}},
	}
	if n := lk.ResolveFile(fi); n != 0 {
		t.Fatalf("ResolveFile resolved %d, want 0", n)
	}
}

func TestResolveFileIsIdempotent(t *testing.T) {
	g := graph.NewMemoryStore()
	idx := symbolindex.New()
	callerID := mkFunc(g, idx, "a.go", "caller")
	_ = mkFunc(g, idx, "b.go", "callee")

	lk := New(g, idx)
	fi := &parser.FileInfo{
		PendingCalls: []parser.PendingCall{{CallerID: callerID, CalleeName: "callee"}},
	}
	lk.ResolveFile(fi)
	lk.ResolveFile(fi) // re-running must not create a duplicate edge

	edges, err := g.GetEdgesOf(callerID, graph.EdgeCalls, graph.Outgoing)
	if err != nil {
		t.Fatalf("GetEdgesOf: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1 (idempotent resolution)", len(edges))
	}
}

func TestResolveAllAcrossFiles(t *testing.T) {
	g := graph.NewMemoryStore()
	idx := symbolindex.New()
	callerA := mkFunc(g, idx, "a.go", "callerA")
	callerB := mkFunc(g, idx, "b.go", "callerB")
	callee := mkFunc(g, idx, "c.go", "shared")

	lk := New(g, idx)
	fis := []*parser.FileInfo{
		{PendingCalls: []parser.PendingCall{{CallerID: callerA, CalleeName: "shared"}}},
		{PendingCalls: []parser.PendingCall{{CallerID: callerB, CalleeName: "shared"}}},
	}
	if n := lk.ResolveAll(fis); n != 2 {
		t.Fatalf("ResolveAll resolved %d, want 2", n)
	}

	incoming, err := g.GetNeighbors(callee, graph.EdgeCalls, graph.Incoming)
	if err != nil {
		t.Fatalf("GetNeighbors: %v", err)
	}
	if len(incoming) != 2 {
		t.Fatalf("incoming callers = %d, want 2", len(incoming))
	}
}
