package graph

import (
	"testing"

	"github.com/codegraphls/codegraphls/internal/lserr"
)

func mkNode(id string, path, name string) *Node {
	n := NewNode(id, NodeFunction)
	n.SetString(PropPath, path)
	n.SetString(PropName, name)
	return n
}

func TestAddNodeGetNode(t *testing.T) {
	s := NewMemoryStore()
	n := mkNode("a", "a.go", "foo")
	if err := s.AddNode(n); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	got, err := s.GetNode("a")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if got.Name() != "foo" {
		t.Fatalf("Name = %q, want foo", got.Name())
	}
}

func TestGetNodeNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetNode("missing")
	if !lserr.Is(err, lserr.NodeNotFound) {
		t.Fatalf("GetNode(missing) err = %v, want NodeNotFound", err)
	}
}

func TestDeleteNodeCascadesEdges(t *testing.T) {
	s := NewMemoryStore()
	a := mkNode("a", "x.go", "a")
	b := mkNode("b", "x.go", "b")
	if err := s.AddNode(a); err != nil {
		t.Fatal(err)
	}
	if err := s.AddNode(b); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEdge(&Edge{Type: EdgeCalls, SourceID: "a", TargetID: "b"}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteNode("a"); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	neighbors, err := s.GetNeighbors("b", EdgeCalls, Incoming)
	if err != nil {
		t.Fatalf("GetNeighbors: %v", err)
	}
	if len(neighbors) != 0 {
		t.Fatalf("GetNeighbors(b, Incoming) = %v, want empty after cascading delete", neighbors)
	}
}

func TestGetNeighborsDirections(t *testing.T) {
	s := NewMemoryStore()
	for _, id := range []string{"a", "b", "c"} {
		if err := s.AddNode(mkNode(id, "x.go", id)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.AddEdge(&Edge{Type: EdgeCalls, SourceID: "a", TargetID: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEdge(&Edge{Type: EdgeCalls, SourceID: "c", TargetID: "a"}); err != nil {
		t.Fatal(err)
	}

	out, err := s.GetNeighbors("a", EdgeCalls, Outgoing)
	if err != nil || len(out) != 1 || out[0].ID != "b" {
		t.Fatalf("Outgoing(a) = %v, %v, want [b]", out, err)
	}
	in, err := s.GetNeighbors("a", EdgeCalls, Incoming)
	if err != nil || len(in) != 1 || in[0].ID != "c" {
		t.Fatalf("Incoming(a) = %v, %v, want [c]", in, err)
	}
	both, err := s.GetNeighbors("a", EdgeCalls, Both)
	if err != nil || len(both) != 2 {
		t.Fatalf("Both(a) = %v, %v, want 2 entries", both, err)
	}
}

func TestQueryPropertyFilter(t *testing.T) {
	s := NewMemoryStore()
	if err := s.AddNode(mkNode("a", "x.go", "foo")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddNode(mkNode("b", "y.go", "foo")); err != nil {
		t.Fatal(err)
	}
	ids := s.Query().Property(PropPath, StringProp("x.go")).Execute()
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("Query(path=x.go) = %v, want [a]", ids)
	}
}

func TestDeleteByFilePurgesMatchingNodesAndEdges(t *testing.T) {
	s := NewMemoryStore()
	if err := s.AddNode(mkNode("a", "x.go", "a")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddNode(mkNode("b", "x.go", "b")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddNode(mkNode("c", "y.go", "c")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEdge(&Edge{Type: EdgeCalls, SourceID: "a", TargetID: "c"}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteByFile("x.go"); err != nil {
		t.Fatalf("DeleteByFile: %v", err)
	}

	if _, err := s.GetNode("a"); err == nil {
		t.Fatalf("node a should be gone after DeleteByFile")
	}
	if _, err := s.GetNode("b"); err == nil {
		t.Fatalf("node b should be gone after DeleteByFile")
	}
	if _, err := s.GetNode("c"); err != nil {
		t.Fatalf("node c from unrelated file should survive: %v", err)
	}
	edges, err := s.GetEdgesOf("c", EdgeCalls, Incoming)
	if err != nil || len(edges) != 0 {
		t.Fatalf("incoming edges on c = %v, %v, want none (source purged)", edges, err)
	}
}

func TestGetEdgesBetween(t *testing.T) {
	s := NewMemoryStore()
	if err := s.AddNode(mkNode("a", "x.go", "a")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddNode(mkNode("b", "x.go", "b")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEdge(&Edge{Type: EdgeCalls, SourceID: "a", TargetID: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEdge(&Edge{Type: EdgeReferences, SourceID: "a", TargetID: "b"}); err != nil {
		t.Fatal(err)
	}

	edges, err := s.GetEdgesBetween("a", "b")
	if err != nil || len(edges) != 2 {
		t.Fatalf("GetEdgesBetween(a,b) = %v, %v, want 2 edges", edges, err)
	}
}

func TestReset(t *testing.T) {
	s := NewMemoryStore()
	if err := s.AddNode(mkNode("a", "x.go", "a")); err != nil {
		t.Fatal(err)
	}
	s.Reset()
	st := s.Stats()
	if st.NodeCount != 0 || st.EdgeCount != 0 {
		t.Fatalf("Stats after Reset = %+v, want zeroed", st)
	}
	if _, err := s.GetNode("a"); err == nil {
		t.Fatalf("node a should be gone after Reset")
	}
}

func TestIndexRangeContainsAndSize(t *testing.T) {
	r := IndexRange{StartLine: 10, StartCol: 0, EndLine: 12, EndCol: 4}
	if !r.Contains(10, 0) {
		t.Fatalf("Contains(start) = false, want true")
	}
	if !r.Contains(12, 4) {
		t.Fatalf("Contains(end) = false, want true")
	}
	if r.Contains(9, 0) || r.Contains(13, 0) {
		t.Fatalf("Contains outside range = true, want false")
	}
	if r.Contains(10, 0) && r.Contains(12, 5) {
		t.Fatalf("Contains(12,5) should be false, end col exceeded")
	}

	inner := IndexRange{StartLine: 10, StartCol: 0, EndLine: 10, EndCol: 3}
	if inner.Size() >= r.Size() {
		t.Fatalf("inner.Size() = %d should be smaller than outer.Size() = %d", inner.Size(), r.Size())
	}
}

func TestNewNodeIDDeterministic(t *testing.T) {
	id1 := NewNodeID(NodeFunction, "a.go", "foo")
	id2 := NewNodeID(NodeFunction, "a.go", "foo")
	if id1 != id2 {
		t.Fatalf("NewNodeID not deterministic: %q != %q", id1, id2)
	}
	id3 := NewNodeID(NodeFunction, "a.go", "bar")
	if id1 == id3 {
		t.Fatalf("NewNodeID collided for different names")
	}
}
