package resolver

import (
	"testing"

	"github.com/codegraphls/codegraphls/internal/graph"
)

func TestCallHierarchyRoundTrip(t *testing.T) {
	r := newTestResolver()
	src := "package a\n\nfunc foo() {\n}\n\nfunc bar() {\n\tfoo()\n}\n"
	if err := r.OpenFile("/w/a.go", src); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	item, ok := r.PrepareCallHierarchy("/w/a.go", 3, 5)
	if !ok {
		t.Fatal("PrepareCallHierarchy: not found")
	}
	if item.Name != "foo" {
		t.Fatalf("PrepareCallHierarchy name = %q, want %q", item.Name, "foo")
	}

	incoming := r.IncomingCalls(item)
	if len(incoming) != 1 || incoming[0].Item.Name != "bar" {
		t.Fatalf("IncomingCalls = %+v, want exactly [bar]", incoming)
	}

	barItem, ok := r.PrepareCallHierarchy("/w/a.go", 6, 5)
	if !ok {
		t.Fatal("PrepareCallHierarchy(bar): not found")
	}
	outgoing := r.OutgoingCalls(barItem)
	if len(outgoing) != 1 || outgoing[0].Item.Name != "foo" {
		t.Fatalf("OutgoingCalls = %+v, want exactly [foo]", outgoing)
	}
}

func TestPrepareCallHierarchyRejectsNonFunction(t *testing.T) {
	r := newTestResolver()
	src := "package a\n\ntype T struct {\n}\n"
	if err := r.OpenFile("/w/a.go", src); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	if _, ok := r.PrepareCallHierarchy("/w/a.go", 3, 5); ok {
		t.Error("PrepareCallHierarchy accepted a non-function node")
	}
}

func TestGetConnectedEdgesBothIsUnion(t *testing.T) {
	r := newTestResolver()
	src := "package a\n\nfunc foo() {\n}\n\nfunc bar() {\n\tfoo()\n}\n"
	if err := r.OpenFile("/w/a.go", src); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	fooItem, ok := r.PrepareCallHierarchy("/w/a.go", 3, 5)
	if !ok {
		t.Fatal("PrepareCallHierarchy: not found")
	}

	out, err := r.GetConnectedEdges(fooItem.NodeID, graph.Outgoing)
	if err != nil {
		t.Fatalf("GetConnectedEdges(Outgoing): %v", err)
	}
	in, err := r.GetConnectedEdges(fooItem.NodeID, graph.Incoming)
	if err != nil {
		t.Fatalf("GetConnectedEdges(Incoming): %v", err)
	}
	both, err := r.GetConnectedEdges(fooItem.NodeID, graph.Both)
	if err != nil {
		t.Fatalf("GetConnectedEdges(Both): %v", err)
	}
	if len(both) != len(out)+len(in) {
		t.Errorf("GetConnectedEdges(Both) len = %d, want %d (Outgoing + Incoming)", len(both), len(out)+len(in))
	}
}
