package resolver

import "testing"

func TestDependencyGraphIncludesNeighbors(t *testing.T) {
	r := newTestResolver()
	src := "package a\n\nfunc foo() {\n}\n\nfunc bar() {\n\tfoo()\n}\n"
	if err := r.OpenFile("/w/a.go", src); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	dg := r.DependencyGraph("/w/a.go", 1)
	if len(dg.Nodes) == 0 {
		t.Error("DependencyGraph returned no nodes")
	}
}

func TestCallGraphFollowsCallsOnly(t *testing.T) {
	r := newTestResolver()
	src := "package a\n\nfunc foo() {\n}\n\nfunc bar() {\n\tfoo()\n}\n"
	if err := r.OpenFile("/w/a.go", src); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	dg, ok := r.CallGraph("/w/a.go", 6, 5, 2)
	if !ok {
		t.Fatal("CallGraph: position not found")
	}
	found := false
	for _, id := range dg.Nodes {
		n, err := r.graph.GetNode(id)
		if err == nil && n.Name() == "foo" {
			found = true
		}
	}
	if !found {
		t.Error("CallGraph from bar did not reach foo via a Calls edge")
	}
}

func TestAnalyzeImpactFindsCallers(t *testing.T) {
	r := newTestResolver()
	src := "package a\n\nfunc foo() {\n}\n\nfunc bar() {\n\tfoo()\n}\n\nfunc baz() {\n\tbar()\n}\n"
	if err := r.OpenFile("/w/a.go", src); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	result, ok := r.AnalyzeImpact("/w/a.go", 3, 5)
	if !ok {
		t.Fatal("AnalyzeImpact: position not found")
	}
	if result.Node.Name != "foo" {
		t.Fatalf("AnalyzeImpact node = %q, want %q", result.Node.Name, "foo")
	}

	names := map[string]bool{}
	for _, a := range result.Affected {
		names[a.Name] = true
	}
	if !names["bar"] {
		t.Error("AnalyzeImpact did not report bar (direct caller) as affected")
	}
	if !names["baz"] {
		t.Error("AnalyzeImpact did not report baz (transitive caller) as affected")
	}
}
