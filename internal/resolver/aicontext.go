package resolver

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/lserr"
	"github.com/codegraphls/codegraphls/internal/querycache"
)

// approxTokens estimates token count as chars/4, matching the rough ratio
// most tokenizers produce for English source code.
func approxTokens(s string) int {
	return (len(s) + 3) / 4
}

// PrimaryContext describes the node an AI-context request centers on.
type PrimaryContext struct {
	Kind     string           `json:"kind"`
	Name     string           `json:"name"`
	Source   string           `json:"source"`
	Language string           `json:"language"`
	Path     string           `json:"path"`
	Range    graph.IndexRange `json:"range"`
}

// RelatedSymbol is one entry of an AI context's related-symbols list.
type RelatedSymbol struct {
	NodeID       string  `json:"nodeId"`
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Relationship string  `json:"relationship"`
	Relevance    float64 `json:"relevance"`
	Code         string  `json:"code"`
}

// DependencyInfo is one import entry attached to an AI context.
type DependencyInfo struct {
	NodeID string `json:"nodeId"`
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
}

// ArchitectureInfo summarizes where the primary node sits in the workspace.
type ArchitectureInfo struct {
	Module    string   `json:"module"`
	Neighbors []string `json:"neighbors"`
}

// AIContextResult is the full payload for codegraph.getAIContext.
type AIContextResult struct {
	Primary      PrimaryContext   `json:"primary"`
	Related      []RelatedSymbol  `json:"related_symbols"`
	Dependencies []DependencyInfo `json:"dependencies"`
	Architecture ArchitectureInfo `json:"architecture"`
	TotalTokens  int              `json:"total_tokens"`
}

func moduleStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// GetAIContext locates the node at (path, line, col),
// assembles its primary context plus a contextType-specific set of related
// symbols, import dependencies, and architecture info, stopping related
// symbol collection early once max_tokens (approximate chars/4) is spent.
func (r *Resolver) GetAIContext(path string, line, col int, contextType querycache.ContextType, maxTokens int) (*AIContextResult, error) {
	n, ok := r.PositionToNode(path, line, col)
	if !ok {
		return nil, lserr.New(lserr.SymbolNotFound, "no symbol at position")
	}

	if cached, ok := r.cache.GetAIContext(n.ID, contextType); ok {
		if res, ok := cached.Primary.(*AIContextResult); ok {
			return res, nil
		}
	}

	src, _ := NodeSource(n)
	primary := PrimaryContext{
		Kind:     symbolKind(n.Type),
		Name:     n.Name(),
		Source:   src,
		Language: n.GetString(graph.PropLanguage),
		Path:     n.Path(),
		Range:    n.Range(),
	}

	budget := maxTokens
	spent := approxTokens(src)

	var related []RelatedSymbol
	spend := func(rs RelatedSymbol) bool {
		cost := approxTokens(rs.Code)
		if budget > 0 && spent+cost > budget {
			return false
		}
		spent += cost
		related = append(related, rs)
		return true
	}

	switch contextType {
	case querycache.ContextModify:
		r.collectModify(n, spend)
	case querycache.ContextDebug:
		r.collectDebug(n, spend)
	case querycache.ContextTest:
		r.collectTest(n, spend)
	default:
		r.collectExplain(n, spend)
	}

	deps := r.collectDependencies(n)
	arch := r.collectArchitecture(n)

	result := &AIContextResult{
		Primary:      primary,
		Related:      related,
		Dependencies: deps,
		Architecture: arch,
		TotalTokens:  spent,
	}
	r.cache.PutAIContext(n.ID, contextType, querycache.AIContext{Primary: result})
	return result, nil
}

func (r *Resolver) relatedFromNode(nb *graph.Node, relationship string, relevance float64) RelatedSymbol {
	code, _ := NodeSource(nb)
	return RelatedSymbol{NodeID: nb.ID, Name: nb.Name(), Kind: symbolKind(nb.Type), Relationship: relationship, Relevance: relevance, Code: code}
}

// collectExplain: up to 5 outgoing neighbors (uses, 1.0); up to 3 incoming
// Calls (called_by, 0.8); all incoming Extends (inherits, 0.9).
func (r *Resolver) collectExplain(n *graph.Node, spend func(RelatedSymbol) bool) {
	outgoing, _ := r.graph.GetNeighbors(n.ID, "", graph.Outgoing)
	for i, nb := range outgoing {
		if i >= 5 {
			break
		}
		if !spend(r.relatedFromNode(nb, "uses", 1.0)) {
			return
		}
	}

	callers, _ := r.graph.GetNeighbors(n.ID, graph.EdgeCalls, graph.Incoming)
	for i, nb := range callers {
		if i >= 3 {
			break
		}
		if !spend(r.relatedFromNode(nb, "called_by", 0.8)) {
			return
		}
	}

	parents, _ := r.graph.GetNeighbors(n.ID, graph.EdgeExtends, graph.Incoming)
	for _, nb := range parents {
		if !spend(r.relatedFromNode(nb, "inherits", 0.9)) {
			return
		}
	}
}

func isTestName(name string) bool {
	return strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test")
}

// collectModify: up to 5 incoming Calls from test-named callers (tests,
// 1.0); up to 5 remaining incoming Calls (called_by, 0.9).
func (r *Resolver) collectModify(n *graph.Node, spend func(RelatedSymbol) bool) {
	callers, _ := r.graph.GetNeighbors(n.ID, graph.EdgeCalls, graph.Incoming)
	var tests, rest []*graph.Node
	for _, nb := range callers {
		if isTestName(nb.Name()) {
			tests = append(tests, nb)
		} else {
			rest = append(rest, nb)
		}
	}
	for i, nb := range tests {
		if i >= 5 {
			break
		}
		if !spend(r.relatedFromNode(nb, "tests", 1.0)) {
			return
		}
	}
	for i, nb := range rest {
		if i >= 5 {
			break
		}
		if !spend(r.relatedFromNode(nb, "called_by", 0.9)) {
			return
		}
	}
}

// collectDebug: walk the incoming-Calls chain up to depth 5, following the
// first unvisited caller each step; relevance = 1 - 0.1*depth, relationship
// = call_chain_depth_{d}. Then up to 3 outgoing neighbors (data_flow, 0.8).
func (r *Resolver) collectDebug(n *graph.Node, spend func(RelatedSymbol) bool) {
	visited := map[string]bool{n.ID: true}
	cur := n
	for depth := 1; depth <= 5; depth++ {
		callers, _ := r.graph.GetNeighbors(cur.ID, graph.EdgeCalls, graph.Incoming)
		var next *graph.Node
		for _, nb := range callers {
			if !visited[nb.ID] {
				next = nb
				break
			}
		}
		if next == nil {
			break
		}
		visited[next.ID] = true
		relevance := 1.0 - 0.1*float64(depth)
		relationship := "call_chain_depth_" + strconv.Itoa(depth)
		if !spend(r.relatedFromNode(next, relationship, relevance)) {
			return
		}
		cur = next
	}

	outgoing, _ := r.graph.GetNeighbors(n.ID, "", graph.Outgoing)
	for i, nb := range outgoing {
		if i >= 3 {
			break
		}
		if !spend(r.relatedFromNode(nb, "data_flow", 0.8)) {
			return
		}
	}
}

// collectTest: up to 3 incoming Calls matching the test-name pattern
// (example_test, 0.9); up to 3 outgoing (dependency_to_mock, 0.7).
func (r *Resolver) collectTest(n *graph.Node, spend func(RelatedSymbol) bool) {
	callers, _ := r.graph.GetNeighbors(n.ID, graph.EdgeCalls, graph.Incoming)
	count := 0
	for _, nb := range callers {
		if count >= 3 {
			break
		}
		if !isTestName(nb.Name()) {
			continue
		}
		count++
		if !spend(r.relatedFromNode(nb, "example_test", 0.9)) {
			return
		}
	}

	outgoing, _ := r.graph.GetNeighbors(n.ID, "", graph.Outgoing)
	for i, nb := range outgoing {
		if i >= 3 {
			break
		}
		if !spend(r.relatedFromNode(nb, "dependency_to_mock", 0.7)) {
			return
		}
	}
}

// collectDependencies gathers up to 10 outgoing Imports edges as
// DependencyInfo entries.
func (r *Resolver) collectDependencies(n *graph.Node) []DependencyInfo {
	imports, _ := r.graph.GetNeighbors(n.ID, graph.EdgeImports, graph.Outgoing)
	out := make([]DependencyInfo, 0, len(imports))
	for i, nb := range imports {
		if i >= 10 {
			break
		}
		out = append(out, DependencyInfo{NodeID: nb.ID, Name: nb.Name(), Path: nb.Path()})
	}
	return out
}

// collectArchitecture builds the module/neighbors summary: module is the
// file stem of n's own path; neighbors are the file stems of every
// connected node (any direction, any type), excluding n's own file.
func (r *Resolver) collectArchitecture(n *graph.Node) ArchitectureInfo {
	tuples, _ := r.GetConnectedEdges(n.ID, graph.Both)
	own := moduleStem(n.Path())
	seen := map[string]bool{}
	var neighbors []string
	for _, t := range tuples {
		otherID := t.Target
		if otherID == n.ID {
			otherID = t.Source
		}
		other, err := r.graph.GetNode(otherID)
		if err != nil {
			continue
		}
		stem := moduleStem(other.Path())
		if stem == own || seen[stem] {
			continue
		}
		seen[stem] = true
		neighbors = append(neighbors, stem)
	}
	return ArchitectureInfo{Module: own, Neighbors: neighbors}
}
