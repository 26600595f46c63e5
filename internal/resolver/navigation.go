package resolver

import (
	"fmt"
	"os"
	"strings"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/querycache"
)

// defLikeEdges are the outgoing edge types goto-definition follows.
var defLikeEdges = map[graph.EdgeType]bool{
	graph.EdgeCalls:      true,
	graph.EdgeReferences: true,
	graph.EdgeImports:    true,
}

// PositionToNode resolves an editor position to the enclosing symbol: it
// consults the symbol index first, and
// on a miss falls back to a linear graph property scan over nodes with the
// given path, picking the innermost (smallest-range) containing match.
// line/col are internal coordinates (1-indexed line, 0-indexed column).
func (r *Resolver) PositionToNode(path string, line, col int) (*graph.Node, bool) {
	if id, ok := r.index.FindAtPosition(path, line, col); ok {
		if n, err := r.graph.GetNode(id); err == nil {
			return n, true
		}
	}
	return r.scanForPosition(path, line, col)
}

func (r *Resolver) scanForPosition(path string, line, col int) (*graph.Node, bool) {
	ids := r.graph.Query().Property(graph.PropPath, graph.StringProp(path)).Execute()
	var best *graph.Node
	bestSize := 0
	for _, id := range ids {
		n, err := r.graph.GetNode(id)
		if err != nil {
			continue
		}
		rng := n.Range()
		if !rng.Contains(line, col) {
			continue
		}
		size := rng.Size()
		if best == nil || size < bestSize {
			best = n
			bestSize = size
		}
	}
	return best, best != nil
}

// firstDefEdge returns the target of n's first outgoing Calls/References/
// Imports edge, if any. Iteration order among multiple candidates is
// arbitrary when more than one qualifies.
func (r *Resolver) firstDefEdge(n *graph.Node) (*graph.Node, bool) {
	edges, err := r.graph.GetEdgesOf(n.ID, "", graph.Outgoing)
	if err != nil {
		return nil, false
	}
	for _, e := range edges {
		if !defLikeEdges[e.Type] {
			continue
		}
		if target, err := r.graph.GetNode(e.TargetID); err == nil {
			return target, true
		}
	}
	return nil, false
}

// Definition resolves goto-definition from an editor position.
// A cache hit short-circuits the position lookup entirely.
func (r *Resolver) Definition(path string, line, col int) (*graph.Node, bool) {
	if id, ok := r.cache.GetDefinition(path, line, col); ok {
		if n, err := r.graph.GetNode(id); err == nil {
			return n, true
		}
	}

	n, ok := r.PositionToNode(path, line, col)
	if !ok {
		return nil, false
	}
	def, ok := r.firstDefEdge(n)
	if !ok {
		def = n
	}
	r.cache.PutDefinition(path, line, col, def.ID)
	return def, true
}

// References returns the sources of the definition node's incoming edges,
// other than Contains edges from its enclosing module or class, optionally
// prefixed with the definition's own location.
func (r *Resolver) References(path string, line, col int, includeDeclaration bool) ([]Location, bool) {
	n, ok := r.PositionToNode(path, line, col)
	if !ok {
		return nil, false
	}
	d, ok := r.firstDefEdge(n)
	if !ok {
		d = n
	}

	var locs []Location
	if cached, ok := r.cache.GetReferences(d.ID); ok {
		for _, l := range cached {
			locs = append(locs, Location{Path: l.Path, Range: l.Range})
		}
	} else {
		incoming, err := r.graph.GetEdgesOf(d.ID, "", graph.Incoming)
		if err != nil {
			incoming = nil
		}
		cacheLocs := make([]querycache.Location, 0, len(incoming))
		seen := make(map[string]bool, len(incoming))
		for _, e := range incoming {
			if e.Type == graph.EdgeContains || seen[e.SourceID] {
				continue
			}
			src, err := r.graph.GetNode(e.SourceID)
			if err != nil {
				continue
			}
			seen[e.SourceID] = true
			loc := Location{Path: src.Path(), Range: src.Range()}
			locs = append(locs, loc)
			cacheLocs = append(cacheLocs, querycache.Location{Path: loc.Path, Range: loc.Range})
		}
		r.cache.PutReferences(d.ID, cacheLocs)
	}

	if includeDeclaration {
		decl := Location{Path: d.Path(), Range: d.Range()}
		locs = append([]Location{decl}, locs...)
	}

	if len(locs) == 0 {
		return nil, false
	}
	return locs, true
}

// Hover renders a Markdown summary of the node at a position.
func (r *Resolver) Hover(path string, line, col int) (string, bool) {
	n, ok := r.PositionToNode(path, line, col)
	if !ok {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s %s**\n\n", n.Type, n.Name())
	if sig := n.GetString(graph.PropSignature); sig != "" {
		fmt.Fprintf(&b, "```%s\n%s\n```\n\n", n.GetString(graph.PropLanguage), sig)
	}
	if doc := n.GetString(graph.PropDoc); doc != "" {
		fmt.Fprintf(&b, "%s\n\n", doc)
	}
	incoming, _ := r.graph.GetNeighbors(n.ID, "", graph.Incoming)
	fmt.Fprintf(&b, "---\n%s — References: %d", n.Path(), len(incoming))
	return b.String(), true
}

// SymbolInfo is a document-symbol / workspace-symbol entry.
type SymbolInfo struct {
	Name     string
	Kind     string
	Location Location
}

// symbolKind maps NodeType to a fixed set of editor-facing kind names.
func symbolKind(t graph.NodeType) string {
	switch t {
	case graph.NodeFunction:
		return "Function"
	case graph.NodeClass:
		return "Class"
	case graph.NodeInterface:
		return "Interface"
	case graph.NodeModule:
		return "Module"
	case graph.NodeVariable:
		return "Variable"
	case graph.NodeType_:
		return "Type"
	case graph.NodeCodeFile:
		return "File"
	default:
		return "Symbol"
	}
}

// DocumentSymbols returns every entry of by_file[path], projected
// to {name, kind, location}.
func (r *Resolver) DocumentSymbols(path string) []SymbolInfo {
	ids := r.index.ByFile(path)
	out := make([]SymbolInfo, 0, len(ids))
	for _, id := range ids {
		n, err := r.graph.GetNode(id)
		if err != nil {
			continue
		}
		out = append(out, SymbolInfo{
			Name:     n.Name(),
			Kind:     symbolKind(n.Type),
			Location: Location{Path: path, Range: n.Range()},
		})
	}
	return out
}

// WorkspaceSymbols implements codegraph.getWorkspaceSymbols: a case
// insensitive substring search over symbol names, optionally filtered by
// kind (the symbolKind string, e.g. "Function").
func (r *Resolver) WorkspaceSymbols(query, kind string) []SymbolInfo {
	ids := r.index.SearchByName(query)
	out := make([]SymbolInfo, 0, len(ids))
	for _, id := range ids {
		n, err := r.graph.GetNode(id)
		if err != nil {
			continue
		}
		k := symbolKind(n.Type)
		if kind != "" && !strings.EqualFold(kind, k) {
			continue
		}
		out = append(out, SymbolInfo{
			Name:     n.Name(),
			Kind:     k,
			Location: Location{Path: n.Path(), Range: n.Range()},
		})
	}
	return out
}

// NodeLocation implements codegraph.getNodeLocation: resolve a raw NodeId
// to its location.
func (r *Resolver) NodeLocation(nodeID string) (Location, bool) {
	n, err := r.graph.GetNode(nodeID)
	if err != nil {
		return Location{}, false
	}
	return Location{Path: n.Path(), Range: n.Range()}, true
}

// NodeSource reads a node's source code: from its "source" property if
// populated, otherwise sliced from disk by [start_line, end_line]
// (1-indexed, inclusive).
func NodeSource(n *graph.Node) (string, error) {
	if src := n.GetString(graph.PropSource); src != "" {
		return src, nil
	}
	content, err := os.ReadFile(n.Path())
	if err != nil {
		return "", err
	}
	lines := strings.Split(string(content), "\n")
	rng := n.Range()
	start, end := rng.StartLine-1, rng.EndLine
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return "", nil
	}
	return strings.Join(lines[start:end], "\n"), nil
}
