package resolver

import (
	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/querycache"
)

// DependencyGraph implements codegraph.getDependencyGraph: a breadth-first
// traversal (both directions, any edge type) from every node in path, out
// to depth hops, collecting the nodes and edges encountered.
func (r *Resolver) DependencyGraph(path string, depth int) querycache.DependencyGraph {
	if dg, ok := r.cache.GetDependencyGraph(path, depth); ok {
		return dg
	}

	roots := r.index.ByFile(path)
	dg := r.bfs(roots, depth)
	r.cache.PutDependencyGraph(path, depth, dg)
	return dg
}

// CallGraph implements codegraph.getCallGraph: a breadth-first traversal
// restricted to Calls edges, both directions, from the node at a position.
func (r *Resolver) CallGraph(path string, line, col, depth int) (querycache.DependencyGraph, bool) {
	n, ok := r.PositionToNode(path, line, col)
	if !ok {
		return querycache.DependencyGraph{}, false
	}
	return r.bfsEdgeType([]string{n.ID}, depth, graph.EdgeCalls), true
}

func (r *Resolver) bfs(roots []string, depth int) querycache.DependencyGraph {
	return r.bfsEdgeType(roots, depth, "")
}

func (r *Resolver) bfsEdgeType(roots []string, depth int, edgeType graph.EdgeType) querycache.DependencyGraph {
	visited := make(map[string]bool, len(roots))
	frontier := make([]string, 0, len(roots))
	for _, id := range roots {
		if !visited[id] {
			visited[id] = true
			frontier = append(frontier, id)
		}
	}

	var allNodes []string
	allNodes = append(allNodes, frontier...)
	var allEdges []graph.Edge

	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []string
		for _, id := range frontier {
			edges, err := r.graph.GetEdgesOf(id, edgeType, graph.Both)
			if err != nil {
				continue
			}
			for _, e := range edges {
				allEdges = append(allEdges, *e)
				other := e.TargetID
				if other == id {
					other = e.SourceID
				}
				if !visited[other] {
					visited[other] = true
					allNodes = append(allNodes, other)
					next = append(next, other)
				}
			}
		}
		frontier = next
	}

	return querycache.DependencyGraph{Nodes: allNodes, Edges: allEdges}
}

// ImpactResult is the codegraph.analyzeImpact payload: every node whose
// behavior could be affected by a change to the node at a position, found
// by walking the incoming-edge closure (who depends on this, transitively).
type ImpactResult struct {
	Node     CallHierarchyItem
	Affected []CallHierarchyItem
}

// AnalyzeImpact implements codegraph.analyzeImpact.
func (r *Resolver) AnalyzeImpact(path string, line, col int) (*ImpactResult, bool) {
	n, ok := r.PositionToNode(path, line, col)
	if !ok {
		return nil, false
	}

	visited := map[string]bool{n.ID: true}
	frontier := []string{n.ID}
	var affected []CallHierarchyItem
	for depth := 0; depth < 10 && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			incoming, err := r.graph.GetNeighbors(id, "", graph.Incoming)
			if err != nil {
				continue
			}
			for _, nb := range incoming {
				if visited[nb.ID] {
					continue
				}
				visited[nb.ID] = true
				affected = append(affected, itemFromNode(nb))
				next = append(next, nb.ID)
			}
		}
		frontier = next
	}

	return &ImpactResult{Node: itemFromNode(n), Affected: affected}, true
}
