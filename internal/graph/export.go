package graph

import (
	"context"
	"encoding/json"
	"io"
	"sort"
)

// dumpDoc is the on-the-wire shape of a graph snapshot dump: a flat list of
// nodes and edges, sorted for reproducible output. This is a debugging aid
// for `codegraphls index --dump`, not a persistence format — nothing reads
// this back into a Store.
type dumpDoc struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Exporter can serialize a snapshot of all graph data to a writer.
type Exporter interface {
	Export(ctx context.Context, w io.Writer) error
}

// Export writes every node and edge currently in the store as JSON. It
// takes a consistent snapshot under a single read lock, so the output
// reflects one coherent state even if writers are concurrently mutating.
func (s *MemoryStore) Export(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	nodes := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	edges := make([]*Edge, 0, len(s.edges))
	for _, e := range s.edges {
		edges = append(edges, e)
	}
	s.mu.RUnlock()

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dumpDoc{Nodes: nodes, Edges: edges})
}
