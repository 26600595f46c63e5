package resolver

import (
	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/querycache"
)

// CallHierarchyItem is the prepare/incoming/outgoing payload. NodeID is
// what the opaque `{"nodeId": "..."}` wire payload carries.
type CallHierarchyItem struct {
	NodeID string
	Name   string
	Kind   string
	Path   string
	Range  graph.IndexRange
}

// CallHierarchyCall pairs a related item with the ranges of the call
// site(s) in it. Absent per-call-site tracking, the range used is the
// related function's own declared range.
type CallHierarchyCall struct {
	Item   CallHierarchyItem
	Ranges []graph.IndexRange
}

func itemFromNode(n *graph.Node) CallHierarchyItem {
	return CallHierarchyItem{NodeID: n.ID, Name: n.Name(), Kind: symbolKind(n.Type), Path: n.Path(), Range: n.Range()}
}

// PrepareCallHierarchy is the prepare step of call hierarchy: only Function nodes
// are accepted.
func (r *Resolver) PrepareCallHierarchy(path string, line, col int) (*CallHierarchyItem, bool) {
	n, ok := r.PositionToNode(path, line, col)
	if !ok || n.Type != graph.NodeFunction {
		return nil, false
	}
	item := itemFromNode(n)
	return &item, true
}

func (r *Resolver) callHierarchy(nodeID string) (querycache.CallHierarchy, bool) {
	if h, ok := r.cache.GetCallHierarchy(nodeID); ok {
		return h, true
	}

	var h querycache.CallHierarchy
	incoming, err := r.graph.GetEdgesOf(nodeID, graph.EdgeCalls, graph.Incoming)
	if err == nil {
		for _, e := range incoming {
			h.Incoming = append(h.Incoming, e.SourceID)
		}
	}
	outgoing, err := r.graph.GetEdgesOf(nodeID, graph.EdgeCalls, graph.Outgoing)
	if err == nil {
		for _, e := range outgoing {
			h.Outgoing = append(h.Outgoing, e.TargetID)
		}
	}
	r.cache.PutCallHierarchy(nodeID, h)
	return h, true
}

// IncomingCalls returns the callers of item, i.e.
// sources of item's incoming Calls edges.
func (r *Resolver) IncomingCalls(item *CallHierarchyItem) []CallHierarchyCall {
	h, _ := r.callHierarchy(item.NodeID)
	out := make([]CallHierarchyCall, 0, len(h.Incoming))
	for _, id := range h.Incoming {
		n, err := r.graph.GetNode(id)
		if err != nil {
			continue
		}
		out = append(out, CallHierarchyCall{Item: itemFromNode(n), Ranges: []graph.IndexRange{n.Range()}})
	}
	return out
}

// OutgoingCalls returns the callees of item.
func (r *Resolver) OutgoingCalls(item *CallHierarchyItem) []CallHierarchyCall {
	h, _ := r.callHierarchy(item.NodeID)
	out := make([]CallHierarchyCall, 0, len(h.Outgoing))
	for _, id := range h.Outgoing {
		n, err := r.graph.GetNode(id)
		if err != nil {
			continue
		}
		out = append(out, CallHierarchyCall{Item: itemFromNode(n), Ranges: []graph.IndexRange{n.Range()}})
	}
	return out
}

// EdgeTuple is a (source, target, type) triple, as returned by
// GetConnectedEdges.
type EdgeTuple struct {
	Source string
	Target string
	Type   graph.EdgeType
}

// GetConnectedEdges returns every edge touching id: for Both, the union of Outgoing and
// Incoming tuples (possibly duplicating self-loops); for a direction, the
// neighbor set from the graph followed by GetEdgesBetween for each endpoint pair.
func (r *Resolver) GetConnectedEdges(id string, dir graph.Direction) ([]EdgeTuple, error) {
	if dir == graph.Both {
		out, err := r.GetConnectedEdges(id, graph.Outgoing)
		if err != nil {
			return nil, err
		}
		in, err := r.GetConnectedEdges(id, graph.Incoming)
		if err != nil {
			return nil, err
		}
		return append(out, in...), nil
	}

	neighbors, err := r.graph.GetNeighbors(id, "", dir)
	if err != nil {
		return nil, err
	}
	var out []EdgeTuple
	for _, nb := range neighbors {
		var edges []*graph.Edge
		var edgeErr error
		if dir == graph.Outgoing {
			edges, edgeErr = r.graph.GetEdgesBetween(id, nb.ID)
		} else {
			edges, edgeErr = r.graph.GetEdgesBetween(nb.ID, id)
		}
		if edgeErr != nil {
			continue
		}
		for _, e := range edges {
			out = append(out, EdgeTuple{Source: e.SourceID, Target: e.TargetID, Type: e.Type})
		}
	}
	return out, nil
}
