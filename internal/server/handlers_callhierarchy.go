package server

import (
	"encoding/json"

	"github.com/codegraphls/codegraphls/internal/coordinate"
	"github.com/codegraphls/codegraphls/internal/resolver"
)

// nodeIDPayload is the opaque `{"nodeId": "..."}` object that must
// round-trip between prepareCallHierarchy and incoming/outgoingCalls.
type nodeIDPayload struct {
	NodeID string `json:"nodeId"`
}

// wireCallHierarchyItem is the editor-protocol call hierarchy item shape.
// Data carries the opaque nodeIDPayload; editors must echo it back verbatim.
type wireCallHierarchyItem struct {
	Name  string          `json:"name"`
	Kind  string          `json:"kind"`
	URI   string          `json:"uri"`
	Range Range           `json:"range"`
	Data  json.RawMessage `json:"data"`
}

func toWireItem(item resolver.CallHierarchyItem) wireCallHierarchyItem {
	data, _ := json.Marshal(nodeIDPayload{NodeID: item.NodeID})
	return wireCallHierarchyItem{
		Name:  item.Name,
		Kind:  item.Kind,
		URI:   pathToURI(item.Path),
		Range: rangeFromEditor(coordinate.ToEditorRange(item.Range)),
		Data:  data,
	}
}

func (s *Server) handlePrepareCallHierarchy(req *jsonRPCRequest) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "prepareCallHierarchy: "+err.Error())
		return
	}
	path, line, col, err := p.resolve()
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}

	item, ok := s.resolver.PrepareCallHierarchy(path, line, col)
	if !ok {
		s.writeResult(req.ID, nil)
		return
	}
	s.writeResult(req.ID, []wireCallHierarchyItem{toWireItem(*item)})
}

type callHierarchyCallsParams struct {
	Item wireCallHierarchyItem `json:"item"`
}

func itemFromWire(w wireCallHierarchyItem) (*resolver.CallHierarchyItem, error) {
	var payload nodeIDPayload
	if err := json.Unmarshal(w.Data, &payload); err != nil {
		return nil, err
	}
	return &resolver.CallHierarchyItem{NodeID: payload.NodeID, Name: w.Name, Kind: w.Kind}, nil
}

// wireCallHierarchyCall pairs a related item with the ranges of its call
// sites, per the editor protocol's incoming/outgoingCalls shape.
type wireCallHierarchyCall struct {
	From   wireCallHierarchyItem `json:"from,omitempty"`
	To     wireCallHierarchyItem `json:"to,omitempty"`
	Ranges []Range               `json:"fromRanges,omitempty"`
}

func (s *Server) handleIncomingCalls(req *jsonRPCRequest) {
	var p callHierarchyCallsParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "incomingCalls: "+err.Error())
		return
	}
	item, err := itemFromWire(p.Item)
	if err != nil {
		s.writeError(req.ID, codeInvalidParams, "incomingCalls: malformed item data: "+err.Error())
		return
	}

	calls := s.resolver.IncomingCalls(item)
	out := make([]wireCallHierarchyCall, 0, len(calls))
	for _, c := range calls {
		ranges := make([]Range, 0, len(c.Ranges))
		for _, r := range c.Ranges {
			ranges = append(ranges, rangeFromEditor(coordinate.ToEditorRange(r)))
		}
		out = append(out, wireCallHierarchyCall{From: toWireItem(c.Item), Ranges: ranges})
	}
	s.writeResult(req.ID, out)
}

func (s *Server) handleOutgoingCalls(req *jsonRPCRequest) {
	var p callHierarchyCallsParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "outgoingCalls: "+err.Error())
		return
	}
	item, err := itemFromWire(p.Item)
	if err != nil {
		s.writeError(req.ID, codeInvalidParams, "outgoingCalls: malformed item data: "+err.Error())
		return
	}

	calls := s.resolver.OutgoingCalls(item)
	out := make([]wireCallHierarchyCall, 0, len(calls))
	for _, c := range calls {
		ranges := make([]Range, 0, len(c.Ranges))
		for _, r := range c.Ranges {
			ranges = append(ranges, rangeFromEditor(coordinate.ToEditorRange(r)))
		}
		out = append(out, wireCallHierarchyCall{To: toWireItem(c.Item), Ranges: ranges})
	}
	s.writeResult(req.ID, out)
}
