package server

import (
	"context"
	"encoding/json"

	"github.com/codegraphls/codegraphls/internal/coordinate"
	"github.com/codegraphls/codegraphls/internal/lserr"
	"github.com/codegraphls/codegraphls/internal/parser"
	"github.com/codegraphls/codegraphls/internal/querycache"
)

type wireEdge struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

type wireDependencyGraph struct {
	Nodes []string   `json:"nodes"`
	Edges []wireEdge `json:"edges"`
}

func toWireDependencyGraph(dg querycache.DependencyGraph) wireDependencyGraph {
	edges := make([]wireEdge, 0, len(dg.Edges))
	for _, e := range dg.Edges {
		edges = append(edges, wireEdge{ID: e.ID, Type: string(e.Type), SourceID: e.SourceID, TargetID: e.TargetID})
	}
	return wireDependencyGraph{Nodes: dg.Nodes, Edges: edges}
}

func (s *Server) handleGetDependencyGraph(req *jsonRPCRequest) {
	var p struct {
		URI   string `json:"uri"`
		Depth int    `json:"depth"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "getDependencyGraph: "+err.Error())
		return
	}
	path, err := uriToPath(p.URI)
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}

	dg := s.resolver.DependencyGraph(path, p.Depth)
	s.writeResult(req.ID, toWireDependencyGraph(dg))
}

func (s *Server) handleGetCallGraph(req *jsonRPCRequest) {
	var p struct {
		URI      string   `json:"uri"`
		Position Position `json:"position"`
		Depth    int      `json:"depth"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "getCallGraph: "+err.Error())
		return
	}
	path, err := uriToPath(p.URI)
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}
	line, col := coordinate.ToInternal(p.Position.toInternal())

	dg, ok := s.resolver.CallGraph(path, line, col, p.Depth)
	if !ok {
		s.writeErr(req.ID, lserr.New(lserr.SymbolNotFound, "no symbol at position"))
		return
	}
	s.writeResult(req.ID, toWireDependencyGraph(dg))
}

func (s *Server) handleAnalyzeImpact(req *jsonRPCRequest) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "analyzeImpact: "+err.Error())
		return
	}
	path, line, col, err := p.resolve()
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}

	result, ok := s.resolver.AnalyzeImpact(path, line, col)
	if !ok {
		s.writeErr(req.ID, lserr.New(lserr.SymbolNotFound, "no symbol at position"))
		return
	}
	affected := make([]wireCallHierarchyItem, 0, len(result.Affected))
	for _, a := range result.Affected {
		affected = append(affected, toWireItem(a))
	}
	s.writeResult(req.ID, map[string]any{
		"node":     toWireItem(result.Node),
		"affected": affected,
	})
}

func (s *Server) handleGetParserMetrics(req *jsonRPCRequest) {
	var p struct {
		Language string `json:"language"`
	}
	_ = json.Unmarshal(req.Params, &p)

	registry := s.resolver.Registry()
	frontends := registry.All()
	if p.Language != "" {
		f, ok := registry.Get(parser.Language(p.Language))
		if !ok {
			s.writeResult(req.ID, map[string]any{})
			return
		}
		frontends = []parser.Frontend{f}
	}

	out := make(map[string]any, len(frontends))
	for _, f := range frontends {
		snap := f.Metrics()
		out[string(snap.Language)] = snap
	}
	s.writeResult(req.ID, out)
}

func (s *Server) handleReindexWorkspace(ctx context.Context, req *jsonRPCRequest) {
	// Fire-and-forget: acknowledge immediately, then notify on
	// completion with a correlation id so a client can match it up.
	s.writeResult(req.ID, map[string]any{"status": "started"})

	correlationID := newRequestID()
	go func() {
		files, errs := s.resolver.ReindexWorkspace(s.root, nil)
		s.notify("codegraph.reindexWorkspace/completed", map[string]any{
			"id":     correlationID,
			"files":  files,
			"errors": len(errs),
		})
	}()
}

func (s *Server) handleGetAIContext(req *jsonRPCRequest) {
	var p struct {
		URI         string   `json:"uri"`
		Position    Position `json:"position"`
		ContextType string   `json:"contextType"`
		MaxTokens   int      `json:"max_tokens"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "getAIContext: "+err.Error())
		return
	}
	path, err := uriToPath(p.URI)
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}
	line, col := coordinate.ToInternal(p.Position.toInternal())
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	result, err := s.resolver.GetAIContext(path, line, col, querycache.ContextType(p.ContextType), maxTokens)
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}
	s.writeResult(req.ID, result)
}
