package server

import (
	"encoding/json"

	"github.com/codegraphls/codegraphls/internal/coordinate"
	"github.com/codegraphls/codegraphls/internal/lserr"
)

// Position is an editor-protocol position (0-indexed line and character).
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

func (p Position) toInternal() coordinate.Position {
	return coordinate.Position{Line: p.Line, Col: p.Character}
}

// Range is an editor-protocol range.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func rangeFromEditor(r coordinate.EditorRange) Range {
	return Range{
		Start: Position{Line: r.Start.Line, Character: r.Start.Col},
		End:   Position{Line: r.End.Line, Character: r.End.Col},
	}
}

// Location is an editor-protocol location.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

type textDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

func (p textDocumentPositionParams) resolve() (path string, line, col int, err error) {
	path, err = uriToPath(p.TextDocument.URI)
	if err != nil {
		return "", 0, 0, err
	}
	line, col = coordinate.ToInternal(p.Position.toInternal())
	return path, line, col, nil
}

func (s *Server) handleDefinition(req *jsonRPCRequest) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "definition: "+err.Error())
		return
	}
	path, line, col, err := p.resolve()
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}

	n, ok := s.resolver.Definition(path, line, col)
	if !ok {
		s.writeResult(req.ID, nil)
		return
	}
	s.writeResult(req.ID, Location{
		URI:   pathToURI(n.Path()),
		Range: rangeFromEditor(coordinate.ToEditorRange(n.Range())),
	})
}

type referenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

type referenceParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
	Context      referenceContext       `json:"context"`
}

func (s *Server) handleReferences(req *jsonRPCRequest) {
	var p referenceParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "references: "+err.Error())
		return
	}
	path, err := uriToPath(p.TextDocument.URI)
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}
	line, col := coordinate.ToInternal(p.Position.toInternal())

	locs, ok := s.resolver.References(path, line, col, p.Context.IncludeDeclaration)
	if !ok {
		s.writeResult(req.ID, []Location{})
		return
	}
	out := make([]Location, 0, len(locs))
	for _, l := range locs {
		out = append(out, Location{URI: pathToURI(l.Path), Range: rangeFromEditor(coordinate.ToEditorRange(l.Range))})
	}
	s.writeResult(req.ID, out)
}

func (s *Server) handleHover(req *jsonRPCRequest) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "hover: "+err.Error())
		return
	}
	path, line, col, err := p.resolve()
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}

	md, ok := s.resolver.Hover(path, line, col)
	if !ok {
		s.writeResult(req.ID, nil)
		return
	}
	s.writeResult(req.ID, map[string]any{
		"contents": map[string]string{"kind": "markdown", "value": md},
	})
}

type documentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// wireSymbolInfo is the editor-protocol document/workspace symbol shape.
type wireSymbolInfo struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Location Location `json:"location"`
}

func (s *Server) handleDocumentSymbol(req *jsonRPCRequest) {
	var p documentSymbolParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "documentSymbol: "+err.Error())
		return
	}
	path, err := uriToPath(p.TextDocument.URI)
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}

	syms := s.resolver.DocumentSymbols(path)
	out := make([]wireSymbolInfo, 0, len(syms))
	for _, sym := range syms {
		out = append(out, wireSymbolInfo{
			Name:     sym.Name,
			Kind:     sym.Kind,
			Location: Location{URI: pathToURI(sym.Location.Path), Range: rangeFromEditor(coordinate.ToEditorRange(sym.Location.Range))},
		})
	}
	s.writeResult(req.ID, out)
}

func (s *Server) handleGetWorkspaceSymbols(req *jsonRPCRequest) {
	var p struct {
		Query string `json:"query"`
		Kind  string `json:"kind"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "getWorkspaceSymbols: "+err.Error())
		return
	}

	syms := s.resolver.WorkspaceSymbols(p.Query, p.Kind)
	out := make([]wireSymbolInfo, 0, len(syms))
	for _, sym := range syms {
		out = append(out, wireSymbolInfo{
			Name:     sym.Name,
			Kind:     sym.Kind,
			Location: Location{URI: pathToURI(sym.Location.Path), Range: rangeFromEditor(coordinate.ToEditorRange(sym.Location.Range))},
		})
	}
	s.writeResult(req.ID, out)
}

func (s *Server) handleGetNodeLocation(req *jsonRPCRequest) {
	var p struct {
		NodeID string `json:"nodeId"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "getNodeLocation: "+err.Error())
		return
	}

	loc, ok := s.resolver.NodeLocation(p.NodeID)
	if !ok {
		s.writeErr(req.ID, lserr.New(lserr.NodeNotFound, "no such node: "+p.NodeID))
		return
	}
	s.writeResult(req.ID, Location{URI: pathToURI(loc.Path), Range: rangeFromEditor(coordinate.ToEditorRange(loc.Range))})
}
