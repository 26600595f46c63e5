package server

import "encoding/json"

// TextDocumentItem is the wire shape of an opened document.
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Text       string `json:"text"`
}

type didOpenParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

func (s *Server) handleDidOpen(req *jsonRPCRequest) {
	var p didOpenParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "didOpen: "+err.Error())
		return
	}
	path, err := uriToPath(p.TextDocument.URI)
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}
	if err := s.resolver.OpenFile(path, p.TextDocument.Text); err != nil {
		s.logger.Printf("didOpen %s: %v", path, err)
	}
}

// TextDocumentIdentifier identifies a document by URI, without content.
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// TextDocumentContentChangeEvent is one entry of a full-content sync change
// (the server only advertises full-content sync, never incremental ranges).
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   TextDocumentIdentifier           `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

func (s *Server) handleDidChange(req *jsonRPCRequest) {
	var p didChangeParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "didChange: "+err.Error())
		return
	}
	path, err := uriToPath(p.TextDocument.URI)
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}
	if len(p.ContentChanges) == 0 {
		return
	}
	text := p.ContentChanges[len(p.ContentChanges)-1].Text
	if err := s.resolver.ChangeFile(path, text); err != nil {
		s.logger.Printf("didChange %s: %v", path, err)
	}
}

type didSaveParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Text         string                 `json:"text"`
}

func (s *Server) handleDidSave(req *jsonRPCRequest) {
	var p didSaveParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "didSave: "+err.Error())
		return
	}
	path, err := uriToPath(p.TextDocument.URI)
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}
	if err := s.resolver.SaveFile(path, p.Text); err != nil {
		s.logger.Printf("didSave %s: %v", path, err)
	}
}

type didCloseParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

func (s *Server) handleDidClose(req *jsonRPCRequest) {
	var p didCloseParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.writeError(req.ID, codeInvalidParams, "didClose: "+err.Error())
		return
	}
	path, err := uriToPath(p.TextDocument.URI)
	if err != nil {
		s.writeErr(req.ID, err)
		return
	}
	s.resolver.CloseFile(path)
}
