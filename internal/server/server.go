// Package server implements the editor-protocol façade: a JSON-RPC 2.0
// transport over stdio, line-delimited, covering text sync, navigation,
// call hierarchy, and the codegraph.* custom commands.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/codegraphls/codegraphls/internal/lserr"
	"github.com/codegraphls/codegraphls/internal/resolver"
	"github.com/codegraphls/codegraphls/internal/watcher"
)

const (
	protocolVersion = "codegraph-1"
	serverName      = "codegraphls"
	serverVersion   = "1.0.0"
)

// jsonRPCRequest is a JSON-RPC 2.0 request or notification.
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// jsonRPCResponse is a JSON-RPC 2.0 response.
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

// jsonRPCError is a JSON-RPC 2.0 error object.
type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Server dispatches JSON-RPC requests arriving over stdio to resolver calls.
type Server struct {
	resolver *resolver.Resolver
	root     string
	watcher  *watcher.Watcher

	scanner *bufio.Scanner
	writer  io.Writer
	logger  *log.Logger
}

// New creates a Server over r, rooted at workspace root, reading from stdin
// and writing to stdout.
func New(r *resolver.Resolver, root string) *Server {
	return NewWithIO(r, root, os.Stdin, os.Stdout)
}

// NewWithIO creates a Server with explicit I/O, for tests and embedding.
func NewWithIO(r *resolver.Resolver, root string, in io.Reader, out io.Writer) *Server {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	return &Server{
		resolver: r,
		root:     root,
		scanner:  scanner,
		writer:   out,
		logger:   log.New(os.Stderr, "codegraphls: ", log.LstdFlags),
	}
}

// Run reads JSON-RPC requests line-by-line until ctx is cancelled or stdin
// closes.
func (s *Server) Run(ctx context.Context) error {
	for s.scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeError(nil, codeParseError, "parse error: "+err.Error())
			continue
		}

		s.dispatch(ctx, &req)
	}

	if err := s.scanner.Err(); err != nil {
		return fmt.Errorf("server: scanner error: %w", err)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, req *jsonRPCRequest) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "initialized", "exit":
		// Notifications; nothing to respond.
	case "textDocument/didOpen":
		s.handleDidOpen(req)
	case "textDocument/didChange":
		s.handleDidChange(req)
	case "textDocument/didSave":
		s.handleDidSave(req)
	case "textDocument/didClose":
		s.handleDidClose(req)
	case "textDocument/definition":
		s.handleDefinition(req)
	case "textDocument/references":
		s.handleReferences(req)
	case "textDocument/hover":
		s.handleHover(req)
	case "textDocument/documentSymbol":
		s.handleDocumentSymbol(req)
	case "textDocument/prepareCallHierarchy":
		s.handlePrepareCallHierarchy(req)
	case "callHierarchy/incomingCalls":
		s.handleIncomingCalls(req)
	case "callHierarchy/outgoingCalls":
		s.handleOutgoingCalls(req)
	case "codegraph.getDependencyGraph":
		s.handleGetDependencyGraph(req)
	case "codegraph.getCallGraph":
		s.handleGetCallGraph(req)
	case "codegraph.analyzeImpact":
		s.handleAnalyzeImpact(req)
	case "codegraph.getParserMetrics":
		s.handleGetParserMetrics(req)
	case "codegraph.reindexWorkspace":
		s.handleReindexWorkspace(ctx, req)
	case "codegraph.getAIContext":
		s.handleGetAIContext(req)
	case "codegraph.getNodeLocation":
		s.handleGetNodeLocation(req)
	case "codegraph.getWorkspaceSymbols":
		s.handleGetWorkspaceSymbols(req)
	default:
		if req.ID != nil {
			s.writeError(req.ID, codeMethodNotFound, "method not found: "+req.Method)
		}
	}
}

// handleInitialize announces sync, navigation, and custom-command capabilities.
func (s *Server) handleInitialize(req *jsonRPCRequest) {
	s.writeResult(req.ID, map[string]any{
		"protocolVersion": protocolVersion,
		"serverInfo":      map[string]string{"name": serverName, "version": serverVersion},
		"capabilities": map[string]any{
			"textDocumentSync": map[string]any{
				"openClose": true,
				"change":    "full",
				"save":      map[string]any{"includeText": true},
			},
			"definitionProvider":     true,
			"referencesProvider":     true,
			"hoverProvider":          true,
			"documentSymbolProvider": true,
			"callHierarchyProvider":  true,
			"executeCommandProvider": map[string]any{
				"commands": []string{
					"codegraph.getDependencyGraph",
					"codegraph.getCallGraph",
					"codegraph.analyzeImpact",
					"codegraph.getParserMetrics",
					"codegraph.reindexWorkspace",
					"codegraph.getAIContext",
					"codegraph.getNodeLocation",
					"codegraph.getWorkspaceSymbols",
				},
			},
		},
	})
}

// writeResult sends a successful JSON-RPC response. Notifications (nil id)
// produce no output, matching JSON-RPC 2.0 semantics.
func (s *Server) writeResult(id json.RawMessage, result any) {
	if id == nil {
		return
	}
	resp := jsonRPCResponse{JSONRPC: "2.0", ID: id, Result: result}
	s.write(resp)
}

// writeError sends a JSON-RPC error response.
func (s *Server) writeError(id json.RawMessage, code int, message string) {
	resp := jsonRPCResponse{JSONRPC: "2.0", ID: id, Error: &jsonRPCError{Code: code, Message: message}}
	s.write(resp)
}

// writeErr maps an lserr.Error (or any error) to a JSON-RPC error response,
// splitting not-found/invalid-input kinds from internal errors.
func (s *Server) writeErr(id json.RawMessage, err error) {
	kind, ok := lserr.KindOf(err)
	if !ok {
		s.writeError(id, codeInternalError, err.Error())
		return
	}
	if kind.Invalid() {
		s.writeError(id, codeInvalidParams, err.Error())
		return
	}
	s.writeError(id, codeInternalError, err.Error())
}

func (s *Server) write(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Printf("marshal response: %v", err)
		return
	}
	fmt.Fprintf(s.writer, "%s\n", data)
}

// notify sends a server-initiated notification (no id, no response expected),
// e.g. the reindexWorkspace completion notice.
func (s *Server) notify(method string, params any) {
	type notification struct {
		JSONRPC string `json:"jsonrpc"`
		Method  string `json:"method"`
		Params  any    `json:"params,omitempty"`
	}
	s.write(notification{JSONRPC: "2.0", Method: method, Params: params})
}

// newRequestID mints a correlation id for a fire-and-forget server-initiated
// exchange (used by reindexWorkspace's completion notification).
func newRequestID() string {
	return uuid.NewString()
}

// Watch starts the workspace watcher and wires its events into the
// resolver's purge-then-reparse / remove-only lifecycle.
// It returns once the watcher is started; events are handled on a
// background goroutine until ctx is cancelled.
func (s *Server) Watch(ctx context.Context, w *watcher.Watcher) error {
	s.watcher = w
	events, err := w.Start(ctx)
	if err != nil {
		return fmt.Errorf("server: starting watcher: %w", err)
	}
	go s.watchLoop(ctx, events)
	return nil
}

func (s *Server) watchLoop(ctx context.Context, events <-chan watcher.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			s.handleWatchEvent(evt)
		}
	}
}

func (s *Server) handleWatchEvent(evt watcher.Event) {
	var err error
	switch evt.Op {
	case watcher.Create, watcher.Write:
		err = s.resolver.SaveFile(evt.Path, "")
	case watcher.Remove, watcher.Rename:
		err = s.resolver.RemoveFile(evt.Path)
	}
	if err != nil {
		s.logger.Printf("watch event %s %s: %v", evt.Op, evt.Path, err)
	}
}
