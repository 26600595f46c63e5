package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/linker"
	"github.com/codegraphls/codegraphls/internal/parser"
	"github.com/codegraphls/codegraphls/internal/parser/golang"
	"github.com/codegraphls/codegraphls/internal/querycache"
	"github.com/codegraphls/codegraphls/internal/resolver"
	"github.com/codegraphls/codegraphls/internal/symbolindex"
)

func newTestServer(t *testing.T, in string) (*Server, *bytes.Buffer) {
	t.Helper()
	g := graph.NewMemoryStore()
	idx := symbolindex.New()
	cache := querycache.New(querycache.DefaultCapacity)
	reg := parser.NewRegistry()
	reg.Register(parser.LangGo, golang.NewFrontend())
	lk := linker.New(g, idx)
	r := resolver.New(g, idx, cache, reg, lk)

	var out bytes.Buffer
	return NewWithIO(r, "/w", strings.NewReader(in), &out), &out
}

// readResponses splits the server's newline-delimited JSON-RPC output into
// individual decoded messages. Every line is decoded, notifications
// included; none are skipped.
func readResponses(t *testing.T, out *bytes.Buffer) []jsonRPCResponse {
	t.Helper()
	var responses []jsonRPCResponse
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var resp jsonRPCResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			t.Fatalf("decode response line %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestOpenThenDefinitionOverJSONRPC(t *testing.T) {
	src := "package a\n\nfunc foo() {\n}\n\nfunc bar() {\n\tfoo()\n}\n"
	didOpen := `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///w/a.go","languageId":"go","text":` + mustJSON(t, src) + `}}}`
	definition := `{"jsonrpc":"2.0","id":1,"method":"textDocument/definition","params":{"textDocument":{"uri":"file:///w/a.go"},"position":{"line":6,"character":1}}}`

	input := didOpen + "\n" + definition + "\n"
	s, out := newTestServer(t, input)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	responses := readResponses(t, out)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1 (didOpen is a notification)", len(responses))
	}

	resp := responses[0]
	if resp.Error != nil {
		t.Fatalf("definition returned error: %+v", resp.Error)
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var loc Location
	if err := json.Unmarshal(data, &loc); err != nil {
		t.Fatalf("unmarshal Location: %v", err)
	}
	if loc.URI != "file:///w/a.go" {
		t.Fatalf("Location.URI = %q, want file:///w/a.go", loc.URI)
	}
	// foo's FuncDecl starts at the "func" keyword: 0-indexed line 2, column 0.
	if loc.Range.Start.Line != 2 || loc.Range.Start.Character != 0 {
		t.Fatalf("Location.Range.Start = %+v, want line=2 character=0", loc.Range.Start)
	}
}

func TestInvalidURIReturnsInvalidParamsError(t *testing.T) {
	req := `{"jsonrpc":"2.0","id":1,"method":"textDocument/definition","params":{"textDocument":{"uri":"not-a-uri"},"position":{"line":0,"character":0}}}`
	s, out := newTestServer(t, req+"\n")

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	responses := readResponses(t, out)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	if responses[0].Error == nil {
		t.Fatalf("expected an error response for an invalid URI")
	}
	if responses[0].Error.Code != codeInvalidParams {
		t.Fatalf("error code = %d, want %d", responses[0].Error.Code, codeInvalidParams)
	}
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	req := `{"jsonrpc":"2.0","id":1,"method":"totally/unknown"}`
	s, out := newTestServer(t, req+"\n")

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	responses := readResponses(t, out)
	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatalf("expected one error response, got %+v", responses)
	}
	if responses[0].Error.Code != codeMethodNotFound {
		t.Fatalf("error code = %d, want %d", responses[0].Error.Code, codeMethodNotFound)
	}
}

func mustJSON(t *testing.T, s string) string {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}
