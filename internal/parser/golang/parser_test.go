package golang

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/parser"
)

const testSource = `// Package testpkg provides test fixtures.
package testpkg

import (
	"fmt"
	"strings"
)

// MaxItems is the maximum number of items.
const MaxItems = 100

// DefaultPrefix is the default prefix.
const DefaultPrefix = "item"

// counter is an unexported variable.
var counter int

// Verbose controls logging.
var Verbose bool

// Processor defines the interface for processing items.
type Processor interface {
	// Process processes a single item.
	Process(item string) error
	// Reset resets the processor state.
	Reset()
}

// Item represents a single item.
type Item struct {
	ID   int
	Name string
	Tags []string
}

// Process processes the item (satisfies Processor).
func (it *Item) Process(item string) error {
	it.Name = strings.TrimSpace(item)
	return nil
}

// Reset resets the item (satisfies Processor).
func (it *Item) Reset() {
	it.Name = ""
	it.Tags = nil
}

// String returns a string representation.
func (it Item) String() string {
	return fmt.Sprintf("%d:%s", it.ID, it.Name)
}

// ItemID is a named type for item identifiers.
type ItemID int

// NewItem creates a new Item with the given name.
func NewItem(name string) *Item {
	counter++
	return &Item{ID: counter, Name: name}
}

// formatItem is an unexported helper.
func formatItem(it *Item) string {
	return fmt.Sprintf("[%d] %s", it.ID, it.Name)
}
`

func TestParseSource(t *testing.T) {
	g := graph.NewMemoryStore()
	f := NewFrontend()

	info, err := f.ParseSource(testSource, "testpkg/example.go", g)
	if err != nil {
		t.Fatalf("ParseSource returned error: %v", err)
	}

	if info.Path != "testpkg/example.go" {
		t.Errorf("Path = %q, want %q", info.Path, "testpkg/example.go")
	}
	if info.Language != parser.LangGo {
		t.Errorf("Language = %q, want %q", info.Language, parser.LangGo)
	}

	// NewItem, formatItem, Process, Reset, String all land in Functions.
	if len(info.Functions) != 5 {
		t.Errorf("Functions count = %d, want 5", len(info.Functions))
	}
	if len(info.Classes) != 1 {
		t.Errorf("Classes count = %d, want 1 (Item)", len(info.Classes))
	}
	if len(info.Traits) != 1 {
		t.Errorf("Traits count = %d, want 1 (Processor)", len(info.Traits))
	}
	if len(info.Imports) != 2 {
		t.Errorf("Imports count = %d, want 2 (fmt, strings)", len(info.Imports))
	}

	nodes := nodesByName(t, g)

	assertExported(t, nodes, "NewItem", true)
	assertExported(t, nodes, "formatItem", false)
	assertExported(t, nodes, "Item", true)
	assertExported(t, nodes, "Processor", true)
	assertExported(t, nodes, "ItemID", true)
	assertExported(t, nodes, "MaxItems", true)
	assertExported(t, nodes, "counter", false)
	assertExported(t, nodes, "Verbose", true)

	if n, ok := nodes["NewItem"]; ok {
		want := "func NewItem(name string) *Item"
		if got := n.GetString(graph.PropSignature); got != want {
			t.Errorf("NewItem signature = %q, want %q", got, want)
		}
	}

	if n, ok := nodes["Process"]; ok {
		if n.Type != graph.NodeFunction {
			t.Errorf("Process should be a Function, got %s", n.Type)
		}
	}

	if n, ok := nodes["Processor"]; ok {
		if n.GetString(graph.PropDoc) == "" {
			t.Error("Processor interface should have a doc comment")
		}
	}

	stats := g.Stats()
	if stats.EdgesByType[graph.EdgeImplements] != 1 {
		t.Errorf("Implements edges = %d, want 1", stats.EdgesByType[graph.EdgeImplements])
	}
	if stats.EdgesByType[graph.EdgeImports] != 2 {
		t.Errorf("Imports edges = %d, want 2", stats.EdgesByType[graph.EdgeImports])
	}
}

func TestParseSourceSyntaxError(t *testing.T) {
	g := graph.NewMemoryStore()
	f := NewFrontend()
	badSource := "package bad\nfunc broken( {\n"
	_, err := f.ParseSource(badSource, "bad.go", g)
	if err == nil {
		t.Fatal("expected error for syntax-error source, got nil")
	}
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *parser.ParseError", err)
	}
	if pe.Kind != parser.ErrSyntax {
		t.Errorf("ParseError.Kind = %q, want %q", pe.Kind, parser.ErrSyntax)
	}
}

func TestCanParseAndExtensions(t *testing.T) {
	f := NewFrontend()
	if !f.CanParse("main.go") {
		t.Error("CanParse(\"main.go\") = false, want true")
	}
	if f.CanParse("main.py") {
		t.Error("CanParse(\"main.py\") = true, want false")
	}
	exts := f.FileExtensions()
	if len(exts) != 1 || exts[0] != ".go" {
		t.Errorf("FileExtensions() = %v, want [\".go\"]", exts)
	}
}

func TestParseSampleFixture(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("could not determine test file path")
	}
	samplePath := filepath.Join(filepath.Dir(thisFile), "testdata", "sample.go")

	content, err := os.ReadFile(samplePath)
	if err != nil {
		t.Skipf("testdata/sample.go not found: %v", err)
	}

	g := graph.NewMemoryStore()
	f := NewFrontend()
	_, err = f.ParseSource(string(content), samplePath, g)
	if err != nil {
		t.Fatalf("ParseSource returned error: %v", err)
	}

	nodes := nodesByName(t, g)

	for _, name := range []string{"User", "Greeter", "Greet", "String", "IsAdult", "NewUser", "formatName", "MaxRetries", "DefaultName", "UserID"} {
		if _, ok := nodes[name]; !ok {
			t.Errorf("expected node %s", name)
		}
	}

	stats := g.Stats()
	if stats.EdgesByType[graph.EdgeImplements] == 0 {
		t.Error("expected Implements edge (User implements Greeter)")
	}
}

func assertExported(t *testing.T, nodes map[string]*graph.Node, name string, want bool) {
	t.Helper()
	n, ok := nodes[name]
	if !ok {
		t.Errorf("node %q not found", name)
		return
	}
	got := n.GetString("exported") == "true"
	if got != want {
		t.Errorf("%s exported = %v, want %v", name, got, want)
	}
}

func nodesByName(t *testing.T, g *graph.MemoryStore) map[string]*graph.Node {
	t.Helper()
	m := make(map[string]*graph.Node)
	for _, n := range g.AllNodes() {
		m[n.Name()] = n
	}
	return m
}
