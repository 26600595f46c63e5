// Package golang extracts code graph nodes and edges from Go source using
// the standard library's own parser, since nothing in the tree-sitter
// ecosystem parses Go more faithfully than go/parser itself.
package golang

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"strings"
	"time"
	"unicode"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/metrics"
	"github.com/codegraphls/codegraphls/internal/parser"
)

// Frontend extracts Go code graph nodes and edges.
type Frontend struct {
	recorder *metrics.Recorder
}

// NewFrontend creates a Go parsing frontend.
func NewFrontend() *Frontend {
	return &Frontend{recorder: metrics.NewRecorder(string(parser.LangGo))}
}

func (f *Frontend) CanParse(path string) bool {
	return strings.HasSuffix(path, ".go")
}

func (f *Frontend) FileExtensions() []string {
	return parser.FileExtensions[parser.LangGo]
}

func (f *Frontend) Metrics() metrics.Snapshot { return f.recorder.Snapshot() }

func (f *Frontend) ParseFile(path string, g graph.Store) (*parser.FileInfo, error) {
	text, err := parser.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.ParseSource(text, path, g)
}

func (f *Frontend) ParseSource(text, path string, g graph.Store) (*parser.FileInfo, error) {
	start := time.Now()
	info, nodeCount, edgeCount, err := f.parse(text, path, g)
	f.recorder.RecordParse(nodeCount, edgeCount, time.Since(start), err)
	return info, err
}

func (f *Frontend) parse(text, path string, g graph.Store) (*parser.FileInfo, int, int, error) {
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, path, text, goparser.ParseComments)
	if err != nil {
		return nil, 0, 0, parser.SyntaxError(path, err)
	}

	e := &extractor{
		fset:          fset,
		file:          file,
		path:          path,
		g:             g,
		interfaces:    make(map[string]map[string]bool),
		structMethods: make(map[string]map[string]bool),
		funcByName:    make(map[string]string),
	}
	e.extract()

	return &parser.FileInfo{
		Path:         path,
		Language:     parser.LangGo,
		Functions:    e.info.Functions,
		Classes:      e.info.Classes,
		Traits:       e.info.Traits,
		Imports:      e.info.Imports,
		PendingCalls: e.info.PendingCalls,
	}, e.nodeCount, e.edgeCount, nil
}

// extractor walks a Go AST and builds graph nodes and edges.
type extractor struct {
	fset *token.FileSet
	file *ast.File
	path string
	g    graph.Store

	fileNodeID string
	modNodeID  string

	info parser.FileInfo

	nodeCount, edgeCount int

	// Track interfaces and struct methods for Implements edge detection.
	interfaces    map[string]map[string]bool // interface name -> set of method names
	structMethods map[string]map[string]bool // struct name -> set of method names

	// funcByName resolves in-file calls to the function/method node that
	// declares them; receiver-qualified names use "Recv.Method".
	funcByName map[string]string
}

func (e *extractor) addNode(n *graph.Node) {
	_ = e.g.AddNode(n)
	e.nodeCount++
}

func (e *extractor) addEdge(edgeType graph.EdgeType, source, target string) {
	_ = e.g.AddEdge(&graph.Edge{Type: edgeType, SourceID: source, TargetID: target})
	e.edgeCount++
}

func (e *extractor) extract() {
	e.extractFileNode()
	e.extractModule()
	e.extractImports()
	e.extractDeclarations()
	e.extractImplementsEdges()
}

func (e *extractor) extractFileNode() {
	e.fileNodeID = graph.NewNodeID(graph.NodeCodeFile, e.path, e.path)
	n := graph.NewNode(e.fileNodeID, graph.NodeCodeFile)
	n.SetString(graph.PropName, e.path)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangGo))
	e.addNode(n)
}

func (e *extractor) extractModule() {
	pkgName := e.file.Name.Name
	e.modNodeID = graph.NewNodeID(graph.NodeModule, e.path, pkgName)

	doc := ""
	if e.file.Doc != nil {
		doc = e.file.Doc.Text()
	}

	n := graph.NewNode(e.modNodeID, graph.NodeModule)
	n.SetString(graph.PropName, pkgName)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangGo))
	n.SetString(graph.PropDoc, doc)
	line := e.pos(e.file.Package)
	n.SetRange(graph.IndexRange{StartLine: line, EndLine: line})
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.fileNodeID, e.modNodeID)
}

func (e *extractor) extractImports() {
	for _, imp := range e.file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		impID := graph.NewNodeID(graph.NodeModule, path, path)

		n := graph.NewNode(impID, graph.NodeModule)
		n.SetString(graph.PropName, path)
		n.SetString(graph.PropLanguage, string(parser.LangGo))
		e.addNode(n)

		e.addEdge(graph.EdgeImports, e.modNodeID, impID)
		e.info.Imports = append(e.info.Imports, impID)
	}
}

func (e *extractor) extractDeclarations() {
	for _, decl := range e.file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			e.extractFuncDecl(d)
		case *ast.GenDecl:
			e.extractGenDecl(d)
		}
	}
}

func (e *extractor) extractFuncDecl(fn *ast.FuncDecl) {
	name := fn.Name.Name
	exported := isExported(name)
	sig := funcSignature(fn)
	doc := ""
	if fn.Doc != nil {
		doc = fn.Doc.Text()
	}
	r := graph.IndexRange{
		StartLine: e.pos(fn.Pos()),
		StartCol:  e.col(fn.Pos()),
		EndLine:   e.pos(fn.End()),
		EndCol:    e.col(fn.End()),
	}

	qualified := name
	var funcID string
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		recvType := receiverTypeName(fn.Recv.List[0].Type)
		qualified = recvType + "." + name
		funcID = graph.NewNodeID(graph.NodeFunction, e.path, qualified)

		if e.structMethods[recvType] == nil {
			e.structMethods[recvType] = make(map[string]bool)
		}
		e.structMethods[recvType][name] = true
	} else {
		qualified = e.file.Name.Name + "." + name
		funcID = graph.NewNodeID(graph.NodeFunction, e.path, name)
	}

	n := graph.NewNode(funcID, graph.NodeFunction)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangGo))
	n.SetString(graph.PropSignature, sig)
	n.SetString(graph.PropDoc, doc)
	n.SetRange(r)
	n.SetString("qualified_name", qualified)
	n.SetString("exported", boolStr(exported))
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.modNodeID, funcID)

	e.funcByName[name] = funcID
	e.funcByName[qualified] = funcID
	e.info.Functions = append(e.info.Functions, funcID)

	if fn.Body != nil {
		e.scanCallsIn(fn.Body, funcID)
	}
}

func (e *extractor) extractGenDecl(decl *ast.GenDecl) {
	for _, spec := range decl.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			e.extractTypeSpec(s, decl)
		case *ast.ValueSpec:
			e.extractValueSpec(s, decl)
		}
	}
}

func (e *extractor) extractTypeSpec(ts *ast.TypeSpec, decl *ast.GenDecl) {
	name := ts.Name.Name
	exported := isExported(name)
	doc := ""
	if ts.Doc != nil {
		doc = ts.Doc.Text()
	} else if decl.Doc != nil {
		doc = decl.Doc.Text()
	}
	r := graph.IndexRange{
		StartLine: e.pos(ts.Pos()), StartCol: e.col(ts.Pos()),
		EndLine: e.pos(ts.End()), EndCol: e.col(ts.End()),
	}

	switch t := ts.Type.(type) {
	case *ast.StructType:
		e.extractStruct(name, exported, doc, r, t)
	case *ast.InterfaceType:
		e.extractInterface(name, exported, doc, r, t)
	default:
		typeID := graph.NewNodeID(graph.NodeType_, e.path, name)
		n := graph.NewNode(typeID, graph.NodeType_)
		n.SetString(graph.PropName, name)
		n.SetString(graph.PropPath, e.path)
		n.SetString(graph.PropLanguage, string(parser.LangGo))
		n.SetString(graph.PropDoc, doc)
		n.SetRange(r)
		n.SetString("exported", boolStr(exported))
		e.addNode(n)
		e.addEdge(graph.EdgeContains, e.modNodeID, typeID)
	}
}

func (e *extractor) extractStruct(name string, exported bool, doc string, r graph.IndexRange, st *ast.StructType) {
	structID := graph.NewNodeID(graph.NodeClass, e.path, name)

	var fields []string
	if st.Fields != nil {
		for _, f := range st.Fields.List {
			if len(f.Names) > 0 {
				for _, n := range f.Names {
					fields = append(fields, n.Name)
				}
			} else {
				fields = append(fields, typeExprString(f.Type))
			}
		}
	}

	n := graph.NewNode(structID, graph.NodeClass)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangGo))
	n.SetString(graph.PropDoc, doc)
	n.SetRange(r)
	n.SetString("exported", boolStr(exported))
	if len(fields) > 0 {
		n.SetString("fields", strings.Join(fields, ","))
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.modNodeID, structID)
	e.info.Classes = append(e.info.Classes, structID)
}

func (e *extractor) extractInterface(name string, exported bool, doc string, r graph.IndexRange, it *ast.InterfaceType) {
	ifaceID := graph.NewNodeID(graph.NodeInterface, e.path, name)

	methods := make(map[string]bool)
	var methodNames []string
	if it.Methods != nil {
		for _, m := range it.Methods.List {
			for _, n := range m.Names {
				methods[n.Name] = true
				methodNames = append(methodNames, n.Name)
			}
		}
	}
	e.interfaces[name] = methods

	n := graph.NewNode(ifaceID, graph.NodeInterface)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangGo))
	n.SetString(graph.PropDoc, doc)
	n.SetRange(r)
	n.SetString("exported", boolStr(exported))
	if len(methodNames) > 0 {
		n.SetString("methods", strings.Join(methodNames, ","))
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.modNodeID, ifaceID)
	e.info.Traits = append(e.info.Traits, ifaceID)
}

func (e *extractor) extractValueSpec(vs *ast.ValueSpec, decl *ast.GenDecl) {
	doc := ""
	if vs.Doc != nil {
		doc = vs.Doc.Text()
	} else if decl.Doc != nil {
		doc = decl.Doc.Text()
	}

	for _, ident := range vs.Names {
		name := ident.Name
		if name == "_" {
			continue
		}
		exported := isExported(name)
		nodeID := graph.NewNodeID(graph.NodeVariable, e.path, name)
		line := e.pos(ident.Pos())

		n := graph.NewNode(nodeID, graph.NodeVariable)
		n.SetString(graph.PropName, name)
		n.SetString(graph.PropPath, e.path)
		n.SetString(graph.PropLanguage, string(parser.LangGo))
		n.SetString(graph.PropDoc, doc)
		n.SetRange(graph.IndexRange{StartLine: line, EndLine: line, StartCol: e.col(ident.Pos()), EndCol: e.col(ident.End())})
		n.SetString("exported", boolStr(exported))
		if decl.Tok == token.CONST {
			n.SetString("const", "true")
		}
		e.addNode(n)
		e.addEdge(graph.EdgeContains, e.modNodeID, nodeID)
	}
}

// extractImplementsEdges detects struct-to-interface structural typing
// within this file. Interfaces or structs declared in other files are not
// matched, here or by the cross-file linker.
func (e *extractor) extractImplementsEdges() {
	for ifaceName, ifaceMethods := range e.interfaces {
		if len(ifaceMethods) == 0 {
			continue
		}
		ifaceID := graph.NewNodeID(graph.NodeInterface, e.path, ifaceName)
		for structName, structMethods := range e.structMethods {
			if implementsAll(structMethods, ifaceMethods) {
				structID := graph.NewNodeID(graph.NodeClass, e.path, structName)
				e.addEdge(graph.EdgeImplements, structID, ifaceID)
			}
		}
	}
}

func (e *extractor) scanCallsIn(body ast.Node, callerID string) {
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		name, ok := calleeName(call.Fun)
		if !ok {
			return true
		}
		r := graph.IndexRange{StartLine: e.pos(call.Pos()), StartCol: e.col(call.Pos()), EndLine: e.pos(call.End()), EndCol: e.col(call.End())}
		if targetID, ok := e.funcByName[name]; ok {
			e.addEdge(graph.EdgeCalls, callerID, targetID)
			return true
		}
		e.info.PendingCalls = append(e.info.PendingCalls, parser.PendingCall{
			CallerID:   callerID,
			CalleeName: name,
			Range:      r,
		})
		return true
	})
}

// calleeName extracts a best-effort callee name from a call expression's
// function operand: a bare identifier, or the selector's final segment for
// method/package-qualified calls (e.g. "buf.WriteString" -> "WriteString").
func calleeName(fun ast.Expr) (string, bool) {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name, true
	case *ast.SelectorExpr:
		return f.Sel.Name, true
	default:
		return "", false
	}
}

// Helper functions

func (e *extractor) pos(p token.Pos) int {
	return e.fset.Position(p).Line
}

func (e *extractor) col(p token.Pos) int {
	return e.fset.Position(p).Column - 1
}

func isExported(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper(rune(name[0]))
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return typeExprString(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return typeExprString(expr)
	}
}

func typeExprString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeExprString(t.X)
	case *ast.SelectorExpr:
		return typeExprString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		return "[]" + typeExprString(t.Elt)
	case *ast.MapType:
		return "map[" + typeExprString(t.Key) + "]" + typeExprString(t.Value)
	case *ast.InterfaceType:
		return "interface{}"
	case *ast.IndexExpr:
		return typeExprString(t.X) + "[" + typeExprString(t.Index) + "]"
	default:
		return fmt.Sprintf("%T", expr)
	}
}

func funcSignature(fn *ast.FuncDecl) string {
	var b strings.Builder
	b.WriteString("func ")
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		b.WriteString("(")
		b.WriteString(receiverTypeName(fn.Recv.List[0].Type))
		b.WriteString(") ")
	}
	b.WriteString(fn.Name.Name)
	b.WriteString("(")
	if fn.Type.Params != nil {
		writeFieldList(&b, fn.Type.Params)
	}
	b.WriteString(")")
	if fn.Type.Results != nil && len(fn.Type.Results.List) > 0 {
		b.WriteString(" ")
		if len(fn.Type.Results.List) > 1 || len(fn.Type.Results.List[0].Names) > 0 {
			b.WriteString("(")
			writeFieldList(&b, fn.Type.Results)
			b.WriteString(")")
		} else {
			writeFieldList(&b, fn.Type.Results)
		}
	}
	return b.String()
}

func writeFieldList(b *strings.Builder, fl *ast.FieldList) {
	for i, f := range fl.List {
		if i > 0 {
			b.WriteString(", ")
		}
		if len(f.Names) > 0 {
			for j, n := range f.Names {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString(n.Name)
			}
			b.WriteString(" ")
		}
		b.WriteString(typeExprString(f.Type))
	}
}

func implementsAll(structMethods, ifaceMethods map[string]bool) bool {
	for method := range ifaceMethods {
		if !structMethods[method] {
			return false
		}
	}
	return true
}
