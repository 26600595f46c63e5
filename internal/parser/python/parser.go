// Package python extracts code graph nodes and edges from Python source
// using tree-sitter.
package python

import (
	"context"
	"strings"
	"time"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/metrics"
	"github.com/codegraphls/codegraphls/internal/parser"
)

// Frontend extracts Python code graph nodes and edges.
type Frontend struct {
	recorder *metrics.Recorder
}

// NewFrontend creates a Python parsing frontend.
func NewFrontend() *Frontend {
	return &Frontend{recorder: metrics.NewRecorder(string(parser.LangPython))}
}

func (f *Frontend) CanParse(path string) bool {
	for _, ext := range f.FileExtensions() {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (f *Frontend) FileExtensions() []string { return parser.FileExtensions[parser.LangPython] }

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
	lang := python.GetLanguage()
	psr := sitter.NewParser()
	psr.SetLanguage(lang)

	content := []byte(text)
	tree, err := psr.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, 0, 0, parser.SyntaxError(path, err)
	}
	defer tree.Close()

	e := &extractor{
		path:             path,
		content:          content,
		g:                g,
		funcNames:        make(map[string]string),
		classMethodNames: make(map[string]map[string]string),
		importNames:      make(map[string]string),
	}
	e.extract(tree.RootNode())

	return &parser.FileInfo{
		Path:         path,
		Language:     parser.LangPython,
		Functions:    e.info.Functions,
		Classes:      e.info.Classes,
		Imports:      e.info.Imports,
		PendingCalls: e.info.PendingCalls,
	}, e.nodeCount, e.edgeCount, nil
}

type extractor struct {
	path    string
	content []byte
	g       graph.Store

	fileNodeID string
	modNodeID  string

	info parser.FileInfo

	nodeCount, edgeCount int

	funcNames        map[string]string
	classMethodNames map[string]map[string]string
	importNames      map[string]string
}

func (e *extractor) addNode(n *graph.Node) {
	_ = e.g.AddNode(n)
	e.nodeCount++
}

func (e *extractor) addEdge(edgeType graph.EdgeType, source, target string) {
	_ = e.g.AddEdge(&graph.Edge{Type: edgeType, SourceID: source, TargetID: target})
	e.edgeCount++
}

func (e *extractor) extract(root *sitter.Node) {
	e.extractFileNode()
	e.extractModule(root)
	e.walkTopLevel(root)
	e.walkForCalls(root, e.modNodeID, "")
}

func (e *extractor) extractFileNode() {
	e.fileNodeID = graph.NewNodeID(graph.NodeCodeFile, e.path, e.path)
	n := graph.NewNode(e.fileNodeID, graph.NodeCodeFile)
	n.SetString(graph.PropName, e.path)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangPython))
	e.addNode(n)
}

func (e *extractor) extractModule(root *sitter.Node) {
	e.modNodeID = graph.NewNodeID(graph.NodeModule, e.path, e.path)
	n := graph.NewNode(e.modNodeID, graph.NodeModule)
	n.SetString(graph.PropName, e.path)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangPython))
	if doc := e.extractDocstring(root); doc != "" {
		n.SetString(graph.PropDoc, doc)
	}
	n.SetRange(graph.IndexRange{StartLine: 1, EndLine: int(root.EndPoint().Row) + 1})
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.fileNodeID, e.modNodeID)
}

func (e *extractor) walkTopLevel(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			e.extractImport(child)
		case "import_from_statement":
			e.extractFromImport(child)
		case "class_definition":
			e.extractClass(child, e.modNodeID)
		case "function_definition", "decorated_definition":
			e.extractFunctionOrDecorated(child, e.modNodeID, "")
		case "expression_statement":
			e.extractAssignment(child)
		}
	}
}

func (e *extractor) extractImport(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "dotted_name" || child.Type() == "aliased_import" {
			name := e.nodeText(child)
			if child.Type() == "aliased_import" && child.NamedChildCount() > 0 {
				name = e.nodeText(child.NamedChild(0))
			}
			e.addDependency(name, int(node.StartPoint().Row)+1)
		}
	}
}

func (e *extractor) extractFromImport(node *sitter.Node) {
	moduleName := ""
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "dotted_name" || child.Type() == "relative_import" {
			moduleName = e.nodeText(child)
			break
		}
	}
	if moduleName != "" {
		e.addDependency(moduleName, int(node.StartPoint().Row)+1)
	}
}

func (e *extractor) addDependency(name string, line int) {
	impID := graph.NewNodeID(graph.NodeModule, name, name)
	n := graph.NewNode(impID, graph.NodeModule)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropLanguage, string(parser.LangPython))
	e.addNode(n)
	e.addEdge(graph.EdgeImports, e.modNodeID, impID)
	e.info.Imports = append(e.info.Imports, impID)

	e.importNames[name] = impID
	if parts := strings.Split(name, "."); len(parts) > 1 {
		e.importNames[parts[0]] = impID
	}
}

func (e *extractor) extractClass(node *sitter.Node, parentID string) {
	name := ""
	var bodyNode *sitter.Node
	var bases []string

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			name = e.nodeText(child)
		case "argument_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				bases = append(bases, e.nodeText(child.NamedChild(j)))
			}
		case "block":
			bodyNode = child
		}
	}
	if name == "" {
		return
	}

	classID := graph.NewNodeID(graph.NodeClass, e.path, name)
	n := graph.NewNode(classID, graph.NodeClass)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangPython))
	n.SetString("exported", boolStr(isExported(name)))
	n.SetRange(graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1})
	if len(bases) > 0 {
		n.SetString("bases", strings.Join(bases, ","))
	}
	if bodyNode != nil {
		if doc := e.extractDocstring(bodyNode); doc != "" {
			n.SetString(graph.PropDoc, doc)
		}
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, parentID, classID)
	e.info.Classes = append(e.info.Classes, classID)

	for _, base := range bases {
		baseID := graph.NewNodeID(graph.NodeClass, e.path, base)
		e.addEdge(graph.EdgeExtends, classID, baseID)
	}

	if bodyNode != nil {
		for i := 0; i < int(bodyNode.NamedChildCount()); i++ {
			if child := bodyNode.NamedChild(i); child.Type() == "function_definition" || child.Type() == "decorated_definition" {
				e.extractFunctionOrDecorated(child, classID, name)
			}
		}
	}
}

func (e *extractor) extractFunctionOrDecorated(node *sitter.Node, parentID, className string) {
	if node.Type() == "decorated_definition" {
		var decoratorNames []string
		var funcNode *sitter.Node
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "decorator":
				if name := e.decoratorName(child); name != "" {
					decoratorNames = append(decoratorNames, name)
				}
			case "function_definition":
				funcNode = child
			case "class_definition":
				e.extractClass(child, parentID)
				return
			}
		}
		if funcNode != nil {
			e.extractFunction(funcNode, parentID, className, decoratorNames, node)
		}
		return
	}
	e.extractFunction(node, parentID, className, nil, node)
}

func (e *extractor) decoratorName(node *sitter.Node) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier", "dotted_name":
			return e.nodeText(child)
		case "call":
			// e.g. @functools.lru_cache(maxsize=None)
			if child.NamedChildCount() > 0 {
				return e.nodeText(child.NamedChild(0))
			}
		}
	}
	return ""
}

func (e *extractor) extractFunction(node *sitter.Node, parentID, className string, decorators []string, outerNode *sitter.Node) string {
	name := ""
	sig := ""
	returnType := ""
	var bodyNode *sitter.Node

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			name = e.nodeText(child)
		case "parameters":
			sig = e.nodeText(child)
		case "type":
			returnType = e.nodeText(child)
		case "block":
			bodyNode = child
		}
	}
	if name == "" {
		return ""
	}

	isMethod := className != ""
	qualifiedName := name
	if isMethod {
		qualifiedName = className + "." + name
	}

	fullSig := "def " + name + sig
	if returnType != "" {
		fullSig += " -> " + returnType
	}

	funcID := graph.NewNodeID(graph.NodeFunction, e.path, qualifiedName)
	n := graph.NewNode(funcID, graph.NodeFunction)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangPython))
	n.SetString(graph.PropSignature, fullSig)
	n.SetString("exported", boolStr(isExported(name)))
	n.SetRange(graph.IndexRange{StartLine: int(outerNode.StartPoint().Row) + 1, EndLine: int(outerNode.EndPoint().Row) + 1})
	if len(decorators) > 0 {
		n.SetString("decorators", strings.Join(decorators, ","))
	}
	if isMethod {
		n.SetString("receiver", className)
	}
	if bodyNode != nil {
		if doc := e.extractDocstring(bodyNode); doc != "" {
			n.SetString(graph.PropDoc, doc)
		}
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, parentID, funcID)
	e.info.Functions = append(e.info.Functions, funcID)

	e.funcNames[name] = funcID
	if isMethod {
		if e.classMethodNames[className] == nil {
			e.classMethodNames[className] = make(map[string]string)
		}
		e.classMethodNames[className][name] = funcID
	}
	return funcID
}

func (e *extractor) extractAssignment(node *sitter.Node) {
	if node.NamedChildCount() == 0 {
		return
	}
	child := node.NamedChild(0)
	if child.Type() != "assignment" || child.NamedChildCount() < 2 {
		return
	}
	lhs := child.NamedChild(0)
	if lhs.Type() != "identifier" {
		return
	}

	name := e.nodeText(lhs)
	varID := graph.NewNodeID(graph.NodeVariable, e.path, name)
	n := graph.NewNode(varID, graph.NodeVariable)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangPython))
	n.SetString("exported", boolStr(isExported(name)))
	n.SetRange(graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.StartPoint().Row) + 1})
	if isConstantName(name) {
		n.SetString("const", "true")
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.modNodeID, varID)
}

var pythonBuiltins = map[string]bool{
	"print": true, "len": true, "range": true, "int": true, "str": true,
	"list": true, "dict": true, "set": true, "tuple": true, "type": true,
	"isinstance": true, "issubclass": true, "super": true, "property": true,
	"staticmethod": true, "classmethod": true, "enumerate": true, "zip": true,
	"map": true, "filter": true, "sorted": true, "reversed": true,
	"any": true, "all": true, "min": true, "max": true, "sum": true,
	"abs": true, "round": true, "open": true, "getattr": true, "setattr": true,
	"hasattr": true, "delattr": true, "input": true, "format": true,
	"repr": true, "id": true, "dir": true, "vars": true, "globals": true,
	"locals": true, "callable": true, "iter": true, "next": true, "hash": true,
	"hex": true, "oct": true, "bin": true, "ord": true, "chr": true,
	"bool": true, "bytes": true, "bytearray": true, "memoryview": true,
	"complex": true, "float": true, "frozenset": true, "object": true, "slice": true,
}

func (e *extractor) walkForCalls(node *sitter.Node, parentFuncID, className string) {
	if node == nil {
		return
	}

	currentFuncID := parentFuncID
	currentClassName := className

	switch node.Type() {
	case "class_definition":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if child := node.NamedChild(i); child.Type() == "identifier" {
				currentClassName = e.nodeText(child)
				break
			}
		}
	case "function_definition":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "identifier" {
				name := e.nodeText(child)
				if currentClassName != "" {
					currentFuncID = graph.NewNodeID(graph.NodeFunction, e.path, currentClassName+"."+name)
				} else {
					currentFuncID = graph.NewNodeID(graph.NodeFunction, e.path, name)
				}
				break
			}
		}
	}

	if node.Type() == "call" {
		e.checkFunctionCall(node, currentFuncID, currentClassName)
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		e.walkForCalls(node.NamedChild(i), currentFuncID, currentClassName)
	}
}

func (e *extractor) checkFunctionCall(node *sitter.Node, funcID, className string) {
	if funcID == "" || node.NamedChildCount() == 0 {
		return
	}
	callee := node.NamedChild(0)
	r := graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1}

	switch callee.Type() {
	case "attribute":
		fnText := e.nodeText(callee)
		dotIdx := strings.Index(fnText, ".")
		if dotIdx < 0 {
			return
		}
		objectName := fnText[:dotIdx]
		methodName := fnText[dotIdx+1:]

		if (objectName == "self" || objectName == "cls") && className != "" {
			if methods, ok := e.classMethodNames[className]; ok {
				if targetID, ok := methods[methodName]; ok {
					e.addEdge(graph.EdgeCalls, funcID, targetID)
					return
				}
			}
			e.info.PendingCalls = append(e.info.PendingCalls, parser.PendingCall{CallerID: funcID, CalleeName: methodName, Range: r})
			return
		}

		if targetID, ok := e.importNames[objectName]; ok {
			e.addEdge(graph.EdgeCalls, funcID, targetID)
			return
		}
		e.info.PendingCalls = append(e.info.PendingCalls, parser.PendingCall{CallerID: funcID, CalleeName: methodName, Range: r})

	case "identifier":
		name := e.nodeText(callee)
		if pythonBuiltins[name] {
			return
		}
		if targetID, ok := e.funcNames[name]; ok {
			e.addEdge(graph.EdgeCalls, funcID, targetID)
			return
		}
		e.info.PendingCalls = append(e.info.PendingCalls, parser.PendingCall{CallerID: funcID, CalleeName: name, Range: r})
	}
}

func (e *extractor) extractDocstring(body *sitter.Node) string {
	if body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() == "expression_statement" && first.NamedChildCount() > 0 {
		expr := first.NamedChild(0)
		if expr.Type() == "string" {
			return cleanDocstring(e.nodeText(expr))
		}
	}
	return ""
}

func (e *extractor) nodeText(node *sitter.Node) string {
	return node.Content(e.content)
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func isExported(name string) bool {
	if name == "" {
		return false
	}
	return !strings.HasPrefix(name, "_")
}

func isConstantName(name string) bool {
	if name == "" || strings.HasPrefix(name, "_") {
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func cleanDocstring(raw string) string {
	s := raw
	for _, prefix := range []string{`"""`, `'''`, `r"""`, `r'''`} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			quote := prefix[len(prefix)-3:]
			s = strings.TrimSuffix(s, quote)
			break
		}
	}
	return strings.TrimSpace(s)
}
