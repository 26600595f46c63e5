// Package typescript extracts code graph nodes and edges from TypeScript
// (and, via the same grammar, JavaScript) source using tree-sitter, since Go
// has no standard-library TypeScript parser.
package typescript

import (
	"context"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	tsgrammar "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/metrics"
	"github.com/codegraphls/codegraphls/internal/parser"
)

// Frontend extracts TypeScript/JavaScript code graph nodes and edges.
type Frontend struct {
	recorder *metrics.Recorder
}

// NewFrontend creates a TypeScript parsing frontend.
func NewFrontend() *Frontend {
	return &Frontend{recorder: metrics.NewRecorder(string(parser.LangTypeScript))}
}

func (f *Frontend) CanParse(path string) bool {
	for _, ext := range f.FileExtensions() {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	for _, ext := range parser.FileExtensions[parser.LangJavaScript] {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (f *Frontend) FileExtensions() []string {
	exts := append([]string(nil), parser.FileExtensions[parser.LangTypeScript]...)
	return append(exts, parser.FileExtensions[parser.LangJavaScript]...)
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
	lang := tsgrammar.GetLanguage()
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
		moduleByImport:   make(map[string]string),
	}
	e.extract(tree.RootNode())

	return &parser.FileInfo{
		Path:         path,
		Language:     parser.LangTypeScript,
		Functions:    e.info.Functions,
		Classes:      e.info.Classes,
		Traits:       e.info.Traits,
		Imports:      e.info.Imports,
		PendingCalls: e.info.PendingCalls,
	}, e.nodeCount, e.edgeCount, nil
}

// extractor walks a tree-sitter TypeScript AST and mutates the graph store
// directly as it goes.
type extractor struct {
	path    string
	content []byte
	g       graph.Store

	fileNodeID string
	modNodeID  string

	info parser.FileInfo

	nodeCount, edgeCount int

	funcNames        map[string]string            // function/arrow name -> node id
	classMethodNames map[string]map[string]string // class -> method -> node id
	moduleByImport    map[string]string            // local binding -> imported Module node id

	exportedNext bool // set while visiting the children of an export_statement
}

func (e *extractor) takeExported() string {
	if e.exportedNext {
		return "true"
	}
	return "false"
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
	e.extractModuleNode(root)
	e.walkTopLevel(root)
	e.walkCalls(root)
}

func (e *extractor) extractFileNode() {
	e.fileNodeID = graph.NewNodeID(graph.NodeCodeFile, e.path, e.path)
	n := graph.NewNode(e.fileNodeID, graph.NodeCodeFile)
	n.SetString(graph.PropName, e.path)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangTypeScript))
	e.addNode(n)
}

func (e *extractor) extractModuleNode(root *sitter.Node) {
	e.modNodeID = graph.NewNodeID(graph.NodeModule, e.path, e.path)
	n := graph.NewNode(e.modNodeID, graph.NodeModule)
	n.SetString(graph.PropName, e.path)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangTypeScript))
	n.SetRange(graph.IndexRange{StartLine: 1, EndLine: endLine(root)})
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.fileNodeID, e.modNodeID)
}

func (e *extractor) walkTopLevel(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		e.visit(node.Child(i))
	}
}

func (e *extractor) visit(node *sitter.Node) {
	switch node.Type() {
	case "import_statement":
		e.extractImport(node)
	case "export_statement":
		e.exportedNext = true
		for i := 0; i < int(node.ChildCount()); i++ {
			e.visit(node.Child(i))
		}
		e.exportedNext = false
	case "class_declaration", "abstract_class_declaration":
		e.extractClass(node)
	case "interface_declaration":
		e.extractInterface(node)
	case "type_alias_declaration":
		e.extractTypeAlias(node)
	case "function_declaration":
		e.extractFunction(node)
	case "lexical_declaration", "variable_declaration":
		e.extractLexicalDeclaration(node)
	}
}

func (e *extractor) extractImport(node *sitter.Node) {
	source := e.findChildByType(node, "string")
	if source == nil {
		return
	}
	modulePath := stripQuotes(e.nodeText(source))

	impID := graph.NewNodeID(graph.NodeModule, modulePath, modulePath)
	n := graph.NewNode(impID, graph.NodeModule)
	n.SetString(graph.PropName, modulePath)
	n.SetString(graph.PropLanguage, string(parser.LangTypeScript))
	e.addNode(n)
	e.addEdge(graph.EdgeImports, e.modNodeID, impID)
	e.info.Imports = append(e.info.Imports, impID)

	if clause := e.findChildByType(node, "import_clause"); clause != nil {
		e.bindImportNames(clause, impID)
	}
}

func (e *extractor) bindImportNames(node *sitter.Node, impID string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			e.moduleByImport[e.nodeText(child)] = impID
		case "named_imports":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				if alias := e.findChildByFieldName(spec, "alias"); alias != nil {
					e.moduleByImport[e.nodeText(alias)] = impID
				} else if nm := e.findChildByFieldName(spec, "name"); nm != nil {
					e.moduleByImport[e.nodeText(nm)] = impID
				}
			}
		case "namespace_import":
			for j := 0; j < int(child.ChildCount()); j++ {
				if gc := child.Child(j); gc.Type() == "identifier" {
					e.moduleByImport[e.nodeText(gc)] = impID
				}
			}
		}
	}
}

func (e *extractor) extractClass(node *sitter.Node) {
	nameNode := e.findChildByFieldName(node, "name")
	if nameNode == nil {
		return
	}
	name := e.nodeText(nameNode)
	classID := graph.NewNodeID(graph.NodeClass, e.path, name)

	n := graph.NewNode(classID, graph.NodeClass)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangTypeScript))
	n.SetString("exported", e.takeExported())
	n.SetRange(graph.IndexRange{StartLine: startLine(node), EndLine: endLine(node)})

	var extendsList, implList []string
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "class_heritage" {
			extendsList, implList = e.parseHeritage(child)
		}
	}
	if len(extendsList) > 0 {
		n.SetString("extends", strings.Join(extendsList, ","))
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.modNodeID, classID)
	e.info.Classes = append(e.info.Classes, classID)

	for _, base := range extendsList {
		baseID := graph.NewNodeID(graph.NodeClass, e.path, base)
		e.addEdge(graph.EdgeExtends, classID, baseID)
	}
	for _, iface := range implList {
		ifaceID := graph.NewNodeID(graph.NodeInterface, e.path, iface)
		e.addEdge(graph.EdgeImplements, classID, ifaceID)
	}

	if body := e.findChildByType(node, "class_body"); body != nil {
		e.extractClassMembers(body, name, classID)
	}
}

func (e *extractor) parseHeritage(node *sitter.Node) (extendsList, implList []string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "extends_clause":
			for j := 0; j < int(child.ChildCount()); j++ {
				if gc := child.Child(j); gc.Type() == "identifier" || gc.Type() == "member_expression" {
					extendsList = append(extendsList, e.nodeText(gc))
				}
			}
		case "implements_clause":
			for j := 0; j < int(child.ChildCount()); j++ {
				if gc := child.Child(j); gc.Type() == "type_identifier" || gc.Type() == "generic_type" {
					implList = append(implList, extractBaseTypeName(e.nodeText(gc)))
				}
			}
		}
	}
	return
}

func (e *extractor) extractClassMembers(body *sitter.Node, className, classID string) {
	for i := 0; i < int(body.ChildCount()); i++ {
		if child := body.Child(i); child.Type() == "method_definition" {
			e.extractMethod(child, className, classID)
		}
	}
}

func (e *extractor) extractMethod(node *sitter.Node, className, classID string) {
	nameNode := e.findChildByFieldName(node, "name")
	if nameNode == nil {
		return
	}
	name := e.nodeText(nameNode)
	qualified := className + "." + name
	methodID := graph.NewNodeID(graph.NodeFunction, e.path, qualified)

	n := graph.NewNode(methodID, graph.NodeFunction)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangTypeScript))
	n.SetString(graph.PropSignature, e.buildFuncSignature(node, name))
	n.SetRange(graph.IndexRange{StartLine: startLine(node), EndLine: endLine(node)})
	n.SetString("receiver", className)
	e.addNode(n)
	e.addEdge(graph.EdgeContains, classID, methodID)
	e.info.Functions = append(e.info.Functions, methodID)

	if e.classMethodNames[className] == nil {
		e.classMethodNames[className] = make(map[string]string)
	}
	e.classMethodNames[className][name] = methodID
}

func (e *extractor) extractInterface(node *sitter.Node) {
	nameNode := e.findChildByFieldName(node, "name")
	if nameNode == nil {
		return
	}
	name := e.nodeText(nameNode)
	ifaceID := graph.NewNodeID(graph.NodeInterface, e.path, name)

	n := graph.NewNode(ifaceID, graph.NodeInterface)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangTypeScript))
	n.SetString("exported", e.takeExported())
	n.SetRange(graph.IndexRange{StartLine: startLine(node), EndLine: endLine(node)})

	var bases []string
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "extends_type_clause" || child.Type() == "extends_clause" {
			for j := 0; j < int(child.ChildCount()); j++ {
				if gc := child.Child(j); gc.Type() == "type_identifier" || gc.Type() == "generic_type" {
					bases = append(bases, extractBaseTypeName(e.nodeText(gc)))
				}
			}
		}
	}
	if len(bases) > 0 {
		n.SetString("extends", strings.Join(bases, ","))
	}

	if body := e.findChildByType(node, "interface_body"); body != nil {
		var methods []string
		for i := 0; i < int(body.ChildCount()); i++ {
			child := body.Child(i)
			if child.Type() == "method_signature" || child.Type() == "property_signature" {
				if mName := e.findChildByFieldName(child, "name"); mName != nil {
					methods = append(methods, e.nodeText(mName))
				}
			}
		}
		if len(methods) > 0 {
			n.SetString("methods", strings.Join(methods, ","))
		}
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.modNodeID, ifaceID)
	e.info.Traits = append(e.info.Traits, ifaceID)

	for _, base := range bases {
		baseID := graph.NewNodeID(graph.NodeInterface, e.path, base)
		e.addEdge(graph.EdgeExtends, ifaceID, baseID)
	}
}

func (e *extractor) extractTypeAlias(node *sitter.Node) {
	nameNode := e.findChildByFieldName(node, "name")
	if nameNode == nil {
		return
	}
	name := e.nodeText(nameNode)
	typeID := graph.NewNodeID(graph.NodeType_, e.path, name)

	n := graph.NewNode(typeID, graph.NodeType_)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangTypeScript))
	n.SetString("exported", e.takeExported())
	n.SetRange(graph.IndexRange{StartLine: startLine(node), EndLine: endLine(node)})
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.modNodeID, typeID)
}

func (e *extractor) extractFunction(node *sitter.Node) {
	nameNode := e.findChildByFieldName(node, "name")
	if nameNode == nil {
		return
	}
	name := e.nodeText(nameNode)
	funcID := graph.NewNodeID(graph.NodeFunction, e.path, name)

	n := graph.NewNode(funcID, graph.NodeFunction)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangTypeScript))
	n.SetString(graph.PropSignature, e.buildFuncSignature(node, name))
	n.SetString("exported", e.takeExported())
	n.SetRange(graph.IndexRange{StartLine: startLine(node), EndLine: endLine(node)})
	if e.hasChildWithValue(node, "async") {
		n.SetString("async", "true")
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.modNodeID, funcID)
	e.info.Functions = append(e.info.Functions, funcID)
	e.funcNames[name] = funcID
}

func (e *extractor) extractLexicalDeclaration(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "variable_declarator" {
			e.extractVariableDeclarator(child)
		}
	}
}

func (e *extractor) extractVariableDeclarator(node *sitter.Node) {
	nameNode := e.findChildByFieldName(node, "name")
	if nameNode == nil {
		return
	}
	name := e.nodeText(nameNode)

	valueNode := e.findChildByFieldName(node, "value")
	if valueNode != nil && (valueNode.Type() == "arrow_function" || valueNode.Type() == "function") {
		funcID := graph.NewNodeID(graph.NodeFunction, e.path, name)
		n := graph.NewNode(funcID, graph.NodeFunction)
		n.SetString(graph.PropName, name)
		n.SetString(graph.PropPath, e.path)
		n.SetString(graph.PropLanguage, string(parser.LangTypeScript))
		n.SetString("exported", e.takeExported())
		n.SetRange(graph.IndexRange{StartLine: startLine(node), EndLine: endLine(node)})
		n.SetString("arrow", "true")
		e.addNode(n)
		e.addEdge(graph.EdgeContains, e.modNodeID, funcID)
		e.info.Functions = append(e.info.Functions, funcID)
		e.funcNames[name] = funcID
		return
	}

	varID := graph.NewNodeID(graph.NodeVariable, e.path, name)
	n := graph.NewNode(varID, graph.NodeVariable)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangTypeScript))
	n.SetString("exported", e.takeExported())
	n.SetRange(graph.IndexRange{StartLine: startLine(node), EndLine: endLine(node)})
	e.addNode(n)
	e.addEdge(graph.EdgeContains, e.modNodeID, varID)
}

func (e *extractor) walkCalls(node *sitter.Node) {
	if node.Type() == "call_expression" {
		e.checkCall(node)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		e.walkCalls(node.Child(i))
	}
}

var tsBuiltins = map[string]bool{
	"console": true, "setTimeout": true, "setInterval": true, "clearTimeout": true,
	"clearInterval": true, "parseInt": true, "parseFloat": true, "isNaN": true,
	"isFinite": true, "Array": true, "Object": true, "String": true, "Number": true,
	"Boolean": true, "JSON": true, "Math": true, "Date": true, "Promise": true,
	"Error": true, "RegExp": true, "Map": true, "Set": true, "Symbol": true,
	"require": true,
}

func (e *extractor) checkCall(node *sitter.Node) {
	fnNode := e.findChildByFieldName(node, "function")
	if fnNode == nil {
		return
	}
	callerID := e.findContainingFunctionID(node)
	if callerID == "" {
		callerID = e.modNodeID
	}
	r := graph.IndexRange{StartLine: startLine(node), EndLine: endLine(node)}

	switch fnNode.Type() {
	case "identifier":
		name := e.nodeText(fnNode)
		if tsBuiltins[name] {
			return
		}
		if targetID, ok := e.funcNames[name]; ok {
			e.addEdge(graph.EdgeCalls, callerID, targetID)
			return
		}
		e.info.PendingCalls = append(e.info.PendingCalls, parser.PendingCall{CallerID: callerID, CalleeName: name, Range: r})

	case "member_expression":
		objectNode := e.findChildByFieldName(fnNode, "object")
		propertyNode := e.findChildByFieldName(fnNode, "property")
		if objectNode == nil || propertyNode == nil {
			return
		}
		objName := e.nodeText(objectNode)
		methodName := e.nodeText(propertyNode)
		if tsBuiltins[objName] {
			return
		}
		if objName == "this" {
			className := e.findAncestorClassName(node)
			if className != "" {
				if methods, ok := e.classMethodNames[className]; ok {
					if targetID, ok := methods[methodName]; ok {
						e.addEdge(graph.EdgeCalls, callerID, targetID)
						return
					}
				}
			}
			e.info.PendingCalls = append(e.info.PendingCalls, parser.PendingCall{CallerID: callerID, CalleeName: methodName, Range: r})
			return
		}
		e.info.PendingCalls = append(e.info.PendingCalls, parser.PendingCall{CallerID: callerID, CalleeName: methodName, Range: r})
	}
}

func (e *extractor) findContainingFunctionID(node *sitter.Node) string {
	current := node.Parent()
	for current != nil {
		switch current.Type() {
		case "function_declaration":
			if nameNode := e.findChildByFieldName(current, "name"); nameNode != nil {
				return graph.NewNodeID(graph.NodeFunction, e.path, e.nodeText(nameNode))
			}
		case "method_definition":
			if nameNode := e.findChildByFieldName(current, "name"); nameNode != nil {
				className := e.findAncestorClassName(current)
				if className != "" {
					return graph.NewNodeID(graph.NodeFunction, e.path, className+"."+e.nodeText(nameNode))
				}
			}
		case "arrow_function", "function":
			parent := current.Parent()
			if parent != nil && parent.Type() == "variable_declarator" {
				if nameNode := e.findChildByFieldName(parent, "name"); nameNode != nil {
					return graph.NewNodeID(graph.NodeFunction, e.path, e.nodeText(nameNode))
				}
			}
		}
		current = current.Parent()
	}
	return ""
}

func (e *extractor) findAncestorClassName(node *sitter.Node) string {
	current := node.Parent()
	for current != nil {
		if current.Type() == "class_declaration" || current.Type() == "abstract_class_declaration" {
			if nameNode := e.findChildByFieldName(current, "name"); nameNode != nil {
				return e.nodeText(nameNode)
			}
		}
		current = current.Parent()
	}
	return ""
}

// Helper functions

func (e *extractor) nodeText(node *sitter.Node) string {
	return node.Content(e.content)
}

func (e *extractor) findChildByType(node *sitter.Node, typeName string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == typeName {
			return child
		}
	}
	return nil
}

func (e *extractor) findChildByFieldName(node *sitter.Node, fieldName string) *sitter.Node {
	return node.ChildByFieldName(fieldName)
}

func (e *extractor) hasChildWithValue(node *sitter.Node, value string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if e.nodeText(node.Child(i)) == value {
			return true
		}
	}
	return false
}

func (e *extractor) buildFuncSignature(node *sitter.Node, name string) string {
	params := e.findChildByFieldName(node, "parameters")
	if params == nil {
		return name + "()"
	}
	return name + e.nodeText(params)
}

func startLine(node *sitter.Node) int { return int(node.StartPoint().Row) + 1 }
func endLine(node *sitter.Node) int   { return int(node.EndPoint().Row) + 1 }

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func extractBaseTypeName(s string) string {
	if idx := strings.Index(s, "<"); idx > 0 {
		return s[:idx]
	}
	return s
}
