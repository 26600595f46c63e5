// Package rust extracts code graph nodes and edges from Rust source using
// tree-sitter.
package rust

import (
	"context"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/metrics"
	"github.com/codegraphls/codegraphls/internal/parser"
)

// Frontend extracts Rust code graph nodes and edges.
type Frontend struct {
	recorder *metrics.Recorder
}

// NewFrontend creates a Rust parsing frontend.
func NewFrontend() *Frontend {
	return &Frontend{recorder: metrics.NewRecorder(string(parser.LangRust))}
}

func (f *Frontend) CanParse(path string) bool { return strings.HasSuffix(path, ".rs") }

func (f *Frontend) FileExtensions() []string { return parser.FileExtensions[parser.LangRust] }

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
	lang := rust.GetLanguage()
	psr := sitter.NewParser()
	psr.SetLanguage(lang)

	content := []byte(text)
	tree, err := psr.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, 0, 0, parser.SyntaxError(path, err)
	}
	defer tree.Close()

	e := &extractor{path: path, content: content, g: g, funcMap: make(map[string]string)}
	e.extract(tree.RootNode())

	return &parser.FileInfo{
		Path:         path,
		Language:     parser.LangRust,
		Functions:    e.info.Functions,
		Classes:      e.info.Classes,
		Traits:       e.info.Traits,
		Imports:      e.info.Imports,
		PendingCalls: e.info.PendingCalls,
	}, e.nodeCount, e.edgeCount, nil
}

type extractor struct {
	path    string
	content []byte
	g       graph.Store

	fileNodeID string
	modName    string

	info parser.FileInfo

	nodeCount, edgeCount int

	funcMap map[string]string
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
	e.walkRoot(root)
	e.walkBodiesForCalls(root)
}

func (e *extractor) extractFileNode() {
	e.fileNodeID = graph.NewNodeID(graph.NodeCodeFile, e.path, e.path)
	n := graph.NewNode(e.fileNodeID, graph.NodeCodeFile)
	n.SetString(graph.PropName, e.path)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangRust))
	e.addNode(n)

	base := e.path
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	e.modName = strings.TrimSuffix(base, ".rs")
}

func (e *extractor) walkRoot(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		e.extractDeclaration(root.NamedChild(i), e.fileNodeID)
	}
}

func (e *extractor) extractDeclaration(node *sitter.Node, parentID string) {
	switch node.Type() {
	case "function_item":
		e.extractFunction(node, parentID)
	case "struct_item":
		e.extractStruct(node, parentID)
	case "trait_item":
		e.extractTrait(node, parentID)
	case "enum_item":
		e.extractEnum(node, parentID)
	case "impl_item":
		e.extractImpl(node, parentID)
	case "use_declaration":
		e.extractUse(node, parentID)
	case "mod_item":
		e.extractMod(node, parentID)
	case "const_item":
		e.extractConst(node, parentID, "const")
	case "static_item":
		e.extractConst(node, parentID, "static")
	case "type_item":
		e.extractTypeAlias(node, parentID)
	}
}

func (e *extractor) extractFunction(node *sitter.Node, parentID string) {
	name, params, returnType, isPublic := e.functionSignatureParts(node)
	if name == "" {
		return
	}
	doc := e.extractDocComment(node)

	sig := "fn " + name + params
	if returnType != "" {
		sig += " -> " + returnType
	}

	funcID := graph.NewNodeID(graph.NodeFunction, e.path, name)
	n := graph.NewNode(funcID, graph.NodeFunction)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangRust))
	n.SetString(graph.PropSignature, sig)
	n.SetString("exported", boolStr(isPublic))
	n.SetRange(graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1})
	if doc != "" {
		n.SetString(graph.PropDoc, doc)
	}
	if e.hasTestAttribute(node) {
		n.SetString("test", "true")
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, parentID, funcID)
	e.info.Functions = append(e.info.Functions, funcID)
	e.funcMap[name] = funcID
}

func (e *extractor) functionSignatureParts(node *sitter.Node) (name, params, returnType string, isPublic bool) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "visibility_modifier":
			isPublic = true
		case "identifier":
			if name == "" {
				name = e.nodeText(child)
			}
		case "parameters":
			params = e.nodeText(child)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); e.nodeText(child) == "->" && i+1 < int(node.ChildCount()) {
			if next := node.Child(i + 1); next.IsNamed() {
				returnType = e.nodeText(next)
			}
		}
	}
	return
}

func (e *extractor) extractStruct(node *sitter.Node, parentID string) {
	name := ""
	isPublic := false
	doc := e.extractDocComment(node)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "visibility_modifier":
			isPublic = true
		case "type_identifier":
			name = e.nodeText(child)
		}
	}
	if name == "" {
		return
	}

	var fields []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "field_declaration_list" {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				field := child.NamedChild(j)
				if field.Type() != "field_declaration" {
					continue
				}
				for k := 0; k < int(field.NamedChildCount()); k++ {
					if fc := field.NamedChild(k); fc.Type() == "field_identifier" {
						fields = append(fields, e.nodeText(fc))
					}
				}
			}
		}
	}

	structID := graph.NewNodeID(graph.NodeClass, e.path, name)
	n := graph.NewNode(structID, graph.NodeClass)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangRust))
	n.SetString("exported", boolStr(isPublic))
	n.SetRange(graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1})
	if doc != "" {
		n.SetString(graph.PropDoc, doc)
	}
	if len(fields) > 0 {
		n.SetString("fields", strings.Join(fields, ","))
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, parentID, structID)
	e.info.Classes = append(e.info.Classes, structID)
}

func (e *extractor) extractTrait(node *sitter.Node, parentID string) {
	name := ""
	isPublic := false
	var bodyNode *sitter.Node
	doc := e.extractDocComment(node)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "visibility_modifier":
			isPublic = true
		case "type_identifier":
			name = e.nodeText(child)
		case "declaration_list":
			bodyNode = child
		}
	}
	if name == "" {
		return
	}

	var methodNames []string
	if bodyNode != nil {
		for i := 0; i < int(bodyNode.NamedChildCount()); i++ {
			child := bodyNode.NamedChild(i)
			if child.Type() == "function_item" || child.Type() == "function_signature_item" {
				if mn := e.getFuncName(child); mn != "" {
					methodNames = append(methodNames, mn)
				}
			}
		}
	}

	traitID := graph.NewNodeID(graph.NodeInterface, e.path, name)
	n := graph.NewNode(traitID, graph.NodeInterface)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangRust))
	n.SetString("exported", boolStr(isPublic))
	n.SetRange(graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1})
	if doc != "" {
		n.SetString(graph.PropDoc, doc)
	}
	if len(methodNames) > 0 {
		n.SetString("methods", strings.Join(methodNames, ","))
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, parentID, traitID)
	e.info.Traits = append(e.info.Traits, traitID)
}

// extractEnum models a Rust enum as a Type node carrying its variant list,
// since enums with data-bearing variants don't fit the class/struct shape.
func (e *extractor) extractEnum(node *sitter.Node, parentID string) {
	name := ""
	isPublic := false
	doc := e.extractDocComment(node)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "visibility_modifier":
			isPublic = true
		case "type_identifier":
			name = e.nodeText(child)
		}
	}
	if name == "" {
		return
	}

	var variants []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "enum_variant_list" {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				variant := child.NamedChild(j)
				if variant.Type() != "enum_variant" {
					continue
				}
				for k := 0; k < int(variant.NamedChildCount()); k++ {
					if vc := variant.NamedChild(k); vc.Type() == "identifier" {
						variants = append(variants, e.nodeText(vc))
					}
				}
			}
		}
	}

	enumID := graph.NewNodeID(graph.NodeType_, e.path, name)
	n := graph.NewNode(enumID, graph.NodeType_)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangRust))
	n.SetString("exported", boolStr(isPublic))
	n.SetString("kind", "enum")
	n.SetRange(graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1})
	if doc != "" {
		n.SetString(graph.PropDoc, doc)
	}
	if len(variants) > 0 {
		n.SetString("variants", strings.Join(variants, ","))
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, parentID, enumID)
}

func (e *extractor) extractImpl(node *sitter.Node, parentID string) {
	var traitName, typeName string
	var bodyNode *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_identifier", "generic_type", "scoped_type_identifier":
			if typeName == "" {
				typeName = e.nodeText(child)
			} else if traitName == "" {
				traitName = typeName
				typeName = e.nodeText(child)
			}
		case "declaration_list":
			bodyNode = child
		}
	}

	hasFor := false
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); !child.IsNamed() && e.nodeText(child) == "for" {
			hasFor = true
			break
		}
	}
	if !hasFor {
		traitName = ""
	}
	if typeName == "" {
		return
	}

	if traitName != "" {
		structID := graph.NewNodeID(graph.NodeClass, e.path, typeName)
		traitID := graph.NewNodeID(graph.NodeInterface, e.path, traitName)
		e.addEdge(graph.EdgeImplements, structID, traitID)
	}

	if bodyNode != nil {
		e.walkImplBody(bodyNode, parentID, typeName, traitName)
	}
}

func (e *extractor) walkImplBody(body *sitter.Node, parentID, typeName, traitName string) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		if child := body.NamedChild(i); child.Type() == "function_item" {
			e.extractMethod(child, parentID, typeName, traitName)
		}
	}
}

func (e *extractor) extractMethod(node *sitter.Node, parentID, typeName, traitName string) {
	name, params, returnType, isPublic := e.functionSignatureParts(node)
	if name == "" {
		return
	}
	doc := e.extractDocComment(node)

	qualifiedName := typeName + "." + name
	sig := "fn " + name + params
	if returnType != "" {
		sig += " -> " + returnType
	}

	methodID := graph.NewNodeID(graph.NodeFunction, e.path, qualifiedName)
	n := graph.NewNode(methodID, graph.NodeFunction)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangRust))
	n.SetString(graph.PropSignature, sig)
	n.SetString("exported", boolStr(isPublic))
	n.SetString("receiver", typeName)
	n.SetRange(graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1})
	if traitName != "" {
		n.SetString("trait", traitName)
	}
	if doc != "" {
		n.SetString(graph.PropDoc, doc)
	}
	if e.hasTestAttribute(node) {
		n.SetString("test", "true")
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, parentID, methodID)
	e.info.Functions = append(e.info.Functions, methodID)
	e.funcMap[qualifiedName] = methodID
	if _, exists := e.funcMap[name]; !exists {
		e.funcMap[name] = methodID
	}
}

func (e *extractor) extractUse(node *sitter.Node, parentID string) {
	name := ""
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() != "visibility_modifier" {
			name = e.nodeText(child)
			break
		}
	}
	if name == "" {
		return
	}

	impID := graph.NewNodeID(graph.NodeModule, name, name)
	n := graph.NewNode(impID, graph.NodeModule)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropLanguage, string(parser.LangRust))
	e.addNode(n)
	e.addEdge(graph.EdgeImports, parentID, impID)
	e.info.Imports = append(e.info.Imports, impID)
}

func (e *extractor) extractMod(node *sitter.Node, parentID string) {
	name := ""
	var bodyNode *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			name = e.nodeText(child)
		case "declaration_list":
			bodyNode = child
		}
	}
	if name == "" {
		return
	}

	modID := graph.NewNodeID(graph.NodeModule, e.path, name)
	n := graph.NewNode(modID, graph.NodeModule)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangRust))
	n.SetRange(graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1})
	e.addNode(n)
	e.addEdge(graph.EdgeContains, parentID, modID)

	if bodyNode != nil {
		for i := 0; i < int(bodyNode.NamedChildCount()); i++ {
			e.extractDeclaration(bodyNode.NamedChild(i), modID)
		}
	}
}

func (e *extractor) extractConst(node *sitter.Node, parentID, kind string) {
	name := ""
	isPublic := false
	doc := e.extractDocComment(node)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "visibility_modifier":
			isPublic = true
		case "identifier":
			if name == "" {
				name = e.nodeText(child)
			}
		}
	}
	if name == "" {
		return
	}

	varID := graph.NewNodeID(graph.NodeVariable, e.path, name)
	n := graph.NewNode(varID, graph.NodeVariable)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangRust))
	n.SetString("exported", boolStr(isPublic))
	n.SetString("const", "true")
	n.SetString("kind", kind)
	n.SetRange(graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.StartPoint().Row) + 1})
	if doc != "" {
		n.SetString(graph.PropDoc, doc)
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, parentID, varID)
}

func (e *extractor) extractTypeAlias(node *sitter.Node, parentID string) {
	name := ""
	isPublic := false
	doc := e.extractDocComment(node)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "visibility_modifier":
			isPublic = true
		case "type_identifier":
			if name == "" {
				name = e.nodeText(child)
			}
		}
	}
	if name == "" {
		return
	}

	typeID := graph.NewNodeID(graph.NodeType_, e.path, name)
	n := graph.NewNode(typeID, graph.NodeType_)
	n.SetString(graph.PropName, name)
	n.SetString(graph.PropPath, e.path)
	n.SetString(graph.PropLanguage, string(parser.LangRust))
	n.SetString("exported", boolStr(isPublic))
	n.SetRange(graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.StartPoint().Row) + 1})
	if doc != "" {
		n.SetString(graph.PropDoc, doc)
	}
	e.addNode(n)
	e.addEdge(graph.EdgeContains, parentID, typeID)
}

func (e *extractor) hasTestAttribute(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	idx := -1
	for i := 0; i < int(parent.ChildCount()); i++ {
		if parent.Child(i) == node {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	for j := idx - 1; j >= 0; j-- {
		prev := parent.Child(j)
		if prev.Type() == "attribute_item" {
			text := e.nodeText(prev)
			if strings.Contains(text, "#[test]") || strings.Contains(text, "#[tokio::test]") {
				return true
			}
		} else if prev.Type() == "line_comment" || prev.Type() == "block_comment" {
			continue
		} else {
			break
		}
	}
	return false
}

func (e *extractor) extractDocComment(node *sitter.Node) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	idx := -1
	for i := 0; i < int(parent.ChildCount()); i++ {
		if parent.Child(i) == node {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return ""
	}

	var lines []string
	for j := idx - 1; j >= 0; j-- {
		prev := parent.Child(j)
		if prev.Type() == "line_comment" {
			text := e.nodeText(prev)
			if strings.HasPrefix(text, "///") {
				line := strings.TrimPrefix(strings.TrimPrefix(text, "///"), " ")
				lines = append([]string{line}, lines...)
			} else if strings.HasPrefix(text, "//!") {
				line := strings.TrimPrefix(strings.TrimPrefix(text, "//!"), " ")
				lines = append([]string{line}, lines...)
			} else {
				break
			}
		} else if prev.Type() == "attribute_item" {
			continue
		} else {
			break
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func (e *extractor) walkBodiesForCalls(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "function_item":
			name := e.getFuncName(child)
			if name == "" {
				continue
			}
			if funcID, ok := e.funcMap[name]; ok {
				e.walkForCalls(child, funcID)
			}
		case "impl_item":
			e.walkImplBodiesForCalls(child)
		case "mod_item":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if gc := child.NamedChild(j); gc.Type() == "declaration_list" {
					e.walkBodiesForCalls(gc)
				}
			}
		}
	}
}

func (e *extractor) walkImplBodiesForCalls(implNode *sitter.Node) {
	typeName := ""
	var bodyNode *sitter.Node
	for i := 0; i < int(implNode.ChildCount()); i++ {
		child := implNode.Child(i)
		switch child.Type() {
		case "type_identifier", "generic_type", "scoped_type_identifier":
			typeName = e.nodeText(child)
		case "declaration_list":
			bodyNode = child
		}
	}
	if bodyNode == nil {
		return
	}
	for i := 0; i < int(bodyNode.NamedChildCount()); i++ {
		child := bodyNode.NamedChild(i)
		if child.Type() != "function_item" {
			continue
		}
		name := e.getFuncName(child)
		if name == "" || typeName == "" {
			continue
		}
		qualifiedName := typeName + "." + name
		methodID, ok := e.funcMap[qualifiedName]
		if !ok {
			methodID = graph.NewNodeID(graph.NodeFunction, e.path, qualifiedName)
		}
		e.walkForCalls(child, methodID)
	}
}

var rustBuiltins = map[string]bool{
	"clone": true, "to_string": true, "to_owned": true, "as_ref": true,
	"as_mut": true, "into": true, "from": true, "default": true,
	"unwrap": true, "expect": true, "is_some": true, "is_none": true,
	"is_ok": true, "is_err": true, "ok": true, "err": true,
	"map": true, "and_then": true, "or_else": true, "unwrap_or": true,
	"unwrap_or_else": true, "unwrap_or_default": true,
	"len": true, "is_empty": true, "push": true, "pop": true,
	"iter": true, "into_iter": true, "collect": true, "filter": true,
	"for_each": true, "enumerate": true, "zip": true, "take": true,
	"skip": true, "chain": true, "flat_map": true, "fold": true,
	"any": true, "all": true, "find": true, "position": true,
	"count": true, "sum": true, "min": true, "max": true,
	"sort": true, "sort_by": true, "reverse": true,
	"insert": true, "remove": true, "contains": true, "get": true,
	"contains_key": true, "keys": true, "values": true, "entry": true,
	"or_insert": true, "or_insert_with": true,
	"fmt": true, "write": true, "read": true, "flush": true,
	"println": true, "print": true, "eprintln": true, "eprint": true,
	"format": true, "panic": true, "assert": true, "assert_eq": true,
	"assert_ne": true, "debug_assert": true,
	"new": true, "with_capacity": true, "capacity": true,
}

func (e *extractor) walkForCalls(node *sitter.Node, callerID string) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		e.checkFunctionCall(node, callerID)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		e.walkForCalls(node.NamedChild(i), callerID)
	}
}

func (e *extractor) checkFunctionCall(node *sitter.Node, callerID string) {
	if callerID == "" {
		return
	}
	funcNode := node.ChildByFieldName("function")
	if funcNode == nil {
		return
	}

	var calledName string
	switch funcNode.Type() {
	case "identifier":
		calledName = e.nodeText(funcNode)
	case "field_expression":
		if field := funcNode.ChildByFieldName("field"); field != nil {
			calledName = e.nodeText(field)
		}
		if value := funcNode.ChildByFieldName("value"); value != nil && e.nodeText(value) == "self" {
			if targetID, ok := e.funcMap[calledName]; ok {
				e.addEdge(graph.EdgeCalls, callerID, targetID)
				return
			}
		}
	case "scoped_identifier":
		parts := strings.Split(e.nodeText(funcNode), "::")
		calledName = parts[len(parts)-1]
	}
	if calledName == "" || rustBuiltins[calledName] {
		return
	}

	r := graph.IndexRange{StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1}
	if targetID, ok := e.funcMap[calledName]; ok {
		e.addEdge(graph.EdgeCalls, callerID, targetID)
		return
	}
	e.info.PendingCalls = append(e.info.PendingCalls, parser.PendingCall{CallerID: callerID, CalleeName: calledName, Range: r})
}

func (e *extractor) getFuncName(node *sitter.Node) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "identifier" {
			return e.nodeText(child)
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
