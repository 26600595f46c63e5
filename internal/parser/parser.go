// Package parser dispatches source files to per-language parsing frontends
// and assembles their results into FileInfo summaries consumed by the
// symbol index and resolver.
package parser

import (
	"fmt"
	"os"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/metrics"
)

// Language identifies a supported source language.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
)

// FileExtensions maps each language to its recognized file extensions.
// Dispatch order, when more than one frontend could plausibly claim a path,
// follows this fixed precedence: python, rust, typescript, go.
var FileExtensions = map[Language][]string{
	LangPython:     {".py", ".pyi"},
	LangRust:       {".rs"},
	LangTypeScript: {".ts", ".tsx"},
	LangJavaScript: {".js", ".jsx", ".mjs", ".cjs"},
	LangGo:         {".go"},
}

// DispatchOrder is the deterministic order in which Registry.ForPath asks
// the registered frontends whether they claim a path.
var DispatchOrder = []Language{LangPython, LangRust, LangTypeScript, LangGo}

// PendingCall records a call site whose callee could not be resolved within
// the file being parsed (e.g. a call to a function defined elsewhere). The
// linker consults these after the whole workspace has been indexed.
type PendingCall struct {
	CallerID   string
	CalleeName string
	Range      graph.IndexRange
}

// FileInfo summarizes the node ids a frontend produced for one file, grouped
// by kind, plus any calls left unresolved for the cross-file linker.
type FileInfo struct {
	Path         string
	Language     Language
	Functions    []string
	Classes      []string
	Traits       []string
	Imports      []string
	PendingCalls []PendingCall
}

// ParseErrorKind classifies why a frontend rejected a file.
type ParseErrorKind string

const (
	ErrUnsupportedFeature ParseErrorKind = "UnsupportedFeature"
	ErrSyntax             ParseErrorKind = "SyntaxError"
	ErrIO                 ParseErrorKind = "IO"
)

// ParseError is the error type frontends return from ParseSource/ParseFile.
type ParseError struct {
	Kind       ParseErrorKind
	Path       string
	Msg        string
	Underlying error
}

func (e *ParseError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

// SyntaxError builds a ParseError for source the frontend could not parse.
func SyntaxError(path string, underlying error) *ParseError {
	return &ParseError{Kind: ErrSyntax, Path: path, Underlying: underlying}
}

// IOError builds a ParseError for a file the frontend could not read.
func IOError(path string, underlying error) *ParseError {
	return &ParseError{Kind: ErrIO, Path: path, Underlying: underlying}
}

// UnsupportedFeature builds a ParseError for a construct the frontend
// recognizes but cannot model.
func UnsupportedFeature(path, msg string) *ParseError {
	return &ParseError{Kind: ErrUnsupportedFeature, Path: path, Msg: msg}
}

// Frontend is the interface every language-specific parser implements.
type Frontend interface {
	// CanParse reports whether this frontend handles the given file path.
	CanParse(path string) bool

	// FileExtensions lists the extensions this frontend claims.
	FileExtensions() []string

	// ParseSource parses already-read file content, mutating g with the
	// extracted nodes and edges, and returns a summary of what was added.
	ParseSource(text, path string, g graph.Store) (*FileInfo, error)

	// ParseFile reads path from disk and calls ParseSource.
	ParseFile(path string, g graph.Store) (*FileInfo, error)

	// Metrics returns a snapshot of this frontend's cumulative activity.
	Metrics() metrics.Snapshot
}

// ReadFile is a small helper frontends use to implement ParseFile in terms
// of ParseSource, keeping the disk-read/error-wrapping logic in one place.
func ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", IOError(path, err)
	}
	return string(b), nil
}
