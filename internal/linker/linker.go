// Package linker runs the post-index phase that resolves cross-file edges a
// single-file parser pass cannot see. A frontend only ever sees the file in
// front of it, so a call to a function defined elsewhere is left behind as
// a parser.PendingCall rather than a guessed edge; the linker resolves
// those once the rest of the workspace (or at least the callee's file) has
// been indexed, turning them into Calls edges in the graph.
//
// Extends/Implements are deliberately out of scope here: each frontend
// already emits those edges directly, using a content-addressed node id
// derived from (type, the file currently being parsed, name). That is
// correct whenever the base type lives in the same file, which is the
// common case for the four frontends in this repo (Go structural typing
// and TypeScript/Rust heritage clauses all resolve within a single AST);
// cross-file Extends/Implements is a known limitation, see DESIGN.md.
package linker

import (
	"sort"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/parser"
	"github.com/codegraphls/codegraphls/internal/symbolindex"
)

// Linker resolves parser.PendingCall entries into graph.EdgeCalls edges.
type Linker struct {
	store graph.Store
	index *symbolindex.Index
}

// New creates a Linker over the given graph and symbol index. Both must be
// the same instances the resolver mutates, since the linker reads from one
// to write into the other.
func New(store graph.Store, index *symbolindex.Index) *Linker {
	return &Linker{store: store, index: index}
}

// ResolveFile resolves fi's pending calls against the current state of the
// symbol index (which may include symbols from other, already-indexed
// files) and adds a Calls edge for each one resolved. It returns the number
// of edges added. Call this right after a single file's (re)index, once
// its own nodes are in the graph and its FileInfo is in hand.
func (l *Linker) ResolveFile(fi *parser.FileInfo) int {
	return l.resolve(fi.PendingCalls)
}

// ResolveAll resolves the pending calls of every given FileInfo against the
// symbol index. Use this after a full workspace scan, where a pending call
// may target a file that had not yet been parsed at the time its own file
// was processed.
func (l *Linker) ResolveAll(infos []*parser.FileInfo) int {
	var all []parser.PendingCall
	for _, fi := range infos {
		if fi == nil {
			continue
		}
		all = append(all, fi.PendingCalls...)
	}
	return l.resolve(all)
}

func (l *Linker) resolve(pending []parser.PendingCall) int {
	resolved := 0
	for _, pc := range pending {
		candidates := l.index.ByName(pc.CalleeName)
		if len(candidates) == 0 {
			continue
		}
		sort.Strings(candidates)
		target := candidates[0]
		if target == pc.CallerID {
			// Skip accidental self-loops from a name collision; a real
			// recursive call is already captured in-file by the frontend.
			continue
		}
		if existing, err := l.store.GetEdgesBetween(pc.CallerID, target); err == nil && len(existing) > 0 {
			continue
		}
		if err := l.store.AddEdge(&graph.Edge{Type: graph.EdgeCalls, SourceID: pc.CallerID, TargetID: target}); err != nil {
			continue
		}
		resolved++
	}
	return resolved
}
