// Package resolver implements the core logic that maps editor-protocol
// coordinates and commands onto operations over the graph, the symbol
// index, and the query cache: position resolution, goto
// definition, references, hover, document symbols, call hierarchy, and AI
// context selection. It also owns the purge-then-insert file lifecycle
// (OpenFile/ChangeFile/SaveFile/CloseFile/RemoveFile) and the initial
// whole-workspace index, invoking internal/linker after each (re)index so
// cross-file Calls edges get resolved.
package resolver

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/linker"
	"github.com/codegraphls/codegraphls/internal/lserr"
	"github.com/codegraphls/codegraphls/internal/parser"
	"github.com/codegraphls/codegraphls/internal/querycache"
	"github.com/codegraphls/codegraphls/internal/symbolindex"
)

// Location names a range within a file, in internal coordinates
// (1-indexed lines, 0-indexed columns).
type Location struct {
	Path  string
	Range graph.IndexRange
}

// Resolver is the façade's single entry point into the graph, symbol
// index, and query cache. It holds no editor-protocol knowledge; callers
// (internal/server) translate editor coordinates to/from internal ones at
// the boundary via internal/coordinate.
type Resolver struct {
	graph    graph.Store
	index    *symbolindex.Index
	cache    *querycache.Cache
	registry *parser.Registry
	linker   *linker.Linker

	// reindexMu serializes the purge-then-insert critical section: a reader
	// observing any new node for a path observes all of them. A single
	// mutex is a stricter guarantee than strictly required (it also
	// serializes across files), which is fine: readers are only promised
	// they may observe interleavings across files, not that they must.
	reindexMu sync.Mutex

	fileMu    sync.RWMutex
	openFiles map[string]string // path -> editor buffer content
}

// New creates a Resolver over the given components. All four must share
// the same underlying graph/index/cache instances the rest of the server
// uses.
func New(g graph.Store, idx *symbolindex.Index, cache *querycache.Cache, reg *parser.Registry, lk *linker.Linker) *Resolver {
	return &Resolver{
		graph:     g,
		index:     idx,
		cache:     cache,
		registry:  reg,
		linker:    lk,
		openFiles: make(map[string]string),
	}
}

// Graph returns the underlying graph store.
func (r *Resolver) Graph() graph.Store { return r.graph }

// Index returns the underlying symbol index.
func (r *Resolver) Index() *symbolindex.Index { return r.index }

// Cache returns the underlying query cache.
func (r *Resolver) Cache() *querycache.Cache { return r.cache }

// Registry returns the underlying parser registry.
func (r *Resolver) Registry() *parser.Registry { return r.registry }

func toSymFileInfo(fi *parser.FileInfo) *symbolindex.FileInfo {
	return &symbolindex.FileInfo{Functions: fi.Functions, Classes: fi.Classes, Traits: fi.Traits}
}

// reparse purges path and rebuilds it, either from text (editor buffer) or,
// when text is empty, by reading the file from disk. Non-parseable paths
// are silently ignored.
func (r *Resolver) reparse(path, text string) error {
	r.reindexMu.Lock()
	defer r.reindexMu.Unlock()
	return r.reparseLocked(path, text)
}

func (r *Resolver) reparseLocked(path, text string) error {
	f, ok := r.registry.ForPath(path)
	if !ok {
		return nil
	}

	_ = r.graph.DeleteByFile(path)
	r.index.RemoveFile(path)

	var fi *parser.FileInfo
	var err error
	if text != "" {
		fi, err = f.ParseSource(text, path, r.graph)
	} else {
		fi, err = f.ParseFile(path, r.graph)
	}
	if err != nil {
		return lserr.Wrap(lserr.Parser, "parse "+path, err)
	}

	if err := r.index.AddFile(path, toSymFileInfo(fi), r.graph); err != nil {
		return lserr.Wrap(lserr.Cache, "index "+path, err)
	}

	r.linker.ResolveFile(fi)
	r.cache.InvalidateFile(path)
	return nil
}

// OpenFile purge-then-inserts path using the editor's full buffer content,
// and remembers the buffer in the open-file cache.
func (r *Resolver) OpenFile(path, text string) error {
	r.fileMu.Lock()
	r.openFiles[path] = text
	r.fileMu.Unlock()
	return r.reparse(path, text)
}

// ChangeFile re-parses path from new full-document content (full-content
// sync; there is no incremental subtree re-parsing).
func (r *Resolver) ChangeFile(path, text string) error {
	r.fileMu.Lock()
	r.openFiles[path] = text
	r.fileMu.Unlock()
	return r.reparse(path, text)
}

// SaveFile re-parses path. When text is non-empty (save-with-text), it is
// used directly; otherwise path is re-read from disk.
func (r *Resolver) SaveFile(path, text string) error {
	if text != "" {
		r.fileMu.Lock()
		r.openFiles[path] = text
		r.fileMu.Unlock()
		return r.reparse(path, text)
	}
	return r.reparse(path, "")
}

// CloseFile evicts path from the open-file cache. Graph nodes for path are
// retained, so cross-file resolution against it keeps working after close.
func (r *Resolver) CloseFile(path string) {
	r.fileMu.Lock()
	delete(r.openFiles, path)
	r.fileMu.Unlock()
}

// IsOpen reports whether path is currently tracked in the open-file cache.
func (r *Resolver) IsOpen(path string) bool {
	r.fileMu.RLock()
	defer r.fileMu.RUnlock()
	_, ok := r.openFiles[path]
	return ok
}

// OpenFileCount reports how many files are currently tracked open (used by
// codegraph.reindexWorkspace's completion notification).
func (r *Resolver) OpenFileCount() int {
	r.fileMu.RLock()
	defer r.fileMu.RUnlock()
	return len(r.openFiles)
}

// RemoveFile purges path's nodes and index entries without re-parsing, for
// a filesystem "remove" watcher event.
func (r *Resolver) RemoveFile(path string) error {
	r.reindexMu.Lock()
	defer r.reindexMu.Unlock()
	_ = r.graph.DeleteByFile(path)
	r.index.RemoveFile(path)
	r.cache.InvalidateFile(path)
	return nil
}

// Excluder reports whether path should be skipped during a workspace walk
// (directories are passed with a trailing separator implied by the caller's
// own convention; IndexWorkspace just forwards filepath.Walk's path as-is).
type Excluder func(path string) bool

// IndexWorkspace walks root, parsing every file a registered frontend
// claims, then resolves cross-file Calls edges once for the whole batch
// (since a pending call's callee file may not have been parsed yet at the
// time its own file was visited). Parse errors are logged-and-swallowed via
// the returned errs slice rather than aborting the walk, so one bad file
// never blocks indexing the rest.
func (r *Resolver) IndexWorkspace(root string, exclude Excluder) (files int, errs []error) {
	r.reindexMu.Lock()
	defer r.reindexMu.Unlock()
	return r.indexWorkspaceLocked(root, exclude)
}

func (r *Resolver) indexWorkspaceLocked(root string, exclude Excluder) (files int, errs []error) {
	var infos []*parser.FileInfo
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if exclude != nil && exclude(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if exclude != nil && exclude(path) {
			return nil
		}
		f, ok := r.registry.ForPath(path)
		if !ok {
			return nil
		}
		fi, ferr := f.ParseFile(path, r.graph)
		if ferr != nil {
			errs = append(errs, lserr.Wrap(lserr.Parser, "parse "+path, ferr))
			return nil
		}
		if err := r.index.AddFile(path, toSymFileInfo(fi), r.graph); err != nil {
			errs = append(errs, lserr.Wrap(lserr.Cache, "index "+path, err))
			return nil
		}
		infos = append(infos, fi)
		files++
		return nil
	})
	r.linker.ResolveAll(infos)
	r.cache.InvalidateAll()
	return files, errs
}

// ReindexWorkspace resets the graph, symbol index, query cache, and
// open-file cache, then re-runs IndexWorkspace against root. This backs
// codegraph.reindexWorkspace.
func (r *Resolver) ReindexWorkspace(root string, exclude Excluder) (files int, errs []error) {
	r.reindexMu.Lock()
	defer r.reindexMu.Unlock()

	r.graph.Reset()
	r.index.Reset()
	r.cache.InvalidateAll()
	r.fileMu.Lock()
	r.openFiles = make(map[string]string)
	r.fileMu.Unlock()

	return r.indexWorkspaceLocked(root, exclude)
}
