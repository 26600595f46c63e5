// Package symbolindex maintains the secondary indices that accelerate
// position-to-symbol and name-to-symbol resolution over the code graph: by
// name, by file, by type, and by position. The graph store remains the
// source of truth; these are derived, rebuildable structures.
package symbolindex

import (
	"sort"
	"strings"
	"sync"

	"github.com/codegraphls/codegraphls/internal/graph"
)

// posEntry pairs a node's range with its id, in insertion order, so that
// FindAtPosition's tie-break ("earliest inserted") has something to compare.
type posEntry struct {
	id    string
	rng   graph.IndexRange
	order int
}

// Index holds the four secondary indices described in the data model. Each
// bucket has its own RWMutex — independent, concurrent maps, unlike the
// graph store's single store-wide lock.
type Index struct {
	nameMu sync.RWMutex
	byName map[string][]string

	fileMu sync.RWMutex
	byFile map[string][]string

	typeMu sync.RWMutex
	byType map[string][]string

	posMu      sync.RWMutex
	byPosition map[string][]posEntry

	seq int
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		byName:     make(map[string][]string),
		byFile:     make(map[string][]string),
		byType:     make(map[string][]string),
		byPosition: make(map[string][]posEntry),
	}
}

// AddFile (re)indexes path from a freshly produced FileInfo, reading each
// node's current properties from g. Each index is updated for path under
// its own lock, so a reader of any one index never sees a half-built entry
// for path; the four indices are updated one after another, so a reader
// that consults several of them during the call may see some updated and
// others not yet.
func (idx *Index) AddFile(path string, fi *FileInfo, g graph.Store) error {
	ids := fi.AllIDs()

	type entry struct {
		id   string
		name string
		typ  string
		rng  graph.IndexRange
	}
	entries := make([]entry, 0, len(ids))
	for _, id := range ids {
		n, err := g.GetNode(id)
		if err != nil {
			// Lazily repaired: a dangling id (node deleted after FileInfo was
			// produced but before indexing) is simply skipped.
			continue
		}
		entries = append(entries, entry{id: id, name: n.Name(), typ: string(n.Type), rng: n.Range()})
	}

	// Build the new by-position slice, sorted ascending by (start_line,
	// start_col), tie-broken by insertion order.
	newPos := make([]posEntry, 0, len(entries))
	idx.posMu.Lock()
	base := idx.seq
	for i, e := range entries {
		newPos = append(newPos, posEntry{id: e.id, rng: e.rng, order: base + i})
	}
	idx.seq = base + len(entries)
	sort.SliceStable(newPos, func(i, j int) bool {
		a, b := newPos[i].rng, newPos[j].rng
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.StartCol < b.StartCol
	})
	idx.byPosition[path] = newPos
	idx.posMu.Unlock()

	// by_file: replace wholesale.
	newFileIDs := make([]string, len(entries))
	for i, e := range entries {
		newFileIDs[i] = e.id
	}
	idx.fileMu.Lock()
	oldFileIDs := idx.byFile[path]
	idx.byFile[path] = newFileIDs
	idx.fileMu.Unlock()

	oldSet := make(map[string]bool, len(oldFileIDs))
	for _, id := range oldFileIDs {
		oldSet[id] = true
	}
	newSet := make(map[string]bool, len(entries))
	for _, e := range entries {
		newSet[e.id] = true
	}

	// by_name / by_type: purge ids that belonged to the previous version of
	// this file and are not present in the new one, then insert the new ones.
	idx.nameMu.Lock()
	for _, id := range oldFileIDs {
		if !newSet[id] {
			purgeID(idx.byName, id)
		}
	}
	for _, e := range entries {
		idx.byName[e.name] = appendUnique(idx.byName[e.name], e.id)
	}
	idx.nameMu.Unlock()

	idx.typeMu.Lock()
	for _, id := range oldFileIDs {
		if !newSet[id] {
			purgeID(idx.byType, id)
		}
	}
	for _, e := range entries {
		idx.byType[e.typ] = appendUnique(idx.byType[e.typ], e.id)
	}
	idx.typeMu.Unlock()

	return nil
}

// RemoveFile drops path from by_file/by_position and purges any of its ids
// from by_name/by_type, dropping buckets left empty.
func (idx *Index) RemoveFile(path string) {
	idx.fileMu.Lock()
	ids := idx.byFile[path]
	delete(idx.byFile, path)
	idx.fileMu.Unlock()

	idx.posMu.Lock()
	delete(idx.byPosition, path)
	idx.posMu.Unlock()

	if len(ids) == 0 {
		return
	}

	idx.nameMu.Lock()
	for _, id := range ids {
		purgeID(idx.byName, id)
	}
	idx.nameMu.Unlock()

	idx.typeMu.Lock()
	for _, id := range ids {
		purgeID(idx.byType, id)
	}
	idx.typeMu.Unlock()
}

// FindAtPosition returns the id of the smallest range containing
// (line, col), 1-indexed line / 0-indexed column. Ties (equal size) go to
// whichever entry was inserted first. Returns "", false on no match.
func (idx *Index) FindAtPosition(path string, line, col int) (string, bool) {
	idx.posMu.RLock()
	entries := idx.byPosition[path]
	idx.posMu.RUnlock()

	var winnerID string
	found := false
	winnerSize := 0
	winnerOrder := 0
	for _, e := range entries {
		if !e.rng.Contains(line, col) {
			continue
		}
		size := e.rng.Size()
		if !found || size < winnerSize || (size == winnerSize && e.order < winnerOrder) {
			winnerID = e.id
			winnerSize = size
			winnerOrder = e.order
			found = true
		}
	}
	if !found {
		return "", false
	}
	return winnerID, true
}

// ByFile returns a copy of the node ids indexed for path.
func (idx *Index) ByFile(path string) []string {
	idx.fileMu.RLock()
	defer idx.fileMu.RUnlock()
	out := make([]string, len(idx.byFile[path]))
	copy(out, idx.byFile[path])
	return out
}

// ByName returns a copy of the node ids with the given exact name.
func (idx *Index) ByName(name string) []string {
	idx.nameMu.RLock()
	defer idx.nameMu.RUnlock()
	out := make([]string, len(idx.byName[name]))
	copy(out, idx.byName[name])
	return out
}

// ByType returns a copy of the node ids of the given type name.
func (idx *Index) ByType(typeName string) []string {
	idx.typeMu.RLock()
	defer idx.typeMu.RUnlock()
	out := make([]string, len(idx.byType[typeName]))
	copy(out, idx.byType[typeName])
	return out
}

// SearchByName does a case-insensitive substring match across by_name keys,
// returning the union of matching ids.
func (idx *Index) SearchByName(pattern string) []string {
	pattern = strings.ToLower(pattern)
	idx.nameMu.RLock()
	defer idx.nameMu.RUnlock()
	var out []string
	for name, ids := range idx.byName {
		if strings.Contains(strings.ToLower(name), pattern) {
			out = append(out, ids...)
		}
	}
	sort.Strings(out)
	return out
}

// Reset empties all four indices (used by codegraph.reindexWorkspace).
func (idx *Index) Reset() {
	idx.nameMu.Lock()
	idx.byName = make(map[string][]string)
	idx.nameMu.Unlock()

	idx.fileMu.Lock()
	idx.byFile = make(map[string][]string)
	idx.fileMu.Unlock()

	idx.typeMu.Lock()
	idx.byType = make(map[string][]string)
	idx.typeMu.Unlock()

	idx.posMu.Lock()
	idx.byPosition = make(map[string][]posEntry)
	idx.posMu.Unlock()
}

func purgeID(m map[string][]string, id string) {
	for k, ids := range m {
		filtered := ids[:0]
		for _, existing := range ids {
			if existing != id {
				filtered = append(filtered, existing)
			}
		}
		if len(filtered) == 0 {
			delete(m, k)
		} else {
			m[k] = filtered
		}
	}
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// FileInfo is the subset of parser.FileInfo the index needs: the node ids
// grouped by kind. Defined locally (rather than importing internal/parser)
// to keep the symbol index dependent only on the graph store, per the component's place in the
// dependency order; internal/resolver adapts parser.FileInfo to this shape.
type FileInfo struct {
	Functions []string
	Classes   []string
	Traits    []string
}

// AllIDs returns the deduplicated union of Functions, Classes, and Traits.
func (fi *FileInfo) AllIDs() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	add(fi.Functions)
	add(fi.Classes)
	add(fi.Traits)
	return out
}
