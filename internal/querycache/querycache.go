// Package querycache implements the layered query cache: five
// sub-caches keyed by position, node id, or path+depth, memoizing the
// resolver's more expensive answers. Two sub-caches (definitions,
// references) are unbounded maps; the other three are bounded LRUs backed
// by hashicorp/golang-lru/v2.
package querycache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codegraphls/codegraphls/internal/graph"
)

// DefaultCapacity is the default capacity for the LRU sub-caches.
const DefaultCapacity = 1000

// Location is an (id-bearing) source location, as returned by references
// and call-hierarchy queries.
type Location struct {
	Path  string
	Range graph.IndexRange
}

// CallHierarchy is the cached {incoming, outgoing} pair for a node: the
// node ids of its callers and callees.
type CallHierarchy struct {
	Incoming []string
	Outgoing []string
}

// DependencyGraph is the cached {nodes, edges} pair for a (path, depth) query.
type DependencyGraph struct {
	Nodes []string
	Edges []graph.Edge
}

// ContextType selects one of the four AI-context strategies.
type ContextType string

const (
	ContextExplain ContextType = "explain"
	ContextModify  ContextType = "modify"
	ContextDebug   ContextType = "debug"
	ContextTest    ContextType = "test"
)

// AIContext is the cached primary/related payload for a (node, contextType)
// pair. The concrete shapes of Primary/Related are owned by the resolver;
// the cache stores them as opaque values to avoid a dependency on resolver
// from here (the cache sits below the resolver in the dependency order).
type AIContext struct {
	Primary any
	Related any
}

type defKey struct {
	path string
	line int
	col  int
}

type depKey struct {
	path  string
	depth int
}

type ctxKey struct {
	nodeID string
	ctype  ContextType
}

// Cache is the layered query cache.
type Cache struct {
	defMu sync.RWMutex
	defs  map[defKey]string

	refMu sync.RWMutex
	refs  map[string][]Location

	hierarchies *lru.Cache[string, CallHierarchy]
	deps        *lru.Cache[depKey, DependencyGraph]
	aiContexts  *lru.Cache[ctxKey, AIContext]
}

// New creates a Cache with the given capacity for the three LRU sub-caches
// (dependency graphs use capacity/2). capacity <= 0 falls back to
// DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	depCap := capacity / 2
	if depCap < 1 {
		depCap = 1
	}
	hierarchies, err := lru.New[string, CallHierarchy](capacity)
	if err != nil {
		panic(fmt.Sprintf("querycache: call-hierarchy LRU: %v", err))
	}
	deps, err := lru.New[depKey, DependencyGraph](depCap)
	if err != nil {
		panic(fmt.Sprintf("querycache: dependency-graph LRU: %v", err))
	}
	aiContexts, err := lru.New[ctxKey, AIContext](capacity)
	if err != nil {
		panic(fmt.Sprintf("querycache: ai-context LRU: %v", err))
	}
	return &Cache{
		defs:        make(map[defKey]string),
		refs:        make(map[string][]Location),
		hierarchies: hierarchies,
		deps:        deps,
		aiContexts:  aiContexts,
	}
}

// GetDefinition looks up a cached (path, line, col) -> NodeId answer.
func (c *Cache) GetDefinition(path string, line, col int) (string, bool) {
	c.defMu.RLock()
	defer c.defMu.RUnlock()
	id, ok := c.defs[defKey{path, line, col}]
	return id, ok
}

// PutDefinition memoizes a definition answer.
func (c *Cache) PutDefinition(path string, line, col int, nodeID string) {
	c.defMu.Lock()
	defer c.defMu.Unlock()
	c.defs[defKey{path, line, col}] = nodeID
}

// GetReferences looks up cached references for a node.
func (c *Cache) GetReferences(nodeID string) ([]Location, bool) {
	c.refMu.RLock()
	defer c.refMu.RUnlock()
	locs, ok := c.refs[nodeID]
	return locs, ok
}

// PutReferences memoizes a references answer.
func (c *Cache) PutReferences(nodeID string, locs []Location) {
	c.refMu.Lock()
	defer c.refMu.Unlock()
	c.refs[nodeID] = locs
}

// GetCallHierarchy looks up a cached {incoming, outgoing} pair.
func (c *Cache) GetCallHierarchy(nodeID string) (CallHierarchy, bool) {
	return c.hierarchies.Get(nodeID)
}

// PutCallHierarchy memoizes a call-hierarchy answer.
func (c *Cache) PutCallHierarchy(nodeID string, h CallHierarchy) {
	c.hierarchies.Add(nodeID, h)
}

// GetDependencyGraph looks up a cached dependency-graph answer for
// (path, depth).
func (c *Cache) GetDependencyGraph(path string, depth int) (DependencyGraph, bool) {
	return c.deps.Get(depKey{path, depth})
}

// PutDependencyGraph memoizes a dependency-graph answer.
func (c *Cache) PutDependencyGraph(path string, depth int, dg DependencyGraph) {
	c.deps.Add(depKey{path, depth}, dg)
}

// GetAIContext looks up a cached AI-context answer for (nodeID, contextType).
func (c *Cache) GetAIContext(nodeID string, ctype ContextType) (AIContext, bool) {
	return c.aiContexts.Get(ctxKey{nodeID, ctype})
}

// PutAIContext memoizes an AI-context answer.
func (c *Cache) PutAIContext(nodeID string, ctype ContextType, ac AIContext) {
	c.aiContexts.Add(ctxKey{nodeID, ctype}, ac)
}

// InvalidateFile drops definitions whose key path matches, and clears
// references, call-hierarchy, and dependency-graph caches wholesale. This
// coarse invalidation is deliberate: those three caches may hold answers
// that span files, and a reverse index of cache entry -> contributing
// files isn't worth its upkeep for a single-workspace server.
// AI contexts are likewise cleared since they embed source snippets that
// may have just changed.
func (c *Cache) InvalidateFile(path string) {
	c.defMu.Lock()
	for k := range c.defs {
		if k.path == path {
			delete(c.defs, k)
		}
	}
	c.defMu.Unlock()

	c.refMu.Lock()
	c.refs = make(map[string][]Location)
	c.refMu.Unlock()

	c.hierarchies.Purge()
	c.deps.Purge()
	c.aiContexts.Purge()
}

// InvalidateAll drops every cached answer (used by codegraph.reindexWorkspace).
func (c *Cache) InvalidateAll() {
	c.defMu.Lock()
	c.defs = make(map[defKey]string)
	c.defMu.Unlock()

	c.refMu.Lock()
	c.refs = make(map[string][]Location)
	c.refMu.Unlock()

	c.hierarchies.Purge()
	c.deps.Purge()
	c.aiContexts.Purge()
}
