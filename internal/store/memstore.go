package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"terragraph/internal/graph"
)

// MemStore is the in-memory Store. Namespaces are plain arenas guarded by
// one lock; sessions are cheap handles so every worker can hold its own.
type MemStore struct {
	mu         sync.RWMutex
	namespaces map[string]*memNamespace

	published   *graph.Global
	vertexIndex *VertexIndex
	edgeIndex   *EdgeIndex
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{namespaces: make(map[string]*memNamespace)}
}

// Session returns a new session handle.
func (s *MemStore) Session() Session {
	return &memSession{id: uuid.NewString(), store: s}
}

type memSession struct {
	id    string
	store *MemStore
}

func (ss *memSession) CreateNamespace(id string) (Namespace, error) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	if _, ok := ss.store.namespaces[id]; ok {
		return nil, fmt.Errorf("create %q: %w", id, ErrNamespaceExists)
	}
	ns := &memNamespace{id: id}
	ss.store.namespaces[id] = ns
	return ns, nil
}

func (ss *memSession) Namespace(id string) (Namespace, error) {
	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()
	ns, ok := ss.store.namespaces[id]
	if !ok {
		return nil, fmt.Errorf("namespace %q: %w", id, ErrNamespaceNotFound)
	}
	return ns, nil
}

func (ss *memSession) DropNamespace(id string) error {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	if _, ok := ss.store.namespaces[id]; !ok {
		return fmt.Errorf("drop %q: %w", id, ErrNamespaceNotFound)
	}
	delete(ss.store.namespaces, id)
	return nil
}

// GeometricEqualityJoin pairs vertex ids across two namespaces whose
// positions compare exactly equal.
func (ss *memSession) GeometricEqualityJoin(nsA, nsB string) ([][2]int64, error) {
	a, err := ss.Namespace(nsA)
	if err != nil {
		return nil, err
	}
	b, err := ss.Namespace(nsB)
	if err != nil {
		return nil, err
	}

	left, err := a.ReadVertices()
	if err != nil {
		return nil, err
	}
	right, err := b.ReadVertices()
	if err != nil {
		return nil, err
	}

	byPos := make(map[orb.Point][]int64, len(left))
	for _, v := range left {
		byPos[v.Pos] = append(byPos[v.Pos], v.ID)
	}

	var pairs [][2]int64
	for _, v := range right {
		for _, id := range byPos[v.Pos] {
			pairs = append(pairs, [2]int64{id, v.ID})
		}
	}
	return pairs, nil
}

// Publish replaces the published graph and rebuilds both spatial indexes.
// Indexes are built before the swap so a failed build leaves the previous
// graph fully intact.
func (ss *memSession) Publish(g *graph.Global) error {
	vIndex := NewVertexIndex(g.Vertices)
	eIndex := NewEdgeIndex(g.Edges, g.Vertices)

	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	ss.store.published = g
	ss.store.vertexIndex = vIndex
	ss.store.edgeIndex = eIndex
	return nil
}

func (ss *memSession) Graph() *graph.Global {
	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()
	return ss.store.published
}

func (ss *memSession) VertexIndex() *VertexIndex {
	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()
	return ss.store.vertexIndex
}

func (ss *memSession) EdgeIndex() *EdgeIndex {
	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()
	return ss.store.edgeIndex
}

type memNamespace struct {
	mu       sync.RWMutex
	id       string
	vertices []graph.LocalVertex
	edges    []graph.LocalEdge
	polygons []orb.Polygon
}

func (ns *memNamespace) ID() string { return ns.id }

func (ns *memNamespace) WriteVertices(vs []graph.LocalVertex) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.vertices = append(ns.vertices, vs...)
	return nil
}

func (ns *memNamespace) ReadVertices() ([]graph.LocalVertex, error) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	out := make([]graph.LocalVertex, len(ns.vertices))
	copy(out, ns.vertices)
	return out, nil
}

func (ns *memNamespace) WriteEdges(es []graph.LocalEdge) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.edges = append(ns.edges, es...)
	return nil
}

func (ns *memNamespace) ReadEdges() ([]graph.LocalEdge, error) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	out := make([]graph.LocalEdge, len(ns.edges))
	copy(out, ns.edges)
	return out, nil
}

func (ns *memNamespace) WritePolygons(ps []orb.Polygon) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.polygons = append(ns.polygons, ps...)
	return nil
}

func (ns *memNamespace) ReadPolygons() ([]orb.Polygon, error) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	out := make([]orb.Polygon, len(ns.polygons))
	copy(out, ns.polygons)
	return out, nil
}
