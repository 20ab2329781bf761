// Package store is the spatial-store boundary: namespaced typed relations
// for per-tile graph data, a geometric equality join across namespaces, and
// staged publication of the merged global graph. The default implementation
// is in-memory; the interfaces keep a server-backed store pluggable.
package store

import (
	"errors"

	"github.com/paulmach/orb"

	"terragraph/internal/graph"
)

var (
	// ErrNamespaceExists is returned when creating a namespace that is
	// already present.
	ErrNamespaceExists = errors.New("store: namespace exists")

	// ErrNamespaceNotFound is returned for lookups of unknown namespaces.
	ErrNamespaceNotFound = errors.New("store: namespace not found")
)

// Store hands out sessions. Workers must each own their own session;
// sessions are never shared across goroutines.
type Store interface {
	Session() Session
}

// Session is one connection into the store.
type Session interface {
	// CreateNamespace creates an isolated namespace for one tile's data.
	CreateNamespace(id string) (Namespace, error)

	// Namespace returns an existing namespace.
	Namespace(id string) (Namespace, error)

	// DropNamespace removes a namespace and all its relations.
	DropNamespace(id string) error

	// GeometricEqualityJoin pairs vertex ids across two namespaces whose
	// positions are exactly equal.
	GeometricEqualityJoin(nsA, nsB string) ([][2]int64, error)

	// Publish atomically replaces the final global graph and rebuilds its
	// spatial indexes. The previously published graph stays visible until
	// Publish returns successfully.
	Publish(g *graph.Global) error

	// Graph returns the currently published global graph, or nil.
	Graph() *graph.Global

	// VertexIndex returns the spatial index over the published vertices,
	// or nil when nothing is published.
	VertexIndex() *VertexIndex

	// EdgeIndex returns the spatial index over the published edges, or nil
	// when nothing is published.
	EdgeIndex() *EdgeIndex
}

// Namespace holds one tile's typed relations.
type Namespace interface {
	ID() string

	WriteVertices(vs []graph.LocalVertex) error
	ReadVertices() ([]graph.LocalVertex, error)

	WriteEdges(es []graph.LocalEdge) error
	ReadEdges() ([]graph.LocalEdge, error)

	WritePolygons(ps []orb.Polygon) error
	ReadPolygons() ([]orb.Polygon, error)
}
