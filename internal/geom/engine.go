package geom

import (
	"errors"

	"github.com/paulmach/orb"
)

// Errors returned by engine implementations. Callers branch on these to
// decide whether a retry (with jitter or a relaxed tolerance) can help.
var (
	// ErrDegenerateInput marks input a decomposition cannot handle as given:
	// coincident sites, sites on the clipping envelope, or an empty result
	// cell. Retryable after preprocessing.
	ErrDegenerateInput = errors.New("geom: degenerate input")

	// ErrEmptyInput marks a call with no points. Never retryable.
	ErrEmptyInput = errors.New("geom: empty input")
)

// Cell is one region of a Voronoi decomposition. Site indexes the site
// slice the decomposition was computed over; every location inside Polygon
// is nearer to that site than to any other.
type Cell struct {
	Site    int
	Polygon orb.Polygon
}

// Triangulation is the vertex/edge output of a triangulation call. Edges
// hold index pairs into Vertices.
type Triangulation struct {
	Vertices []orb.Point
	Edges    [][2]int
}

// Engine is the geometry-engine boundary. The pipeline calls all heavy
// geometric decomposition through this interface so an external engine can
// be substituted; Planar is the default in-process implementation.
type Engine interface {
	// Triangulate connects a point set into a graph of vertices and edges.
	Triangulate(points []orb.Point) (Triangulation, error)

	// Voronoi decomposes the plane around the given sites, clipping
	// unbounded cells to the envelope. Sites within tolerance of each other
	// are snapped together first, so a decomposition may return fewer cells
	// than sites; the snapped-away sites lie inside a surviving cell.
	Voronoi(sites []orb.Point, tolerance float64, envelope Extent) ([]Cell, error)

	// Union deduplicates a point set, preserving first-occurrence order.
	Union(points []orb.Point) []orb.Point

	// Envelope returns the bounding extent of a point set.
	Envelope(points []orb.Point) Extent

	// Expand grows an extent by margin on every side.
	Expand(e Extent, margin float64) Extent

	// Buffer grows a polygon outward by dist.
	Buffer(poly orb.Polygon, dist float64) orb.Polygon

	// Distance is the planar distance between two points.
	Distance(a, b orb.Point) float64

	// Within reports whether a point lies inside a polygon.
	Within(p orb.Point, poly orb.Polygon) bool
}
