// Package graph defines the vertex and edge records exchanged between the
// per-tile processors and the merge step. Local ids are only meaningful
// inside the tile namespace that wrote them; global ids are assigned by the
// merge and are unique across the whole graph.
package graph

import "github.com/paulmach/orb"

// EdgeType classifies how an edge was produced.
type EdgeType string

const (
	// EdgeTerrain connects two terrain sample points.
	EdgeTerrain EdgeType = "terrain"
	// EdgeWater runs along an obstacle boundary ring.
	EdgeWater EdgeType = "water"
	// EdgeBoundaryConnection ties a terrain sample point to the obstacle
	// boundary node whose Voronoi cell contains it.
	EdgeBoundaryConnection EdgeType = "boundary-connection"
)

// LocalVertex is a vertex inside one tile's namespace.
type LocalVertex struct {
	ID        int64
	Pos       orb.Point
	Elevation float64
	Cost      float64
}

// LocalEdge is an edge inside one tile's namespace. Source and Target are
// tile-local vertex ids.
type LocalEdge struct {
	ID       int64
	Source   int64
	Target   int64
	Length   float64
	Cost     float64
	Type     EdgeType
	Geometry orb.LineString
}

// GlobalVertex is a merged vertex. At most one exists per distinct position.
type GlobalVertex struct {
	ID        int64
	Pos       orb.Point
	Elevation float64
	Cost      float64
}

// GlobalEdge is a merged edge with endpoints resolved to global vertex ids.
type GlobalEdge struct {
	ID     int64
	Source int64
	Target int64
	Length float64
	Cost   float64
	Type   EdgeType
}

// Global is the merged output graph.
type Global struct {
	Vertices []GlobalVertex
	Edges    []GlobalEdge
}
