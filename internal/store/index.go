package store

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"terragraph/internal/graph"
)

// rectEpsilon pads degenerate rectangles; rtreego rejects zero-length sides.
const rectEpsilon = 1e-9

type vertexEntry struct {
	vertex graph.GlobalVertex
	rect   rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *vertexEntry) Bounds() rtreego.Rect { return e.rect }

// VertexIndex answers spatial queries over global vertices.
type VertexIndex struct {
	tree *rtreego.Rtree
}

// NewVertexIndex builds an index over the given vertices.
func NewVertexIndex(vs []graph.GlobalVertex) *VertexIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for _, v := range vs {
		rect, err := pointRect(v.Pos, 0)
		if err != nil {
			continue
		}
		tree.Insert(&vertexEntry{vertex: v, rect: rect})
	}
	return &VertexIndex{tree: tree}
}

// Within returns all vertices no farther than tol from p, nearest first.
func (ix *VertexIndex) Within(p orb.Point, tol float64) []graph.GlobalVertex {
	rect, err := pointRect(p, tol)
	if err != nil {
		return nil
	}
	candidates := ix.tree.SearchIntersect(rect)

	var out []graph.GlobalVertex
	for _, item := range candidates {
		v := item.(*vertexEntry).vertex
		if math.Hypot(v.Pos.X()-p.X(), v.Pos.Y()-p.Y()) <= tol {
			out = append(out, v)
		}
	}
	sortByDistance(out, p)
	return out
}

// QueryRegion returns all vertices inside the rectangle.
func (ix *VertexIndex) QueryRegion(minX, minY, maxX, maxY float64) []graph.GlobalVertex {
	rect, err := regionRect(minX, minY, maxX, maxY)
	if err != nil {
		return nil
	}
	results := ix.tree.SearchIntersect(rect)
	out := make([]graph.GlobalVertex, 0, len(results))
	for _, item := range results {
		out = append(out, item.(*vertexEntry).vertex)
	}
	return out
}

func sortByDistance(vs []graph.GlobalVertex, p orb.Point) {
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0; j-- {
			di := math.Hypot(vs[j].Pos.X()-p.X(), vs[j].Pos.Y()-p.Y())
			dj := math.Hypot(vs[j-1].Pos.X()-p.X(), vs[j-1].Pos.Y()-p.Y())
			if di < dj {
				vs[j], vs[j-1] = vs[j-1], vs[j]
			}
		}
	}
}

type edgeEntry struct {
	edge graph.GlobalEdge
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *edgeEntry) Bounds() rtreego.Rect { return e.rect }

// EdgeIndex answers spatial queries over global edges. Edge rectangles are
// derived from the endpoint vertex positions.
type EdgeIndex struct {
	tree *rtreego.Rtree
}

// NewEdgeIndex builds an index over the edges, resolving endpoint positions
// through the vertex set.
func NewEdgeIndex(es []graph.GlobalEdge, vs []graph.GlobalVertex) *EdgeIndex {
	pos := make(map[int64]orb.Point, len(vs))
	for _, v := range vs {
		pos[v.ID] = v.Pos
	}

	tree := rtreego.NewTree(2, 25, 50)
	for _, edge := range es {
		a, okA := pos[edge.Source]
		b, okB := pos[edge.Target]
		if !okA || !okB {
			continue
		}
		rect, err := regionRect(
			math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y()),
			math.Max(a.X(), b.X()), math.Max(a.Y(), b.Y()),
		)
		if err != nil {
			continue
		}
		tree.Insert(&edgeEntry{edge: edge, rect: rect})
	}
	return &EdgeIndex{tree: tree}
}

// QueryRegion returns all edges whose bounding box intersects the rectangle.
func (ix *EdgeIndex) QueryRegion(minX, minY, maxX, maxY float64) []graph.GlobalEdge {
	rect, err := regionRect(minX, minY, maxX, maxY)
	if err != nil {
		return nil
	}
	results := ix.tree.SearchIntersect(rect)
	out := make([]graph.GlobalEdge, 0, len(results))
	for _, item := range results {
		out = append(out, item.(*edgeEntry).edge)
	}
	return out
}

func pointRect(p orb.Point, pad float64) (rtreego.Rect, error) {
	side := 2*pad + rectEpsilon
	return rtreego.NewRect(
		rtreego.Point{p.X() - pad - rectEpsilon/2, p.Y() - pad - rectEpsilon/2},
		[]float64{side, side},
	)
}

func regionRect(minX, minY, maxX, maxY float64) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{minX - rectEpsilon/2, minY - rectEpsilon/2},
		[]float64{maxX - minX + rectEpsilon, maxY - minY + rectEpsilon},
	)
}
