package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func TestSegmentsIntersect(t *testing.T) {
	crossing := SegmentsIntersect(
		Segment{A: orb.Point{0, 0}, B: orb.Point{10, 10}},
		Segment{A: orb.Point{0, 10}, B: orb.Point{10, 0}},
	)
	assert.True(t, crossing)

	parallel := SegmentsIntersect(
		Segment{A: orb.Point{0, 0}, B: orb.Point{10, 0}},
		Segment{A: orb.Point{0, 5}, B: orb.Point{10, 5}},
	)
	assert.False(t, parallel)

	// Shared endpoints do not count as intersections.
	shared := SegmentsIntersect(
		Segment{A: orb.Point{0, 0}, B: orb.Point{5, 5}},
		Segment{A: orb.Point{5, 5}, B: orb.Point{10, 0}},
	)
	assert.False(t, shared)
}

func TestPathClear(t *testing.T) {
	obstacle := square(4, 4, 6, 6)

	assert.False(t, PathClear(orb.Point{0, 5}, orb.Point{10, 5}, []orb.Polygon{obstacle}))
	assert.True(t, PathClear(orb.Point{0, 0}, orb.Point{10, 0}, []orb.Polygon{obstacle}))

	// Endpoint inside the obstacle.
	assert.False(t, PathClear(orb.Point{5, 5}, orb.Point{20, 20}, []orb.Polygon{obstacle}))
}

func TestExtent(t *testing.T) {
	e := Extent{MinX: 0, MinY: 0, MaxX: 10, MaxY: 5}
	assert.True(t, e.Valid())
	assert.Equal(t, 10.0, e.Width())
	assert.Equal(t, 5.0, e.Height())
	assert.True(t, e.Contains(orb.Point{10, 5}))
	assert.False(t, e.Contains(orb.Point{11, 5}))

	expanded := e.Expand(2)
	assert.Equal(t, Extent{MinX: -2, MinY: -2, MaxX: 12, MaxY: 7}, expanded)

	assert.False(t, Extent{MinX: 3, MinY: 3, MaxX: 3, MaxY: 8}.Valid())
}

func TestPlanarUnionPreservesOrder(t *testing.T) {
	e := NewPlanar(10)
	points := []orb.Point{{1, 1}, {2, 2}, {1, 1}, {3, 3}, {2, 2}}
	out := e.Union(points)
	assert.Equal(t, []orb.Point{{1, 1}, {2, 2}, {3, 3}}, out)
}

func TestPlanarTriangulateRadius(t *testing.T) {
	e := NewPlanar(1.5)
	points := []orb.Point{{0, 0}, {1, 0}, {2, 0}}

	tri, err := e.Triangulate(points)
	require.NoError(t, err)
	assert.Equal(t, points, tri.Vertices)
	assert.ElementsMatch(t, [][2]int{{0, 1}, {1, 2}}, tri.Edges)
}

func TestPlanarTriangulateRejectsDuplicates(t *testing.T) {
	e := NewPlanar(1.5)
	_, err := e.Triangulate([]orb.Point{{0, 0}, {0, 0}})
	require.ErrorIs(t, err, ErrDegenerateInput)
}

func TestPlanarVoronoiTwoSites(t *testing.T) {
	e := NewPlanar(10)
	sites := []orb.Point{{2, 2}, {8, 2}}
	envelope := Extent{MinX: 0, MinY: 0, MaxX: 10, MaxY: 4}

	cells, err := e.Voronoi(sites, 0.1, envelope)
	require.NoError(t, err)
	require.Len(t, cells, 2)

	// The bisector is x=5; each site's neighborhood belongs to its cell.
	assert.True(t, e.Within(orb.Point{1, 1}, cells[0].Polygon))
	assert.False(t, e.Within(orb.Point{9, 1}, cells[0].Polygon))
	assert.True(t, e.Within(orb.Point{9, 1}, cells[1].Polygon))
}

func TestPlanarVoronoiSnapsWithinTolerance(t *testing.T) {
	e := NewPlanar(10)
	sites := []orb.Point{{2, 2}, {2.05, 2}, {8, 2}}
	envelope := Extent{MinX: 0, MinY: 0, MaxX: 10, MaxY: 4}

	cells, err := e.Voronoi(sites, 0.1, envelope)
	require.NoError(t, err)
	// The second site snaps onto the first.
	require.Len(t, cells, 2)
	assert.Equal(t, 0, cells[0].Site)
	assert.Equal(t, 2, cells[1].Site)
}

func TestPlanarVoronoiNearCoincidentFails(t *testing.T) {
	e := NewPlanar(10)
	sites := []orb.Point{{2, 2}, {2 + 5e-10, 2}, {8, 2}}
	envelope := Extent{MinX: 0, MinY: 0, MaxX: 10, MaxY: 4}

	// Tolerance far below the separation: both survive snapping, then the
	// pair is too close to clip stably.
	_, err := e.Voronoi(sites, 1e-12, envelope)
	require.ErrorIs(t, err, ErrDegenerateInput)
}

func TestPlanarVoronoiSiteOnEnvelopeFails(t *testing.T) {
	e := NewPlanar(10)
	sites := []orb.Point{{0, 2}, {8, 2}}
	envelope := Extent{MinX: 0, MinY: 0, MaxX: 10, MaxY: 4}

	_, err := e.Voronoi(sites, 0.1, envelope)
	require.ErrorIs(t, err, ErrDegenerateInput)
}

func TestPlanarBuffer(t *testing.T) {
	e := NewPlanar(10)
	buffered := e.Buffer(square(4, 4, 6, 6), 1)
	require.Len(t, buffered, 1)

	// Every buffered vertex moved outward from the centroid (5,5).
	ext := PolygonExtent(buffered)
	assert.Less(t, ext.MinX, 4.0)
	assert.Greater(t, ext.MaxX, 6.0)
}
