package chunk

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"terragraph/internal/geom"
	"terragraph/internal/graph"
	"terragraph/internal/partition"
	"terragraph/internal/store"
	"terragraph/internal/voronoi"
)

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func newTestProcessor(t *testing.T, engine geom.Engine, obstacles []Obstacle) (*Processor, store.Session) {
	t.Helper()
	session := store.NewMemStore().Session()
	return &Processor{
		Engine:   engine,
		Session:  session,
		Features: NewFeatureSet(obstacles),
		Vor: &voronoi.ChunkedGenerator{
			Gen:               voronoi.NewGenerator(engine, rand.New(rand.NewSource(1)), zap.NewNop()),
			MaxPointsPerChunk: voronoi.DefaultMaxPointsPerChunk,
			ChunkOverlap:      voronoi.DefaultChunkOverlap,
		},
		Cfg: Config{
			SampleSpacing:   100,
			BoundarySpacing: 50,
			BufferDistance:  5,
			Voronoi: voronoi.Options{
				Tolerance:      voronoi.DefaultTolerance,
				EnvelopeMargin: voronoi.DefaultEnvelopeMargin,
				JitterAmount:   voronoi.DefaultJitterAmount,
			},
		},
		Log: zap.NewNop(),
	}, session
}

func TestSampleTerrainGridAlignment(t *testing.T) {
	engine := geom.NewPlanar(150)
	ext := geom.Extent{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	samples := sampleTerrain(ext, 5, engine, nil)
	assert.Len(t, samples, 9)

	// The grid sits on absolute multiples of the spacing, so a shifted
	// extent yields the same points in the shared region.
	shifted := sampleTerrain(geom.Extent{MinX: 4, MinY: 0, MaxX: 14, MaxY: 10}, 5, engine, nil)
	for _, p := range shifted {
		if p.X() <= 10 {
			assert.Contains(t, samples, p)
		}
	}
}

func TestSampleTerrainAvoidsObstacles(t *testing.T) {
	engine := geom.NewPlanar(150)
	ext := geom.Extent{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	obstacle := square(4, 4, 6, 6)

	samples := sampleTerrain(ext, 5, engine, []orb.Polygon{obstacle})
	assert.Len(t, samples, 8)
	assert.NotContains(t, samples, orb.Point{5, 5})
}

func TestResampleRingSpacing(t *testing.T) {
	ring := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}

	nodes := resampleRing(ring, 10)
	assert.Equal(t, []orb.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, nodes)

	nodes = resampleRing(ring, 5)
	assert.Len(t, nodes, 8)
	assert.Equal(t, orb.Point{5, 0}, nodes[1])
}

func TestDissolveRemovesContained(t *testing.T) {
	outer := Obstacle{Polygon: square(0, 0, 100, 100), Crossability: 2}
	inner := Obstacle{Polygon: square(40, 40, 60, 60), Crossability: 1}
	separate := Obstacle{Polygon: square(200, 200, 300, 300), Crossability: 1}

	out := Dissolve([]Obstacle{inner, outer, separate})
	require.Len(t, out, 2)
	assert.Equal(t, outer.Polygon, out[0].Polygon)
	assert.Equal(t, separate.Polygon, out[1].Polygon)
}

func TestProcessBuildsLocalGraph(t *testing.T) {
	engine := geom.NewPlanar(150)
	obstacle := Obstacle{Polygon: square(400, 400, 600, 600), Crossability: 1.5}
	p, session := newTestProcessor(t, engine, []Obstacle{obstacle})

	tile := partition.Tile{ID: 7, Extent: geom.Extent{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}}
	result := p.Process(context.Background(), tile)

	require.Equal(t, StatusSuccess, result.Status)
	require.NoError(t, result.Err)
	assert.Equal(t, "tile-7", result.Namespace)

	ns, err := session.Namespace("tile-7")
	require.NoError(t, err)

	vertices, err := ns.ReadVertices()
	require.NoError(t, err)
	require.NotEmpty(t, vertices)
	assert.Equal(t, result.Vertices, len(vertices))

	edges, err := ns.ReadEdges()
	require.NoError(t, err)
	require.NotEmpty(t, edges)
	assert.Equal(t, result.Edges, len(edges))

	// Every edge endpoint references a written vertex.
	ids := make(map[int64]bool, len(vertices))
	for _, v := range vertices {
		ids[v.ID] = true
	}
	types := make(map[graph.EdgeType]int)
	for _, e := range edges {
		assert.True(t, ids[e.Source], "edge %d source %d unwritten", e.ID, e.Source)
		assert.True(t, ids[e.Target], "edge %d target %d unwritten", e.ID, e.Target)
		types[e.Type]++
	}
	assert.Greater(t, types[graph.EdgeTerrain], 0)
	assert.Greater(t, types[graph.EdgeWater], 0)
	assert.Greater(t, types[graph.EdgeBoundaryConnection], 0)

	// No sample landed inside the buffered obstacle.
	polys, err := ns.ReadPolygons()
	require.NoError(t, err)
	require.Len(t, polys, 1)
}

// failingEngine makes triangulation fail to exercise the tile-failure path.
type failingEngine struct {
	*geom.Planar
}

func (e *failingEngine) Triangulate([]orb.Point) (geom.Triangulation, error) {
	return geom.Triangulation{}, errors.New("triangulation unavailable")
}

func TestProcessFailureLeavesNoNamespace(t *testing.T) {
	engine := &failingEngine{geom.NewPlanar(150)}
	p, session := newTestProcessor(t, engine, nil)

	tile := partition.Tile{ID: 3, Extent: geom.Extent{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}}
	result := p.Process(context.Background(), tile)

	require.Equal(t, StatusFailed, result.Status)
	require.Error(t, result.Err)

	_, err := session.Namespace("tile-3")
	require.ErrorIs(t, err, store.ErrNamespaceNotFound)
}

func TestProcessCancelledContext(t *testing.T) {
	engine := geom.NewPlanar(150)
	p, _ := newTestProcessor(t, engine, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := p.Process(ctx, partition.Tile{ID: 1, Extent: geom.Extent{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}})
	assert.Equal(t, StatusFailed, result.Status)
	require.ErrorIs(t, result.Err, context.Canceled)
}
