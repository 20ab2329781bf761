package store

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terragraph/internal/graph"
)

func TestNamespaceIsolation(t *testing.T) {
	s := NewMemStore()
	session := s.Session()

	a, err := session.CreateNamespace("tile-0")
	require.NoError(t, err)
	b, err := session.CreateNamespace("tile-1")
	require.NoError(t, err)

	require.NoError(t, a.WriteVertices([]graph.LocalVertex{{ID: 0, Pos: orb.Point{1, 1}}}))

	got, err := a.ReadVertices()
	require.NoError(t, err)
	assert.Len(t, got, 1)

	other, err := b.ReadVertices()
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCreateNamespaceTwice(t *testing.T) {
	s := NewMemStore()
	session := s.Session()

	_, err := session.CreateNamespace("tile-0")
	require.NoError(t, err)
	_, err = session.CreateNamespace("tile-0")
	require.ErrorIs(t, err, ErrNamespaceExists)
}

func TestDropNamespace(t *testing.T) {
	s := NewMemStore()
	session := s.Session()

	_, err := session.CreateNamespace("tile-0")
	require.NoError(t, err)
	require.NoError(t, session.DropNamespace("tile-0"))

	_, err = session.Namespace("tile-0")
	require.ErrorIs(t, err, ErrNamespaceNotFound)
	require.ErrorIs(t, session.DropNamespace("tile-0"), ErrNamespaceNotFound)
}

func TestGeometricEqualityJoin(t *testing.T) {
	s := NewMemStore()
	session := s.Session()

	a, err := session.CreateNamespace("tile-0")
	require.NoError(t, err)
	b, err := session.CreateNamespace("tile-1")
	require.NoError(t, err)

	require.NoError(t, a.WriteVertices([]graph.LocalVertex{
		{ID: 1, Pos: orb.Point{0, 0}},
		{ID: 2, Pos: orb.Point{5000, 5000}},
	}))
	require.NoError(t, b.WriteVertices([]graph.LocalVertex{
		{ID: 7, Pos: orb.Point{5000, 5000}},
		{ID: 9, Pos: orb.Point{2, 2}},
	}))

	pairs, err := session.GeometricEqualityJoin("tile-0", "tile-1")
	require.NoError(t, err)
	assert.Equal(t, [][2]int64{{2, 7}}, pairs)
}

func TestPublishReplacesGraph(t *testing.T) {
	s := NewMemStore()
	session := s.Session()

	assert.Nil(t, session.Graph())

	first := &graph.Global{Vertices: []graph.GlobalVertex{{ID: 0, Pos: orb.Point{1, 1}}}}
	require.NoError(t, session.Publish(first))
	assert.Same(t, first, session.Graph())
	require.NotNil(t, session.VertexIndex())

	second := &graph.Global{
		Vertices: []graph.GlobalVertex{
			{ID: 0, Pos: orb.Point{1, 1}},
			{ID: 1, Pos: orb.Point{2, 2}},
		},
		Edges: []graph.GlobalEdge{{ID: 0, Source: 0, Target: 1, Type: graph.EdgeTerrain}},
	}
	require.NoError(t, session.Publish(second))
	assert.Same(t, second, session.Graph())
	require.NotNil(t, session.EdgeIndex())
	assert.Len(t, session.EdgeIndex().QueryRegion(0, 0, 3, 3), 1)
}

func TestVertexIndexWithin(t *testing.T) {
	vs := []graph.GlobalVertex{
		{ID: 0, Pos: orb.Point{0, 0}},
		{ID: 1, Pos: orb.Point{1, 0}},
		{ID: 2, Pos: orb.Point{50, 50}},
	}
	ix := NewVertexIndex(vs)

	near := ix.Within(orb.Point{0.1, 0}, 2)
	require.Len(t, near, 2)
	// Nearest first.
	assert.Equal(t, int64(0), near[0].ID)
	assert.Equal(t, int64(1), near[1].ID)

	assert.Empty(t, ix.Within(orb.Point{100, 100}, 1))
}

func TestVertexIndexQueryRegion(t *testing.T) {
	vs := []graph.GlobalVertex{
		{ID: 0, Pos: orb.Point{0, 0}},
		{ID: 1, Pos: orb.Point{10, 10}},
		{ID: 2, Pos: orb.Point{100, 100}},
	}
	ix := NewVertexIndex(vs)

	got := ix.QueryRegion(-1, -1, 11, 11)
	assert.Len(t, got, 2)
}
