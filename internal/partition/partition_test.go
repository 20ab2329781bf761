package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terragraph/internal/geom"
)

func TestGridFourTilesWithOverlap(t *testing.T) {
	global := geom.Extent{MinX: 0, MinY: 0, MaxX: 10000, MaxY: 10000}
	tiles := Grid(global, 5000, 0.1)
	require.Len(t, tiles, 4)

	// Interior-facing edges are expanded by 5000*0.1=500; global-boundary
	// edges are not.
	assert.Equal(t, geom.Extent{MinX: 0, MinY: 0, MaxX: 5500, MaxY: 5500}, tiles[0].Extent)
	assert.Equal(t, geom.Extent{MinX: 4500, MinY: 0, MaxX: 10000, MaxY: 5500}, tiles[1].Extent)
	assert.Equal(t, geom.Extent{MinX: 0, MinY: 4500, MaxX: 5500, MaxY: 10000}, tiles[2].Extent)
	assert.Equal(t, geom.Extent{MinX: 4500, MinY: 4500, MaxX: 10000, MaxY: 10000}, tiles[3].Extent)

	for i, tile := range tiles {
		assert.Equal(t, i, tile.ID)
		assert.Equal(t, 500.0, tile.Overlap)
	}
}

func TestGridExactCoverageWithoutOverlap(t *testing.T) {
	global := geom.Extent{MinX: -2000, MinY: 1000, MaxX: 7000, MaxY: 7000}
	tiles := Grid(global, 3000, 0)

	// 9000x6000 at tile size 3000 is a 3x2 grid.
	require.Len(t, tiles, 6)

	var area float64
	for _, tile := range tiles {
		area += tile.Extent.Width() * tile.Extent.Height()
		assert.GreaterOrEqual(t, tile.Extent.MinX, global.MinX)
		assert.GreaterOrEqual(t, tile.Extent.MinY, global.MinY)
		assert.LessOrEqual(t, tile.Extent.MaxX, global.MaxX)
		assert.LessOrEqual(t, tile.Extent.MaxY, global.MaxY)
	}
	assert.InDelta(t, global.Width()*global.Height(), area, 1e-6)

	// Adjacent tiles meet exactly: tile 0's right edge is tile 1's left edge.
	assert.Equal(t, tiles[0].Extent.MaxX, tiles[1].Extent.MinX)
	assert.Equal(t, tiles[0].Extent.MaxY, tiles[3].Extent.MinY)
}

func TestGridCountAdaptsToExtent(t *testing.T) {
	global := geom.Extent{MinX: 0, MinY: 0, MaxX: 10000, MaxY: 10000}

	// round(10000/3000)=3 per axis, exact tile span 10000/3.
	tiles := Grid(global, 3000, 0)
	require.Len(t, tiles, 9)
	assert.InDelta(t, 10000.0/3.0, tiles[0].Extent.Width(), 1e-9)
}

func TestGridSingleTile(t *testing.T) {
	global := geom.Extent{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 800}
	tiles := Grid(global, 50000, 0.1)
	require.Len(t, tiles, 1)

	// No interior edges, so no expansion anywhere.
	assert.Equal(t, global, tiles[0].Extent)
}
