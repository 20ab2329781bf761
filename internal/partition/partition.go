// Package partition divides a global extent into a grid of overlapping
// tiles so each tile can be processed independently while features that
// straddle a tile boundary stay fully inside at least one tile.
package partition

import (
	"math"

	"terragraph/internal/geom"
)

// DefaultOverlapFraction is the overlap margin as a fraction of tile size.
const DefaultOverlapFraction = 0.1

// Tile is one bounded sub-extent of the global area. Extent already
// includes the overlap margin on interior-facing edges.
type Tile struct {
	ID      int
	Extent  geom.Extent
	Overlap float64
}

// Grid partitions the global extent into tiles of roughly tileSize length
// units per side. Tile counts adapt to the extent: nx = max(1,
// round(width/tileSize)) and the exact tile width is width/nx, so tiles
// cover the extent with no gap and no spill. Each tile extent is then
// expanded by tileSize*overlapFraction on every edge that does not lie on
// the global boundary. A degenerate extent is the caller's error.
func Grid(global geom.Extent, tileSize, overlapFraction float64) []Tile {
	nx := tileCount(global.Width(), tileSize)
	ny := tileCount(global.Height(), tileSize)

	tileWidth := global.Width() / float64(nx)
	tileHeight := global.Height() / float64(ny)
	margin := tileSize * overlapFraction

	tiles := make([]Tile, 0, nx*ny)
	for row := 0; row < ny; row++ {
		for col := 0; col < nx; col++ {
			ext := geom.Extent{
				MinX: global.MinX + float64(col)*tileWidth,
				MinY: global.MinY + float64(row)*tileHeight,
				MaxX: global.MinX + float64(col+1)*tileWidth,
				MaxY: global.MinY + float64(row+1)*tileHeight,
			}

			// Expand interior-facing edges only.
			if col > 0 {
				ext.MinX -= margin
			}
			if col < nx-1 {
				ext.MaxX += margin
			}
			if row > 0 {
				ext.MinY -= margin
			}
			if row < ny-1 {
				ext.MaxY += margin
			}

			tiles = append(tiles, Tile{
				ID:      row*nx + col,
				Extent:  ext,
				Overlap: margin,
			})
		}
	}
	return tiles
}

func tileCount(span, tileSize float64) int {
	if tileSize <= 0 {
		return 1
	}
	n := int(math.Round(span / tileSize))
	if n < 1 {
		return 1
	}
	return n
}
