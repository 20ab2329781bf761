package voronoi

import (
	"fmt"

	"github.com/paulmach/orb"

	"terragraph/internal/geom"
)

// Default chunking parameters.
const (
	DefaultMaxPointsPerChunk = 5000
	DefaultChunkOverlap      = 100
)

// ChunkedGenerator bounds the per-call cost of decomposition for large
// point sets. Point sets at or below MaxPointsPerChunk defer straight to
// the wrapped Generator; larger sets are split into contiguous runs that
// share ChunkOverlap points across each seam, generated per run, and
// unioned back into one cell collection.
type ChunkedGenerator struct {
	Gen               *Generator
	MaxPointsPerChunk int
	ChunkOverlap      int
}

// Generate produces a cell collection covering every distinct input point
// exactly once, or fails. A partial result is never returned: any core
// point left uncovered after the union makes the whole call fatal.
func (cg *ChunkedGenerator) Generate(points []orb.Point, opts Options) (*Diagram, error) {
	if len(points) == 0 {
		return nil, geom.ErrEmptyInput
	}
	if cg.MaxPointsPerChunk <= 0 || len(points) <= cg.MaxPointsPerChunk {
		return cg.Gen.Generate(points, opts)
	}

	distinct := cg.Gen.engine.Union(points)
	if len(distinct) <= cg.MaxPointsPerChunk {
		return cg.Gen.Generate(distinct, opts)
	}

	n := len(distinct)
	size := cg.MaxPointsPerChunk
	overlap := cg.ChunkOverlap
	numChunks := (n + size - 1) / size

	owned := make([]bool, n)
	result := &Diagram{Sites: distinct}

	for c := 0; c < numChunks; c++ {
		coreLo := c * size
		coreHi := coreLo + size
		if coreHi > n {
			coreHi = n
		}

		// Extend both sides so adjacent chunks share points at the seam.
		lo := coreLo - overlap
		if lo < 0 {
			lo = 0
		}
		hi := coreHi + overlap
		if hi > n {
			hi = n
		}

		diagram, err := cg.Gen.Generate(distinct[lo:hi], opts)
		if err != nil {
			return nil, fmt.Errorf("voronoi chunk %d/%d: %w", c+1, numChunks, err)
		}

		// Keep only cells owned by this chunk's core run; the overlap
		// points belong to their own chunk.
		for _, cell := range diagram.Cells {
			global := lo + cell.Site
			if global < coreLo || global >= coreHi {
				continue
			}
			if owned[global] {
				return nil, fmt.Errorf("voronoi chunk %d/%d: point %d owned twice", c+1, numChunks, global)
			}
			owned[global] = true
			result.Cells = append(result.Cells, geom.Cell{Site: global, Polygon: cell.Polygon})
		}
	}

	// A site without its own cell was snapped onto a neighbor by the
	// engine; it is still covered as long as it falls inside some cell.
	for i, has := range owned {
		if has {
			continue
		}
		if !cg.coveredByAny(distinct[i], result.Cells) {
			return nil, fmt.Errorf("voronoi chunked union left point %d uncovered", i)
		}
	}

	return result, nil
}

func (cg *ChunkedGenerator) coveredByAny(p orb.Point, cells []geom.Cell) bool {
	for _, cell := range cells {
		if cg.Gen.engine.Within(p, cell.Polygon) {
			return true
		}
	}
	return false
}
