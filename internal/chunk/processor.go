package chunk

import (
	"context"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"terragraph/internal/geom"
	"terragraph/internal/graph"
	"terragraph/internal/partition"
	"terragraph/internal/store"
	"terragraph/internal/voronoi"
)

// Status is the outcome of one tile.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result reports one tile's processing outcome. A failed tile contributes
// nothing to the merge; Err carries the step that failed.
type Result struct {
	TileID    int
	Status    Status
	Namespace string
	Vertices  int
	Edges     int
	Err       error
}

// Config holds the per-tile construction parameters.
type Config struct {
	// SampleSpacing is the terrain sample grid pitch. The grid is aligned
	// to absolute multiples of the spacing, so overlapping tiles place
	// byte-identical sample points in their shared region.
	SampleSpacing float64
	// BoundarySpacing is the spacing of boundary nodes along obstacle rings.
	BoundarySpacing float64
	// BufferDistance grows obstacles before sampling so samples keep clear
	// of the true boundary.
	BufferDistance float64
	// Voronoi parameterizes the terrain-to-boundary connection step.
	Voronoi voronoi.Options
}

// Processor builds one tile's local graph. Everything it reads lives inside
// the tile's expanded extent; it never touches another tile's namespace,
// which is what makes tiles independently schedulable.
type Processor struct {
	Engine   geom.Engine
	Session  store.Session
	Features *FeatureSet
	Vor      *voronoi.ChunkedGenerator
	Cfg      Config
	Log      *zap.Logger
}

// Process runs the full per-tile sequence. Any step failure fails only this
// tile; the namespace is dropped so no partial data is visible to the merge.
func (p *Processor) Process(ctx context.Context, tile partition.Tile) Result {
	nsID := fmt.Sprintf("tile-%d", tile.ID)
	log := p.Log.With(zap.Int("tile", tile.ID))

	vertices, edges, err := p.process(ctx, tile, nsID)
	if err != nil {
		log.Error("tile failed", zap.Error(err))
		_ = p.Session.DropNamespace(nsID)
		return Result{TileID: tile.ID, Status: StatusFailed, Namespace: nsID, Err: err}
	}

	log.Info("tile complete", zap.Int("vertices", vertices), zap.Int("edges", edges))
	return Result{
		TileID:    tile.ID,
		Status:    StatusSuccess,
		Namespace: nsID,
		Vertices:  vertices,
		Edges:     edges,
	}
}

func (p *Processor) process(ctx context.Context, tile partition.Tile, nsID string) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	ns, err := p.Session.CreateNamespace(nsID)
	if err != nil {
		return 0, 0, fmt.Errorf("create namespace: %w", err)
	}

	// Extract and prepare obstacles inside the expanded tile extent.
	raw := p.Features.Intersecting(tile.Extent)
	buffered := make([]Obstacle, len(raw))
	for i, obs := range raw {
		buffered[i] = Obstacle{
			Polygon:      p.Engine.Buffer(obs.Polygon, p.Cfg.BufferDistance),
			Crossability: obs.Crossability,
		}
	}
	obstacles := Dissolve(buffered)

	polys := make([]orb.Polygon, len(obstacles))
	for i, obs := range obstacles {
		polys[i] = obs.Polygon
	}
	if err := ns.WritePolygons(polys); err != nil {
		return 0, 0, fmt.Errorf("write obstacle polygons: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	// Sample walkable terrain and connect neighboring samples.
	samples := sampleTerrain(tile.Extent, p.Cfg.SampleSpacing, p.Engine, polys)

	var localVertices []graph.LocalVertex
	var localEdges []graph.LocalEdge
	nextEdgeID := int64(0)

	for _, s := range samples {
		localVertices = append(localVertices, graph.LocalVertex{
			ID:   int64(len(localVertices)),
			Pos:  s,
			Cost: 1.0,
		})
	}

	if len(samples) > 1 {
		tri, err := p.Engine.Triangulate(samples)
		if err != nil {
			return 0, 0, fmt.Errorf("triangulate %d samples: %w", len(samples), err)
		}
		for _, e := range tri.Edges {
			a, b := samples[e[0]], samples[e[1]]
			if !geom.PathClear(a, b, polys) {
				continue
			}
			length := p.Engine.Distance(a, b)
			localEdges = append(localEdges, graph.LocalEdge{
				ID:       nextEdgeID,
				Source:   int64(e[0]),
				Target:   int64(e[1]),
				Length:   length,
				Cost:     length,
				Type:     graph.EdgeTerrain,
				Geometry: orb.LineString{a, b},
			})
			nextEdgeID++
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	// Place boundary nodes along obstacle rings and chain them with water
	// edges. Node order follows the ring.
	var boundary []boundaryNode

	for oi, obs := range obstacles {
		if len(obs.Polygon) == 0 {
			continue
		}
		ringNodes := resampleRing(obs.Polygon[0], p.Cfg.BoundarySpacing)
		first := len(boundary)
		for _, pos := range ringNodes {
			id := int64(len(localVertices))
			localVertices = append(localVertices, graph.LocalVertex{ID: id, Pos: pos, Cost: 1.0})
			boundary = append(boundary, boundaryNode{vertexID: id, pos: pos, obstacle: oi})
		}
		ringLen := len(boundary) - first
		for k := 0; k < ringLen; k++ {
			a := boundary[first+k]
			b := boundary[first+(k+1)%ringLen]
			if a.vertexID == b.vertexID {
				continue
			}
			length := p.Engine.Distance(a.pos, b.pos)
			localEdges = append(localEdges, graph.LocalEdge{
				ID:       nextEdgeID,
				Source:   a.vertexID,
				Target:   b.vertexID,
				Length:   length,
				Cost:     length * obs.Crossability,
				Type:     graph.EdgeWater,
				Geometry: orb.LineString{a.pos, b.pos},
			})
			nextEdgeID++
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	// Connect each terrain sample to the boundary node whose Voronoi cell
	// contains it.
	if len(boundary) > 0 && len(samples) > 0 {
		sites := make([]orb.Point, len(boundary))
		nodeByPos := make(map[orb.Point]int, len(boundary))
		for i, bn := range boundary {
			sites[i] = bn.pos
			if _, ok := nodeByPos[bn.pos]; !ok {
				nodeByPos[bn.pos] = i
			}
		}

		diagram, err := p.Vor.Generate(sites, p.Cfg.Voronoi)
		if err != nil {
			return 0, 0, fmt.Errorf("boundary voronoi over %d sites: %w", len(sites), err)
		}

		for si, sample := range samples {
			owner := p.ownerNode(sample, diagram, nodeByPos, boundary)
			if owner < 0 {
				continue
			}
			bn := boundary[owner]

			// The connection must not cut through a different obstacle.
			others := othersExcept(polys, bn.obstacle)
			if !geom.PathClear(sample, bn.pos, others) {
				continue
			}

			length := p.Engine.Distance(sample, bn.pos)
			localEdges = append(localEdges, graph.LocalEdge{
				ID:       nextEdgeID,
				Source:   int64(si),
				Target:   bn.vertexID,
				Length:   length,
				Cost:     length,
				Type:     graph.EdgeBoundaryConnection,
				Geometry: orb.LineString{sample, bn.pos},
			})
			nextEdgeID++
		}
	}

	if err := ns.WriteVertices(localVertices); err != nil {
		return 0, 0, fmt.Errorf("write vertices: %w", err)
	}
	if err := ns.WriteEdges(localEdges); err != nil {
		return 0, 0, fmt.Errorf("write edges: %w", err)
	}
	return len(localVertices), len(localEdges), nil
}

// boundaryNode ties a boundary vertex back to the obstacle it sits on.
type boundaryNode struct {
	vertexID int64
	pos      orb.Point
	obstacle int
}

// ownerNode resolves which boundary node owns the sample: the cell that
// contains it, falling back to the nearest site for samples that slip
// between chunked-cell seams.
func (p *Processor) ownerNode(sample orb.Point, diagram *voronoi.Diagram, nodeByPos map[orb.Point]int, boundary []boundaryNode) int {
	for _, cell := range diagram.Cells {
		if p.Engine.Within(sample, cell.Polygon) {
			if idx, ok := nodeByPos[diagram.Sites[cell.Site]]; ok {
				return idx
			}
		}
	}

	best, bestDist := -1, math.MaxFloat64
	for i, bn := range boundary {
		if d := p.Engine.Distance(sample, bn.pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func othersExcept(polys []orb.Polygon, skip int) []orb.Polygon {
	if len(polys) <= 1 {
		return nil
	}
	out := make([]orb.Polygon, 0, len(polys)-1)
	for i, poly := range polys {
		if i != skip {
			out = append(out, poly)
		}
	}
	return out
}

// sampleTerrain lays a spacing-pitched grid over the extent, skipping
// points inside an obstacle. Grid coordinates are absolute multiples of the
// spacing so overlapping tiles regenerate identical points.
func sampleTerrain(ext geom.Extent, spacing float64, engine geom.Engine, obstacles []orb.Polygon) []orb.Point {
	if spacing <= 0 {
		return nil
	}

	var samples []orb.Point
	iMin := int(math.Ceil(ext.MinX / spacing))
	iMax := int(math.Floor(ext.MaxX / spacing))
	jMin := int(math.Ceil(ext.MinY / spacing))
	jMax := int(math.Floor(ext.MaxY / spacing))

	for j := jMin; j <= jMax; j++ {
		for i := iMin; i <= iMax; i++ {
			p := orb.Point{float64(i) * spacing, float64(j) * spacing}
			blocked := false
			for _, obs := range obstacles {
				if engine.Within(p, obs) {
					blocked = true
					break
				}
			}
			if !blocked {
				samples = append(samples, p)
			}
		}
	}
	return samples
}

// resampleRing places ordered nodes along a closed ring, one every spacing
// length units of perimeter, starting at the ring's first vertex. The
// closing vertex is not duplicated.
func resampleRing(ring orb.Ring, spacing float64) []orb.Point {
	n := len(ring)
	if n < 2 {
		return nil
	}
	if spacing <= 0 {
		out := make([]orb.Point, 0, n-1)
		for i := 0; i < n-1; i++ {
			out = append(out, ring[i])
		}
		return out
	}

	var nodes []orb.Point
	carried := 0.0
	nodes = append(nodes, ring[0])

	for i := 0; i < n-1; i++ {
		a, b := ring[i], ring[i+1]
		segLen := math.Hypot(b.X()-a.X(), b.Y()-a.Y())
		if segLen == 0 {
			continue
		}
		pos := spacing - carried
		for pos <= segLen {
			t := pos / segLen
			nodes = append(nodes, orb.Point{
				a.X() + t*(b.X()-a.X()),
				a.Y() + t*(b.Y()-a.Y()),
			})
			pos += spacing
		}
		carried = math.Mod(carried+segLen, spacing)
	}

	// Drop a final node that landed on the ring start.
	if len(nodes) > 1 && nodes[len(nodes)-1] == nodes[0] {
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}
