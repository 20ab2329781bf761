// Package merge reconciles per-tile local graphs into the single global
// graph: exact-position vertex dedup, edge endpoint remapping, a
// snap-tolerance topology pass, and staged publication to the store.
package merge

import (
	"fmt"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"terragraph/internal/chunk"
	"terragraph/internal/graph"
	"terragraph/internal/store"
)

// DefaultSnapTolerance absorbs floating-point noise between independently
// computed tile boundaries during the topology pass. Distinct from the
// exact-equality dedup key.
const DefaultSnapTolerance = 1e-6

// Summary reports what the merge did.
type Summary struct {
	MergedTiles int
	FailedTiles int
	Vertices    int
	Edges       int
	// Defects counts edges whose endpoint never resolved to a vertex.
	// Always reported; a nonzero count means a tile processor violated its
	// write invariant.
	Defects int
	// Snapped counts edge endpoints rewritten by the topology pass.
	Snapped int
	// Duplicates counts dropped edge copies. Overlap regions regenerate the
	// same edges in every overlapping tile, so a nonzero count is expected.
	Duplicates int
}

// Merger runs single-threaded: the accumulating global vertex table is
// mutated by exactly one goroutine, which keeps the position-uniqueness
// invariant enforceable without locking.
type Merger struct {
	Session       store.Session
	SnapTolerance float64
	Log           *zap.Logger
}

// Merge unions every successful tile's local graph into one global graph
// and publishes it. Failed tiles contribute nothing. On a store failure the
// previously published graph stays intact and the error is fatal for the
// run; tile namespaces are dropped only after a successful publish.
func (m *Merger) Merge(results []chunk.Result) (*graph.Global, *Summary, error) {
	summary := &Summary{}

	byPos := make(map[orb.Point]int64)
	var vertices []graph.GlobalVertex
	var edges []graph.GlobalEdge
	nextEdgeID := int64(0)

	var mergedNamespaces []string
	for _, r := range results {
		if r.Status != chunk.StatusSuccess {
			summary.FailedTiles++
			continue
		}

		ns, err := m.Session.Namespace(r.Namespace)
		if err != nil {
			return nil, nil, fmt.Errorf("merge tile %d: %w", r.TileID, err)
		}
		local, err := ns.ReadVertices()
		if err != nil {
			return nil, nil, fmt.Errorf("merge tile %d vertices: %w", r.TileID, err)
		}
		localEdges, err := ns.ReadEdges()
		if err != nil {
			return nil, nil, fmt.Errorf("merge tile %d edges: %w", r.TileID, err)
		}

		// Exact-position dedup: overlap regions regenerate identical
		// sample points, so coordinate equality is the key.
		mapping := make(map[int64]int64, len(local))
		for _, lv := range local {
			gid, ok := byPos[lv.Pos]
			if !ok {
				gid = int64(len(vertices))
				byPos[lv.Pos] = gid
				vertices = append(vertices, graph.GlobalVertex{
					ID:        gid,
					Pos:       lv.Pos,
					Elevation: lv.Elevation,
					Cost:      lv.Cost,
				})
			}
			mapping[lv.ID] = gid
		}

		for _, le := range localEdges {
			src, okSrc := mapping[le.Source]
			dst, okDst := mapping[le.Target]
			if !okSrc || !okDst {
				summary.Defects++
				m.Log.Error("edge references unwritten vertex",
					zap.Int("tile", r.TileID),
					zap.Int64("edge", le.ID),
					zap.Int64("source", le.Source),
					zap.Int64("target", le.Target))
				continue
			}
			edges = append(edges, graph.GlobalEdge{
				ID:     nextEdgeID,
				Source: src,
				Target: dst,
				Length: le.Length,
				Cost:   le.Cost,
				Type:   le.Type,
			})
			nextEdgeID++
		}

		summary.MergedTiles++
		mergedNamespaces = append(mergedNamespaces, r.Namespace)
	}

	summary.Snapped = m.snapTopology(vertices, edges)
	edges, summary.Duplicates = dedupEdges(edges)
	summary.Vertices = len(vertices)
	summary.Edges = len(edges)

	global := &graph.Global{Vertices: vertices, Edges: edges}
	if err := m.Session.Publish(global); err != nil {
		return nil, nil, fmt.Errorf("publish global graph: %w", err)
	}

	// Locals only live until the merge lands.
	for _, nsID := range mergedNamespaces {
		if err := m.Session.DropNamespace(nsID); err != nil {
			m.Log.Warn("drop merged namespace", zap.String("namespace", nsID), zap.Error(err))
		}
	}

	if summary.Defects > 0 {
		m.Log.Error("merge finished with reconciliation defects",
			zap.Int("defects", summary.Defects))
	}
	return global, summary, nil
}

type edgeKey struct {
	lo, hi int64
	kind   graph.EdgeType
}

// dedupEdges collapses edge copies that connect the same vertex pair with
// the same type, keeping the first occurrence. Overlapping tiles regenerate
// identical edges in the overlap band; after endpoint remapping those copies
// become exact pair duplicates. Runs after the topology pass so endpoints
// snapped together also collapse. Surviving edges are renumbered.
func dedupEdges(edges []graph.GlobalEdge) ([]graph.GlobalEdge, int) {
	seen := make(map[edgeKey]bool, len(edges))
	out := edges[:0]
	dropped := 0
	for _, e := range edges {
		key := edgeKey{lo: e.Source, hi: e.Target, kind: e.Type}
		if key.lo > key.hi {
			key.lo, key.hi = key.hi, key.lo
		}
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		e.ID = int64(len(out))
		out = append(out, e)
	}
	return out, dropped
}

// snapTopology rewrites edge endpoints onto the canonical vertex among all
// vertices within the snap tolerance of the endpoint's position. The
// canonical vertex is the lowest-id member so the pass is deterministic.
// Returns the number of endpoints rewritten.
func (m *Merger) snapTopology(vertices []graph.GlobalVertex, edges []graph.GlobalEdge) int {
	tol := m.SnapTolerance
	if tol <= 0 || len(vertices) == 0 {
		return 0
	}

	index := store.NewVertexIndex(vertices)
	canonical := make(map[int64]int64, len(vertices))
	for _, v := range vertices {
		best := v.ID
		for _, near := range index.Within(v.Pos, tol) {
			if near.ID < best {
				best = near.ID
			}
		}
		canonical[v.ID] = best
	}

	snapped := 0
	for i := range edges {
		if c := canonical[edges[i].Source]; c != edges[i].Source {
			edges[i].Source = c
			snapped++
		}
		if c := canonical[edges[i].Target]; c != edges[i].Target {
			edges[i].Target = c
			snapped++
		}
	}
	return snapped
}
