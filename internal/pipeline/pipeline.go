// Package pipeline wires partitioning, parallel tile processing, and the
// merge into one run.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"terragraph/internal/chunk"
	"terragraph/internal/config"
	"terragraph/internal/geom"
	"terragraph/internal/graph"
	"terragraph/internal/merge"
	"terragraph/internal/partition"
	"terragraph/internal/schedule"
	"terragraph/internal/store"
	"terragraph/internal/voronoi"
)

// RunSummary is the user-visible outcome of one run: per-tile results plus
// the merge summary.
type RunSummary struct {
	Tiles   int
	Results []chunk.Result
	Merge   *merge.Summary
}

// Pipeline runs the full graph construction. Config and the obstacle set
// are immutable once Run starts; only the merge step mutates global state,
// and it runs on a single goroutine after all tiles complete.
type Pipeline struct {
	Cfg    *config.Config
	Engine geom.Engine
	Store  store.Store
	Log    *zap.Logger

	// Seed drives jitter randomness. Zero means time-seeded.
	Seed int64
}

// Run builds the global graph. Individual tile failures are tolerated up to
// the configured failed-tile ratio; exceeding it, or a store failure during
// merge, aborts the run without touching a previously published graph.
func (p *Pipeline) Run(ctx context.Context, obstacles []chunk.Obstacle) (*graph.Global, *RunSummary, error) {
	if !p.Cfg.Extent.Valid() {
		return nil, nil, fmt.Errorf("run extent %+v is degenerate", p.Cfg.Extent)
	}

	tiles := partition.Grid(p.Cfg.Extent, p.Cfg.Tiles.Size, p.Cfg.Tiles.OverlapFraction)
	features := chunk.NewFeatureSet(obstacles)

	p.Log.Info("run starting",
		zap.Int("tiles", len(tiles)),
		zap.Int("obstacles", features.Len()),
		zap.Float64("tile_size", p.Cfg.Tiles.Size))

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	chunkCfg := chunk.Config{
		SampleSpacing:   p.Cfg.Sampling.Spacing,
		BoundarySpacing: p.Cfg.Sampling.BoundarySpacing,
		BufferDistance:  p.Cfg.Sampling.BufferDistance,
		Voronoi: voronoi.Options{
			Tolerance:      p.Cfg.Voronoi.Tolerance,
			EnvelopeMargin: p.Cfg.Voronoi.EnvelopeMargin,
			JitterAmount:   p.Cfg.Voronoi.JitterAmount,
		},
	}

	sched := &schedule.Scheduler{Workers: p.Cfg.Workers, Log: p.Log}
	results := sched.Run(ctx, tiles, func(tile partition.Tile) *chunk.Processor {
		// Each worker gets its own session and its own rand source.
		rng := rand.New(rand.NewSource(seed + int64(tile.ID)))
		return &chunk.Processor{
			Engine:   p.Engine,
			Session:  p.Store.Session(),
			Features: features,
			Vor: &voronoi.ChunkedGenerator{
				Gen:               voronoi.NewGenerator(p.Engine, rng, p.Log),
				MaxPointsPerChunk: p.Cfg.Voronoi.MaxPointsPerChunk,
				ChunkOverlap:      p.Cfg.Voronoi.ChunkOverlap,
			},
			Cfg: chunkCfg,
			Log: p.Log,
		}
	})

	summary := &RunSummary{Tiles: len(tiles), Results: results}

	failed := 0
	for _, r := range results {
		if r.Status == chunk.StatusFailed {
			failed++
		}
	}
	if ratio := float64(failed) / float64(len(tiles)); ratio > p.Cfg.Run.MaxFailedRatio {
		p.dropNamespaces(results)
		return nil, summary, fmt.Errorf("failed tile ratio %.2f exceeds limit %.2f (%d/%d tiles)",
			ratio, p.Cfg.Run.MaxFailedRatio, failed, len(tiles))
	}

	merger := &merge.Merger{
		Session:       p.Store.Session(),
		SnapTolerance: p.Cfg.Merge.SnapTolerance,
		Log:           p.Log,
	}
	global, mergeSummary, err := merger.Merge(results)
	if err != nil {
		return nil, summary, err
	}
	summary.Merge = mergeSummary

	p.Log.Info("run complete",
		zap.Int("vertices", mergeSummary.Vertices),
		zap.Int("edges", mergeSummary.Edges),
		zap.Int("merged_tiles", mergeSummary.MergedTiles),
		zap.Int("failed_tiles", mergeSummary.FailedTiles),
		zap.Int("duplicate_edges", mergeSummary.Duplicates),
		zap.Int("defects", mergeSummary.Defects))
	return global, summary, nil
}

// dropNamespaces cleans up successful tiles' namespaces after an aborted run.
func (p *Pipeline) dropNamespaces(results []chunk.Result) {
	session := p.Store.Session()
	for _, r := range results {
		if r.Status == chunk.StatusSuccess {
			_ = session.DropNamespace(r.Namespace)
		}
	}
}
