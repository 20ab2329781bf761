// Package schedule runs tile processors concurrently with a bounded worker
// count and collects their results as they complete.
package schedule

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"terragraph/internal/chunk"
	"terragraph/internal/partition"
)

// ProcessorFactory builds the processor for one tile. The factory is called
// on the worker goroutine, so implementations should give each processor
// its own store session.
type ProcessorFactory func(tile partition.Tile) *chunk.Processor

// Scheduler fans tiles out over a fixed-size worker pool. Tiles have no
// ordering dependency on each other; results are collected in completion
// order. A worker panic is contained at the task boundary and recorded as
// that tile's failure, never propagated.
type Scheduler struct {
	Workers int
	Log     *zap.Logger
}

// Run processes every tile and returns one result per tile, sorted by tile
// id for stable reporting. It blocks until all tiles finish; this is the
// barrier the merge step depends on.
func (s *Scheduler) Run(ctx context.Context, tiles []partition.Tile, factory ProcessorFactory) []chunk.Result {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan chunk.Result, len(tiles))

	var g errgroup.Group
	g.SetLimit(workers)
	for _, tile := range tiles {
		tile := tile
		g.Go(func() error {
			results <- s.runOne(ctx, tile, factory)
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	out := make([]chunk.Result, 0, len(tiles))
	for r := range results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TileID < out[j].TileID })
	return out
}

// runOne executes a single tile, converting a panic into a failed result.
func (s *Scheduler) runOne(ctx context.Context, tile partition.Tile, factory ProcessorFactory) (result chunk.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.Log.Error("tile worker panicked",
				zap.Int("tile", tile.ID),
				zap.Any("panic", r))
			result = chunk.Result{
				TileID: tile.ID,
				Status: chunk.StatusFailed,
				Err:    fmt.Errorf("worker panic: %v", r),
			}
		}
	}()

	return factory(tile).Process(ctx, tile)
}
