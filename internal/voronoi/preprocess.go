// Package voronoi wraps the geometry engine's Voronoi decomposition with
// the preprocessing and bounded escalation that make it survive degenerate
// input: coincident points, collinear points, and points that would land on
// the clipping envelope.
package voronoi

import (
	"math/rand"

	"github.com/paulmach/orb"

	"terragraph/internal/geom"
)

// Default generation parameters.
const (
	DefaultTolerance      = 0.1
	DefaultEnvelopeMargin = 100.0
	DefaultJitterAmount   = 0.001
)

// Options control one generation call.
type Options struct {
	// Tolerance is the site-snapping distance passed to the engine.
	Tolerance float64
	// EnvelopeMargin expands the working envelope past the point set's
	// bounding box so boundary cells clip to finite polygons.
	EnvelopeMargin float64
	// Jitter perturbs every site before decomposition.
	Jitter bool
	// JitterAmount bounds the perturbation: each axis moves by an
	// independent offset in [-JitterAmount/2, +JitterAmount/2].
	JitterAmount float64
}

// Preprocessor cleans a point set ahead of decomposition.
type Preprocessor struct {
	Engine geom.Engine
	Rand   *rand.Rand
}

// Preprocess deduplicates the points, optionally jitters them, and computes
// the expanded working envelope of the (possibly jittered) set. It returns
// the distinct original points, the prepared sites the decomposition should
// run over (index-aligned with the distinct points), and the envelope.
func (p *Preprocessor) Preprocess(points []orb.Point, opts Options) ([]orb.Point, []orb.Point, geom.Extent, error) {
	if len(points) == 0 {
		return nil, nil, geom.Extent{}, geom.ErrEmptyInput
	}

	distinct := p.Engine.Union(points)

	prepared := distinct
	if opts.Jitter && opts.JitterAmount > 0 {
		prepared = make([]orb.Point, len(distinct))
		for i, pt := range distinct {
			prepared[i] = orb.Point{
				pt.X() + (p.Rand.Float64()-0.5)*opts.JitterAmount,
				pt.Y() + (p.Rand.Float64()-0.5)*opts.JitterAmount,
			}
		}
	}

	envelope := p.Engine.Expand(p.Engine.Envelope(prepared), opts.EnvelopeMargin)
	return distinct, prepared, envelope, nil
}
