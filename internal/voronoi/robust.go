package voronoi

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"terragraph/internal/geom"
)

// ToleranceCeiling stops tolerance escalation. Once the working tolerance
// exceeds it, a failing decomposition is fatal for the call.
const ToleranceCeiling = 1.0

// ErrToleranceExceeded marks a decomposition that still failed after the
// escalation chain ran out at the tolerance ceiling. It wraps the engine's
// last error.
var ErrToleranceExceeded = errors.New("voronoi: decomposition failed at tolerance ceiling")

// Diagram is a generated cell collection. Cells index into Sites, the
// deduplicated input points in first-occurrence order. When the engine
// snapped near-coincident sites together, Cells may be shorter than Sites;
// the snapped-away sites lie inside a surviving site's cell.
type Diagram struct {
	Sites []orb.Point
	Cells []geom.Cell
}

// Generator runs the engine's Voronoi decomposition behind preprocessing
// and a bounded escalation chain. The chain is an explicit three-state
// sequence, not a recursive retry: the initial attempt, at most one jitter
// retry, then tolerance escalation by factors of ten up to ToleranceCeiling.
type Generator struct {
	engine geom.Engine
	pre    *Preprocessor
	log    *zap.Logger
}

// NewGenerator returns a Generator over the given engine. rng drives the
// jitter retry; pass a seeded source for reproducible runs.
func NewGenerator(engine geom.Engine, rng *rand.Rand, log *zap.Logger) *Generator {
	return &Generator{
		engine: engine,
		pre:    &Preprocessor{Engine: engine, Rand: rng},
		log:    log,
	}
}

type escalationState int

const (
	stateInitial escalationState = iota
	stateJittered
	stateEscalated
)

// Generate produces a cell collection for the point set, escalating through
// jitter and tolerance on failure. The chain terminates: at most one jitter
// step and a logarithmic number of tolerance steps, then the last engine
// error is returned as fatal.
func (g *Generator) Generate(points []orb.Point, opts Options) (*Diagram, error) {
	if len(points) == 0 {
		return nil, geom.ErrEmptyInput
	}

	state := stateInitial
	if opts.Jitter {
		state = stateJittered
	}

	for {
		distinct, prepared, envelope, err := g.pre.Preprocess(points, opts)
		if err != nil {
			return nil, fmt.Errorf("voronoi preprocess: %w", err)
		}

		cells, err := g.engine.Voronoi(prepared, opts.Tolerance, envelope)
		if err == nil {
			return &Diagram{Sites: distinct, Cells: cells}, nil
		}

		switch {
		case state == stateInitial:
			g.log.Warn("voronoi decomposition failed, retrying with jitter",
				zap.Int("sites", len(distinct)),
				zap.Float64("tolerance", opts.Tolerance),
				zap.Error(err))
			opts.Jitter = true
			if opts.JitterAmount <= 0 {
				opts.JitterAmount = DefaultJitterAmount
			}
			state = stateJittered

		case opts.Tolerance < ToleranceCeiling:
			next := opts.Tolerance * 10
			if opts.Tolerance <= 0 {
				next = DefaultTolerance
			}
			g.log.Warn("voronoi decomposition failed, escalating tolerance",
				zap.Int("sites", len(distinct)),
				zap.Float64("tolerance", opts.Tolerance),
				zap.Float64("next_tolerance", next),
				zap.Error(err))
			opts.Tolerance = next
			state = stateEscalated

		default:
			return nil, fmt.Errorf("%w (tolerance %g): %w", ErrToleranceExceeded, opts.Tolerance, err)
		}
	}
}
