package geom

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
)

// Planar is the default in-process Engine. Triangulation is radius-bounded
// neighbor connection, Voronoi cells are computed by clipping the working
// envelope against the perpendicular bisector of every other site. Both are
// exact for the queries the pipeline makes of them; neither attempts to be
// a general computational-geometry kernel.
type Planar struct {
	// ConnectionRadius bounds which point pairs Triangulate connects.
	ConnectionRadius float64
}

// NewPlanar returns a Planar engine with the given connection radius.
func NewPlanar(connectionRadius float64) *Planar {
	return &Planar{ConnectionRadius: connectionRadius}
}

// Triangulate connects every pair of points within ConnectionRadius of each
// other. Neighbor lookup goes through a quadtree so the cost stays near
// O(n log n) for evenly spread samples.
func (e *Planar) Triangulate(points []orb.Point) (Triangulation, error) {
	if len(points) == 0 {
		return Triangulation{}, ErrEmptyInput
	}

	tri := Triangulation{Vertices: points}
	if len(points) == 1 {
		return tri, nil
	}

	index := make(map[orb.Point]int, len(points))
	for i, p := range points {
		if _, dup := index[p]; dup {
			return Triangulation{}, fmt.Errorf("triangulate point %d: %w", i, ErrDegenerateInput)
		}
		index[p] = i
	}

	qt := quadtree.New(ExtentOf(points).Expand(1).Bound())
	for i := range points {
		if err := qt.Add(points[i]); err != nil {
			return Triangulation{}, fmt.Errorf("triangulate index add: %w", err)
		}
	}

	r := e.ConnectionRadius
	var buf []orb.Pointer
	for i, p := range points {
		search := Extent{
			MinX: p.X() - r, MinY: p.Y() - r,
			MaxX: p.X() + r, MaxY: p.Y() + r,
		}
		buf = qt.InBound(buf[:0], search.Bound())
		for _, ptr := range buf {
			q := ptr.Point()
			j := index[q]
			if j <= i {
				continue
			}
			if planar.Distance(p, q) <= r {
				tri.Edges = append(tri.Edges, [2]int{i, j})
			}
		}
	}
	return tri, nil
}

// snapEpsilon is the hard numeric floor below which two separate sites make
// bisector clipping unstable regardless of the caller's tolerance.
const snapEpsilon = 1e-9

// Voronoi computes clipped cells over the sites. Sites within tolerance of
// an earlier site are snapped onto it before decomposition, so raising the
// tolerance recovers inputs with near-coincident sites; the returned cells
// belong to the surviving representative sites. Each cell starts as the
// envelope rectangle and is cut down by the half-plane nearer to its site
// than to each other site. Exactly coincident representatives, sites on or
// outside the envelope, and cells clipped to nothing are degenerate.
func (e *Planar) Voronoi(sites []orb.Point, tolerance float64, envelope Extent) ([]Cell, error) {
	if len(sites) == 0 {
		return nil, ErrEmptyInput
	}
	if !envelope.Valid() {
		return nil, fmt.Errorf("voronoi envelope %+v: %w", envelope, ErrDegenerateInput)
	}

	for i, s := range sites {
		if !strictlyInside(s, envelope) {
			return nil, fmt.Errorf("voronoi site %d on or outside envelope: %w", i, ErrDegenerateInput)
		}
	}

	// Snap sites within tolerance onto the first earlier site they reach.
	var reps []int
	for i, s := range sites {
		snapped := false
		for _, r := range reps {
			if planar.Distance(s, sites[r]) <= tolerance {
				snapped = true
				break
			}
		}
		if !snapped {
			reps = append(reps, i)
		}
	}

	for a := 0; a < len(reps); a++ {
		for b := a + 1; b < len(reps); b++ {
			if planar.Distance(sites[reps[a]], sites[reps[b]]) < snapEpsilon {
				return nil, fmt.Errorf("voronoi sites %d and %d coincident: %w",
					reps[a], reps[b], ErrDegenerateInput)
			}
		}
	}

	cells := make([]Cell, 0, len(reps))
	for _, i := range reps {
		si := sites[i]
		ring := envelopeRing(envelope)
		for _, j := range reps {
			if j == i {
				continue
			}
			ring = clipHalfPlane(ring, si, sites[j])
			if len(ring) < 3 {
				return nil, fmt.Errorf("voronoi cell %d clipped away: %w", i, ErrDegenerateInput)
			}
		}
		cells = append(cells, Cell{Site: i, Polygon: orb.Polygon{closeRing(ring)}})
	}
	return cells, nil
}

func strictlyInside(p orb.Point, e Extent) bool {
	return p.X() > e.MinX && p.X() < e.MaxX && p.Y() > e.MinY && p.Y() < e.MaxY
}

func envelopeRing(e Extent) []orb.Point {
	return []orb.Point{
		{e.MinX, e.MinY},
		{e.MaxX, e.MinY},
		{e.MaxX, e.MaxY},
		{e.MinX, e.MaxY},
	}
}

// clipHalfPlane keeps the part of the (open) ring nearer to a than to b.
// Standard Sutherland-Hodgman against the perpendicular bisector of a-b.
func clipHalfPlane(ring []orb.Point, a, b orb.Point) []orb.Point {
	mid := orb.Point{(a.X() + b.X()) / 2, (a.Y() + b.Y()) / 2}
	nx, ny := b.X()-a.X(), b.Y()-a.Y()

	side := func(p orb.Point) float64 {
		return (p.X()-mid.X())*nx + (p.Y()-mid.Y())*ny
	}

	out := make([]orb.Point, 0, len(ring)+1)
	for i := range ring {
		cur := ring[i]
		next := ring[(i+1)%len(ring)]
		sc, sn := side(cur), side(next)

		if sc <= 0 {
			out = append(out, cur)
		}
		if (sc < 0 && sn > 0) || (sc > 0 && sn < 0) {
			t := sc / (sc - sn)
			out = append(out, orb.Point{
				cur.X() + t*(next.X()-cur.X()),
				cur.Y() + t*(next.Y()-cur.Y()),
			})
		}
	}
	return out
}

func closeRing(points []orb.Point) orb.Ring {
	ring := make(orb.Ring, 0, len(points)+1)
	ring = append(ring, points...)
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// Union deduplicates by exact coordinates, keeping first-occurrence order.
func (e *Planar) Union(points []orb.Point) []orb.Point {
	seen := make(map[orb.Point]struct{}, len(points))
	out := make([]orb.Point, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Envelope returns the bounding extent of the point set.
func (e *Planar) Envelope(points []orb.Point) Extent {
	return ExtentOf(points)
}

// Expand grows an extent by margin on every side.
func (e *Planar) Expand(ext Extent, margin float64) Extent {
	return ext.Expand(margin)
}

// Buffer offsets every outer-ring vertex away from the ring centroid by
// dist. An approximation of a true buffer, adequate for keeping terrain
// samples off obstacle boundaries.
func (e *Planar) Buffer(poly orb.Polygon, dist float64) orb.Polygon {
	if len(poly) == 0 || len(poly[0]) == 0 {
		return poly
	}
	outer := poly[0]
	var cx, cy float64
	for _, v := range outer {
		cx += v.X()
		cy += v.Y()
	}
	cx /= float64(len(outer))
	cy /= float64(len(outer))

	buffered := make(orb.Ring, len(outer))
	for i, v := range outer {
		dx, dy := v.X()-cx, v.Y()-cy
		norm := math.Hypot(dx, dy)
		if norm == 0 {
			buffered[i] = v
			continue
		}
		buffered[i] = orb.Point{v.X() + dist*dx/norm, v.Y() + dist*dy/norm}
	}
	return orb.Polygon{buffered}
}

// Distance is the planar Euclidean distance.
func (e *Planar) Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// Within reports whether the point lies inside the polygon.
func (e *Planar) Within(p orb.Point, poly orb.Polygon) bool {
	return planar.PolygonContains(poly, p)
}
