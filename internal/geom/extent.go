// Package geom holds the planar geometry types and predicates shared by the
// graph construction pipeline, plus the GeometryEngine boundary that the
// heavier decomposition operations are called through.
package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Extent is an axis-aligned bounding box in a planar projected coordinate
// system. A valid Extent has MinX < MaxX and MinY < MaxY.
type Extent struct {
	MinX float64 `yaml:"xmin"`
	MinY float64 `yaml:"ymin"`
	MaxX float64 `yaml:"xmax"`
	MaxY float64 `yaml:"ymax"`
}

// Valid reports whether the extent has positive width and height.
func (e Extent) Valid() bool {
	return e.MinX < e.MaxX && e.MinY < e.MaxY
}

// Width returns the horizontal span of the extent.
func (e Extent) Width() float64 { return e.MaxX - e.MinX }

// Height returns the vertical span of the extent.
func (e Extent) Height() float64 { return e.MaxY - e.MinY }

// Contains reports whether the point lies inside or on the extent boundary.
func (e Extent) Contains(p orb.Point) bool {
	return p.X() >= e.MinX && p.X() <= e.MaxX &&
		p.Y() >= e.MinY && p.Y() <= e.MaxY
}

// Intersects reports whether two extents share any area.
func (e Extent) Intersects(o Extent) bool {
	return e.MinX <= o.MaxX && o.MinX <= e.MaxX &&
		e.MinY <= o.MaxY && o.MinY <= e.MaxY
}

// Expand grows the extent by margin on every side.
func (e Extent) Expand(margin float64) Extent {
	return Extent{
		MinX: e.MinX - margin,
		MinY: e.MinY - margin,
		MaxX: e.MaxX + margin,
		MaxY: e.MaxY + margin,
	}
}

// Bound converts the extent to an orb.Bound.
func (e Extent) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{e.MinX, e.MinY},
		Max: orb.Point{e.MaxX, e.MaxY},
	}
}

// Ring returns the extent as a closed clockwise-independent rectangle ring.
func (e Extent) Ring() orb.Ring {
	return orb.Ring{
		{e.MinX, e.MinY},
		{e.MaxX, e.MinY},
		{e.MaxX, e.MaxY},
		{e.MinX, e.MaxY},
		{e.MinX, e.MinY},
	}
}

// ExtentOf computes the bounding extent of a point set. Returns a zero
// Extent for an empty set.
func ExtentOf(points []orb.Point) Extent {
	if len(points) == 0 {
		return Extent{}
	}
	e := Extent{
		MinX: points[0].X(), MinY: points[0].Y(),
		MaxX: points[0].X(), MaxY: points[0].Y(),
	}
	for _, p := range points[1:] {
		e.MinX = math.Min(e.MinX, p.X())
		e.MinY = math.Min(e.MinY, p.Y())
		e.MaxX = math.Max(e.MaxX, p.X())
		e.MaxY = math.Max(e.MaxY, p.Y())
	}
	return e
}

// PolygonExtent computes the bounding extent of a polygon's outer ring.
func PolygonExtent(poly orb.Polygon) Extent {
	if len(poly) == 0 {
		return Extent{}
	}
	return ExtentOf(poly[0])
}
