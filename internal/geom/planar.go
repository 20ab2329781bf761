package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Segment is a line segment between two points.
type Segment struct {
	A, B orb.Point
}

// SegmentsIntersect checks if two line segments properly intersect.
// Segments that merely share an endpoint are not considered intersecting,
// so edges meeting at a common vertex pass the check.
func SegmentsIntersect(s1, s2 Segment) bool {
	p1, p2 := s1.A, s1.B
	p3, p4 := s2.A, s2.B

	if (p1 == p3 && p2 == p4) || (p1 == p4 && p2 == p3) {
		return false
	}
	if p1 == p3 || p1 == p4 || p2 == p3 || p2 == p4 {
		return false
	}

	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear overlap cases.
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

func direction(p1, p2, p3 orb.Point) float64 {
	return (p3.X()-p1.X())*(p2.Y()-p1.Y()) - (p2.X()-p1.X())*(p3.Y()-p1.Y())
}

func onSegment(p, r, q orb.Point) bool {
	return q.X() <= math.Max(p.X(), r.X()) && q.X() >= math.Min(p.X(), r.X()) &&
		q.Y() <= math.Max(p.Y(), r.Y()) && q.Y() >= math.Min(p.Y(), r.Y())
}

// SegmentIntersectsRing checks a segment against every edge of a closed ring.
func SegmentIntersectsRing(seg Segment, ring orb.Ring) bool {
	n := len(ring)
	if n < 2 {
		return false
	}
	for i := 0; i < n-1; i++ {
		edge := Segment{A: ring[i], B: ring[i+1]}
		if SegmentsIntersect(seg, edge) {
			return true
		}
	}
	return false
}

// SegmentIntersectsPolygon checks a segment against the outer ring of a polygon.
func SegmentIntersectsPolygon(seg Segment, poly orb.Polygon) bool {
	if len(poly) == 0 {
		return false
	}
	return SegmentIntersectsRing(seg, poly[0])
}

// PathClear checks if a straight segment between two points avoids every
// obstacle polygon: it must not cross a boundary and must not run inside an
// obstacle. The midpoint check catches segments fully contained in one.
func PathClear(a, b orb.Point, obstacles []orb.Polygon) bool {
	seg := Segment{A: a, B: b}
	for _, obs := range obstacles {
		if SegmentIntersectsPolygon(seg, obs) {
			return false
		}
		if planar.PolygonContains(obs, a) || planar.PolygonContains(obs, b) {
			return false
		}
		mid := orb.Point{(a.X() + b.X()) / 2, (a.Y() + b.Y()) / 2}
		if planar.PolygonContains(obs, mid) {
			return false
		}
	}
	return true
}
