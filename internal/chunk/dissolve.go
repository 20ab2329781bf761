package chunk

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"terragraph/internal/geom"
)

// Dissolve removes obstacles fully contained in another obstacle, so the
// sampling and boundary steps see each covered area exactly once. The
// larger obstacle keeps its own crossability.
func Dissolve(obstacles []Obstacle) []Obstacle {
	if len(obstacles) <= 1 {
		return obstacles
	}

	contained := make([]bool, len(obstacles))
	for i := range obstacles {
		if contained[i] {
			continue
		}
		for j := range obstacles {
			if i == j || contained[j] {
				continue
			}
			if polygonContainedIn(obstacles[i].Polygon, obstacles[j].Polygon) {
				contained[i] = true
				break
			}
			if polygonContainedIn(obstacles[j].Polygon, obstacles[i].Polygon) {
				contained[j] = true
			}
		}
	}

	out := make([]Obstacle, 0, len(obstacles))
	for i, obs := range obstacles {
		if !contained[i] {
			out = append(out, obs)
		}
	}
	return out
}

// polygonContainedIn checks if every outer-ring vertex of a lies inside b,
// with a bounding-box rejection first.
func polygonContainedIn(a, b orb.Polygon) bool {
	if len(a) == 0 || len(a[0]) == 0 || len(b) == 0 {
		return false
	}

	ea, eb := geom.PolygonExtent(a), geom.PolygonExtent(b)
	if ea.MinX < eb.MinX || ea.MaxX > eb.MaxX || ea.MinY < eb.MinY || ea.MaxY > eb.MaxY {
		return false
	}

	for _, v := range a[0] {
		if !planar.PolygonContains(b, v) {
			return false
		}
	}
	return true
}
