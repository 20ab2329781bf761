// Package chunk builds one tile's local graph: obstacle extraction,
// buffering and dissolve, terrain sampling, triangulation, and the
// Voronoi-driven connection of terrain points to obstacle boundary nodes,
// all written into the tile's isolated store namespace.
package chunk

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"terragraph/internal/geom"
)

// Obstacle is a water body (or other untraversable area) polygon.
// Crossability is a traversal-cost multiplier applied to edges along its
// boundary; 1.0 means no penalty.
type Obstacle struct {
	Polygon      orb.Polygon
	Crossability float64
}

type obstacleEntry struct {
	obstacle Obstacle
	rect     rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *obstacleEntry) Bounds() rtreego.Rect { return e.rect }

// FeatureSet indexes the global obstacle set for per-tile extraction. It is
// immutable after construction and safe to share across workers.
type FeatureSet struct {
	tree *rtreego.Rtree
	size int
}

// NewFeatureSet builds a spatial index over the obstacles.
func NewFeatureSet(obstacles []Obstacle) *FeatureSet {
	tree := rtreego.NewTree(2, 25, 50)
	count := 0
	for _, obs := range obstacles {
		ext := geom.PolygonExtent(obs.Polygon)
		rect, err := rtreego.NewRect(
			rtreego.Point{ext.MinX, ext.MinY},
			[]float64{ext.Width() + 1e-9, ext.Height() + 1e-9},
		)
		if err != nil {
			continue
		}
		tree.Insert(&obstacleEntry{obstacle: obs, rect: rect})
		count++
	}
	return &FeatureSet{tree: tree, size: count}
}

// Len returns the number of indexed obstacles.
func (fs *FeatureSet) Len() int { return fs.size }

// Intersecting returns the obstacles whose bounding boxes intersect the
// extent.
func (fs *FeatureSet) Intersecting(ext geom.Extent) []Obstacle {
	rect, err := rtreego.NewRect(
		rtreego.Point{ext.MinX, ext.MinY},
		[]float64{ext.Width(), ext.Height()},
	)
	if err != nil {
		return nil
	}
	results := fs.tree.SearchIntersect(rect)
	out := make([]Obstacle, 0, len(results))
	for _, item := range results {
		out = append(out, item.(*obstacleEntry).obstacle)
	}
	return out
}

// LoadObstacles reads every .geojson file in dir into obstacle polygons.
// Polygon and MultiPolygon geometries are accepted; rings are simplified
// with Douglas-Peucker when simplifyTolerance > 0. A feature's
// "crossability" property, when present, becomes the obstacle's multiplier.
func LoadObstacles(dir string, simplifyTolerance float64) ([]Obstacle, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, fmt.Errorf("glob obstacle dir: %w", err)
	}

	var obstacles []Obstacle
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}

		for _, feature := range fc.Features {
			crossability := 1.0
			if c, ok := feature.Properties["crossability"].(float64); ok && c > 0 {
				crossability = c
			}

			for _, poly := range featurePolygons(feature) {
				if simplifyTolerance > 0 {
					poly = simplify.DouglasPeucker(simplifyTolerance).Polygon(poly)
				}
				if len(poly) == 0 || len(poly[0]) < 4 {
					continue
				}
				obstacles = append(obstacles, Obstacle{Polygon: poly, Crossability: crossability})
			}
		}
	}
	return obstacles, nil
}

func featurePolygons(feature *geojson.Feature) []orb.Polygon {
	switch g := feature.Geometry.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		return []orb.Polygon(g)
	default:
		return nil
	}
}
