// Package config handles run configuration loading and defaults. Values
// are plain typed parameters passed into each component; no component reads
// configuration from anywhere else.
package config

import (
	"terragraph/internal/geom"
	"terragraph/internal/merge"
	"terragraph/internal/partition"
	"terragraph/internal/voronoi"
)

// Config holds all run settings.
type Config struct {
	Extent   geom.Extent    `yaml:"extent"`
	Tiles    TilesConfig    `yaml:"tiles"`
	Workers  int            `yaml:"workers"`
	Sampling SamplingConfig `yaml:"sampling"`
	Voronoi  VoronoiConfig  `yaml:"voronoi"`
	Merge    MergeConfig    `yaml:"merge"`
	Run      RunConfig      `yaml:"run"`
	Features FeaturesConfig `yaml:"features"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TilesConfig controls spatial partitioning.
type TilesConfig struct {
	Size            float64 `yaml:"size"`
	OverlapFraction float64 `yaml:"overlap_fraction"`
}

// SamplingConfig controls terrain sampling and obstacle preparation.
type SamplingConfig struct {
	Spacing           float64 `yaml:"spacing"`
	BoundarySpacing   float64 `yaml:"boundary_spacing"`
	BufferDistance    float64 `yaml:"buffer_distance"`
	ConnectionRadius  float64 `yaml:"connection_radius"`
	SimplifyTolerance float64 `yaml:"simplify_tolerance"`
}

// VoronoiConfig controls the boundary-connection decomposition.
type VoronoiConfig struct {
	Tolerance         float64 `yaml:"tolerance"`
	EnvelopeMargin    float64 `yaml:"envelope_margin"`
	JitterAmount      float64 `yaml:"jitter_amount"`
	MaxPointsPerChunk int     `yaml:"max_points_per_chunk"`
	ChunkOverlap      int     `yaml:"chunk_overlap"`
}

// MergeConfig controls the merge step.
type MergeConfig struct {
	SnapTolerance float64 `yaml:"snap_tolerance"`
}

// RunConfig controls whole-run policy.
type RunConfig struct {
	// MaxFailedRatio aborts the run before merge when the failed-tile
	// fraction exceeds it. 1.0 tolerates any number of failed tiles.
	MaxFailedRatio float64 `yaml:"max_failed_ratio"`
}

// FeaturesConfig points at the obstacle input data.
type FeaturesConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values. The extent has no
// default; it must come from the config file.
func Default() *Config {
	return &Config{
		Tiles: TilesConfig{
			Size:            5000,
			OverlapFraction: partition.DefaultOverlapFraction,
		},
		Workers: 0, // 0 means available hardware concurrency
		Sampling: SamplingConfig{
			Spacing:           250,
			BoundarySpacing:   100,
			BufferDistance:    25,
			ConnectionRadius:  400,
			SimplifyTolerance: 0,
		},
		Voronoi: VoronoiConfig{
			Tolerance:         voronoi.DefaultTolerance,
			EnvelopeMargin:    voronoi.DefaultEnvelopeMargin,
			JitterAmount:      voronoi.DefaultJitterAmount,
			MaxPointsPerChunk: voronoi.DefaultMaxPointsPerChunk,
			ChunkOverlap:      voronoi.DefaultChunkOverlap,
		},
		Merge: MergeConfig{
			SnapTolerance: merge.DefaultSnapTolerance,
		},
		Run: RunConfig{
			MaxFailedRatio: 1.0,
		},
		Features: FeaturesConfig{
			Dir: "obstacles",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
