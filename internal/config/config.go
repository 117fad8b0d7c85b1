// Package config handles heightfield tool configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Cache   CacheConfig   `yaml:"cache"`
	Scatter ScatterConfig `yaml:"scatter"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig describes the heightmap and how it maps to world space.
type TerrainConfig struct {
	Heightmap   string   `yaml:"heightmap"`    // Image file name, resolved against SearchPaths; empty generates noise terrain
	SearchPaths []string `yaml:"search_paths"` // Directories searched for heightmaps
	Resolution  int      `yaml:"resolution"`   // Grid is Resolution x Resolution
	WorldWidth  float64  `yaml:"world_width"`  // World units covered by the grid
	HeightScale float64  `yaml:"height_scale"` // World units per normalized sample
	Workers     int      `yaml:"workers"`      // Smoothing goroutines, 0 = GOMAXPROCS
}

// CacheConfig holds built-grid cache settings.
type CacheConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"` // SQLite file; empty uses ConfigDir
	MemoryEntries int    `yaml:"memory_entries"`
}

// ScatterConfig holds prop placement settings.
type ScatterConfig struct {
	Spacing   float32 `yaml:"spacing"`
	Jitter    float32 `yaml:"jitter"`
	Extent    float32 `yaml:"extent"`
	MaxHeight float32 `yaml:"max_height"`
	Sink      float32 `yaml:"sink"`
	MinScale  float32 `yaml:"min_scale"`
	MaxScale  float32 `yaml:"max_scale"`
	Seed      uint64  `yaml:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Heightmap:   "",
			SearchPaths: []string{"."},
			Resolution:  128,
			WorldWidth:  100,
			HeightScale: 20,
			Workers:     0,
		},
		Cache: CacheConfig{
			Enabled:       true,
			Path:          "",
			MemoryEntries: 16,
		},
		Scatter: ScatterConfig{
			Spacing:   8,
			Jitter:    3,
			Extent:    50,
			MaxHeight: 5,
			Sink:      0.01,
			MinScale:  1.5,
			MaxScale:  2.5,
			Seed:      1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that would make a build or query impossible.
func (c *Config) Validate() error {
	switch {
	case c.Terrain.Resolution <= 0:
		return fmt.Errorf("%w: terrain.resolution must be positive, got %d", ErrInvalidConfig, c.Terrain.Resolution)
	case c.Terrain.WorldWidth <= 0:
		return fmt.Errorf("%w: terrain.world_width must be positive, got %v", ErrInvalidConfig, c.Terrain.WorldWidth)
	case c.Terrain.Workers < 0:
		return fmt.Errorf("%w: terrain.workers must not be negative, got %d", ErrInvalidConfig, c.Terrain.Workers)
	case c.Cache.MemoryEntries < 0:
		return fmt.Errorf("%w: cache.memory_entries must not be negative, got %d", ErrInvalidConfig, c.Cache.MemoryEntries)
	case c.Scatter.MinScale > c.Scatter.MaxScale:
		return fmt.Errorf("%w: scatter.min_scale %v exceeds max_scale %v", ErrInvalidConfig, c.Scatter.MinScale, c.Scatter.MaxScale)
	}
	return nil
}
