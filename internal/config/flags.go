package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagHeightmap   = flag.String("heightmap", "", "Heightmap image to load")
	flagResolution  = flag.Int("resolution", 0, "Grid resolution")
	flagWorldWidth  = flag.Float64("world-width", 0, "World units covered by the grid")
	flagHeightScale = flag.Float64("height-scale", 0, "World units per normalized sample")
	flagNoCache     = flag.Bool("no-cache", false, "Disable the persistent grid cache")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagHeightmap != "" {
		cfg.Terrain.Heightmap = *flagHeightmap
	}
	if *flagResolution > 0 {
		cfg.Terrain.Resolution = *flagResolution
	}
	if *flagWorldWidth > 0 {
		cfg.Terrain.WorldWidth = *flagWorldWidth
	}
	if *flagHeightScale > 0 {
		cfg.Terrain.HeightScale = *flagHeightScale
	}
	if *flagNoCache {
		cfg.Cache.Enabled = false
	}
}
