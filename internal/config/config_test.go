package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Terrain.Resolution != 128 {
		t.Errorf("expected resolution 128, got %d", cfg.Terrain.Resolution)
	}
	if cfg.Terrain.WorldWidth != 100 {
		t.Errorf("expected world width 100, got %v", cfg.Terrain.WorldWidth)
	}
	if cfg.Terrain.HeightScale != 20 {
		t.Errorf("expected height scale 20, got %v", cfg.Terrain.HeightScale)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache to be enabled by default")
	}
	if cfg.Scatter.Spacing != 8 || cfg.Scatter.MaxHeight != 5 {
		t.Errorf("unexpected scatter defaults: %+v", cfg.Scatter)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  heightmap: "island.png"
  search_paths: ["assets", "maps"]
  resolution: 256
  world_width: 512
  height_scale: 64
  workers: 4

cache:
  enabled: false
  path: "/var/cache/hf.db"
  memory_entries: 4

scatter:
  spacing: 4
  seed: 99

logging:
  level: "debug"
  log_file: "heightfield.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	want := Default()
	want.Terrain = TerrainConfig{
		Heightmap:   "island.png",
		SearchPaths: []string{"assets", "maps"},
		Resolution:  256,
		WorldWidth:  512,
		HeightScale: 64,
		Workers:     4,
	}
	want.Cache = CacheConfig{Enabled: false, Path: "/var/cache/hf.db", MemoryEntries: 4}
	want.Scatter.Spacing = 4
	want.Scatter.Seed = 99
	want.Logging = LoggingConfig{Level: "debug", LogFile: "heightfield.log"}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.CachePath() != "/var/cache/hf.db" {
		t.Errorf("expected explicit cache path, got %s", cfg.CachePath())
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
terrain:
  resolution: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero resolution", func(c *Config) { c.Terrain.Resolution = 0 }},
		{"negative world width", func(c *Config) { c.Terrain.WorldWidth = -1 }},
		{"negative workers", func(c *Config) { c.Terrain.Workers = -2 }},
		{"negative memory entries", func(c *Config) { c.Cache.MemoryEntries = -1 }},
		{"inverted scale range", func(c *Config) { c.Scatter.MinScale = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
	if got := Default().CachePath(); got != filepath.Join(dir, "heightfield.db") {
		t.Errorf("expected default cache path under ConfigDir, got %s", got)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile("heightfield.yaml", []byte("terrain:\n  resolution: 64\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find heightfield.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "heightmap flag",
			setup: func() { *flagHeightmap = "valley.tga" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.Heightmap != "valley.tga" {
					t.Errorf("expected heightmap valley.tga, got %s", cfg.Terrain.Heightmap)
				}
			},
			teardown: func() { *flagHeightmap = "" },
		},
		{
			name: "terrain geometry flags",
			setup: func() {
				*flagResolution = 512
				*flagWorldWidth = 2048
				*flagHeightScale = 300
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.Resolution != 512 {
					t.Errorf("expected resolution 512, got %d", cfg.Terrain.Resolution)
				}
				if cfg.Terrain.WorldWidth != 2048 {
					t.Errorf("expected world width 2048, got %v", cfg.Terrain.WorldWidth)
				}
				if cfg.Terrain.HeightScale != 300 {
					t.Errorf("expected height scale 300, got %v", cfg.Terrain.HeightScale)
				}
			},
			teardown: func() {
				*flagResolution = 0
				*flagWorldWidth = 0
				*flagHeightScale = 0
			},
		},
		{
			name:  "no-cache flag",
			setup: func() { *flagNoCache = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Cache.Enabled {
					t.Error("expected cache to be disabled")
				}
			},
			teardown: func() { *flagNoCache = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  resolution: 64
  world_width: 250
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagResolution = 96
	defer func() {
		*flagConfig = ""
		*flagResolution = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Flag wins over file
	if cfg.Terrain.Resolution != 96 {
		t.Errorf("expected resolution 96 from flag, got %d", cfg.Terrain.Resolution)
	}
	// File wins over default
	if cfg.Terrain.WorldWidth != 250 {
		t.Errorf("expected world width 250 from file, got %v", cfg.Terrain.WorldWidth)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  resolution: -4\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Terrain.Heightmap = "saved.png"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("saved config mismatch (-want +got):\n%s", diff)
	}
}
