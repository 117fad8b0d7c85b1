// Package game wires configuration, assets and terrain into a runnable simulation.
package game

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-heightfield/internal/assets"
	"github.com/Faultbox/midgard-heightfield/internal/config"
	"github.com/Faultbox/midgard-heightfield/internal/logger"
	"github.com/Faultbox/midgard-heightfield/internal/noise"
	"github.com/Faultbox/midgard-heightfield/internal/store"
	"github.com/Faultbox/midgard-heightfield/internal/world"
	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
	"github.com/Faultbox/midgard-heightfield/pkg/math"
)

const (
	tickRate  = float32(1.0 / 30.0) // seconds per simulation step
	gravity   = float32(9.8)
	eyeHeight = float32(1.7)
)

// Game is a loaded terrain with its props and a walking probe.
type Game struct {
	cfg    *config.Config
	assets *assets.Manager
	store  *store.Store
	grid   *heightfield.Grid
	query  *heightfield.Query
	ground *world.Ground
	trees  []world.Placement
	log    *zap.Logger
}

// Report summarises a Run.
type Report struct {
	Ticks     int
	Distance  float32
	MinHeight float32 // lowest eye height reached
	MaxHeight float32 // highest eye height reached
	Trees     int
	Terrain   heightfield.Stats
}

// New loads the configured terrain. Without a heightmap, terrain is generated from noise.
func New(ctx context.Context, cfg *config.Config) (*Game, error) {
	g := &Game{
		cfg:    cfg,
		assets: assets.NewManager(cfg.Cache.MemoryEntries),
		log:    logger.Named("game"),
	}
	g.assets.SetWorkers(cfg.Terrain.Workers)

	for _, dir := range cfg.Terrain.SearchPaths {
		if err := g.assets.AddDir(dir); err != nil {
			g.log.Warn("skipping search path", zap.String("dir", dir), zap.Error(err))
		}
	}

	if cfg.Cache.Enabled {
		s, err := openStore(cfg.CachePath())
		if err != nil {
			g.log.Warn("grid cache unavailable, building without it", zap.Error(err))
		} else {
			g.store = s
			g.assets.SetStore(s)
		}
	}

	var err error
	g.grid, err = g.loadGrid(ctx)
	if err != nil {
		g.Close()
		return nil, err
	}

	g.query, err = heightfield.NewQuery(g.grid, cfg.Terrain.WorldWidth, cfg.Terrain.HeightScale)
	if err != nil {
		g.Close()
		return nil, err
	}
	g.ground = world.NewGround(g.query)
	g.trees = world.Scatter(g.ground, scatterConfig(cfg.Scatter))

	g.log.Info("terrain ready",
		zap.Int("resolution", g.grid.Resolution()),
		zap.Float64("world_width", cfg.Terrain.WorldWidth),
		zap.Float64("height_scale", cfg.Terrain.HeightScale),
		zap.Int("trees", len(g.trees)),
	)
	return g, nil
}

func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening grid cache %s: %w", path, err)
	}
	return s, nil
}

func (g *Game) loadGrid(ctx context.Context) (*heightfield.Grid, error) {
	res := g.cfg.Terrain.Resolution
	if g.cfg.Terrain.Heightmap != "" {
		return g.assets.Grid(ctx, g.cfg.Terrain.Heightmap, res)
	}

	g.log.Info("no heightmap configured, generating noise terrain", zap.Uint64("seed", g.cfg.Scatter.Seed))
	img, err := noise.New(int64(g.cfg.Scatter.Seed), 0).Image(res)
	if err != nil {
		return nil, err
	}
	return heightfield.Build(img, res, heightfield.WithWorkers(g.cfg.Terrain.Workers))
}

func scatterConfig(c config.ScatterConfig) world.ScatterConfig {
	return world.ScatterConfig{
		Spacing:   c.Spacing,
		Jitter:    c.Jitter,
		Extent:    c.Extent,
		MaxHeight: c.MaxHeight,
		Sink:      c.Sink,
		MinScale:  c.MinScale,
		MaxScale:  c.MaxScale,
		Seed:      c.Seed,
	}
}

// Run walks a probe across the terrain from west to east in the given number of ticks.
// It stops early when ctx is cancelled.
func (g *Game) Run(ctx context.Context, ticks int) (Report, error) {
	extent := g.ground.Extent()
	agent := world.NewAgent(g.ground, math.Vec2{X: -extent, Z: 0}, eyeHeight)

	speed := 2 * extent / (float32(max(ticks, 1)) * tickRate)
	agent.Velocity = math.Vec3{X: speed}

	report := Report{
		Trees:     len(g.trees),
		Terrain:   g.grid.Stats(),
		MinHeight: agent.Position.Y,
		MaxHeight: agent.Position.Y,
	}
	start := agent.Position

	g.log.Info("starting probe walk", zap.Int("ticks", ticks), zap.Float32("speed", speed))

	for report.Ticks < ticks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		agent.Velocity.Y -= gravity * tickRate
		agent.Step(g.ground, tickRate)
		report.Ticks++

		report.MinHeight = min(report.MinHeight, agent.Position.Y)
		report.MaxHeight = max(report.MaxHeight, agent.Position.Y)

		if report.Ticks%30 == 0 {
			g.log.Debug("probe",
				zap.Int("tick", report.Ticks),
				zap.Float32("x", agent.Position.X),
				zap.Float32("y", agent.Position.Y),
				zap.Bool("grounded", agent.Grounded),
			)
		}
	}

	report.Distance = agent.Position.XZ().Distance(start.XZ())
	g.log.Info("probe walk finished",
		zap.Float32("distance", report.Distance),
		zap.Float32("min_height", report.MinHeight),
		zap.Float32("max_height", report.MaxHeight),
	)
	return report, nil
}

// HeightAt returns the terrain height at world (x, z).
func (g *Game) HeightAt(x, z float64) float64 {
	return g.query.HeightAt(x, z)
}

// Route finds a walkable path between two world positions.
// Steps steeper than maxSlope (rise over run) are refused; nil means no route.
func (g *Game) Route(from, to math.Vec2, maxSlope float32) []math.Vec3 {
	return world.NewPathFinder(g.query, maxSlope).FindPath(from, to)
}

// Trees returns the scattered tree placements.
func (g *Game) Trees() []world.Placement {
	return g.trees
}

// Close releases the asset manager and cache database.
func (g *Game) Close() {
	g.log.Debug("closing game")

	g.assets.Close()
	if g.store != nil {
		if err := g.store.Close(); err != nil {
			g.log.Warn("closing grid cache", zap.Error(err))
		}
		g.store = nil
	}
}
