package world

import (
	"math/rand/v2"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-heightfield/pkg/math"
)

// ScatterConfig controls prop placement over the terrain.
type ScatterConfig struct {
	Spacing   float32 // distance between candidate points
	Jitter    float32 // max random offset on each axis
	Extent    float32 // candidates cover [-Extent, Extent)
	MaxHeight float32 // candidates at or above this height are dropped
	Sink      float32 // how far props are pushed into the ground
	MinScale  float32
	MaxScale  float32
	Seed      uint64
}

// DefaultScatterConfig returns the settings used for the tree layer.
func DefaultScatterConfig() ScatterConfig {
	return ScatterConfig{
		Spacing:   8,
		Jitter:    3,
		Extent:    50,
		MaxHeight: 5,
		Sink:      0.01,
		MinScale:  1.5,
		MaxScale:  2.5,
		Seed:      1,
	}
}

// Placement is one prop instance.
type Placement struct {
	Position math.Vec3
	Yaw      float32 // radians in [0, 2*pi)
	Scale    float32
}

// Scatter places props on a jittered grid, keeping only low-lying spots.
// The same config always yields the same placements.
func Scatter(ground *Ground, cfg ScatterConfig) []Placement {
	if cfg.Spacing <= 0 {
		return nil
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5bd1e995))
	var out []Placement

	for x := -cfg.Extent; x < cfg.Extent; x += cfg.Spacing {
		for z := -cfg.Extent; z < cfg.Extent; z += cfg.Spacing {
			p := math.Vec2{
				X: x + 1 + rng.Float32()*2*cfg.Jitter - cfg.Jitter,
				Z: z + 1 + rng.Float32()*2*cfg.Jitter - cfg.Jitter,
			}

			h := ground.HeightAt(p)
			if h >= cfg.MaxHeight {
				continue
			}

			out = append(out, Placement{
				Position: p.WithHeight(h - cfg.Sink),
				Yaw:      rng.Float32() * 2 * math32.Pi,
				Scale:    cfg.MinScale + rng.Float32()*(cfg.MaxScale-cfg.MinScale),
			})
		}
	}

	return out
}
