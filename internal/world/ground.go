// Package world places agents and props on heightfield terrain.
package world

import (
	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
	"github.com/Faultbox/midgard-heightfield/pkg/math"
)

// Ground answers terrain height lookups in float32 world space.
// It is read-only and safe for concurrent use.
type Ground struct {
	query *heightfield.Query
}

// NewGround wraps a heightfield query.
func NewGround(query *heightfield.Query) *Ground {
	return &Ground{query: query}
}

// HeightAt returns the terrain height below p.
func (g *Ground) HeightAt(p math.Vec2) float32 {
	return float32(g.query.HeightAt(float64(p.X), float64(p.Z)))
}

// Extent returns half the world width: the footprint is [-Extent, Extent] on X and Z.
func (g *Ground) Extent() float32 {
	return float32(g.query.WorldWidth() / 2)
}

// SnapToGround moves pos vertically onto the terrain surface.
func (g *Ground) SnapToGround(pos math.Vec3) math.Vec3 {
	return pos.WithY(g.HeightAt(pos.XZ()))
}

// KeepAbove raises pos so it is at least clearance above the terrain.
// Positions already high enough are returned unchanged.
func (g *Ground) KeepAbove(pos math.Vec3, clearance float32) math.Vec3 {
	floor := g.HeightAt(pos.XZ()) + clearance
	if pos.Y < floor {
		return pos.WithY(floor)
	}
	return pos
}
