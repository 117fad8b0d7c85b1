package world

import (
	"github.com/Faultbox/midgard-heightfield/pkg/math"
)

// Agent is a moving body that must never sink below the terrain,
// such as the camera rig walking over the map.
type Agent struct {
	Position  math.Vec3
	Velocity  math.Vec3
	Clearance float32 // eye height above ground

	// Grounded is true when the last step had to push the agent up.
	Grounded bool
}

// NewAgent creates an agent standing on the ground at p.
func NewAgent(ground *Ground, p math.Vec2, clearance float32) *Agent {
	a := &Agent{
		Position:  p.WithHeight(0),
		Clearance: clearance,
	}
	a.Position = ground.SnapToGround(a.Position).Add(math.Vec3{Y: clearance})
	a.Grounded = true
	return a
}

// Step integrates velocity over dt seconds and clamps the result above the terrain.
// Downward velocity is cancelled when the agent lands.
func (a *Agent) Step(ground *Ground, dt float32) {
	next := a.Position.Add(a.Velocity.Scale(dt))
	clamped := ground.KeepAbove(next, a.Clearance)

	a.Grounded = clamped.Y != next.Y
	if a.Grounded && a.Velocity.Y < 0 {
		a.Velocity.Y = 0
	}
	a.Position = clamped
}
