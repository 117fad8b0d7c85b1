// Package math provides float32 vector types for world-space placement.
package math

import "github.com/chewxy/math32"

// Vec2 is a point or direction on the ground plane (X, Z).
type Vec2 struct {
	X, Z float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Z - other.Z}
}

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Z * s}
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return math32.Hypot(v.X, v.Z)
}

// Normalize returns a unit vector, or the zero vector for zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Z / l}
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

// FromAngle returns the unit vector at yaw radians from +X toward +Z.
func FromAngle(yaw float32) Vec2 {
	s, c := math32.Sincos(yaw)
	return Vec2{c, s}
}

// WithHeight lifts v to a 3D point at height y.
func (v Vec2) WithHeight(y float32) Vec3 {
	return Vec3{v.X, y, v.Z}
}
