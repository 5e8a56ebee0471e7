// Package physics holds kinematic state, the motion integrators and a plain
// body type that satisfies octree.WeightedPoint.
package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/quillaja/gravtree/geom"
)

// G = 6.67408 × 10-11 m3 kg-1 s-2
//   = 6.67408e-11 m³/(kg·s²)
const G = 6.67408e-11

// State is the kinematic state the integrators advance.
type State struct {
	Position     mgl64.Vec3 // m
	Velocity     mgl64.Vec3 // m/s
	Acceleration mgl64.Vec3 // m/s²
}

// Body is a massive point with kinematic state. The tree only reads
// Position and Weight; State is changed by the integrators.
type Body struct {
	ID     uint64
	Mass   float64 // kg
	Radius float64 // m
	State  State

	force mgl64.Vec3 // accumulated applied force
}

// Position implements octree.WeightedPoint.
func (b *Body) Position() mgl64.Vec3 { return b.State.Position }

// Weight implements octree.WeightedPoint.
func (b *Body) Weight() float64 { return b.Mass }

// ApplyForce adds an external (non-gravitational) force for this tick.
func (b *Body) ApplyForce(f mgl64.Vec3) { b.force = b.force.Add(f) }

// Force is the applied force accumulated so far.
func (b *Body) Force() mgl64.Vec3 { return b.force }

// ClearForce resets the accumulated force.
func (b *Body) ClearForce() { b.force = mgl64.Vec3{} }

// Momentum is m·v.
func (b *Body) Momentum() mgl64.Vec3 { return b.State.Velocity.Mul(b.Mass) }

// KineticEnergy is ½·m·v².
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * geom.LenSq(b.State.Velocity)
}

func (b *Body) String() string {
	p, v := b.State.Position, b.State.Velocity
	return fmt.Sprintf("m: %.4f\np: [%.2f, %.2f, %.2f]\nv: [%.2f, %.2f, %.2f]\n",
		b.Mass, p[0], p[1], p[2], v[0], v[1], v[2])
}

// ForceAcceleration is F/m, or zero for a massless body.
func ForceAcceleration(force mgl64.Vec3, mass float64) mgl64.Vec3 {
	if mass == 0 {
		return mgl64.Vec3{}
	}
	return force.Mul(1 / mass)
}

// CircularVelocity is the velocity for a circular orbit around a central
// mass, perpendicular to both offset (body - center) and axis, with
// magnitude sqrt(G·M/r).
func CircularVelocity(centralMass, g float64, offset, axis mgl64.Vec3) (mgl64.Vec3, error) {
	r := offset.Len()
	dir, err := geom.Normalize(offset.Cross(axis))
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("orbit direction: %w", err)
	}
	return dir.Mul(math.Sqrt(g * centralMass / r)), nil
}
