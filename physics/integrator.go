package physics

import "github.com/go-gl/mathgl/mgl64"

// AccelFunc returns the acceleration felt at a position. Callers usually
// back it with an octree accelerator built for the current tick.
type AccelFunc func(pos mgl64.Vec3) mgl64.Vec3

// Integrator advances a state by one fixed step. Implementations are pure:
// they only see the state, dt and the acceleration they are handed.
type Integrator interface {
	Step(s State, dt float64, accel AccelFunc) State
}

// Verlet is velocity Verlet:
//
//	x' = x + v·dt + ½·a·dt²
//	a' = accel(x')
//	v' = v + ½·(a + a')·dt
//
// Drift and Kick are the two halves, for callers that need to rebuild a
// tree at the drifted positions before computing a'.
type Verlet struct{}

// Step runs Drift, evaluates accel at the new position, then Kick.
func (Verlet) Step(s State, dt float64, accel AccelFunc) State {
	next := Drift(s, dt)
	return Kick(next, s.Acceleration, accel(next.Position), dt)
}

// Drift moves the position with the current velocity and acceleration.
// Velocity and acceleration are left untouched.
func Drift(s State, dt float64) State {
	s.Position = s.Position.
		Add(s.Velocity.Mul(dt)).
		Add(s.Acceleration.Mul(0.5 * dt * dt))
	return s
}

// Kick updates the velocity with the average of the old and new
// accelerations and stores the new one.
func Kick(s State, prev, next mgl64.Vec3, dt float64) State {
	s.Velocity = s.Velocity.Add(prev.Add(next).Mul(0.5 * dt))
	s.Acceleration = next
	return s
}

// SymplecticEuler is the semi-implicit Euler update: velocity first from
// the acceleration at the current position, then position from the new
// velocity.
type SymplecticEuler struct{}

// Step implements Integrator.
func (SymplecticEuler) Step(s State, dt float64, accel AccelFunc) State {
	// a = F/m
	// dv = a*dt
	s.Acceleration = accel(s.Position)
	s.Velocity = s.Velocity.Add(s.Acceleration.Mul(dt))
	// dp = v*dt
	s.Position = s.Position.Add(s.Velocity.Mul(dt))
	return s
}
