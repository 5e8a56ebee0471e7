// Package sim runs the per-tick loop around the octree: build a fresh tree
// over the current bodies, query every body's acceleration, integrate.
package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/quillaja/gravtree/geom"
	"github.com/quillaja/gravtree/octree"
	"github.com/quillaja/gravtree/physics"
)

// integrator names accepted in Settings and scenario files.
const (
	Verlet          = "verlet"
	SymplecticEuler = "euler"
)

// Settings are the simulation parameters.
type Settings struct {
	G          float64 // gravitational constant
	Theta      float64 // opening threshold, 0 for exact sums
	Dt         float64 // seconds per step
	Workers    int     // goroutines used for acceleration queries
	Pad        float64 // added to each face of the per-tick root boundary
	Integrator string  // Verlet or SymplecticEuler
}

// DefaultSettings is real G, theta 0.5, a 1 hour step and 4 workers.
func DefaultSettings() Settings {
	return Settings{
		G:          physics.G,
		Theta:      octree.DefaultTheta,
		Dt:         60 * 60,
		Workers:    4,
		Pad:        1,
		Integrator: Verlet,
	}
}

// Stats describes the tree built for the last step.
type Stats struct {
	Bodies int
	Nodes  int
	Depth  int
}

// World owns the bodies and advances them. It is not safe for concurrent
// use; the parallelism lives inside Step.
type World struct {
	Bodies   []*physics.Body
	Settings Settings

	acc   []mgl64.Vec3 // gravity at the current positions
	grav  []mgl64.Vec3 // gravity saved from the previous Verlet step
	steps int
}

// NewWorld wraps bodies. The slice is used directly, not copied.
func NewWorld(bodies []*physics.Body, settings Settings) *World {
	return &World{Bodies: bodies, Settings: settings}
}

// Steps is the number of completed steps.
func (w *World) Steps() int { return w.steps }

// Step advances every body by one Settings.Dt. Forces applied since the
// last step act for the whole step and are then cleared.
func (w *World) Step() Stats {
	dt := w.Settings.Dt
	var stats Stats

	switch w.Settings.Integrator {
	case SymplecticEuler:
		stats = w.gravity()
		var integ physics.SymplecticEuler
		for i, b := range w.Bodies {
			a := w.acc[i].Add(applied(b))
			b.State = integ.Step(b.State, dt, func(mgl64.Vec3) mgl64.Vec3 { return a })
		}

	default:
		// prime on the first step and whenever bodies were added or removed
		if len(w.grav) != len(w.Bodies) {
			w.gravity()
			w.grav = append(w.grav[:0], w.acc...)
		}
		for i, b := range w.Bodies {
			b.State.Acceleration = w.grav[i].Add(applied(b))
			b.State = physics.Drift(b.State, dt)
		}
		// new accelerations come from a tree over the drifted positions
		stats = w.gravity()
		for i, b := range w.Bodies {
			b.State = physics.Kick(b.State, b.State.Acceleration, w.acc[i].Add(applied(b)), dt)
		}
		w.grav = append(w.grav[:0], w.acc...)
	}

	for _, b := range w.Bodies {
		b.ClearForce()
	}
	w.steps++
	return stats
}

// Run calls Step n times and returns the stats of the last one.
func (w *World) Run(n int) (last Stats) {
	for i := 0; i < n; i++ {
		last = w.Step()
	}
	return last
}

// gravity fills w.acc with the gravitational acceleration of every body at
// its current position.
func (w *World) gravity() Stats {
	if cap(w.acc) < len(w.Bodies) {
		w.acc = make([]mgl64.Vec3, len(w.Bodies))
	}
	w.acc = w.acc[:len(w.Bodies)]

	tree := w.Tree()
	acc := octree.NewAccelerator(tree, w.Settings.Theta)
	acc.Accelerations(w.Bodies, w.Settings.G, w.acc, w.Settings.Workers)

	nodes, depth := tree.Stats()
	return Stats{Bodies: tree.Len(), Nodes: nodes, Depth: depth}
}

func applied(b *physics.Body) mgl64.Vec3 {
	return physics.ForceAcceleration(b.Force(), b.Mass)
}

// Tree builds an octree over the bodies' current positions.
func (w *World) Tree() *octree.Node[*physics.Body] {
	return octree.Build(octree.BoundsOf(w.Bodies, w.Settings.Pad), w.Bodies)
}

// Within returns the bodies within radius of center.
func (w *World) Within(center geom.Point3D, radius float64) []*physics.Body {
	return w.Tree().Range(center, radius)
}

// Energy is the total kinetic plus pairwise potential energy. Pairs closer
// than the kernel floor are skipped, as the force kernel skips them.
func (w *World) Energy() float64 {
	var e float64
	for i, a := range w.Bodies {
		e += a.KineticEnergy()
		for _, b := range w.Bodies[i+1:] {
			d2 := geom.LenSq(b.Position().Sub(a.Position()))
			if d2 < octree.MinDistanceSq {
				continue
			}
			e -= w.Settings.G * a.Mass * b.Mass / math.Sqrt(d2)
		}
	}
	return e
}

// Momentum is the total linear momentum.
func (w *World) Momentum() mgl64.Vec3 {
	var p mgl64.Vec3
	for _, b := range w.Bodies {
		p = p.Add(b.Momentum())
	}
	return p
}
