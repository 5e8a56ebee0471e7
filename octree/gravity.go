package octree

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/quillaja/gravtree/geom"
)

const (
	// DefaultTheta is the usual opening threshold for the size/distance test.
	DefaultTheta = 0.5
	// MinDistanceSq is the squared separation below which a source
	// contributes nothing (self-interaction and coincident points).
	MinDistanceSq = 1e-6
)

// Kernel is the inverse-square acceleration on a point at target caused by
// a weight at source: G*weight/d² along normalize(source - target).
// It is zero when d² < MinDistanceSq.
func Kernel(target, source mgl64.Vec3, weight, G float64) mgl64.Vec3 {
	dir := source.Sub(target)
	d2 := geom.LenSq(dir)
	if d2 < MinDistanceSq {
		return mgl64.Vec3{}
	}
	return geom.MustNormalize(dir).Mul(G * weight / d2)
}

// DirectAcceleration sums Kernel over every entity except target itself.
// It is the exact O(n) answer the accelerator approximates.
func DirectAcceleration[T Entity](target T, entities []T, G float64) mgl64.Vec3 {
	var acc mgl64.Vec3
	pos := target.Position()
	for _, e := range entities {
		if e == target {
			continue
		}
		acc = acc.Add(Kernel(pos, e.Position(), e.Weight(), G))
	}
	return acc
}

// Accelerator answers acceleration queries against one tree with a fixed
// opening threshold. It holds no state besides the tree, so queries may run
// concurrently as long as nothing inserts into the tree meanwhile.
type Accelerator[T Entity] struct {
	root  *Node[T]
	theta float64
}

// NewAccelerator wraps root. theta = 0 makes every query exact.
func NewAccelerator[T Entity](root *Node[T], theta float64) *Accelerator[T] {
	if theta < 0 {
		theta = 0
	}
	return &Accelerator[T]{root: root, theta: theta}
}

// Root returns the wrapped tree.
func (a *Accelerator[T]) Root() *Node[T] { return a.root }

// Theta returns the opening threshold.
func (a *Accelerator[T]) Theta() float64 { return a.theta }

// Acceleration walks the tree for target. Nodes whose x extent over the
// distance to their weighted center is below theta count as one mass at
// that center; closer nodes are opened. The target is skipped by identity.
func (a *Accelerator[T]) Acceleration(target T, G float64) mgl64.Vec3 {
	return a.root.gravity(target, target.Position(), a.theta, G)
}

// Accelerations fills out[i] with the acceleration of targets[i], splitting
// targets across workers goroutines. out must be at least len(targets).
func (a *Accelerator[T]) Accelerations(targets []T, G float64, out []mgl64.Vec3, workers int) {
	if workers < 1 {
		workers = 1
	}
	groupsize := (len(targets) + workers - 1) / workers
	wg := sync.WaitGroup{}
	for lo := 0; lo < len(targets); lo += groupsize {
		hi := min(lo+groupsize, len(targets))
		wg.Add(1)
		go func(group []T, out []mgl64.Vec3) {
			defer wg.Done()
			for i := range group {
				out[i] = a.Acceleration(group[i], G)
			}
		}(targets[lo:hi], out[lo:hi])
	}
	wg.Wait()
}

// Range returns the entities within radius of center.
func (a *Accelerator[T]) Range(center geom.Point3D, radius float64) []T {
	return a.root.Range(center, radius)
}

func (n *Node[T]) gravity(target T, pos mgl64.Vec3, theta, G float64) (acc mgl64.Vec3) {
	if n.totalWeight == 0 {
		return // empty, or nothing but weightless entries
	}

	if n.children == nil {
		for _, e := range n.entries {
			if e == target {
				continue // prevent a body interacting with itself
			}
			acc = acc.Add(Kernel(pos, e.Position(), e.Weight(), G))
		}
		return
	}

	// a node holding the target is always opened, whatever theta is,
	// so the target's own weight never reaches it through a centroid.
	r := n.weightedCenter.Sub(pos).Len()
	if n.boundary.LX()/r < theta && !n.boundary.Contains(pos) {
		return Kernel(pos, n.weightedCenter, n.totalWeight, G)
	}

	for _, c := range n.children {
		acc = acc.Add(c.gravity(target, pos, theta, G))
	}
	return
}
