// Package octree is a generic point octree over weighted entities that
// keeps per-node total weight and weighted centroid, plus a Barnes–Hut
// accelerator built on top of it.
//
// https://en.wikipedia.org/wiki/Barnes%E2%80%93Hut_simulation
package octree

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/quillaja/gravtree/geom"
)

const (
	// Capacity is the number of entries a leaf holds before it splits.
	Capacity = 4
	// MaxDepth is the default depth cap. A leaf at this depth keeps
	// accepting entries instead of splitting, which is what stops
	// coincident points from subdividing forever.
	MaxDepth = 32
)

// WeightedPoint is anything with a position and a non-negative weight
// (mass, intensity, density...).
type WeightedPoint interface {
	Position() mgl64.Vec3
	Weight() float64
}

// Entity is the constraint for stored values. Entities are compared by
// identity (==) so the accelerator can skip the query target; use pointer
// types so the tree references bodies instead of copying them.
type Entity interface {
	comparable
	WeightedPoint
}

// Node is one cube of the octree. A node is a leaf iff it has no children;
// an internal node has exactly 8 children formed by splitting its boundary
// at the midpoint, and keeps no entries of its own.
type Node[T Entity] struct {
	boundary       geom.AABBox3D
	entries        []T
	children       *[8]*Node[T]
	totalWeight    float64
	weightedCenter mgl64.Vec3 // center = (center*total + pos*w) / (total+w)
	count          int
	depth          int
	maxDepth       int
}

// New makes an empty root covering boundary with the default depth cap.
func New[T Entity](boundary geom.AABBox3D) *Node[T] {
	return NewWithDepth[T](boundary, MaxDepth)
}

// NewWithDepth makes an empty root whose subtree never grows deeper than
// maxDepth levels below it.
func NewWithDepth[T Entity](boundary geom.AABBox3D, maxDepth int) *Node[T] {
	if maxDepth < 0 {
		maxDepth = 0
	}
	return &Node[T]{boundary: boundary, maxDepth: maxDepth}
}

// Build makes a root over boundary and inserts every entity. Entities
// outside boundary are dropped.
func Build[T Entity](boundary geom.AABBox3D, entities []T) *Node[T] {
	root := New[T](boundary)
	for _, e := range entities {
		root.Insert(e)
	}
	return root
}

// BoundsOf returns a cube covering every entity position, grown by pad on
// each face. An empty slice gets a unit cube at the origin.
func BoundsOf[T WeightedPoint](entities []T, pad float64) geom.AABBox3D {
	box := geom.NullBox()
	for _, e := range entities {
		box.UnionPoint(geom.PointOf(e.Position()))
	}
	if box.IsNull() {
		box = geom.CubeAt(geom.Point3D{}, 1)
	}
	edge := box.MaxExtent()
	if edge == 0 {
		edge = 1
	}
	// cubes keep the x extent a fair size measure for the opening criterion
	cube := geom.CubeAt(box.Center(), edge)
	cube.Enlarge(pad)
	return cube
}

// Boundary of the node. It never changes after construction.
func (n *Node[T]) Boundary() geom.AABBox3D { return n.boundary }

// TotalWeight is the summed weight of every entity in the subtree.
func (n *Node[T]) TotalWeight() float64 { return n.totalWeight }

// WeightedCenter is the weight-weighted centroid of the subtree.
func (n *Node[T]) WeightedCenter() mgl64.Vec3 { return n.weightedCenter }

// Len is the number of entities stored in the subtree.
func (n *Node[T]) Len() int { return n.count }

// Depth of the node below the root.
func (n *Node[T]) Depth() int { return n.depth }

// IsLeaf reports whether the node has no children.
func (n *Node[T]) IsLeaf() bool { return n.children == nil }

// Entries held directly by this node. Only leaves hold entries.
// The slice belongs to the node.
func (n *Node[T]) Entries() []T { return n.entries }

// Children returns the 8 children, or nil for a leaf.
func (n *Node[T]) Children() []*Node[T] {
	if n.children == nil {
		return nil
	}
	return n.children[:]
}

// Insert places e in the subtree. It is a no-op returning false when e's
// position lies outside the boundary.
func (n *Node[T]) Insert(e T) bool {
	pos := e.Position()
	if !n.boundary.Contains(pos) {
		return false
	}
	n.accumulate(pos, e.Weight())
	n.place(e, pos)
	return true
}

// update group mass info
func (n *Node[T]) accumulate(pos mgl64.Vec3, w float64) {
	n.count++
	total := n.totalWeight + w
	if total == 0 {
		return // zero weight so far: centroid stays where it was
	}
	n.weightedCenter = n.weightedCenter.Mul(n.totalWeight).Add(pos.Mul(w)).Mul(1 / total)
	n.totalWeight = total
}

func (n *Node[T]) place(e T, pos mgl64.Vec3) {
	if n.children == nil {
		if len(n.entries) < Capacity || n.depth >= n.maxDepth {
			n.entries = append(n.entries, e)
			return
		}
		n.split()
	}
	n.children[n.boundary.OctantOf(geom.PointOf(pos))].Insert(e)
}

// create children nodes with the octant bounds and hand the current
// entries down to whichever child owns them.
func (n *Node[T]) split() {
	var children [8]*Node[T]
	for i := range children {
		children[i] = &Node[T]{
			boundary: n.boundary.Octant(i),
			depth:    n.depth + 1,
			maxDepth: n.maxDepth,
		}
	}
	n.children = &children

	entries := n.entries
	n.entries = nil
	for _, e := range entries {
		pos := e.Position()
		n.children[n.boundary.OctantOf(geom.PointOf(pos))].Insert(e)
	}
}

// QueryRange appends to results every entity within radius of center
// (inclusive). Results come in traversal order, not sorted by distance.
// A negative or NaN radius matches nothing.
func (n *Node[T]) QueryRange(center geom.Point3D, radius float64, results *[]T) {
	if !(radius >= 0) || !n.boundary.IntersectsSphere(center, radius) {
		return
	}
	if n.children == nil {
		r2 := radius * radius
		for _, e := range n.entries {
			if geom.PointOf(e.Position()).DistanceSq(center) <= r2 {
				*results = append(*results, e)
			}
		}
		return
	}
	for _, c := range n.children {
		c.QueryRange(center, radius, results)
	}
}

// Range is QueryRange into a fresh slice.
func (n *Node[T]) Range(center geom.Point3D, radius float64) []T {
	var results []T
	n.QueryRange(center, radius, &results)
	return results
}

// Walk visits the subtree depth first, parent before children. Returning
// false from fn skips that node's children.
func (n *Node[T]) Walk(fn func(*Node[T]) bool) {
	if !fn(n) || n.children == nil {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Stats counts the nodes in the subtree and the deepest level reached.
func (n *Node[T]) Stats() (nodes, depth int) {
	n.Walk(func(c *Node[T]) bool {
		nodes++
		if c.depth > depth {
			depth = c.depth
		}
		return true
	})
	return nodes, depth
}
