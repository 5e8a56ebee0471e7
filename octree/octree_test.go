package octree

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/rand"

	"github.com/quillaja/gravtree/geom"
)

type star struct {
	pos  mgl64.Vec3
	mass float64
}

func (s *star) Position() mgl64.Vec3 { return s.pos }
func (s *star) Weight() float64      { return s.mass }

// a cloud of n stars normally distributed about the origin.
func cloud(seed uint64, n int, spread float64) []*star {
	rnd := rand.New(rand.NewSource(seed))
	stars := make([]*star, n)
	for i := range stars {
		stars[i] = &star{
			pos: mgl64.Vec3{
				rnd.NormFloat64() * spread,
				rnd.NormFloat64() * spread,
				rnd.NormFloat64() * spread,
			},
			mass: 1 + 10*rnd.Float64(),
		}
	}
	return stars
}

func cube(half float64) geom.AABBox3D {
	return geom.AABBox3D{
		Min: geom.Point3D{X: -half, Y: -half, Z: -half},
		Max: geom.Point3D{X: half, Y: half, Z: half},
	}
}

func TestInsertOutsideBoundaryIsNoop(t *testing.T) {
	root := New[*star](cube(10))
	if root.Insert(&star{pos: mgl64.Vec3{11, 0, 0}, mass: 5}) {
		t.Fatal("insert outside the boundary should report false")
	}
	if root.Len() != 0 || root.TotalWeight() != 0 {
		t.Fatalf("tree changed after rejected insert: len=%d weight=%g", root.Len(), root.TotalWeight())
	}
	if !root.Insert(&star{pos: mgl64.Vec3{10, -10, 10}, mass: 5}) {
		t.Fatal("insert on the boundary corner should succeed")
	}
}

func TestLeafSplitsPastCapacity(t *testing.T) {
	root := New[*star](cube(8))
	positions := []mgl64.Vec3{{-4, -4, -4}, {4, -4, -4}, {-4, 4, -4}, {4, 4, 4}}
	for _, p := range positions {
		root.Insert(&star{pos: p, mass: 1})
	}
	if !root.IsLeaf() || len(root.Entries()) != Capacity {
		t.Fatalf("expected a full leaf with %d entries, got leaf=%t entries=%d",
			Capacity, root.IsLeaf(), len(root.Entries()))
	}

	root.Insert(&star{pos: mgl64.Vec3{-4, -4, 4}, mass: 1})
	if root.IsLeaf() {
		t.Fatal("root should have split")
	}
	if len(root.Entries()) != 0 {
		t.Errorf("internal node kept %d entries", len(root.Entries()))
	}
	if len(root.Children()) != 8 {
		t.Fatalf("expected 8 children, got %d", len(root.Children()))
	}
	total := 0
	for _, c := range root.Children() {
		total += c.Len()
		if c.Depth() != 1 {
			t.Errorf("child depth %d, want 1", c.Depth())
		}
	}
	if total != 5 || root.Len() != 5 {
		t.Errorf("entities were duplicated or lost: children hold %d, root says %d", total, root.Len())
	}
}

func TestContainmentInvariant(t *testing.T) {
	stars := cloud(1, 2000, 100)
	bounds := BoundsOf(stars, 1)
	root := Build(bounds, stars)

	if root.Len() != len(stars) {
		t.Fatalf("stored %d of %d stars", root.Len(), len(stars))
	}

	seen := make(map[*star]int)
	root.Walk(func(n *Node[*star]) bool {
		if !n.IsLeaf() && len(n.Entries()) != 0 {
			t.Errorf("internal node at depth %d holds entries", n.Depth())
		}
		for _, s := range n.Entries() {
			seen[s]++
			if !n.Boundary().Contains(s.Position()) {
				t.Errorf("star %v outside its leaf %v", s.Position(), n.Boundary())
			}
			if !root.Boundary().Contains(s.Position()) {
				t.Errorf("star %v outside the root %v", s.Position(), root.Boundary())
			}
		}
		return true
	})

	for _, s := range stars {
		if seen[s] != 1 {
			t.Fatalf("star %v stored %d times", s.Position(), seen[s])
		}
	}
}

func TestPartitionInvariant(t *testing.T) {
	root := Build(cube(64), cloud(2, 500, 20))

	root.Walk(func(n *Node[*star]) bool {
		if n.IsLeaf() {
			return true
		}
		union := geom.NullBox()
		volume := 0.0
		for i, c := range n.Children() {
			if !c.Boundary().ApproxEqual(n.Boundary().Octant(i), geom.Epsilon) {
				t.Errorf("child %d boundary %v is not octant %v", i, c.Boundary(), n.Boundary().Octant(i))
			}
			union.Union(c.Boundary())
			volume += c.Boundary().Volume()
		}
		if !union.ApproxEqual(n.Boundary(), geom.Epsilon) {
			t.Errorf("children cover %v, parent is %v", union, n.Boundary())
		}
		if math.Abs(volume-n.Boundary().Volume()) > 1e-9*n.Boundary().Volume() {
			t.Errorf("children volume %g != parent volume %g", volume, n.Boundary().Volume())
		}
		return true
	})
}

func TestMassConservationAndCentroid(t *testing.T) {
	stars := cloud(3, 1000, 50)

	var total float64
	var moment mgl64.Vec3
	for _, s := range stars {
		total += s.mass
		moment = moment.Add(s.pos.Mul(s.mass))
	}
	want := moment.Mul(1 / total)

	bounds := cube(1000)
	forward := Build(bounds, stars)

	reversed := make([]*star, len(stars))
	for i, s := range stars {
		reversed[len(stars)-1-i] = s
	}
	backward := Build(bounds, reversed)

	for name, root := range map[string]*Node[*star]{"forward": forward, "reversed": backward} {
		if math.Abs(root.TotalWeight()-total) > 1e-9*total {
			t.Errorf("%s: total weight %g, want %g", name, root.TotalWeight(), total)
		}
		if !root.WeightedCenter().ApproxEqualThreshold(want, 1e-9) {
			t.Errorf("%s: weighted center %v, want %v", name, root.WeightedCenter(), want)
		}
	}

	// every subtree keeps its own sums too
	forward.Walk(func(n *Node[*star]) bool {
		var w float64
		var m mgl64.Vec3
		var k int
		n.Walk(func(c *Node[*star]) bool {
			for _, s := range c.Entries() {
				w += s.mass
				m = m.Add(s.pos.Mul(s.mass))
				k++
			}
			return true
		})
		if k != n.Len() {
			t.Errorf("node at depth %d: Len %d, found %d", n.Depth(), n.Len(), k)
		}
		if k == 0 {
			return false
		}
		if math.Abs(n.TotalWeight()-w) > 1e-9*w {
			t.Errorf("node at depth %d: weight %g, want %g", n.Depth(), n.TotalWeight(), w)
		}
		if !n.WeightedCenter().ApproxEqualThreshold(m.Mul(1/w), 1e-9) {
			t.Errorf("node at depth %d: center %v, want %v", n.Depth(), n.WeightedCenter(), m.Mul(1/w))
		}
		return true
	})
}

func TestZeroWeightKeepsCentroid(t *testing.T) {
	root := New[*star](cube(10))
	root.Insert(&star{pos: mgl64.Vec3{1, 2, 3}})
	root.Insert(&star{pos: mgl64.Vec3{-1, -2, -3}})
	if root.WeightedCenter() != (mgl64.Vec3{}) {
		t.Errorf("weightless entries moved the centroid to %v", root.WeightedCenter())
	}
	if root.Len() != 2 {
		t.Errorf("weightless entries should still be stored, Len=%d", root.Len())
	}

	root.Insert(&star{pos: mgl64.Vec3{4, 4, 4}, mass: 2})
	if root.WeightedCenter() != (mgl64.Vec3{4, 4, 4}) {
		t.Errorf("first weighted entry should own the centroid, got %v", root.WeightedCenter())
	}
	if root.TotalWeight() != 2 {
		t.Errorf("total weight %g, want 2", root.TotalWeight())
	}
}

func TestCoincidentPointsStopAtDepthCap(t *testing.T) {
	root := New[*star](cube(16))
	const n = 50
	for i := 0; i < n; i++ {
		root.Insert(&star{pos: mgl64.Vec3{3, 3, 3}, mass: 1})
	}
	if root.Len() != n {
		t.Fatalf("stored %d of %d coincident stars", root.Len(), n)
	}
	_, depth := root.Stats()
	if depth != MaxDepth {
		t.Errorf("deepest node at %d, want the cap %d", depth, MaxDepth)
	}

	shallow := NewWithDepth[*star](cube(16), 3)
	for i := 0; i < n; i++ {
		shallow.Insert(&star{pos: mgl64.Vec3{3, 3, 3}, mass: 1})
	}
	var deepest *Node[*star]
	shallow.Walk(func(c *Node[*star]) bool {
		if len(c.Entries()) > 0 {
			deepest = c
		}
		return true
	})
	if deepest == nil || deepest.Depth() != 3 || len(deepest.Entries()) != n {
		t.Fatalf("expected all %d stars in one leaf at depth 3, got %+v", n, deepest)
	}
	if deepest.TotalWeight() != n {
		t.Errorf("overflow leaf weight %g, want %d", deepest.TotalWeight(), n)
	}
}

func TestRangeQueryMatchesBruteForce(t *testing.T) {
	stars := cloud(4, 1500, 30)
	root := Build(BoundsOf(stars, 0), stars)
	rnd := rand.New(rand.NewSource(5))

	for q := 0; q < 50; q++ {
		center := geom.Point3D{
			X: rnd.NormFloat64() * 30,
			Y: rnd.NormFloat64() * 30,
			Z: rnd.NormFloat64() * 30,
		}
		radius := rnd.Float64() * 40

		want := make(map[*star]bool)
		for _, s := range stars {
			if geom.PointOf(s.pos).DistanceSq(center) <= radius*radius {
				want[s] = true
			}
		}

		got := root.Range(center, radius)
		if len(got) != len(want) {
			t.Fatalf("query %d: got %d stars, want %d", q, len(got), len(want))
		}
		for _, s := range got {
			if !want[s] {
				t.Fatalf("query %d: star %v at distance %g is outside radius %g",
					q, s.pos, geom.PointOf(s.pos).Distance(center), radius)
			}
		}
	}
}

func TestQueryRangeAppends(t *testing.T) {
	root := New[*star](cube(10))
	a := &star{pos: mgl64.Vec3{1, 0, 0}, mass: 1}
	b := &star{pos: mgl64.Vec3{0, 5, 0}, mass: 1}
	root.Insert(a)
	root.Insert(b)

	existing := &star{}
	results := []*star{existing}
	root.QueryRange(geom.Point3D{}, 1, &results)
	if len(results) != 2 || results[0] != existing || results[1] != a {
		t.Fatalf("unexpected results %v", results)
	}

	for _, r := range []float64{-1, -10, math.NaN()} {
		if got := root.Range(geom.Point3D{X: 0.5}, r); len(got) != 0 {
			t.Errorf("radius %g matched %d entities", r, len(got))
		}
	}
}

func TestBoundsOf(t *testing.T) {
	stars := []*star{
		{pos: mgl64.Vec3{-1, 0, 0}},
		{pos: mgl64.Vec3{3, 1, 0}},
	}
	b := BoundsOf(stars, 0.5)
	for _, s := range stars {
		if !b.Contains(s.pos) {
			t.Errorf("%v not inside %v", s.pos, b)
		}
	}
	if b.LX() != b.LY() || b.LY() != b.LZ() {
		t.Errorf("bounds should be a cube, got %v", b)
	}
	if b.LX() != 5 {
		t.Errorf("edge %g, want 4 + 2*0.5", b.LX())
	}

	empty := BoundsOf([]*star{}, 0)
	if empty.IsNull() || empty.LX() != 1 {
		t.Errorf("empty input should give a unit cube, got %v", empty)
	}
}
