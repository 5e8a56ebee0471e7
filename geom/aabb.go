package geom

import (
	"fmt"
	"math"
)

// AABBox3D is an axis-aligned box given by its min and max corners.
// Boxes with Min > Max on some axis are a caller error and are not checked,
// except for the null box which is the identity of Union.
type AABBox3D struct {
	Min, Max Point3D
}

// NewAABBox3D makes the box spanned by two opposite corners in any order.
func NewAABBox3D(a, b Point3D) AABBox3D {
	return AABBox3D{
		Min: Point3D{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)},
		Max: Point3D{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)},
	}
}

// CubeAt makes the cube centered on c with the given edge length.
func CubeAt(c Point3D, edge float64) AABBox3D {
	h := edge / 2
	return AABBox3D{
		Min: Point3D{c.X - h, c.Y - h, c.Z - h},
		Max: Point3D{c.X + h, c.Y + h, c.Z + h},
	}
}

// NullBox returns the empty box (min=+Inf, max=-Inf). Union with it is identity.
func NullBox() AABBox3D {
	inf := math.Inf(1)
	return AABBox3D{
		Min: Point3D{inf, inf, inf},
		Max: Point3D{-inf, -inf, -inf},
	}
}

// IsNull reports whether the box is empty on any axis.
func (b AABBox3D) IsNull() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

func (b AABBox3D) LX() float64 { return b.Max.X - b.Min.X }
func (b AABBox3D) LY() float64 { return b.Max.Y - b.Min.Y }
func (b AABBox3D) LZ() float64 { return b.Max.Z - b.Min.Z }

// MaxExtent returns the largest of LX, LY and LZ.
func (b AABBox3D) MaxExtent() float64 {
	return math.Max(b.LX(), math.Max(b.LY(), b.LZ()))
}

// Center is the midpoint of the box.
func (b AABBox3D) Center() Point3D {
	return Point3D{
		(b.Min.X + b.Max.X) / 2,
		(b.Min.Y + b.Max.Y) / 2,
		(b.Min.Z + b.Max.Z) / 2,
	}
}

// Area is the surface area of the box.
func (b AABBox3D) Area() float64 {
	lx, ly, lz := b.LX(), b.LY(), b.LZ()
	return 2 * (lx*ly + ly*lz + lz*lx)
}

// Volume of the box.
func (b AABBox3D) Volume() float64 {
	return b.LX() * b.LY() * b.LZ()
}

// ContainsPoint is inclusive on both faces.
func (b AABBox3D) ContainsPoint(p Point3D) bool {
	return b.Min.X <= p.X && p.X <= b.Max.X &&
		b.Min.Y <= p.Y && p.Y <= b.Max.Y &&
		b.Min.Z <= p.Z && p.Z <= b.Max.Z
}

// Contains is ContainsPoint for a vector position.
func (b AABBox3D) Contains(v Vector3D) bool {
	return b.ContainsPoint(PointOf(v))
}

// ContainsBox is true when o lies entirely inside b.
func (b AABBox3D) ContainsBox(o AABBox3D) bool {
	return b.ContainsPoint(o.Min) && b.ContainsPoint(o.Max)
}

// Intersects is true unless the boxes are strictly separated along some axis.
// Touching faces count as intersecting.
func (b AABBox3D) Intersects(o AABBox3D) bool {
	return !(b.Max.X < o.Min.X || o.Max.X < b.Min.X ||
		b.Max.Y < o.Min.Y || o.Max.Y < b.Min.Y ||
		b.Max.Z < o.Min.Z || o.Max.Z < b.Min.Z)
}

// IntersectsSphere clamps center to the box and compares squared distances.
// A negative or NaN radius intersects nothing.
func (b AABBox3D) IntersectsSphere(center Point3D, radius float64) bool {
	if !(radius >= 0) {
		return false
	}
	closest := Point3D{
		math.Max(b.Min.X, math.Min(center.X, b.Max.X)),
		math.Max(b.Min.Y, math.Min(center.Y, b.Max.Y)),
		math.Max(b.Min.Z, math.Min(center.Z, b.Max.Z)),
	}
	return closest.DistanceSq(center) <= radius*radius
}

// Union grows b in place to also cover o.
func (b *AABBox3D) Union(o AABBox3D) {
	b.Min = PointOf(MinVec(b.Min.Vec(), o.Min.Vec()))
	b.Max = PointOf(MaxVec(b.Max.Vec(), o.Max.Vec()))
}

// UnionPoint grows b in place to also cover p.
func (b *AABBox3D) UnionPoint(p Point3D) {
	b.Union(AABBox3D{Min: p, Max: p})
}

// Enlarge pushes every face outwards by offset.
func (b *AABBox3D) Enlarge(offset float64) {
	b.Min.X -= offset
	b.Min.Y -= offset
	b.Min.Z -= offset
	b.Max.X += offset
	b.Max.Y += offset
	b.Max.Z += offset
}

// Scale multiplies the extents by factor, keeping the center fixed.
func (b *AABBox3D) Scale(factor float64) {
	c := b.Center()
	hx := b.LX() / 2 * factor
	hy := b.LY() / 2 * factor
	hz := b.LZ() / 2 * factor
	b.Min = Point3D{c.X - hx, c.Y - hy, c.Z - hz}
	b.Max = Point3D{c.X + hx, c.Y + hy, c.Z + hz}
}

// ApproxEqual compares both corners with Point3D.ApproxEqual.
func (b AABBox3D) ApproxEqual(o AABBox3D, tol float64) bool {
	return b.Min.ApproxEqual(o.Min, tol) && b.Max.ApproxEqual(o.Max, tol)
}

// octant bits: bit 0 is X, bit 1 is Y, bit 2 is Z.
// a set bit selects the half at or above the midpoint.
const (
	octX = 1 << iota
	octY
	octZ
)

// Octant returns child i (0..7) of the midpoint split of b.
// The eight octants share faces but never overlap in volume, and together
// they cover b exactly.
func (b AABBox3D) Octant(i int) AABBox3D {
	mid := b.Center()
	o := AABBox3D{Min: b.Min, Max: mid}
	if i&octX != 0 {
		o.Min.X, o.Max.X = mid.X, b.Max.X
	}
	if i&octY != 0 {
		o.Min.Y, o.Max.Y = mid.Y, b.Max.Y
	}
	if i&octZ != 0 {
		o.Min.Z, o.Max.Z = mid.Z, b.Max.Z
	}
	return o
}

// OctantOf returns the index of the octant that owns p.
// points on a midpoint plane belong to the upper half, so every point
// inside b maps to exactly one octant.
func (b AABBox3D) OctantOf(p Point3D) int {
	mid := b.Center()
	i := 0
	if p.X >= mid.X {
		i |= octX
	}
	if p.Y >= mid.Y {
		i |= octY
	}
	if p.Z >= mid.Z {
		i |= octZ
	}
	return i
}

func (b AABBox3D) String() string {
	return fmt.Sprintf("[%v - %v]", b.Min, b.Max)
}
