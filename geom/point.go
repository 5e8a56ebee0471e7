package geom

import (
	"fmt"
	"math"
)

// Point3D is a mutable position used for box corners and query centers.
type Point3D struct {
	X, Y, Z float64
}

// PointOf converts a vector into a point.
func PointOf(v Vector3D) Point3D {
	return Point3D{v[0], v[1], v[2]}
}

// Vec converts the point into a vector.
func (p Point3D) Vec() Vector3D {
	return Vector3D{p.X, p.Y, p.Z}
}

// Set overwrites all three components.
func (p *Point3D) Set(x, y, z float64) {
	p.X, p.Y, p.Z = x, y, z
}

// Translate moves the point by v in place.
func (p *Point3D) Translate(v Vector3D) {
	p.X += v[0]
	p.Y += v[1]
	p.Z += v[2]
}

// Sub returns the vector p - q.
func (p Point3D) Sub(q Point3D) Vector3D {
	return Vector3D{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// DistanceSq is the squared euclidean distance between p and q.
func (p Point3D) DistanceSq(q Point3D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return dx*dx + dy*dy + dz*dz
}

// Distance is the euclidean distance between p and q.
func (p Point3D) Distance(q Point3D) float64 {
	return math.Sqrt(p.DistanceSq(q))
}

// ApproxEqual is true iff every component of p and q differs by less than tol.
func (p Point3D) ApproxEqual(q Point3D, tol float64) bool {
	return math.Abs(p.X-q.X) < tol &&
		math.Abs(p.Y-q.Y) < tol &&
		math.Abs(p.Z-q.Z) < tol
}

func (p Point3D) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}
