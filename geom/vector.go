// Package geom holds the 3D algebra used by the octree and the integrators:
// vectors (mgl64.Vec3), mutable points, axis-aligned boxes and the matrix
// inversion precondition.
package geom

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the fine tolerance used for approximate comparisons when the
// caller has no better value.
const Epsilon = 1e-9

// ErrZeroLength is returned when normalizing a vector whose length is ~0.
var ErrZeroLength = errors.New("geom: cannot normalize zero-length vector")

// Vector3D is an immutable (x, y, z) triple. Add, Sub, Mul (scale), Dot,
// Cross and Len come from mgl64.
type Vector3D = mgl64.Vec3

// Div returns v / s.
func Div(v Vector3D, s float64) Vector3D {
	return Vector3D{v[0] / s, v[1] / s, v[2] / s}
}

// LenSq is v·v, avoiding the square root of Len.
func LenSq(v Vector3D) float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// Normalize returns v / |v|, or ErrZeroLength when |v| <= Epsilon.
func Normalize(v Vector3D) (Vector3D, error) {
	l := v.Len()
	if l <= Epsilon {
		return Vector3D{}, ErrZeroLength
	}
	return Div(v, l), nil
}

// MustNormalize is Normalize for callers that have already guarded |v| > 0.
// A zero-length vector is a precondition violation and panics.
func MustNormalize(v Vector3D) Vector3D {
	n, err := Normalize(v)
	if err != nil {
		panic(err)
	}
	return n
}

// MinVec returns the component-wise minimum of a and b.
func MinVec(a, b Vector3D) Vector3D {
	return Vector3D{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

// MaxVec returns the component-wise maximum of a and b.
func MaxVec(a, b Vector3D) Vector3D {
	return Vector3D{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}
