package geom

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrSingular is returned when inverting a matrix with a ~zero determinant.
// mgl64 silently returns the zero matrix in that case.
var ErrSingular = errors.New("geom: matrix is singular")

// Invert3 inverts m, or returns ErrSingular when |det(m)| <= Epsilon.
func Invert3(m mgl64.Mat3) (mgl64.Mat3, error) {
	if math.Abs(m.Det()) <= Epsilon {
		return mgl64.Mat3{}, ErrSingular
	}
	return m.Inv(), nil
}

// Invert4 inverts m, or returns ErrSingular when |det(m)| <= Epsilon.
func Invert4(m mgl64.Mat4) (mgl64.Mat4, error) {
	if math.Abs(m.Det()) <= Epsilon {
		return mgl64.Mat4{}, ErrSingular
	}
	return m.Inv(), nil
}
