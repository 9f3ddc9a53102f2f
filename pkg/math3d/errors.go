package math3d

import "errors"

var (
	// ErrArity is returned when a vector is built from a slice of the wrong length.
	ErrArity = errors.New("math3d: wrong number of components")

	// ErrDivideByZero is returned by checked division when a divisor is exactly zero.
	ErrDivideByZero = errors.New("math3d: division by zero")

	// ErrDegenerate is returned when a vector is too short to normalize.
	ErrDegenerate = errors.New("math3d: vector too short to normalize")

	// ErrSingular is returned when inverting a matrix with a zero determinant.
	ErrSingular = errors.New("math3d: singular matrix")
)

// NormalizeEpsilon is the shortest length Unit accepts.
const NormalizeEpsilon = 1e-4

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
