// Package math3d provides the vector and matrix types used by the software
// rendering pipeline.
//
// Vectors are row vectors and matrices are stored as four rows, so a point is
// transformed with p.MulMat(m) and a chain of transforms composes left to
// right: p.MulMat(a.Mul(b)) applies a first, then b.
package math3d

import (
	"fmt"
	"math"
)

// Vec3 represents a 3D vector, a point, or an RGB colour.
type Vec3 struct {
	X, Y, Z float64
}

// V3 creates a new Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// V3FromSlice builds a Vec3 from exactly three values.
func V3FromSlice(s []float64) (Vec3, error) {
	if len(s) != 3 {
		return Vec3{}, fmt.Errorf("vec3 from %d values: %w", len(s), ErrArity)
	}
	return Vec3{s[0], s[1], s[2]}, nil
}

// Splat3 returns a vector with every component set to s.
func Splat3(s float64) Vec3 {
	return Vec3{s, s, s}
}

// Zero3 returns the zero vector.
func Zero3() Vec3 {
	return Vec3{}
}

// Up returns the world up vector (0, 1, 0).
func Up() Vec3 {
	return Vec3{0, 1, 0}
}

// R returns the red channel when the vector holds a colour.
func (a Vec3) R() float64 { return a.X }

// G returns the green channel.
func (a Vec3) G() float64 { return a.Y }

// B returns the blue channel.
func (a Vec3) B() float64 { return a.Z }

// At returns component i (0..2). Out-of-range indices return 0.
func (a Vec3) At(i int) float64 {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	case 2:
		return a.Z
	}
	return 0
}

// Slice returns the components as a new slice.
func (a Vec3) Slice() []float64 {
	return []float64{a.X, a.Y, a.Z}
}

// Add returns the vector sum a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns the vector difference a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// AddScalar adds s to every component.
func (a Vec3) AddScalar(s float64) Vec3 {
	return Vec3{a.X + s, a.Y + s, a.Z + s}
}

// SubScalar subtracts s from every component.
func (a Vec3) SubScalar(s float64) Vec3 {
	return Vec3{a.X - s, a.Y - s, a.Z - s}
}

// Mul returns the component-wise product a * b.
func (a Vec3) Mul(b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

// Scale returns the scalar product a * s.
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Quo returns a / s, or ErrDivideByZero when s is exactly zero.
func (a Vec3) Quo(s float64) (Vec3, error) {
	if s == 0 {
		return Vec3{}, ErrDivideByZero
	}
	return Vec3{a.X / s, a.Y / s, a.Z / s}, nil
}

// QuoVec returns the component-wise quotient a / b. Any zero component of b
// is an error.
func (a Vec3) QuoVec(b Vec3) (Vec3, error) {
	if b.X == 0 || b.Y == 0 || b.Z == 0 {
		return Vec3{}, ErrDivideByZero
	}
	return Vec3{a.X / b.X, a.Y / b.Y, a.Z / b.Z}, nil
}

// Dot returns the dot product a · b.
func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the length (magnitude) of the vector.
func (a Vec3) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// LenSq returns the squared length (faster, no sqrt).
func (a Vec3) LenSq() float64 {
	return a.X*a.X + a.Y*a.Y + a.Z*a.Z
}

// Unit returns the unit vector in the same direction. Vectors no longer than
// NormalizeEpsilon return ErrDegenerate.
func (a Vec3) Unit() (Vec3, error) {
	l := a.Len()
	if !(l > NormalizeEpsilon) {
		return Vec3{}, ErrDegenerate
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}, nil
}

// Normalize returns the unit vector in the same direction, or the zero vector
// when a has no length.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}

// Negate returns the negated vector.
func (a Vec3) Negate() Vec3 {
	return Vec3{-a.X, -a.Y, -a.Z}
}

// Lerp returns the linear interpolation between a and b by t.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return Vec3{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// Barycentric returns l0*a + l1*b + l2*c.
func Barycentric(a, b, c Vec3, l0, l1, l2 float64) Vec3 {
	return Vec3{
		a.X*l0 + b.X*l1 + c.X*l2,
		a.Y*l0 + b.Y*l1 + c.Y*l2,
		a.Z*l0 + b.Z*l1 + c.Z*l2,
	}
}

// Distance returns the distance between two points.
func (a Vec3) Distance(b Vec3) float64 {
	return a.Sub(b).Len()
}

// Min returns the component-wise minimum.
func (a Vec3) Min(b Vec3) Vec3 {
	return Vec3{
		math.Min(a.X, b.X),
		math.Min(a.Y, b.Y),
		math.Min(a.Z, b.Z),
	}
}

// Max returns the component-wise maximum.
func (a Vec3) Max(b Vec3) Vec3 {
	return Vec3{
		math.Max(a.X, b.X),
		math.Max(a.Y, b.Y),
		math.Max(a.Z, b.Z),
	}
}

// Clamp limits every component to [lo, hi].
func (a Vec3) Clamp(lo, hi float64) Vec3 {
	return Vec3{
		Clamp(a.X, lo, hi),
		Clamp(a.Y, lo, hi),
		Clamp(a.Z, lo, hi),
	}
}

// Abs returns the component-wise absolute value.
func (a Vec3) Abs() Vec3 {
	return Vec3{
		math.Abs(a.X),
		math.Abs(a.Y),
		math.Abs(a.Z),
	}
}

// ApproxEqual reports whether every component of a and b differs by at most eps.
func (a Vec3) ApproxEqual(b Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps &&
		math.Abs(a.Y-b.Y) <= eps &&
		math.Abs(a.Z-b.Z) <= eps
}

// String formats the vector as (x, y, z).
func (a Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", a.X, a.Y, a.Z)
}
