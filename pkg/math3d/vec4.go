package math3d

import (
	"fmt"
	"math"
)

// Vec4 represents a homogeneous point or an RGBA colour.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// V4FromV3 creates a Vec4 from Vec3 with specified W.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// V4FromSlice builds a Vec4 from exactly four values.
func V4FromSlice(s []float64) (Vec4, error) {
	if len(s) != 4 {
		return Vec4{}, fmt.Errorf("vec4 from %d values: %w", len(s), ErrArity)
	}
	return Vec4{s[0], s[1], s[2], s[3]}, nil
}

// R returns the red channel.
func (v Vec4) R() float64 { return v.X }

// G returns the green channel.
func (v Vec4) G() float64 { return v.Y }

// B returns the blue channel.
func (v Vec4) B() float64 { return v.Z }

// A returns the alpha channel.
func (v Vec4) A() float64 { return v.W }

// At returns component i (0..3). Out-of-range indices return 0.
func (v Vec4) At(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	case 3:
		return v.W
	}
	return 0
}

// Vec3 returns the Vec3 portion (ignoring W).
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// PerspectiveDivide returns the Vec3 after dividing by W. A W of exactly zero
// returns ErrDivideByZero; values close to zero are not guarded.
func (v Vec4) PerspectiveDivide() (Vec3, error) {
	if v.W == 0 {
		return Vec3{}, ErrDivideByZero
	}
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}, nil
}

// Add returns the vector sum.
//
//nolint:st1016 // a+b naming convention is clearer for vector operations
func (a Vec4) Add(b Vec4) Vec4 {
	return Vec4{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W}
}

// Sub returns the vector difference.
//
//nolint:st1016 // a-b naming convention is clearer for vector operations
func (a Vec4) Sub(b Vec4) Vec4 {
	return Vec4{a.X - b.X, a.Y - b.Y, a.Z - b.Z, a.W - b.W}
}

// Scale returns the scalar product.
func (v Vec4) Scale(s float64) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Quo returns v / s, or ErrDivideByZero when s is exactly zero.
func (v Vec4) Quo(s float64) (Vec4, error) {
	if s == 0 {
		return Vec4{}, ErrDivideByZero
	}
	return Vec4{v.X / s, v.Y / s, v.Z / s, v.W / s}, nil
}

// Dot returns the dot product.
//
//nolint:st1016 // a·b naming convention is clearer for vector operations
func (a Vec4) Dot(b Vec4) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
}

// Len returns the length.
func (v Vec4) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z + v.W*v.W)
}

// Unit returns the unit vector, or ErrDegenerate when v is no longer than
// NormalizeEpsilon.
func (v Vec4) Unit() (Vec4, error) {
	l := v.Len()
	if !(l > NormalizeEpsilon) {
		return Vec4{}, ErrDegenerate
	}
	return Vec4{v.X / l, v.Y / l, v.Z / l, v.W / l}, nil
}

// MulMat returns the row vector v multiplied by m:
// result[j] = sum over i of v[i] * m[i][j].
func (v Vec4) MulMat(m Mat4) Vec4 {
	return m[0].Scale(v.X).
		Add(m[1].Scale(v.Y)).
		Add(m[2].Scale(v.Z)).
		Add(m[3].Scale(v.W))
}

// Lerp returns linear interpolation.
//
//nolint:st1016 // a,b naming convention is clearer for interpolation
func (a Vec4) Lerp(b Vec4, t float64) Vec4 {
	return Vec4{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
		a.W + (b.W-a.W)*t,
	}
}
