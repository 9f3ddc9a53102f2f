package math3d

import "math"

// Mat4 is a 4x4 matrix stored as four rows.
//
// Points are row vectors multiplied on the left, so for an affine transform
// the basis vectors are the first three rows and the translation is the last:
//
//	| Xx Xy Xz 0 |
//	| Yx Yy Yz 0 |
//	| Zx Zy Zz 0 |
//	| Tx Ty Tz 1 |
type Mat4 [4]Vec4

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{v.X, v.Y, v.Z, 1},
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		{v.X, 0, 0, 0},
		{0, v.Y, 0, 0},
		{0, 0, v.Z, 0},
		{0, 0, 0, 1},
	}
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		{c, 0, -s, 0},
		{0, 1, 0, 0},
		{s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

// Rotate creates a rotation matrix of angle radians around an arbitrary
// axis. A zero-length axis returns ErrDegenerate.
func Rotate(axis Vec3, angle float64) (Mat4, error) {
	axis, err := axis.Unit()
	if err != nil {
		return Mat4{}, err
	}
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z

	return Mat4{
		{t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0},
		{t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0},
		{t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0},
		{0, 0, 0, 1},
	}, nil
}

// LookAt creates a view matrix looking from eye towards center.
// Coincident eye and center, a zero up vector, or up parallel to the view
// direction return ErrDegenerate.
func LookAt(eye, center, up Vec3) (Mat4, error) {
	f, err := center.Sub(eye).Unit() // Forward
	if err != nil {
		return Mat4{}, err
	}
	up, err = up.Unit()
	if err != nil {
		return Mat4{}, err
	}
	s, err := f.Cross(up).Unit() // Right
	if err != nil {
		return Mat4{}, err
	}
	u := s.Cross(f) // Up (recomputed)

	return Mat4{
		{s.X, u.X, -f.X, 0},
		{s.Y, u.Y, -f.Y, 0},
		{s.Z, u.Z, -f.Z, 0},
		{-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1},
	}, nil
}

// Perspective creates a perspective projection matrix.
// fovy is vertical field of view in radians.
// aspect is width/height.
// near and far are clipping planes; points at z = -near map to -1 and
// z = -far to +1 after the perspective divide.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	half := fovy / 2
	f := math.Cos(half) / math.Sin(half)
	nf := 1.0 / (near - far)

	return Mat4{
		{f / aspect, 0, 0, 0},
		{0, f, 0, 0},
		{0, 0, (far + near) * nf, -1},
		{0, 0, 2 * far * near * nf, 0},
	}
}

// Mul multiplies two matrices: a * b. Transforming by the product is the same
// as transforming by a and then by b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for row := range 4 {
		m[row] = a[row].MulMat(b)
	}
	return m
}

// TransformPoint transforms v as a point (w=1) and divides by the resulting w.
func (m Mat4) TransformPoint(v Vec3) (Vec3, error) {
	return V4FromV3(v, 1).MulMat(m).PerspectiveDivide()
}

// TransformDir transforms v as a direction (w=0, no translation).
func (m Mat4) TransformDir(v Vec3) Vec3 {
	return V4FromV3(v, 0).MulMat(m).Vec3()
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row].At(col)
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	r := &m[row]
	switch col {
	case 0:
		r.X = val
	case 1:
		r.Y = val
	case 2:
		r.Z = val
	case 3:
		r.W = val
	}
}

// Col returns column j as a vector.
func (m Mat4) Col(j int) Vec4 {
	return Vec4{m[0].At(j), m[1].At(j), m[2].At(j), m[3].At(j)}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{m.Col(0), m.Col(1), m.Col(2), m.Col(3)}
}

// Upper3 returns m with the translation row and the last column cleared, so
// only the linear 3x3 part remains.
func (m Mat4) Upper3() Mat4 {
	out := Identity()
	for row := range 3 {
		out[row] = Vec4{m[row].X, m[row].Y, m[row].Z, 0}
	}
	return out
}

// Inverse returns the inverse of the matrix using Gauss-Jordan elimination
// with partial pivoting. A matrix with no usable pivot returns ErrSingular.
func (m Mat4) Inverse() (Mat4, error) {
	var a [4][8]float64
	for i := range 4 {
		for j := range 4 {
			a[i][j] = m.Get(i, j)
		}
		a[i][4+i] = 1
	}

	for col := range 4 {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if a[pivot][col] == 0 {
			return Mat4{}, ErrSingular
		}
		a[col], a[pivot] = a[pivot], a[col]

		inv := 1 / a[col][col]
		for j := range 8 {
			a[col][j] *= inv
		}
		for row := range 4 {
			if row == col {
				continue
			}
			k := a[row][col]
			for j := range 8 {
				a[row][j] -= k * a[col][j]
			}
		}
	}

	var out Mat4
	for i := range 4 {
		out[i] = Vec4{a[i][4], a[i][5], a[i][6], a[i][7]}
	}
	return out, nil
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return m[3].Vec3()
}

// ApproxEqual reports whether every element of m and n differs by at most eps.
func (m Mat4) ApproxEqual(n Mat4, eps float64) bool {
	for i := range 4 {
		for j := range 4 {
			if math.Abs(m.Get(i, j)-n.Get(i, j)) > eps {
				return false
			}
		}
	}
	return true
}
