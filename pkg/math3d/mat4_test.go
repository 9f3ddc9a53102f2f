package math3d

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func TestMulComposesLeftToRight(t *testing.T) {
	a := Translate(V3(1, 2, 3))
	b := Scale(V3(2, 3, 4))
	p := V4(1, 1, 1, 1)

	got := p.MulMat(a.Mul(b))
	want := p.MulMat(a).MulMat(b)
	if !got.Vec3().ApproxEqual(want.Vec3(), eps) || math.Abs(got.W-want.W) > eps {
		t.Errorf("p·(a·b) = %v, want %v", got, want)
	}
	// translate first, then scale
	if exp := V3(4, 9, 16); !got.Vec3().ApproxEqual(exp, eps) {
		t.Errorf("got %v, want %v", got.Vec3(), exp)
	}
}

func TestTranslateLastRow(t *testing.T) {
	p, err := Translate(V3(5, -1, 2)).TransformPoint(V3(1, 1, 1))
	if err != nil {
		t.Fatalf("TransformPoint: %v", err)
	}
	if want := V3(6, 0, 3); !p.ApproxEqual(want, eps) {
		t.Errorf("got %v, want %v", p, want)
	}
	if d := Translate(V3(5, -1, 2)).TransformDir(V3(1, 1, 1)); d != V3(1, 1, 1) {
		t.Errorf("direction moved by translation: %v", d)
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float64
		in    Vec3
		want  Vec3
	}{
		{"z quarter turn", V3(0, 0, 1), math.Pi / 2, V3(1, 0, 0), V3(0, 1, 0)},
		{"x quarter turn", V3(1, 0, 0), math.Pi / 2, V3(0, 1, 0), V3(0, 0, 1)},
		{"y quarter turn", V3(0, 1, 0), math.Pi / 2, V3(0, 0, 1), V3(1, 0, 0)},
		{"unnormalized axis", V3(0, 0, 5), math.Pi, V3(1, 0, 0), V3(-1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Rotate(tt.axis, tt.angle)
			if err != nil {
				t.Fatalf("Rotate: %v", err)
			}
			if got := m.TransformDir(tt.in); !got.ApproxEqual(tt.want, eps) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := Rotate(Zero3(), 1); !errors.Is(err, ErrDegenerate) {
		t.Errorf("zero axis err = %v, want ErrDegenerate", err)
	}
}

func TestRotateYMatchesRotate(t *testing.T) {
	r, err := Rotate(Up(), 0.7)
	if err != nil {
		t.Fatal(err)
	}
	if !RotateY(0.7).ApproxEqual(r, eps) {
		t.Errorf("RotateY = %v, want %v", RotateY(0.7), r)
	}
}

func TestPerspectiveNearFar(t *testing.T) {
	near, far := 1.0, 100.0
	proj := Perspective(math.Pi/2, 1, near, far)

	tests := []struct {
		name  string
		z     float64
		wantZ float64
	}{
		{"near plane", -near, -1},
		{"far plane", -far, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := proj.TransformPoint(V3(0, 0, tt.z))
			if err != nil {
				t.Fatalf("TransformPoint: %v", err)
			}
			if math.Abs(p.Z-tt.wantZ) > 1e-9 {
				t.Errorf("z = %v, want %v", p.Z, tt.wantZ)
			}
		})
	}
}

func TestLookAt(t *testing.T) {
	view, err := LookAt(V3(0, 0, 5), Zero3(), Up())
	if err != nil {
		t.Fatalf("LookAt: %v", err)
	}
	p, err := view.TransformPoint(Zero3())
	if err != nil {
		t.Fatal(err)
	}
	if want := V3(0, 0, -5); !p.ApproxEqual(want, eps) {
		t.Errorf("origin in view space = %v, want %v", p, want)
	}

	if _, err := LookAt(V3(1, 1, 1), V3(1, 1, 1), Up()); !errors.Is(err, ErrDegenerate) {
		t.Errorf("coincident eye/center err = %v, want ErrDegenerate", err)
	}
	if _, err := LookAt(Zero3(), V3(0, 5, 0), Up()); !errors.Is(err, ErrDegenerate) {
		t.Errorf("up parallel to forward err = %v, want ErrDegenerate", err)
	}
}

func TestInverse(t *testing.T) {
	r, err := Rotate(V3(1, 2, 3), 0.8)
	if err != nil {
		t.Fatal(err)
	}
	m := Translate(V3(1, 2, 3)).Mul(r).Mul(Scale(V3(2, 3, 4)))

	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	if got := m.Mul(inv); !got.ApproxEqual(Identity(), 1e-9) {
		t.Errorf("m·m⁻¹ = %v, want identity", got)
	}

	if _, err := Scale(V3(1, 0, 1)).Inverse(); !errors.Is(err, ErrSingular) {
		t.Errorf("singular err = %v, want ErrSingular", err)
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	tr := m.Transpose()
	if tr.Get(0, 3) != 1 || tr.Get(1, 3) != 2 || tr.Get(2, 3) != 3 {
		t.Errorf("translation not moved to last column: %v", tr)
	}
	if tr.Transpose() != m {
		t.Errorf("double transpose changed the matrix")
	}
}
