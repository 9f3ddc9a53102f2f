package math3d

import (
	"errors"
	"math"
	"testing"
)

func TestVec3Identities(t *testing.T) {
	vectors := []Vec3{
		V3(1, 2, 3),
		V3(-4.5, 0, 7.25),
		V3(0.001, -0.002, 1e6),
	}

	for _, v := range vectors {
		if got := v.Add(Zero3()); got != v {
			t.Errorf("%v + 0 = %v, want %v", v, got, v)
		}
		if got := v.Scale(1); got != v {
			t.Errorf("%v * 1 = %v, want %v", v, got, v)
		}
		if got := v.Sub(v); got != Zero3() {
			t.Errorf("%v - %v = %v, want zero", v, v, got)
		}
		u, err := v.Unit()
		if err != nil {
			t.Fatalf("Unit(%v): %v", v, err)
		}
		if math.Abs(u.Len()-1) > 1e-12 {
			t.Errorf("|Unit(%v)| = %v, want 1", v, u.Len())
		}
	}
}

func TestVec3Quo(t *testing.T) {
	tests := []struct {
		name    string
		v       Vec3
		s       float64
		want    Vec3
		wantErr error
	}{
		{"halve", V3(2, 4, 6), 2, V3(1, 2, 3), nil},
		{"negative", V3(1, -1, 3), -1, V3(-1, 1, -3), nil},
		{"zero", V3(1, 2, 3), 0, Vec3{}, ErrDivideByZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Quo(tt.s)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3QuoVec(t *testing.T) {
	got, err := V3(2, 9, -4).QuoVec(V3(2, 3, 4))
	if err != nil {
		t.Fatalf("QuoVec: %v", err)
	}
	if want := V3(1, 3, -1); got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	for _, div := range []Vec3{V3(0, 1, 1), V3(1, 0, 1), V3(1, 1, 0)} {
		if _, err := V3(1, 1, 1).QuoVec(div); !errors.Is(err, ErrDivideByZero) {
			t.Errorf("QuoVec(%v) err = %v, want ErrDivideByZero", div, err)
		}
	}
}

func TestVec3UnitDegenerate(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
	}{
		{"zero", Zero3()},
		{"tiny", V3(1e-5, 0, 0)},
		{"at epsilon", V3(NormalizeEpsilon, 0, 0)},
		{"nan", V3(math.NaN(), 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.v.Unit(); !errors.Is(err, ErrDegenerate) {
				t.Errorf("Unit(%v) err = %v, want ErrDegenerate", tt.v, err)
			}
		})
	}
}

func TestFromSliceArity(t *testing.T) {
	if _, err := V3FromSlice([]float64{1, 2}); !errors.Is(err, ErrArity) {
		t.Errorf("V3FromSlice(2 values) err = %v, want ErrArity", err)
	}
	if _, err := V4FromSlice([]float64{1, 2, 3, 4, 5}); !errors.Is(err, ErrArity) {
		t.Errorf("V4FromSlice(5 values) err = %v, want ErrArity", err)
	}

	v, err := V4FromSlice([]float64{0.1, 0.2, 0.3, 1})
	if err != nil {
		t.Fatalf("V4FromSlice: %v", err)
	}
	if v.R() != v.X || v.G() != v.Y || v.B() != v.Z || v.A() != v.W {
		t.Errorf("colour accessors disagree with positional fields: %+v", v)
	}
}

func TestVec3Cross(t *testing.T) {
	x, y, z := V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)
	if got := x.Cross(y); got != z {
		t.Errorf("x × y = %v, want %v", got, z)
	}
	if got := y.Cross(x); got != z.Negate() {
		t.Errorf("y × x = %v, want %v", got, z.Negate())
	}
}

func TestVec3Clamp(t *testing.T) {
	got := V3(-0.5, 0.5, 1.5).Clamp(0, 1)
	if want := V3(0, 0.5, 1); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBarycentric(t *testing.T) {
	a, b, c := V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)
	got := Barycentric(a, b, c, 0.2, 0.3, 0.5)
	if want := V3(0.2, 0.3, 0.5); !got.ApproxEqual(want, 1e-12) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPerspectiveDivide(t *testing.T) {
	got, err := V4(2, 4, 6, 2).PerspectiveDivide()
	if err != nil {
		t.Fatalf("PerspectiveDivide: %v", err)
	}
	if want := V3(1, 2, 3); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, err := V4(1, 1, 1, 0).PerspectiveDivide(); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("w=0 err = %v, want ErrDivideByZero", err)
	}
}
