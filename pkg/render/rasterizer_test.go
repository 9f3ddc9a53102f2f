package render

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/taigrr/softras/pkg/math3d"
)

func newTestFramebuffer(t testing.TB, width, height int) *Framebuffer {
	t.Helper()
	fb, err := NewFramebuffer(width, height, true)
	if err != nil {
		t.Fatalf("NewFramebuffer: %v", err)
	}
	return fb
}

func pt(x, y int, z float64) ScreenPoint {
	return ScreenPoint{X: x, Y: y, Z: z}
}

var white = [3]math3d.Vec3{math3d.Splat3(1), math3d.Splat3(1), math3d.Splat3(1)}

// covered returns the set of pixels a fill changed from the black background.
func covered(fb *Framebuffer) map[[2]int]bool {
	out := make(map[[2]int]bool)
	for y := range fb.Height() {
		for x := range fb.Width() {
			if fb.GetPixel(x, y) != ColorBlack {
				out[[2]int{x, y}] = true
			}
		}
	}
	return out
}

func TestToPixel(t *testing.T) {
	r := NewRasterizer(newTestFramebuffer(t, 400, 400))

	tests := []struct {
		name  string
		c     float64
		wantX int
		wantY int
	}{
		{"minus one", -1, 0, 400},
		{"center", 0, 200, 200},
		{"plus one", 1, 400, 0},
		{"truncates", -0.999, 0, 399},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.ToPixelX(tc.c); got != tc.wantX {
				t.Errorf("ToPixelX(%v) = %d, want %d", tc.c, got, tc.wantX)
			}
			if got := r.ToPixelY(tc.c); got != tc.wantY {
				t.Errorf("ToPixelY(%v) = %d, want %d", tc.c, got, tc.wantY)
			}
		})
	}
}

func TestSharedEdgeTiling(t *testing.T) {
	// Rectangle corners, split along the B-D diagonal. Both triangles are
	// clockwise.
	a, b, c, d := pt(1, 1, 0), pt(1, 5, 0), pt(5, 5, 0), pt(5, 1, 0)
	tris := [][3]ScreenPoint{{a, b, d}, {b, c, d}}

	counts := make(map[[2]int]int)
	for _, tri := range tris {
		fb := newTestFramebuffer(t, 10, 10)
		if err := fb.FillTriangleVertex(tri, white); err != nil {
			t.Fatalf("FillTriangleVertex: %v", err)
		}
		for p := range covered(fb) {
			counts[p]++
		}
	}

	for y := range 10 {
		for x := range 10 {
			p := [2]int{x, y}
			want := 0
			if x >= 1 && x <= 4 && y >= 1 && y <= 4 {
				want = 1
			}
			if counts[p] != want {
				t.Errorf("pixel %v painted %d times, want %d", p, counts[p], want)
			}
		}
	}
}

func TestDepthTestOrderIndependent(t *testing.T) {
	tri := func(z float64) [3]ScreenPoint {
		return [3]ScreenPoint{pt(0, 0, z), pt(0, 8, z), pt(8, 0, z)}
	}
	red := [3]math3d.Vec3{math3d.V3(1, 0, 0), math3d.V3(1, 0, 0), math3d.V3(1, 0, 0)}
	blue := [3]math3d.Vec3{math3d.V3(0, 0, 1), math3d.V3(0, 0, 1), math3d.V3(0, 0, 1)}

	orders := []struct {
		name  string
		first float64
	}{
		{"near first", 0.2},
		{"far first", 0.8},
	}

	for _, o := range orders {
		t.Run(o.name, func(t *testing.T) {
			fb := newTestFramebuffer(t, 10, 10)
			near := func() error { return fb.FillTriangleVertex(tri(0.2), red) }
			far := func() error { return fb.FillTriangleVertex(tri(0.8), blue) }
			steps := []func() error{near, far}
			if o.first == 0.8 {
				steps = []func() error{far, near}
			}
			for _, step := range steps {
				if err := step(); err != nil {
					t.Fatal(err)
				}
			}

			depth, ok := fb.Depth(1, 1)
			if !ok || math.Abs(depth-0.2) > 1e-12 {
				t.Errorf("depth = %v, want 0.2", depth)
			}
			if got := fb.GetPixel(1, 1); got != RGB(255, 0, 0) {
				t.Errorf("pixel = %v, want red", got)
			}
		})
	}
}

func TestDepthTieKeepsFirst(t *testing.T) {
	fb := newTestFramebuffer(t, 10, 10)
	tri := [3]ScreenPoint{pt(0, 0, 0.5), pt(0, 8, 0.5), pt(8, 0, 0.5)}
	red := [3]math3d.Vec3{math3d.V3(1, 0, 0), math3d.V3(1, 0, 0), math3d.V3(1, 0, 0)}
	blue := [3]math3d.Vec3{math3d.V3(0, 0, 1), math3d.V3(0, 0, 1), math3d.V3(0, 0, 1)}

	if err := fb.FillTriangleVertex(tri, red); err != nil {
		t.Fatal(err)
	}
	if err := fb.FillTriangleVertex(tri, blue); err != nil {
		t.Fatal(err)
	}

	if got := fb.GetPixel(1, 1); got != RGB(255, 0, 0) {
		t.Errorf("pixel = %v, want red from the first fill", got)
	}
	if depth, _ := fb.Depth(1, 1); math.Abs(depth-0.5) > 1e-12 {
		t.Errorf("depth = %v, want 0.5", depth)
	}
}

func TestDepthRejectsBeyondFarPlane(t *testing.T) {
	fb := newTestFramebuffer(t, 10, 10)
	tri := [3]ScreenPoint{pt(0, 0, 1.5), pt(0, 8, 1.5), pt(8, 0, 1.5)}
	if err := fb.FillTriangleVertex(tri, white); err != nil {
		t.Fatal(err)
	}
	if n := len(covered(fb)); n != 0 {
		t.Errorf("%d pixels written beyond the far plane, want 0", n)
	}
}

func TestFillDegenerateTriangle(t *testing.T) {
	tests := []struct {
		name string
		tri  [3]ScreenPoint
	}{
		{"single point", [3]ScreenPoint{pt(3, 3, 0), pt(3, 3, 0), pt(3, 3, 0)}},
		{"horizontal line", [3]ScreenPoint{pt(0, 2, 0), pt(4, 2, 0), pt(8, 2, 0)}},
		{"diagonal line", [3]ScreenPoint{pt(0, 0, 0), pt(3, 3, 0), pt(6, 6, 0)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := newTestFramebuffer(t, 10, 10)
			if err := fb.FillTriangleVertex(tc.tri, white); err != nil {
				t.Fatalf("FillTriangleVertex: %v", err)
			}
			if n := len(covered(fb)); n != 0 {
				t.Errorf("%d pixels written, want 0", n)
			}
		})
	}
}

func TestFillClampsToFramebuffer(t *testing.T) {
	fb := newTestFramebuffer(t, 10, 10)
	tri := [3]ScreenPoint{pt(-50, -50, 0), pt(-50, 100, 0), pt(100, -50, 0)}
	if err := fb.FillTriangleVertex(tri, white); err != nil {
		t.Fatalf("FillTriangleVertex: %v", err)
	}
	if n := len(covered(fb)); n != 100 {
		t.Errorf("%d pixels written, want all 100", n)
	}
}

func TestFillTriangleErrorLeavesBufferUntouched(t *testing.T) {
	fb := newTestFramebuffer(t, 16, 16)
	fb.Workers = 4
	before := append([]byte(nil), fb.Image().Pix...)

	light := NewPointLight(Reflectance{Position: math3d.V3(0, 0, 5), Diffuse: math3d.Splat3(1)})
	tri := ScreenTriangle{P: [3]ScreenPoint{pt(0, 0, 0), pt(0, 15, 0), pt(15, 0, 0)}}
	for i := range tri.F {
		tri.F[i].Position = math3d.V3(0, 0, -1)
		// zero normals cannot be renormalized
	}

	err := fb.FillTriangle(tri, light)
	if !errors.Is(err, math3d.ErrDegenerate) {
		t.Fatalf("err = %v, want ErrDegenerate", err)
	}
	if !bytes.Equal(fb.Image().Pix, before) {
		t.Error("failed fill modified the framebuffer")
	}
	if d, _ := fb.Depth(2, 2); d != ClearDepthValue {
		t.Errorf("depth = %v after failed fill, want %v", d, ClearDepthValue)
	}
}

func TestParallelFillMatchesSerial(t *testing.T) {
	light := NewPointLight(Reflectance{
		Position:  math3d.V3(0, 1, 0),
		Ambient:   math3d.Splat3(0.1),
		Diffuse:   math3d.Splat3(0.4),
		Specular:  math3d.Splat3(0.5),
		Shininess: 12,
	})
	tri := ScreenTriangle{
		P: [3]ScreenPoint{pt(2, 3, -0.5), pt(20, 60, 0.1), pt(61, 7, 0.4)},
		F: [3]Fragment{
			{Position: math3d.V3(-1, -1, -2), Normal: math3d.V3(0, 0, 1)},
			{Position: math3d.V3(0, 1, -2), Normal: math3d.V3(0, 1, 1)},
			{Position: math3d.V3(1, -1, -3), Normal: math3d.V3(1, 0, 1)},
		},
	}

	serial := newTestFramebuffer(t, 64, 64)
	parallel := newTestFramebuffer(t, 64, 64)
	parallel.Workers = 5

	for _, fb := range []*Framebuffer{serial, parallel} {
		if err := fb.FillTriangle(tri, light); err != nil {
			t.Fatalf("FillTriangle: %v", err)
		}
	}
	if !bytes.Equal(serial.Image().Pix, parallel.Image().Pix) {
		t.Error("parallel fill differs from serial fill")
	}
	if !slicesEqual(serial.depth, parallel.depth) {
		t.Error("parallel depth differs from serial depth")
	}
}

func slicesEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBands(t *testing.T) {
	tests := []struct {
		name       string
		workers    int
		minY, maxY int
		want       int
	}{
		{"serial", 0, 0, 99, 1},
		{"four workers", 4, 0, 99, 4},
		{"more workers than rows", 8, 10, 12, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := &Framebuffer{Workers: tc.workers}
			bands := fb.bands(tc.minY, tc.maxY)
			if len(bands) != tc.want {
				t.Fatalf("got %d bands, want %d", len(bands), tc.want)
			}
			next := tc.minY
			for _, b := range bands {
				if b[0] != next || b[1] < b[0] {
					t.Fatalf("bands %v are not contiguous", bands)
				}
				next = b[1] + 1
			}
			if next != tc.maxY+1 {
				t.Errorf("bands %v do not reach row %d", bands, tc.maxY)
			}
		})
	}
}

func TestDrawTriangleMapsCanonical(t *testing.T) {
	fb := newTestFramebuffer(t, 20, 20)
	r := NewRasterizer(fb)

	// Clockwise in pixel space once y is flipped by ToPixelY.
	canonical := [3]math3d.Vec3{
		math3d.V3(-1, 1, 0),
		math3d.V3(-1, -1, 0),
		math3d.V3(1, 1, 0),
	}
	if err := r.DrawTriangleVertex(canonical, white); err != nil {
		t.Fatalf("DrawTriangleVertex: %v", err)
	}
	if fb.GetPixel(2, 2) == ColorBlack {
		t.Errorf("pixel near the right angle not painted")
	}
	if fb.GetPixel(18, 18) != ColorBlack {
		t.Errorf("pixel across the hypotenuse painted")
	}
}

func BenchmarkFillTriangle(b *testing.B) {
	fb := newTestFramebuffer(b, 400, 400)
	light := NewPointLight(Reflectance{
		Position: math3d.V3(0, 1, 0),
		Diffuse:  math3d.Splat3(0.5),
	})
	tri := ScreenTriangle{
		P: [3]ScreenPoint{pt(0, 0, 0), pt(0, 399, 0), pt(399, 0, 0)},
		F: [3]Fragment{
			{Position: math3d.V3(-1, -1, -2), Normal: math3d.V3(0, 0, 1)},
			{Position: math3d.V3(-1, 1, -2), Normal: math3d.V3(0, 0, 1)},
			{Position: math3d.V3(1, -1, -2), Normal: math3d.V3(0, 0, 1)},
		},
	}

	for b.Loop() {
		fb.ClearDepth()
		_ = fb.FillTriangle(tri, light)
	}
}
