package render

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/softras/pkg/math3d"
)

// shadeFunc returns the colour of a covered pixel from its barycentric
// weights.
type shadeFunc func(l1, l2, l3 float64) (math3d.Vec3, error)

// pixelWrite is a colour and depth staged for one pixel.
type pixelWrite struct {
	index int
	depth float64
	color math3d.Vec3
}

// edgeSetup holds the integer edge deltas and top-left flags of one
// triangle.
type edgeSetup struct {
	p                      [3]ScreenPoint
	dx12, dx23, dx31       int
	dy12, dy23, dy31       int
	tl1, tl2, tl3          bool
	area1, area2           float64
	minX, maxX, minY, maxY int
}

func newEdgeSetup(p [3]ScreenPoint, width, height int) edgeSetup {
	x1, y1 := p[0].X, p[0].Y
	x2, y2 := p[1].X, p[1].Y
	x3, y3 := p[2].X, p[2].Y

	e := edgeSetup{
		p:    p,
		minX: max(min(x1, x2, x3), 0),
		maxX: min(max(x1, x2, x3), width-1),
		minY: max(min(y1, y2, y3), 0),
		maxY: min(max(y1, y2, y3), height-1),
		dx12: x1 - x2,
		dx23: x2 - x3,
		dx31: x3 - x1,
		dy12: y1 - y2,
		dy23: y2 - y3,
		dy31: y3 - y1,
	}
	e.tl1 = e.dy12 < 0 || (e.dy12 == 0 && e.dx12 > 0)
	e.tl2 = e.dy23 < 0 || (e.dy23 == 0 && e.dx23 > 0)
	e.tl3 = e.dy31 < 0 || (e.dy31 == 0 && e.dx31 > 0)
	e.area1 = float64(e.dy23*(x1-x3) + (x3-x2)*(y1-y3))
	e.area2 = float64(e.dy31*e.dx23 + (x1-x3)*e.dy23)
	return e
}

// passes applies the top-left rule to one edge function value.
func passes(cond int, topLeft bool) bool {
	return (cond >= 0 && topLeft) || (cond > 0 && !topLeft)
}

// covers reports whether pixel (x, y) is inside the triangle.
func (e *edgeSetup) covers(x, y int) bool {
	p := e.p
	cond1 := e.dx12*(y-p[0].Y) - e.dy12*(x-p[0].X)
	cond2 := e.dx23*(y-p[1].Y) - e.dy23*(x-p[1].X)
	cond3 := e.dx31*(y-p[2].Y) - e.dy31*(x-p[2].X)
	return passes(cond1, e.tl1) && passes(cond2, e.tl2) && passes(cond3, e.tl3)
}

// weights returns the barycentric weights of pixel (x, y). Degenerate
// triangles produce NaN or infinite weights, never a panic.
func (e *edgeSetup) weights(x, y int) (l1, l2, l3 float64) {
	p := e.p
	x2, x3, y3 := p[1].X, p[2].X, p[2].Y
	l1 = float64(e.dy23*(x-x3)+(x3-x2)*(y-y3)) / e.area1
	l2 = float64(e.dy31*(x-x3)+(p[0].X-x3)*(y-y3)) / e.area2
	l3 = 1 - l1 - l2
	return l1, l2, l3
}

// scan tests rows [y0, y1] against coverage and the depth buffer and stages
// the resulting writes. It only reads the framebuffer.
func (fb *Framebuffer) scan(e *edgeSetup, y0, y1 int, shade shadeFunc) ([]pixelWrite, error) {
	var writes []pixelWrite
	for y := y0; y <= y1; y++ {
		for x := e.minX; x <= e.maxX; x++ {
			l1, l2, l3 := e.weights(x, y)
			depth := l1*e.p[0].Z + l2*e.p[1].Z + l3*e.p[2].Z
			i := y*fb.width + x
			if !e.covers(x, y) || !(depth < fb.depth[i]) {
				continue
			}
			c, err := shade(l1, l2, l3)
			if err != nil {
				return nil, fmt.Errorf("shade pixel (%d, %d): %w", x, y, err)
			}
			writes = append(writes, pixelWrite{index: i, depth: depth, color: c})
		}
	}
	return writes, nil
}

// bands splits rows [minY, maxY] into at most fb.Workers contiguous ranges.
func (fb *Framebuffer) bands(minY, maxY int) [][2]int {
	rows := maxY - minY + 1
	n := min(max(fb.Workers, 1), rows)
	size := (rows + n - 1) / n
	out := make([][2]int, 0, n)
	for y := minY; y <= maxY; y += size {
		out = append(out, [2]int{y, min(y+size-1, maxY)})
	}
	return out
}

// fill runs the shared triangle loop. Writes are committed only after every
// band has been shaded without error, so a failed fill leaves the
// framebuffer untouched.
func (fb *Framebuffer) fill(p [3]ScreenPoint, shade shadeFunc) error {
	e := newEdgeSetup(p, fb.width, fb.height)
	if e.minX > e.maxX || e.minY > e.maxY {
		return nil
	}

	bands := fb.bands(e.minY, e.maxY)
	staged := make([][]pixelWrite, len(bands))

	if len(bands) == 1 {
		w, err := fb.scan(&e, e.minY, e.maxY, shade)
		if err != nil {
			return err
		}
		staged[0] = w
	} else {
		var g errgroup.Group
		for i, b := range bands {
			g.Go(func() error {
				w, err := fb.scan(&e, b[0], b[1], shade)
				staged[i] = w
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		Logger().Debug("filled triangle", "bands", len(bands), "rows", e.maxY-e.minY+1)
	}

	for _, band := range staged {
		for _, w := range band {
			fb.depth[w.index] = w.depth
			fb.put(w.index, toRGBA(w.color))
		}
	}
	return nil
}

// toRGBA converts a [0, 1] colour to bytes by truncation. Alpha is opaque.
func toRGBA(c math3d.Vec3) Color {
	return Color{
		R: uint8(int(c.X * 255)),
		G: uint8(int(c.Y * 255)),
		B: uint8(int(c.Z * 255)),
		A: 255,
	}
}

// FillTriangle rasterizes a screen-space triangle, shading every covered
// pixel that passes the depth test with light and the borrowed texture.
// Normals, positions and texture coordinates are interpolated linearly in
// screen space; the interpolated normal is renormalized before shading.
func (fb *Framebuffer) FillTriangle(tri ScreenTriangle, light Light) error {
	var tex Sampler
	if fb.texture != nil {
		tex = fb.texture
	}
	f := tri.F
	return fb.fill(tri.P, func(l1, l2, l3 float64) (math3d.Vec3, error) {
		n, err := math3d.Barycentric(f[0].Normal, f[1].Normal, f[2].Normal, l1, l2, l3).Unit()
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("interpolated normal: %w", err)
		}
		frag := Fragment{
			Position:  math3d.Barycentric(f[0].Position, f[1].Position, f[2].Position, l1, l2, l3),
			Normal:    n,
			TexCoords: math3d.Barycentric(f[0].TexCoords, f[1].TexCoords, f[2].TexCoords, l1, l2, l3),
		}
		return Shade(light, frag, tex)
	})
}

// FillTriangleVertex rasterizes a screen-space triangle, interpolating the
// three vertex colours instead of shading per pixel.
func (fb *Framebuffer) FillTriangleVertex(p [3]ScreenPoint, colors [3]math3d.Vec3) error {
	return fb.fill(p, func(l1, l2, l3 float64) (math3d.Vec3, error) {
		return math3d.Barycentric(colors[0], colors[1], colors[2], l1, l2, l3), nil
	})
}
