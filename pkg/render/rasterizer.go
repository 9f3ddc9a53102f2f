package render

import (
	"fmt"

	"github.com/taigrr/softras/pkg/math3d"
)

// Rasterizer maps canonical view volume coordinates to pixels and hands
// triangles to its framebuffer.
type Rasterizer struct {
	fb *Framebuffer
}

// NewRasterizer creates a rasterizer drawing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	return &Rasterizer{fb: fb}
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer { return r.fb }

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int { return r.fb.Width() }

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int { return r.fb.Height() }

// ToPixelX maps canonical x in [-1, 1] to a column, truncating toward zero.
func (r *Rasterizer) ToPixelX(x float64) int {
	return int((x + 1) * float64(r.fb.Width()) * 0.5)
}

// ToPixelY maps canonical y in [-1, 1] to a row, truncating toward zero.
// Canonical +1 lands on row 0.
func (r *Rasterizer) ToPixelY(y float64) int {
	h := float64(r.fb.Height())
	return int(h - (y+1)*h*0.5)
}

// toScreen maps a canonical point to pixel space, keeping its depth.
func (r *Rasterizer) toScreen(p math3d.Vec3) ScreenPoint {
	return ScreenPoint{X: r.ToPixelX(p.X), Y: r.ToPixelY(p.Y), Z: p.Z}
}

// DrawTriangle fills a triangle given by three canonical positions, shading
// it per pixel from the three fragments.
func (r *Rasterizer) DrawTriangle(canonical [3]math3d.Vec3, frags [3]Fragment, light Light) error {
	tri := ScreenTriangle{F: frags}
	for i, p := range canonical {
		tri.P[i] = r.toScreen(p)
	}
	if err := r.fb.FillTriangle(tri, light); err != nil {
		return fmt.Errorf("draw triangle: %w", err)
	}
	return nil
}

// DrawTriangleVertex fills a triangle with interpolated vertex colours.
func (r *Rasterizer) DrawTriangleVertex(canonical [3]math3d.Vec3, colors [3]math3d.Vec3) error {
	var p [3]ScreenPoint
	for i, c := range canonical {
		p[i] = r.toScreen(c)
	}
	if err := r.fb.FillTriangleVertex(p, colors); err != nil {
		return fmt.Errorf("draw triangle: %w", err)
	}
	return nil
}

// DrawLine draws a line between two canonical points, ignoring depth.
func (r *Rasterizer) DrawLine(a, b math3d.Vec3, c Color) {
	pa, pb := r.toScreen(a), r.toScreen(b)
	r.fb.DrawLine(pa.X, pa.Y, pb.X, pb.Y, c)
}
