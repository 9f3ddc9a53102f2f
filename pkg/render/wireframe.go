package render

import (
	"fmt"

	"github.com/taigrr/softras/pkg/math3d"
)

// Wireframe draws 3D line primitives through a vertex processor. Lines
// ignore and do not update the depth buffer.
type Wireframe struct {
	vp *VertexProcessor
	r  *Rasterizer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(vp *VertexProcessor, r *Rasterizer) *Wireframe {
	return &Wireframe{vp: vp, r: r}
}

// DrawLine3D draws a line between two object-space points.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) error {
	c1, err := w.vp.ConvertToCanonical(p1)
	if err != nil {
		return fmt.Errorf("line start: %w", err)
	}
	c2, err := w.vp.ConvertToCanonical(p2)
	if err != nil {
		return fmt.Errorf("line end: %w", err)
	}
	w.r.DrawLine(c1, c2, color)
	return nil
}

// boxEdges lists the 12 edges of a box by corner index.
var boxEdges = [12][2]int{
	// Back face
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	// Front face
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	// Connecting edges
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// DrawBox draws the 12 edges of an axis-aligned box.
func (w *Wireframe) DrawBox(box AABB, color Color) error {
	corners := box.Corners()
	for _, e := range boxEdges {
		if err := w.DrawLine3D(corners[e[0]], corners[e[1]], color); err != nil {
			return err
		}
	}
	return nil
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) error {
	origin := math3d.Zero3()
	axes := []struct {
		dir   math3d.Vec3
		color Color
	}{
		{math3d.V3(length, 0, 0), ColorRed},
		{math3d.V3(0, length, 0), ColorGreen},
		{math3d.V3(0, 0, length), ColorBlue},
	}
	for _, a := range axes {
		if err := w.DrawLine3D(origin, a.dir, a.color); err != nil {
			return err
		}
	}
	return nil
}
