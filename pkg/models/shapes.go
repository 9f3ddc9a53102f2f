package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/render"
)

// ErrShapeParams is returned when a shape generator is asked for a shape
// with too few segments or a non-positive size.
var ErrShapeParams = errors.New("models: invalid shape parameters")

// NewSphere creates a UV sphere of the given radius around center. horiz is
// the number of latitude bands between the poles and vert the number of
// segments around the vertical axis. The mesh has vert*(horiz+2) vertices,
// including a full ring at each pole, and 2*vert*horiz triangles.
func NewSphere(horiz, vert int, center render.Vertex, radius float64) (*Mesh, error) {
	if horiz < 1 || vert < 3 || !(radius > 0) {
		return nil, fmt.Errorf("sphere %dx%d radius %v: %w", horiz, vert, radius, ErrShapeParams)
	}

	m := &Mesh{
		Name:     "sphere",
		Vertices: make([]render.Vertex, vert*(horiz+2)),
		Faces:    make([]Face, 2*vert*horiz),
		Center:   center,
	}

	for yy := 0; yy <= horiz+1; yy++ {
		y := math.Cos(float64(yy) * math.Pi / float64(horiz+1))
		r := math.Sqrt(math.Max(0, 1-y*y))
		for rr := range vert {
			a := 2 * math.Pi * float64(rr) / float64(vert)
			p := math3d.V3(r*math.Cos(a), y, r*math.Sin(a))
			m.Vertices[rr+yy*vert].Position = p.Scale(radius).Add(center.Position)
		}
	}

	for yy := range horiz {
		for rr := range vert {
			next := (rr + 1) % vert
			m.Faces[rr+2*yy*vert] = Face{V: [3]int{
				next + yy*vert,
				rr + vert + yy*vert,
				next + vert + yy*vert,
			}}
			m.Faces[rr+vert+2*yy*vert] = Face{V: [3]int{
				rr + vert + yy*vert,
				rr + 2*vert + yy*vert,
				next + vert + yy*vert,
			}}
		}
	}

	m.CalculateBounds()
	return m, nil
}

// NewCone creates a cone whose base circle of the given radius lies in the
// z = center.z plane and whose apex sits height units towards -z. Vertex 0
// is the base centre, vertex 1 the apex and the rest the base ring.
func NewCone(radius, height float64, center render.Vertex, segments int) (*Mesh, error) {
	if segments < 3 || !(radius > 0) || !(height > 0) {
		return nil, fmt.Errorf("cone r=%v h=%v segments=%d: %w", radius, height, segments, ErrShapeParams)
	}

	const firstRing = 2
	m := &Mesh{
		Name:     "cone",
		Vertices: make([]render.Vertex, segments+firstRing),
		Faces:    make([]Face, 0, 2*segments),
		Center:   center,
	}

	c := center.Position
	m.Vertices[0] = center
	m.Vertices[1] = render.Vertex{Position: math3d.V3(c.X, c.Y, c.Z-height)}

	step := 2 * math.Pi / float64(segments)
	for k := range segments {
		t := float64(k) * step
		m.Vertices[firstRing+k].Position = math3d.V3(radius*math.Cos(t)+c.X, radius*math.Sin(t)+c.Y, c.Z)
	}

	for i := firstRing; i < len(m.Vertices); i++ {
		j := i + 1
		if j == len(m.Vertices) {
			j = firstRing
		}
		m.Faces = append(m.Faces,
			Face{V: [3]int{j, 0, i}}, // base
			Face{V: [3]int{i, 1, j}}, // side
		)
	}

	m.CalculateBounds()
	return m, nil
}

// NewSimpleTriangle creates a single triangle in the z = 0 plane.
func NewSimpleTriangle() *Mesh {
	m := &Mesh{
		Name: "triangle",
		Vertices: []render.Vertex{
			{Position: math3d.V3(-0.5, 0, 0)},
			{Position: math3d.V3(0, 0.5, 0)},
			{Position: math3d.V3(0.5, 0, 0)},
		},
		Faces: []Face{{V: [3]int{0, 1, 2}}},
	}
	m.CalculateBounds()
	return m
}
