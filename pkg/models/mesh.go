// Package models provides triangle meshes for the render pipeline: the mesh
// type itself, procedural shapes and glTF loading.
package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/render"
)

// ErrIndexRange is returned when a face references a vertex that does not
// exist.
var ErrIndexRange = errors.New("models: vertex index out of range")

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name     string
	Vertices []render.Vertex
	Faces    []Face

	// Center is the nominal centre the mesh was generated around. It is
	// informational and never changes after construction.
	Center render.Vertex

	// TransformNormals maps normals through the model-view normal matrix
	// before shading. Off by default: normals are shaded as authored.
	TransformNormals bool

	// Cull skips the whole mesh when its bounds lie outside the view
	// frustum. Triangles are never clipped.
	Cull bool

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is a triangle given by three indices into Mesh.Vertices, wound
// clockwise on screen.
type Face struct {
	V [3]int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]render.Vertex, 0),
		Faces:    make([]Face, 0),
	}
}

// Validate checks that every face index lies within the vertex slice.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, idx := range f.V {
			if idx < 0 || idx >= n {
				return fmt.Errorf("face %d index %d of %d vertices: %w", i, idx, n, ErrIndexRange)
			}
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Bounds returns the bounding box computed by CalculateBounds.
func (m *Mesh) Bounds() render.AABB {
	return render.NewAABB(m.BoundsMin, m.BoundsMax)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.Bounds().Size()
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateNormals replaces every vertex normal with the unweighted average
// of the unit normals of the faces that use it. A face with no area, or a
// vertex no face uses or whose face normals cancel, returns
// math3d.ErrDegenerate.
func (m *Mesh) CalculateNormals() error {
	if err := m.Validate(); err != nil {
		return err
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for i, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		n, err := v2.Sub(v0).Cross(v1.Sub(v0)).Unit()
		if err != nil {
			return fmt.Errorf("face %d normal: %w", i, err)
		}
		for _, idx := range f.V {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(n)
		}
	}

	for i := range m.Vertices {
		n, err := m.Vertices[i].Normal.Unit()
		if err != nil {
			return fmt.Errorf("vertex %d normal: %w", i, err)
		}
		m.Vertices[i].Normal = n
	}
	return nil
}

// Transform applies a transformation matrix to all vertex positions and
// recomputes the bounds. Normals are left alone; CalculateNormals runs on
// every draw.
func (m *Mesh) Transform(mat math3d.Mat4) error {
	for i := range m.Vertices {
		p, err := mat.TransformPoint(m.Vertices[i].Position)
		if err != nil {
			return fmt.Errorf("transform vertex %d: %w", i, err)
		}
		m.Vertices[i].Position = p
	}
	m.CalculateBounds()
	return nil
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := *m
	clone.Vertices = make([]render.Vertex, len(m.Vertices))
	clone.Faces = make([]Face, len(m.Faces))
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	return &clone
}

// sphericalUV maps a position to spherical texture coordinates, each clamped
// to [0, 1]. u is stored in X and v in Y.
func sphericalUV(p math3d.Vec3) math3d.Vec3 {
	v := math3d.Clamp(math.Asin(math3d.Clamp(p.Y/math.Pi, -1, 1))+0.5, 0, 1)
	u := math3d.Clamp(math.Atan2(p.X, p.Z)/(2*math.Pi)+0.5, 0, 1)
	return math3d.V3(u, v, 0)
}

// prepare validates the mesh, recomputes normals and reports whether the
// mesh should be drawn at all.
func (m *Mesh) prepare(vp *render.VertexProcessor) (bool, error) {
	if err := m.CalculateNormals(); err != nil {
		return false, fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	if m.Cull {
		m.CalculateBounds()
		if !vp.Frustum().IntersectAABB(m.Bounds()) {
			render.Logger().Debug("mesh culled", "mesh", m.Name)
			return false, nil
		}
	}
	return true, nil
}

// project converts the three vertices of f to canonical coordinates.
func (m *Mesh) project(vp *render.VertexProcessor, f Face) ([3]math3d.Vec3, error) {
	var out [3]math3d.Vec3
	for i, idx := range f.V {
		p, err := vp.ConvertToCanonical(m.Vertices[idx].Position)
		if err != nil {
			return out, err
		}
		out[i] = p
	}
	return out, nil
}

// fragment builds the shading record for one vertex: the authored position,
// the normal (optionally through the normal matrix) and spherical texture
// coordinates from the authored position.
func (m *Mesh) fragment(vp *render.VertexProcessor, idx int) (render.Fragment, error) {
	v := m.Vertices[idx]
	frag := render.Fragment{
		Position:  v.Position,
		Normal:    v.Normal,
		TexCoords: sphericalUV(v.Position),
	}
	if m.TransformNormals {
		n, err := vp.TransformNormal(v.Normal)
		if err != nil {
			return frag, err
		}
		frag.Normal = n
	}
	return frag, nil
}

// Draw renders the mesh with per-pixel Phong shading. The framebuffer's
// texture, if any, is sampled with spherical coordinates.
func (m *Mesh) Draw(r *render.Rasterizer, vp *render.VertexProcessor, light render.Light) error {
	ok, err := m.prepare(vp)
	if err != nil || !ok {
		return err
	}

	for i, f := range m.Faces {
		canonical, err := m.project(vp, f)
		if err != nil {
			return fmt.Errorf("mesh %q face %d: %w", m.Name, i, err)
		}
		var frags [3]render.Fragment
		for j, idx := range f.V {
			if frags[j], err = m.fragment(vp, idx); err != nil {
				return fmt.Errorf("mesh %q face %d: %w", m.Name, i, err)
			}
		}
		if err := r.DrawTriangle(canonical, frags, light); err != nil {
			return fmt.Errorf("mesh %q face %d: %w", m.Name, i, err)
		}
	}

	render.Logger().Debug("mesh drawn", "mesh", m.Name, "triangles", len(m.Faces), "shading", "phong")
	return nil
}

// DrawVertex renders the mesh with Gouraud shading: the light is evaluated
// once per vertex without texture and the colours are interpolated.
func (m *Mesh) DrawVertex(r *render.Rasterizer, vp *render.VertexProcessor, light render.Light) error {
	ok, err := m.prepare(vp)
	if err != nil || !ok {
		return err
	}

	for i, f := range m.Faces {
		canonical, err := m.project(vp, f)
		if err != nil {
			return fmt.Errorf("mesh %q face %d: %w", m.Name, i, err)
		}
		var colors [3]math3d.Vec3
		for j, idx := range f.V {
			frag, err := m.fragment(vp, idx)
			if err != nil {
				return fmt.Errorf("mesh %q face %d: %w", m.Name, i, err)
			}
			if colors[j], err = render.Shade(light, frag, nil); err != nil {
				return fmt.Errorf("mesh %q vertex %d: %w", m.Name, idx, err)
			}
		}
		if err := r.DrawTriangleVertex(canonical, colors); err != nil {
			return fmt.Errorf("mesh %q face %d: %w", m.Name, i, err)
		}
	}

	render.Logger().Debug("mesh drawn", "mesh", m.Name, "triangles", len(m.Faces), "shading", "gouraud")
	return nil
}

// DrawWireframe draws every triangle edge as an unshaded line, ignoring
// depth. Shared edges are drawn once per face.
func (m *Mesh) DrawWireframe(r *render.Rasterizer, vp *render.VertexProcessor, color render.Color) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	w := render.NewWireframe(vp, r)
	for i, f := range m.Faces {
		for j := range 3 {
			a := m.Vertices[f.V[j]].Position
			b := m.Vertices[f.V[(j+1)%3]].Position
			if err := w.DrawLine3D(a, b, color); err != nil {
				return fmt.Errorf("mesh %q face %d: %w", m.Name, i, err)
			}
		}
	}
	return nil
}
