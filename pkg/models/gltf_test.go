package models

import (
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/softras/pkg/math3d"
)

// writeQuadGLB writes a 2x2 quad in the z = 0 plane with one degenerate
// triangle and one unreferenced vertex.
func writeQuadGLB(t *testing.T) string {
	t.Helper()

	positions := []math3d.Vec3{
		math3d.V3(0, 0, 0),
		math3d.V3(2, 0, 0),
		math3d.V3(2, 2, 0),
		math3d.V3(0, 2, 0),
		math3d.V3(5, 5, 5), // unused
	}
	indices := []uint16{0, 1, 2, 0, 2, 3, 0, 0, 1}

	var data []byte
	for _, p := range positions {
		for _, c := range []float64{p.X, p.Y, p.Z} {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(c)))
		}
	}
	posLen := len(data)
	for _, i := range indices {
		data = binary.LittleEndian.AppendUint16(data, i)
	}
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	doc := &gltf.Document{
		Asset: gltf.Asset{Version: "2.0"},
		Buffers: []*gltf.Buffer{
			{ByteLength: len(data), Data: data},
		},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: posLen},
			{Buffer: 0, ByteOffset: posLen, ByteLength: 2 * len(indices)},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: len(positions), Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentUshort, Count: len(indices), Type: gltf.AccessorScalar},
		},
		Meshes: []*gltf.Mesh{{
			Name: "quad",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    gltf.Index(1),
			}},
		}},
	}

	path := filepath.Join(t.TempDir(), "quad.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader.FitSize != 1 {
		t.Errorf("FitSize = %v, want 1", loader.FitSize)
	}
}

func TestLoadGLB(t *testing.T) {
	m, err := LoadGLB(writeQuadGLB(t))
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}
	if m.Name != "quad.glb" {
		t.Errorf("name = %q, want quad.glb", m.Name)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("triangles = %d, want 2 after dropping the degenerate one", m.TriangleCount())
	}
	if m.VertexCount() != 4 {
		t.Errorf("vertices = %d, want 4 after dropping the unused one", m.VertexCount())
	}

	// Fitted to a unit box around the origin.
	if want := math3d.V3(-0.5, -0.5, 0); !m.BoundsMin.ApproxEqual(want, 1e-6) {
		t.Errorf("min = %v, want %v", m.BoundsMin, want)
	}
	if want := math3d.V3(0.5, 0.5, 0); !m.BoundsMax.ApproxEqual(want, 1e-6) {
		t.Errorf("max = %v, want %v", m.BoundsMax, want)
	}

	// Reversed winding makes the quad face +z.
	if err := m.CalculateNormals(); err != nil {
		t.Fatalf("CalculateNormals: %v", err)
	}
	for i, v := range m.Vertices {
		if !v.Normal.ApproxEqual(math3d.V3(0, 0, 1), 1e-9) {
			t.Errorf("vertex %d normal = %v, want +z", i, v.Normal)
		}
	}
}

func TestLoadGLBKeepsSize(t *testing.T) {
	loader := &GLTFLoader{}
	m, err := loader.Load(writeQuadGLB(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := math3d.V3(2, 2, 0); !m.Size().ApproxEqual(want, 1e-6) {
		t.Errorf("size = %v, want %v", m.Size(), want)
	}
	if want := math3d.V3(1, 1, 0); !m.Center.Position.ApproxEqual(want, 1e-6) {
		t.Errorf("center = %v, want %v", m.Center.Position, want)
	}
}

func TestCompact(t *testing.T) {
	m := &Mesh{
		Vertices: NewSimpleTriangle().Vertices,
		Faces:    []Face{{V: [3]int{1, 1, 2}}},
	}
	if dropped := compact(m); dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(m.Faces) != 0 || len(m.Vertices) != 0 {
		t.Errorf("got %d faces, %d vertices, want none", len(m.Faces), len(m.Vertices))
	}
}

func TestFitFlatModel(t *testing.T) {
	m := NewSimpleTriangle()
	for i := range m.Vertices {
		m.Vertices[i].Position = math3d.V3(1, 1, 1)
	}
	m.CalculateBounds()
	if err := fit(m, 1); !errors.Is(err, math3d.ErrDegenerate) {
		t.Errorf("err = %v, want ErrDegenerate", err)
	}
}
