package models

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/render"
)

// ErrNoGeometry is returned when a glTF document holds no drawable
// triangles.
var ErrNoGeometry = errors.New("models: no triangle geometry")

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// FitSize, when positive, recentres the model on the origin and scales
	// it uniformly so its largest dimension equals FitSize.
	FitSize float64
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{FitSize: 1}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	loader := NewGLTFLoader()
	return loader.Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh ready for drawing:
// triangles with no area and vertices no triangle uses are dropped, since
// vertex normals cannot be computed for either.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))

	// Process all meshes in the document
	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	dropped := compact(mesh)
	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("load %s: %w", path, ErrNoGeometry)
	}
	mesh.CalculateBounds()

	if l.FitSize > 0 {
		if err := fit(mesh, l.FitSize); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	mesh.Center = render.Vertex{Position: mesh.Bounds().Center()}

	render.Logger().Debug("gltf loaded", "path", path,
		"vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount(), "dropped", dropped)
	return mesh, nil
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		baseVertex := len(mesh.Vertices)
		for _, p := range positions {
			mesh.Vertices = append(mesh.Vertices, render.Vertex{Position: p})
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// GLTF uses CCW winding for front-facing, but the fill rule expects
		// clockwise triangles on screen, so the winding is reversed here.
		for i := 0; i+2 < len(indices); i += 3 {
			mesh.Faces = append(mesh.Faces, Face{
				V: [3]int{
					baseVertex + indices[i],
					baseVertex + indices[i+2], // swapped
					baseVertex + indices[i+1], // swapped
				},
			})
		}
	}

	return mesh.Validate()
}

// compact drops faces with no area and vertices no remaining face uses,
// renumbering the faces. It returns the number of faces dropped.
func compact(m *Mesh) int {
	faces := m.Faces[:0]
	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position
		if _, err := v2.Sub(v0).Cross(v1.Sub(v0)).Unit(); err != nil {
			continue
		}
		faces = append(faces, f)
	}
	dropped := len(m.Faces) - len(faces)

	remap := make([]int, len(m.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	vertices := make([]render.Vertex, 0, len(m.Vertices))
	for i := range faces {
		for j, idx := range faces[i].V {
			if remap[idx] < 0 {
				remap[idx] = len(vertices)
				vertices = append(vertices, m.Vertices[idx])
			}
			faces[i].V[j] = remap[idx]
		}
	}

	m.Faces = faces
	m.Vertices = vertices
	return dropped
}

// fit recentres m on the origin and scales it so its largest bounding box
// dimension equals size.
func fit(m *Mesh, size float64) error {
	dims := m.Size()
	largest := math.Max(dims.X, math.Max(dims.Y, dims.Z))
	if !(largest > 0) {
		return fmt.Errorf("fit model of size %v: %w", dims, math3d.ErrDegenerate)
	}
	center := m.Bounds().Center()
	mat := math3d.Translate(center.Negate()).Mul(math3d.ScaleUniform(size / largest))
	return m.Transform(mat)
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		o := start + i*stride
		if o+12 > len(data) {
			return nil, fmt.Errorf("vertex %d past end of buffer", i)
		}
		result[i] = math3d.V3(
			float64(readFloat32(data[o:])),
			float64(readFloat32(data[o+4:])),
			float64(readFloat32(data[o+8:])),
		)
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		o := start + i*stride
		if o+size > len(data) {
			return nil, fmt.Errorf("index %d past end of buffer", i)
		}
		switch size {
		case 1:
			result[i] = int(data[o])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[o:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(data[o:]))
		}
	}
	return result, nil
}

// accessorBytes resolves the buffer behind an accessor and returns it with
// the first element's offset and the element stride.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, 0, fmt.Errorf("buffer %d out of range", bufferView.Buffer)
	}
	buffer := doc.Buffers[bufferView.Buffer]

	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	return buffer.Data, bufferView.ByteOffset + accessor.ByteOffset, stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
