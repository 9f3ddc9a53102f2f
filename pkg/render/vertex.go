package render

import "github.com/taigrr/softras/pkg/math3d"

// Vertex is the per-vertex record of a mesh. The same type travels through
// the fill loop as a Fragment, so each field has two meanings:
//
//   - Position: object-space position as authored; as a fragment, the
//     interpolated world position used for lighting.
//   - Normal: smoothed vertex normal written by normal calculation; as a
//     fragment, the interpolated and renormalized surface normal.
//   - TexCoords: unused on authored vertices; as a fragment, the
//     interpolated (u, v) in X and Y with Z left at zero.
type Vertex struct {
	Position  math3d.Vec3
	Normal    math3d.Vec3
	TexCoords math3d.Vec3
}

// Fragment is a Vertex after interpolation across a triangle.
type Fragment = Vertex

// ScreenPoint is a vertex mapped to integer pixel coordinates. Z keeps the
// canonical depth in [-1, 1].
type ScreenPoint struct {
	X, Y int
	Z    float64
}

// ScreenTriangle is the input of the framebuffer fill loop. Points are
// expected in clockwise order for the top-left rule to hold.
type ScreenTriangle struct {
	P [3]ScreenPoint
	F [3]Fragment
}
