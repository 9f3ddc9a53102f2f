package render

import (
	"github.com/taigrr/softras/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum represents the 6 planes of a view frustum.
// Planes are ordered: Left, Right, Bottom, Top, Near, Far.
// Each plane's normal points inward (toward the center of the frustum).
type Frustum struct {
	Planes [6]Plane
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts frustum planes from a combined
// object-to-clip matrix (Gribb/Hartmann). Points are row vectors, so clip
// component j is the dot product of the point with column j.
// The resulting planes have normals pointing inward.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	var f Frustum
	c0, c1, c2, c3 := m.Col(0), m.Col(1), m.Col(2), m.Col(3)

	f.Planes[FrustumLeft] = planeFrom(c3.Add(c0))
	f.Planes[FrustumRight] = planeFrom(c3.Sub(c0))
	f.Planes[FrustumBottom] = planeFrom(c3.Add(c1))
	f.Planes[FrustumTop] = planeFrom(c3.Sub(c1))
	f.Planes[FrustumNear] = planeFrom(c3.Add(c2))
	f.Planes[FrustumFar] = planeFrom(c3.Sub(c2))

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}

	return f
}

func planeFrom(v math3d.Vec4) Plane {
	return Plane{Normal: v.Vec3(), D: v.W}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the midpoint of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Lerp(b.Max, 0.5)
}

// Size returns the dimensions of the box.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Corners returns the eight corners: the four at Min.Z counter-clockwise
// from Min, then the same four at Max.Z.
func (b AABB) Corners() [8]math3d.Vec3 {
	lo, hi := b.Min, b.Max
	return [8]math3d.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
	}
}

// IntersectAABB reports whether any part of box may lie inside the
// frustum. It tests the corner furthest along each plane normal, so boxes
// near a frustum edge can be reported visible when they are not.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		far := box.Min
		if plane.Normal.X >= 0 {
			far.X = box.Max.X
		}
		if plane.Normal.Y >= 0 {
			far.Y = box.Max.Y
		}
		if plane.Normal.Z >= 0 {
			far.Z = box.Max.Z
		}
		if plane.DistanceToPoint(far) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p lies inside every plane.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}
