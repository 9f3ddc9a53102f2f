package render

import (
	"fmt"
	"math"

	"github.com/taigrr/softras/pkg/math3d"
)

// VertexProcessor owns the three transforms that take object-space points to
// canonical view volume coordinates: object to world, world to view and view
// to projection.
//
// Points are row vectors, so the full transform is
// p · objToWorld · worldToView · viewToProj followed by the divide by w.
type VertexProcessor struct {
	objToWorld  math3d.Mat4
	worldToView math3d.Mat4
	viewToProj  math3d.Mat4
}

// NewVertexProcessor returns a processor with identity object and view
// transforms and no projection. Converting a point before SetPerspective
// yields w = 0 and fails with math3d.ErrDivideByZero.
func NewVertexProcessor() *VertexProcessor {
	return &VertexProcessor{
		objToWorld:  math3d.Identity(),
		worldToView: math3d.Identity(),
	}
}

// SetPerspective replaces the projection. fovy is the full vertical field of
// view in degrees. Inputs are not validated; near == far yields infinities.
func (vp *VertexProcessor) SetPerspective(fovy, aspect, near, far float64) {
	vp.viewToProj = math3d.Perspective(fovy*math.Pi/180, aspect, near, far)
}

// SetLookAt replaces the view transform with a camera at eye looking at
// center. The view transform is a translation by -eye followed by the camera
// basis.
func (vp *VertexProcessor) SetLookAt(eye, center, up math3d.Vec3) error {
	view, err := math3d.LookAt(eye, center, up)
	if err != nil {
		return fmt.Errorf("look at %v from %v: %w", center, eye, err)
	}
	vp.worldToView = view
	return nil
}

// MultByTranslation composes a translation into the object transform.
func (vp *VertexProcessor) MultByTranslation(v math3d.Vec3) {
	vp.objToWorld = math3d.Translate(v).Mul(vp.objToWorld)
}

// MultByScale composes a per-axis scale into the object transform.
func (vp *VertexProcessor) MultByScale(v math3d.Vec3) {
	vp.objToWorld = math3d.Scale(v).Mul(vp.objToWorld)
}

// MultByRotation composes a rotation of angle degrees about axis into the
// object transform. The axis is normalized; a zero axis is an error.
//
// Every MultBy call left-multiplies, so the most recent call is the first
// transform applied to a point.
func (vp *VertexProcessor) MultByRotation(angle float64, axis math3d.Vec3) error {
	rot, err := math3d.Rotate(axis, angle*math.Pi/180)
	if err != nil {
		return fmt.Errorf("rotate about %v: %w", axis, err)
	}
	vp.objToWorld = rot.Mul(vp.objToWorld)
	return nil
}

// ResetObjectToWorld restores the identity object transform.
func (vp *VertexProcessor) ResetObjectToWorld() {
	vp.objToWorld = math3d.Identity()
}

// SetObjectToWorld replaces the object transform.
func (vp *VertexProcessor) SetObjectToWorld(m math3d.Mat4) {
	vp.objToWorld = m
}

// ObjectToWorld returns the object transform.
func (vp *VertexProcessor) ObjectToWorld() math3d.Mat4 { return vp.objToWorld }

// WorldToView returns the view transform.
func (vp *VertexProcessor) WorldToView() math3d.Mat4 { return vp.worldToView }

// ViewToProjection returns the projection.
func (vp *VertexProcessor) ViewToProjection() math3d.Mat4 { return vp.viewToProj }

// ModelView returns objToWorld · worldToView.
func (vp *VertexProcessor) ModelView() math3d.Mat4 {
	return vp.objToWorld.Mul(vp.worldToView)
}

// Combined returns the full object to clip space transform.
func (vp *VertexProcessor) Combined() math3d.Mat4 {
	return vp.ModelView().Mul(vp.viewToProj)
}

// ConvertToCanonical transforms an object-space point to canonical view
// volume coordinates. Only w exactly zero is rejected; points behind the
// camera are not clipped.
func (vp *VertexProcessor) ConvertToCanonical(p math3d.Vec3) (math3d.Vec3, error) {
	out, err := vp.Combined().TransformPoint(p)
	if err != nil {
		return math3d.Vec3{}, fmt.Errorf("convert %v to canonical: %w", p, err)
	}
	return out, nil
}

// TransformNormal maps an object-space normal through the inverse transpose
// of the model-view rotation and scale, then renormalizes it.
func (vp *VertexProcessor) TransformNormal(n math3d.Vec3) (math3d.Vec3, error) {
	inv, err := vp.ModelView().Upper3().Inverse()
	if err != nil {
		return math3d.Vec3{}, fmt.Errorf("normal matrix: %w", err)
	}
	return inv.Transpose().TransformDir(n).Unit()
}

// Frustum returns the view frustum of the current object, view and
// projection transforms, in object space.
func (vp *VertexProcessor) Frustum() Frustum {
	return NewFrustumFromMatrix(vp.Combined())
}
