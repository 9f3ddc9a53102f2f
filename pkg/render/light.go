package render

import (
	"fmt"
	"math"

	"github.com/taigrr/softras/pkg/math3d"
)

// Reflectance holds the Phong parameters shared by every light variant.
// Colours are RGB in [0, 1].
type Reflectance struct {
	Position  math3d.Vec3 // light position, or the direction towards a directional light
	Ambient   math3d.Vec3
	Diffuse   math3d.Vec3
	Specular  math3d.Vec3
	Shininess float64
}

// Light resolves the direction from a fragment towards the light and exposes
// the reflectance parameters used by Shade.
type Light interface {
	Direction(fragmentPosition math3d.Vec3) (math3d.Vec3, error)
	Params() Reflectance
}

// PointLight emits from Position in every direction.
type PointLight struct {
	Reflectance
}

// NewPointLight creates a point light.
func NewPointLight(r Reflectance) *PointLight {
	return &PointLight{Reflectance: r}
}

// Direction returns the unit vector from the fragment to the light.
func (l *PointLight) Direction(p math3d.Vec3) (math3d.Vec3, error) {
	return l.Position.Sub(p).Unit()
}

// Params returns the light parameters.
func (l *PointLight) Params() Reflectance { return l.Reflectance }

// DirectionalLight shines from infinitely far away. Position holds the
// direction towards the light and fragments do not affect it.
type DirectionalLight struct {
	Reflectance
}

// NewDirectionalLight creates a directional light.
func NewDirectionalLight(r Reflectance) *DirectionalLight {
	return &DirectionalLight{Reflectance: r}
}

// Direction returns the normalized light direction.
func (l *DirectionalLight) Direction(math3d.Vec3) (math3d.Vec3, error) {
	return l.Position.Unit()
}

// Params returns the light parameters.
func (l *DirectionalLight) Params() Reflectance { return l.Reflectance }

// Sampler is the read-only image view used for texture lookups.
// PixelColor returns RGB in [0, 1].
type Sampler interface {
	Width() int
	Height() int
	PixelColor(x, y int) (math3d.Vec3, error)
}

// Shade evaluates the local illumination of one fragment:
// ambient + diffuse + specular, plus a nearest-neighbour texture sample when
// tex is non-nil. The viewer sits at the origin. Each channel is clamped to
// [0, 1].
func Shade(light Light, frag Fragment, tex Sampler) (math3d.Vec3, error) {
	refl := light.Params()

	l, err := light.Direction(frag.Position)
	if err != nil {
		return math3d.Vec3{}, fmt.Errorf("light direction: %w", err)
	}
	n, err := frag.Normal.Unit()
	if err != nil {
		return math3d.Vec3{}, fmt.Errorf("fragment normal: %w", err)
	}
	v, err := frag.Position.Unit()
	if err != nil {
		return math3d.Vec3{}, fmt.Errorf("view direction: %w", err)
	}
	v = v.Negate()

	nl := n.Dot(l)
	diffuse := refl.Diffuse.Scale(math3d.Clamp(nl, 0, 1))

	var specular math3d.Vec3
	if nl >= 0 {
		r, err := n.Scale(2 * nl).Sub(l).Unit()
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("reflection: %w", err)
		}
		shine := math.Pow(math3d.Clamp(r.Dot(v), 0, 1), refl.Shininess)
		specular = refl.Specular.Scale(shine)
	}

	color := refl.Ambient.Add(specular).Add(diffuse)

	if tex != nil {
		texel, err := sampleNearest(tex, frag.TexCoords.X, frag.TexCoords.Y)
		if err != nil {
			return math3d.Vec3{}, err
		}
		color = color.Add(texel)
	}

	return color.Clamp(0, 1), nil
}

// sampleNearest reads the texel at (u*W, v*H), clamped to the image.
func sampleNearest(tex Sampler, u, v float64) (math3d.Vec3, error) {
	w, h := tex.Width(), tex.Height()
	x := int(math3d.Clamp(u*float64(w), 0, float64(w-1)))
	y := int(math3d.Clamp(v*float64(h), 0, float64(h-1)))
	c, err := tex.PixelColor(x, y)
	if err != nil {
		return math3d.Vec3{}, fmt.Errorf("sample texture at (%d, %d): %w", x, y, err)
	}
	return c, nil
}
