// Package scene describes a renderable scene in YAML and drives the render
// pipeline over it, frame by frame.
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/softras/pkg/math3d"
)

// DefaultOutput is the image written when a scene names no output.
const DefaultOutput = "img_test.bmp"

var (
	// ErrUnknownShape is returned for a mesh shape the scene cannot build.
	ErrUnknownShape = errors.New("scene: unknown shape")

	// ErrUnknownLight is returned for a light kind other than point or
	// directional.
	ErrUnknownLight = errors.New("scene: unknown light kind")

	// ErrUnknownShading is returned for a shading mode other than phong,
	// gouraud or wireframe.
	ErrUnknownShading = errors.New("scene: unknown shading")

	// ErrInvalid is returned for out-of-range scene values.
	ErrInvalid = errors.New("scene: invalid value")
)

// Shapes.
const (
	ShapeSphere   = "sphere"
	ShapeCone     = "cone"
	ShapeTriangle = "triangle"
	ShapeGLTF     = "gltf"
)

// Shading modes.
const (
	ShadingPhong     = "phong"
	ShadingGouraud   = "gouraud"
	ShadingWireframe = "wireframe"
)

// Light kinds.
const (
	LightPoint       = "point"
	LightDirectional = "directional"
)

// Vec is a three component value written as a YAML sequence: [x, y, z] or
// [r, g, b].
type Vec [3]float64

// Vec3 converts v to a math3d vector.
func (v Vec) Vec3() math3d.Vec3 { return math3d.V3(v[0], v[1], v[2]) }

// Config is a scene file.
type Config struct {
	Output     string `yaml:"output"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Alpha      bool   `yaml:"alpha"`
	Background Vec    `yaml:"background,omitempty"`
	Workers    int    `yaml:"workers,omitempty"`
	Cull       bool   `yaml:"cull,omitempty"`

	// Axes, when positive, draws the world axes with that length over
	// every frame: x red, y green, z blue.
	Axes float64 `yaml:"axes,omitempty"`

	Camera    CameraConfig    `yaml:"camera"`
	Lights    []LightConfig   `yaml:"lights"`
	Meshes    []MeshConfig    `yaml:"meshes"`
	Animation AnimationConfig `yaml:"animation,omitempty"`

	// dir resolves relative texture and model paths.
	dir string
}

// CameraConfig holds the projection and an optional look-at view. Without
// an eye the camera sits at the origin looking down -z.
type CameraConfig struct {
	Fovy   float64 `yaml:"fovy"`
	Aspect float64 `yaml:"aspect,omitempty"`
	Near   float64 `yaml:"near"`
	Far    float64 `yaml:"far"`

	Eye    *Vec `yaml:"eye,omitempty"`
	Center Vec  `yaml:"center,omitempty"`
	Up     *Vec `yaml:"up,omitempty"`
}

// LightConfig is one light. For a directional light Position holds the
// direction towards the light.
type LightConfig struct {
	Kind      string  `yaml:"kind"`
	Position  Vec     `yaml:"position"`
	Ambient   Vec     `yaml:"ambient"`
	Diffuse   Vec     `yaml:"diffuse"`
	Specular  Vec     `yaml:"specular"`
	Shininess float64 `yaml:"shininess"`
}

// MeshConfig is one mesh and how to draw it.
type MeshConfig struct {
	Name  string `yaml:"name,omitempty"`
	Shape string `yaml:"shape"`

	Center   Vec     `yaml:"center,omitempty"`
	Radius   float64 `yaml:"radius,omitempty"`
	Height   float64 `yaml:"height,omitempty"`
	Bands    int     `yaml:"bands,omitempty"`
	Segments int     `yaml:"segments,omitempty"`
	Path     string  `yaml:"path,omitempty"`
	Size     float64 `yaml:"size,omitempty"`

	Translate *Vec            `yaml:"translate,omitempty"`
	Rotate    *RotationConfig `yaml:"rotate,omitempty"`
	Scale     *Vec            `yaml:"scale,omitempty"`

	Texture          *TextureConfig `yaml:"texture,omitempty"`
	Shading          string         `yaml:"shading,omitempty"`
	Color            Vec            `yaml:"color,omitempty"`
	Light            int            `yaml:"light,omitempty"`
	TransformNormals bool           `yaml:"transformNormals,omitempty"`
	Bounds           bool           `yaml:"bounds,omitempty"`
}

// RotationConfig is a rotation of Angle degrees about Axis.
type RotationConfig struct {
	Angle float64 `yaml:"angle"`
	Axis  Vec     `yaml:"axis"`
}

// TextureConfig selects an image file or a procedural texture.
type TextureConfig struct {
	Path string `yaml:"path,omitempty"`

	// Checker, when positive, generates a checkerboard with squares of
	// that many pixels. Otherwise Gradient selects a horizontal gradient.
	Checker  int    `yaml:"checker,omitempty"`
	Gradient bool   `yaml:"gradient,omitempty"`
	Width    int    `yaml:"width,omitempty"`
	Height   int    `yaml:"height,omitempty"`
	Colors   [2]Vec `yaml:"colors,omitempty"`
}

// AnimationConfig spins every mesh about its centre over Frames frames.
type AnimationConfig struct {
	Frames    int     `yaml:"frames,omitempty"`
	FPS       int     `yaml:"fps,omitempty"`
	Turns     float64 `yaml:"turns,omitempty"`
	Axis      *Vec    `yaml:"axis,omitempty"`
	Frequency float64 `yaml:"frequency,omitempty"`
	Damping   float64 `yaml:"damping,omitempty"`
}

func (c *Config) normalize() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Width == 0 {
		c.Width = 400
	}
	if c.Height == 0 {
		c.Height = 400
	}

	cam := &c.Camera
	if cam.Fovy == 0 {
		cam.Fovy = 120
	}
	if cam.Aspect == 0 && c.Height > 0 {
		cam.Aspect = float64(c.Width) / float64(c.Height)
	}
	if cam.Near == 0 {
		cam.Near = 0.5
	}
	if cam.Far == 0 {
		cam.Far = 100
	}
	if cam.Eye != nil && cam.Up == nil {
		cam.Up = &Vec{0, 1, 0}
	}

	for i := range c.Lights {
		if c.Lights[i].Kind == "" {
			c.Lights[i].Kind = LightPoint
		}
	}

	for i := range c.Meshes {
		m := &c.Meshes[i]
		if m.Name == "" {
			m.Name = fmt.Sprintf("%s-%d", m.Shape, i)
		}
		if m.Shading == "" {
			m.Shading = ShadingPhong
		}
		if m.Color == (Vec{}) {
			m.Color = Vec{1, 1, 1}
		}
		switch m.Shape {
		case ShapeSphere:
			if m.Bands == 0 {
				m.Bands = 10
			}
			if m.Segments == 0 {
				m.Segments = 10
			}
			if m.Radius == 0 {
				m.Radius = 0.5
			}
		case ShapeCone:
			if m.Segments == 0 {
				m.Segments = 16
			}
			if m.Radius == 0 {
				m.Radius = 0.5
			}
			if m.Height == 0 {
				m.Height = 1
			}
		case ShapeGLTF:
			if m.Size == 0 {
				m.Size = 1
			}
		}
		if t := m.Texture; t != nil && t.Path == "" {
			if t.Width == 0 {
				t.Width = 64
			}
			if t.Height == 0 {
				t.Height = 64
			}
			if t.Colors == ([2]Vec{}) {
				t.Colors = [2]Vec{{1, 1, 1}, {0, 0, 0}}
			}
		}
	}

	a := &c.Animation
	if a.Frames == 0 {
		a.Frames = 1
	}
	if a.FPS == 0 {
		a.FPS = 24
	}
	if a.Turns == 0 {
		a.Turns = 1
	}
	if a.Axis == nil {
		a.Axis = &Vec{0, 1, 0}
	}
	// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
	if a.Frequency == 0 {
		a.Frequency = 4
	}
	if a.Damping == 0 {
		a.Damping = 1
	}
}

// Validate reports the first problem that would stop the scene from
// rendering.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("size %dx%d: %w", c.Width, c.Height, ErrInvalid)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d: %w", c.Workers, ErrInvalid)
	}
	if c.Axes < 0 {
		return fmt.Errorf("axes %v: %w", c.Axes, ErrInvalid)
	}
	cam := c.Camera
	if !(cam.Fovy > 0 && cam.Fovy < 180) {
		return fmt.Errorf("camera fovy %v: %w", cam.Fovy, ErrInvalid)
	}
	if !(cam.Aspect > 0) || cam.Near == cam.Far {
		return fmt.Errorf("camera aspect %v near %v far %v: %w", cam.Aspect, cam.Near, cam.Far, ErrInvalid)
	}
	if len(c.Lights) == 0 {
		return fmt.Errorf("no lights: %w", ErrInvalid)
	}
	for i, l := range c.Lights {
		if l.Kind != LightPoint && l.Kind != LightDirectional {
			return fmt.Errorf("light %d kind %q: %w", i, l.Kind, ErrUnknownLight)
		}
		if l.Shininess < 0 {
			return fmt.Errorf("light %d shininess %v: %w", i, l.Shininess, ErrInvalid)
		}
	}
	for i, m := range c.Meshes {
		if err := m.validate(len(c.Lights)); err != nil {
			return fmt.Errorf("mesh %d (%s): %w", i, m.Name, err)
		}
	}
	if c.Animation.Frames < 1 || c.Animation.FPS < 1 {
		return fmt.Errorf("animation frames %d fps %d: %w", c.Animation.Frames, c.Animation.FPS, ErrInvalid)
	}
	return nil
}

func (m MeshConfig) validate(lights int) error {
	switch m.Shape {
	case ShapeSphere, ShapeCone, ShapeTriangle:
	case ShapeGLTF:
		if m.Path == "" {
			return fmt.Errorf("gltf without path: %w", ErrInvalid)
		}
	default:
		return fmt.Errorf("%q: %w", m.Shape, ErrUnknownShape)
	}
	switch m.Shading {
	case ShadingPhong, ShadingGouraud, ShadingWireframe:
	default:
		return fmt.Errorf("%q: %w", m.Shading, ErrUnknownShading)
	}
	if m.Light < 0 || m.Light >= lights {
		return fmt.Errorf("light index %d of %d: %w", m.Light, lights, ErrInvalid)
	}
	if t := m.Texture; t != nil && t.Path == "" && t.Checker <= 0 && !t.Gradient {
		return fmt.Errorf("texture needs a path, checker or gradient: %w", ErrInvalid)
	}
	return nil
}

// Load reads, normalizes and validates a scene file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read scene: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes, normalizes and validates scene YAML. Relative paths in the
// result resolve against the working directory.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse scene: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write writes cfg as YAML to path.
func Write(path string, cfg Config) error {
	cfg.normalize()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close scene: %w", err)
	}
	return f.Close()
}

// resolve returns p relative to the scene file's directory.
func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Default returns the demo scene: three spheres under one point light, the
// left and centre ones textured and lit, the right one showing its texture
// only.
func Default() Config {
	moon := &TextureConfig{Checker: 8, Colors: [2]Vec{{0.8, 0.8, 0.8}, {0.35, 0.35, 0.35}}}
	earth := &TextureConfig{Gradient: true, Colors: [2]Vec{{0.1, 0.3, 0.9}, {0.1, 0.7, 0.2}}}

	cfg := Config{
		Output: DefaultOutput,
		Width:  400,
		Height: 400,
		Alpha:  true,
		Camera: CameraConfig{Fovy: 120, Aspect: 1, Near: 0.5, Far: 100},
		Lights: []LightConfig{
			{
				Kind:      LightPoint,
				Position:  Vec{0, 1, 0},
				Ambient:   Vec{0.1, 0.1, 0.1},
				Diffuse:   Vec{0.4, 0.4, 0.4},
				Specular:  Vec{0.5, 0.5, 0.5},
				Shininess: 12,
			},
			{Kind: LightPoint, Position: Vec{0, 1, 0}}, // no light: texture only
		},
		Meshes: []MeshConfig{
			{Name: "moon", Shape: ShapeSphere, Center: Vec{0, 0, -1.5}, Texture: moon},
			{Name: "earth", Shape: ShapeSphere, Center: Vec{-1, 0, -1}, Texture: earth},
			{Name: "unlit", Shape: ShapeSphere, Center: Vec{1, 0, -1}, Texture: earth, Light: 1},
		},
	}
	cfg.normalize()
	return cfg
}
