package scene

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/softras/pkg/models"
	"github.com/taigrr/softras/pkg/render"
)

// Renderer owns the pipeline state for one scene: the framebuffer, the
// vertex processor, the lights and the built meshes.
type Renderer struct {
	cfg    Config
	fb     *render.Framebuffer
	r      *render.Rasterizer
	vp     *render.VertexProcessor
	lights []render.Light
	meshes []entry
	spin   *Turntable
	frame  int
}

type entry struct {
	cfg  MeshConfig
	mesh *models.Mesh
	tex  *render.Framebuffer
}

// New builds every mesh, light and texture of cfg and sets up the camera.
// Unset values take their defaults first.
func New(cfg Config) (*Renderer, error) {
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fb, err := render.NewFramebuffer(cfg.Width, cfg.Height, cfg.Alpha)
	if err != nil {
		return nil, err
	}
	fb.Workers = cfg.Workers

	vp := render.NewVertexProcessor()
	cam := cfg.Camera
	vp.SetPerspective(cam.Fovy, cam.Aspect, cam.Near, cam.Far)
	if cam.Eye != nil {
		if err := vp.SetLookAt(cam.Eye.Vec3(), cam.Center.Vec3(), cam.Up.Vec3()); err != nil {
			return nil, fmt.Errorf("camera: %w", err)
		}
	}

	rn := &Renderer{
		cfg:  cfg,
		fb:   fb,
		r:    render.NewRasterizer(fb),
		vp:   vp,
		spin: NewTurntable(cfg.Animation.Frames, cfg.Animation.FPS, cfg.Animation.Turns, cfg.Animation.Frequency, cfg.Animation.Damping),
	}

	for _, l := range cfg.Lights {
		rn.lights = append(rn.lights, buildLight(l))
	}

	textures := make(map[*TextureConfig]*render.Framebuffer)
	for _, mc := range cfg.Meshes {
		mesh, err := buildMesh(&cfg, mc)
		if err != nil {
			return nil, fmt.Errorf("mesh %s: %w", mc.Name, err)
		}
		mesh.TransformNormals = mc.TransformNormals
		mesh.Cull = cfg.Cull

		e := entry{cfg: mc, mesh: mesh}
		if mc.Texture != nil {
			tex, ok := textures[mc.Texture]
			if !ok {
				if tex, err = buildTexture(&cfg, mc.Texture); err != nil {
					return nil, fmt.Errorf("mesh %s texture: %w", mc.Name, err)
				}
				textures[mc.Texture] = tex
			}
			e.tex = tex
		}
		rn.meshes = append(rn.meshes, e)
	}

	render.Logger().Debug("scene built", "meshes", len(rn.meshes), "lights", len(rn.lights), "textures", len(textures))
	return rn, nil
}

func buildLight(l LightConfig) render.Light {
	refl := render.Reflectance{
		Position:  l.Position.Vec3(),
		Ambient:   l.Ambient.Vec3(),
		Diffuse:   l.Diffuse.Vec3(),
		Specular:  l.Specular.Vec3(),
		Shininess: l.Shininess,
	}
	if l.Kind == LightDirectional {
		return render.NewDirectionalLight(refl)
	}
	return render.NewPointLight(refl)
}

func buildMesh(cfg *Config, mc MeshConfig) (*models.Mesh, error) {
	center := render.Vertex{Position: mc.Center.Vec3()}
	var (
		mesh *models.Mesh
		err  error
	)
	switch mc.Shape {
	case ShapeSphere:
		mesh, err = models.NewSphere(mc.Bands, mc.Segments, center, mc.Radius)
	case ShapeCone:
		mesh, err = models.NewCone(mc.Radius, mc.Height, center, mc.Segments)
	case ShapeTriangle:
		mesh = models.NewSimpleTriangle()
	case ShapeGLTF:
		loader := &models.GLTFLoader{FitSize: mc.Size}
		mesh, err = loader.Load(cfg.resolve(mc.Path))
	default:
		err = fmt.Errorf("%q: %w", mc.Shape, ErrUnknownShape)
	}
	if err != nil {
		return nil, err
	}
	mesh.Name = mc.Name
	return mesh, nil
}

func buildTexture(cfg *Config, tc *TextureConfig) (*render.Framebuffer, error) {
	c1, c2 := toColor(tc.Colors[0]), toColor(tc.Colors[1])
	switch {
	case tc.Path != "":
		return render.LoadTexture(cfg.resolve(tc.Path))
	case tc.Checker > 0:
		return render.NewCheckerTexture(tc.Width, tc.Height, tc.Checker, c1, c2)
	default:
		return render.NewGradientTexture(tc.Width, tc.Height, c1, c2)
	}
}

// toColor converts an RGB triple in [0, 1] to an opaque colour.
func toColor(v Vec) render.Color {
	c := v.Vec3().Clamp(0, 1).Scale(255)
	return render.RGB(uint8(c.X), uint8(c.Y), uint8(c.Z))
}

// Framebuffer returns the render target.
func (rn *Renderer) Framebuffer() *render.Framebuffer { return rn.fb }

// VertexProcessor returns the pipeline's transform state.
func (rn *Renderer) VertexProcessor() *render.VertexProcessor { return rn.vp }

// Frames returns the number of animation frames.
func (rn *Renderer) Frames() int { return rn.cfg.Animation.Frames }

// Frame returns the index of the next frame RenderFrame will draw.
func (rn *Renderer) Frame() int { return rn.frame }

// place loads the object transform for one mesh: a spin about the mesh
// centre, then the configured scale, rotation and translation.
func (rn *Renderer) place(e entry, angle float64) error {
	vp := rn.vp
	vp.ResetObjectToWorld()

	// The most recent MultBy call is applied to points first.
	if t := e.cfg.Translate; t != nil {
		vp.MultByTranslation(t.Vec3())
	}
	if rot := e.cfg.Rotate; rot != nil {
		if err := vp.MultByRotation(rot.Angle, rot.Axis.Vec3()); err != nil {
			return err
		}
	}
	if s := e.cfg.Scale; s != nil {
		vp.MultByScale(s.Vec3())
	}
	if angle != 0 {
		c := e.mesh.Center.Position
		vp.MultByTranslation(c)
		if err := vp.MultByRotation(angle, rn.cfg.Animation.Axis.Vec3()); err != nil {
			return err
		}
		vp.MultByTranslation(c.Negate())
	}
	return nil
}

// RenderFrame clears the framebuffer and draws every mesh at the current
// animation angle, then advances the animation. Cancellation is checked
// between meshes.
func (rn *Renderer) RenderFrame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rn.fb.Clear(toColor(rn.cfg.Background))
	angle := rn.spin.Angle()

	for _, e := range rn.meshes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := rn.place(e, angle); err != nil {
			return fmt.Errorf("mesh %s: %w", e.cfg.Name, err)
		}
		if err := rn.fb.SetTexture(e.tex); err != nil {
			return fmt.Errorf("mesh %s: %w", e.cfg.Name, err)
		}
		if err := rn.draw(e); err != nil {
			return err
		}
	}

	if rn.cfg.Axes > 0 {
		rn.vp.ResetObjectToWorld()
		if err := render.NewWireframe(rn.vp, rn.r).DrawAxes(rn.cfg.Axes); err != nil {
			return fmt.Errorf("axes: %w", err)
		}
	}

	render.Logger().Debug("frame rendered", "frame", rn.frame, "angle", angle)
	rn.frame++
	rn.spin.Next()
	return nil
}

func (rn *Renderer) draw(e entry) error {
	light := rn.lights[e.cfg.Light]
	color := toColor(e.cfg.Color)

	var err error
	switch e.cfg.Shading {
	case ShadingGouraud:
		err = e.mesh.DrawVertex(rn.r, rn.vp, light)
	case ShadingWireframe:
		err = e.mesh.DrawWireframe(rn.r, rn.vp, color)
	default:
		err = e.mesh.Draw(rn.r, rn.vp, light)
	}
	if err != nil {
		return err
	}

	if e.cfg.Bounds {
		e.mesh.CalculateBounds()
		if err := render.NewWireframe(rn.vp, rn.r).DrawBox(e.mesh.Bounds(), color); err != nil {
			return fmt.Errorf("mesh %s bounds: %w", e.cfg.Name, err)
		}
	}
	return nil
}

// Render draws every remaining frame, handing each to emit before the next
// one overwrites the framebuffer.
func (rn *Renderer) Render(ctx context.Context, emit func(frame int, fb *render.Framebuffer) error) error {
	for rn.frame < rn.Frames() {
		frame := rn.frame
		if err := rn.RenderFrame(ctx); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if emit == nil {
			continue
		}
		if err := emit(frame, rn.fb); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}
	return nil
}

// FramePath returns the output path for one frame. A single frame uses
// output as is; otherwise the frame number is inserted before the
// extension.
func FramePath(output string, frame, frames int) string {
	if frames <= 1 {
		return output
	}
	ext := filepath.Ext(output)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(output, ext), frame, ext)
}

// Save writes fb to path, as PNG for a .png extension and BMP otherwise.
func Save(fb *render.Framebuffer, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return fb.SavePNG(path)
	}
	return fb.WriteBMP(path)
}
