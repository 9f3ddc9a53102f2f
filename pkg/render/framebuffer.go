// Package render implements the CPU rendering pipeline: vertex processing,
// rasterization into a BGR(A) framebuffer with a depth buffer, and Phong
// shading with optional texture lookups.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/taigrr/softras/pkg/bmp"
	"github.com/taigrr/softras/pkg/math3d"
)

var (
	// ErrInvalidSize is returned when a framebuffer would have no pixels.
	ErrInvalidSize = errors.New("render: width and height must be positive")

	// ErrOutOfBounds is returned when a pixel or region lies outside the
	// framebuffer. Nothing is written when it is returned.
	ErrOutOfBounds = errors.New("render: outside the image boundaries")

	// ErrTextureCycle is returned when a framebuffer is set as its own texture.
	ErrTextureCycle = errors.New("render: framebuffer cannot texture itself")
)

// ClearDepthValue is the depth every pixel starts at: the far plane.
const ClearDepthValue = 1.0

// Framebuffer is a BGR or BGRA pixel grid with a matching depth buffer.
// Row 0 is the bottom row of the image, matching bottom-up BMP storage.
type Framebuffer struct {
	width    int
	height   int
	channels int       // 3 (BGR) or 4 (BGRA)
	pix      []byte    // row-major, channels bytes per pixel
	depth    []float64 // row-major, one value per pixel

	texture *Framebuffer // borrowed, read-only

	// Workers splits each triangle fill into that many row bands filled
	// concurrently. Zero or one fills on the calling goroutine.
	Workers int
}

// NewFramebuffer creates a width x height framebuffer cleared to opaque
// black with every depth at ClearDepthValue. alpha selects 32-bit BGRA
// storage instead of 24-bit BGR.
func NewFramebuffer(width, height int, alpha bool) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("new framebuffer %dx%d: %w", width, height, ErrInvalidSize)
	}
	channels := 3
	if alpha {
		channels = 4
	}
	fb := &Framebuffer{
		width:    width,
		height:   height,
		channels: channels,
		pix:      make([]byte, width*height*channels),
		depth:    make([]float64, width*height),
	}
	fb.Clear(ColorBlack)
	return fb, nil
}

// FromImage wraps a decoded BMP image. The pixel slice is shared, not copied.
func FromImage(img *bmp.Image) (*Framebuffer, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("framebuffer from image %dx%d: %w", img.Width, img.Height, ErrInvalidSize)
	}
	if img.Channels != 3 && img.Channels != 4 {
		return nil, fmt.Errorf("framebuffer from image: %w", bmp.ErrBitDepth)
	}
	fb := &Framebuffer{
		width:    img.Width,
		height:   img.Height,
		channels: img.Channels,
		pix:      img.Pix,
		depth:    make([]float64, img.Width*img.Height),
	}
	fb.ClearDepth()
	return fb, nil
}

// LoadBMP reads a framebuffer from a strict 24- or 32-bit BMP file.
func LoadBMP(path string) (*Framebuffer, error) {
	img, err := bmp.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img)
}

// Width returns the width in pixels.
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the height in pixels.
func (fb *Framebuffer) Height() int { return fb.height }

// Channels returns the bytes per pixel: 3 or 4.
func (fb *Framebuffer) Channels() int { return fb.channels }

// Image returns the pixel data as a BMP image. The pixel slice is shared.
func (fb *Framebuffer) Image() *bmp.Image {
	return &bmp.Image{
		Width:    fb.width,
		Height:   fb.height,
		Channels: fb.channels,
		Pix:      fb.pix,
	}
}

// WriteBMP writes the framebuffer to path as a BMP file.
func (fb *Framebuffer) WriteBMP(path string) error {
	return bmp.WriteFile(path, fb.Image())
}

// SetTexture borrows tex for texture lookups during subsequent fills. The
// texture is only read. Passing nil disables texturing.
func (fb *Framebuffer) SetTexture(tex *Framebuffer) error {
	if tex == fb {
		return ErrTextureCycle
	}
	fb.texture = tex
	return nil
}

// Texture returns the borrowed texture, or nil.
func (fb *Framebuffer) Texture() *Framebuffer { return fb.texture }

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.width && y >= 0 && y < fb.height
}

func (fb *Framebuffer) offset(x, y int) int {
	return fb.channels * (y*fb.width + x)
}

// put writes c at pixel index i without bounds checks.
func (fb *Framebuffer) put(i int, c color.RGBA) {
	o := i * fb.channels
	fb.pix[o+0] = c.B
	fb.pix[o+1] = c.G
	fb.pix[o+2] = c.R
	if fb.channels == 4 {
		fb.pix[o+3] = c.A
	}
}

// Clear fills every pixel with c and resets the depth buffer.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.width * fb.height {
		fb.put(i, c)
	}
	fb.ClearDepth()
}

// ClearDepth resets every depth to ClearDepthValue.
func (fb *Framebuffer) ClearDepth() {
	n := len(fb.depth)
	if n == 0 {
		return
	}
	// copy-doubling
	fb.depth[0] = ClearDepthValue
	for i := 1; i < n; i *= 2 {
		copy(fb.depth[i:], fb.depth[:i])
	}
}

// FillRegion fills the w x h rectangle whose lower-left pixel is (x0, y0).
// A region that does not fit returns ErrOutOfBounds before anything is
// written. Alpha is ignored for 24-bit framebuffers.
func (fb *Framebuffer) FillRegion(x0, y0, w, h int, c color.RGBA) error {
	if x0 < 0 || y0 < 0 || w < 0 || h < 0 || x0+w > fb.width || y0+h > fb.height {
		return fmt.Errorf("fill region %dx%d at (%d, %d): %w", w, h, x0, y0, ErrOutOfBounds)
	}
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			fb.put(y*fb.width+x, c)
		}
	}
	return nil
}

// DrawRectangle draws the outline of a w x h rectangle with lines lineWidth
// pixels thick.
func (fb *Framebuffer) DrawRectangle(x0, y0, w, h int, c color.RGBA, lineWidth int) error {
	if x0 < 0 || y0 < 0 || x0+w > fb.width || y0+h > fb.height || lineWidth < 0 || 2*lineWidth > h || lineWidth > w {
		return fmt.Errorf("draw rectangle %dx%d at (%d, %d): %w", w, h, x0, y0, ErrOutOfBounds)
	}
	regions := [4][4]int{
		{x0, y0, w, lineWidth},                                           // bottom
		{x0, y0 + h - lineWidth, w, lineWidth},                           // top
		{x0 + w - lineWidth, y0 + lineWidth, lineWidth, h - 2*lineWidth}, // right
		{x0, y0 + lineWidth, lineWidth, h - 2*lineWidth},                 // left
	}
	for _, r := range regions {
		if err := fb.FillRegion(r[0], r[1], r[2], r[3], c); err != nil {
			return err
		}
	}
	return nil
}

// SetPixel sets the pixel at (x, y).
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) error {
	if !fb.inBounds(x, y) {
		return fmt.Errorf("set pixel (%d, %d): %w", x, y, ErrOutOfBounds)
	}
	fb.put(y*fb.width+x, c)
	return nil
}

// GetPixel returns the colour at (x, y), or transparent black out of bounds.
// 24-bit framebuffers report full alpha.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if !fb.inBounds(x, y) {
		return color.RGBA{}
	}
	o := fb.offset(x, y)
	c := color.RGBA{B: fb.pix[o], G: fb.pix[o+1], R: fb.pix[o+2], A: 255}
	if fb.channels == 4 {
		c.A = fb.pix[o+3]
	}
	return c
}

// PixelColor returns the RGB colour at (x, y) scaled to [0, 1].
func (fb *Framebuffer) PixelColor(x, y int) (math3d.Vec3, error) {
	if !fb.inBounds(x, y) {
		return math3d.Vec3{}, fmt.Errorf("get pixel (%d, %d): %w", x, y, ErrOutOfBounds)
	}
	o := fb.offset(x, y)
	return math3d.V3(
		float64(fb.pix[o+2])/255,
		float64(fb.pix[o+1])/255,
		float64(fb.pix[o+0])/255,
	), nil
}

// Depth returns the stored depth at (x, y) and whether the pixel exists.
func (fb *Framebuffer) Depth(x, y int) (float64, bool) {
	if !fb.inBounds(x, y) {
		return 0, false
	}
	return fb.depth[y*fb.width+x], true
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's
// algorithm. Pixels outside the framebuffer are skipped. Depth is ignored.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if fb.inBounds(x0, y0) {
			fb.put(y0*fb.width+x0, c)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to a standard Go image.RGBA, flipping
// rows so the image reads top-down.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for y := range fb.height {
		for x := range fb.width {
			img.SetRGBA(x, fb.height-1-y, fb.GetPixel(x, y))
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
