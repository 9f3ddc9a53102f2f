package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // Register lenient BMP decoder
)

// LoadTexture loads a texture from an image file. BMP files go through the
// strict codec first; variants it refuses (paletted, top-down, 32-bit
// without masks) are decoded with the generic image decoders instead. PNG
// and JPEG are decoded directly.
func LoadTexture(path string) (*Framebuffer, error) {
	if strings.EqualFold(filepath.Ext(path), ".bmp") {
		fb, err := LoadBMP(path)
		if err == nil {
			return fb, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to open texture: %w", err)
		}
		Logger().Warn("strict bmp decode failed, falling back", "path", path, "err", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return TextureFromImage(img)
}

// TextureFromImage creates a 32-bit framebuffer from an image.Image. Image
// row 0 (the top) becomes the last framebuffer row.
func TextureFromImage(img image.Image) (*Framebuffer, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	tex, err := NewFramebuffer(width, height, true)
	if err != nil {
		return nil, err
	}

	for y := range height {
		for x := range width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			tex.put((height-1-y)*width+x, Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			})
		}
	}

	return tex, nil
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) (*Framebuffer, error) {
	if checkSize <= 0 {
		return nil, fmt.Errorf("checker size %d: %w", checkSize, ErrInvalidSize)
	}
	tex, err := NewFramebuffer(width, height, true)
	if err != nil {
		return nil, err
	}
	for y := range height {
		for x := range width {
			c := c2
			if (x/checkSize+y/checkSize)%2 == 0 {
				c = c1
			}
			tex.put(y*width+x, c)
		}
	}
	return tex, nil
}

// NewGradientTexture creates a horizontal gradient texture.
func NewGradientTexture(width, height int, left, right Color) (*Framebuffer, error) {
	tex, err := NewFramebuffer(width, height, true)
	if err != nil {
		return nil, err
	}
	for y := range height {
		for x := range width {
			t := 0.0
			if width > 1 {
				t = float64(x) / float64(width-1)
			}
			tex.put(y*width+x, lerpColor(left, right, t))
		}
	}
	return tex, nil
}

// lerpColor linearly interpolates between two colors.
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}
