package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. Each cell shows two framebuffer rows with an upper half block, so
// the framebuffer height should be twice the area height. The top of the
// image is the last framebuffer row.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// We use ▀ (upper half block) with fg=top color and bg=bottom color
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := fb.height - 1 - (row-area.Min.Y)*2
		botY := topY - 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.width; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// Preview renders the framebuffer as styled half-block text, one line per
// pair of framebuffer rows.
func (fb *Framebuffer) Preview() string {
	rows := (fb.height + 1) / 2
	buf := uv.NewScreenBuffer(fb.width, rows)
	fb.Draw(buf, uv.Rect(0, 0, fb.width, rows))
	return buf.Render()
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}
