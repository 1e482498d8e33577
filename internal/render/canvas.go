package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var (
	white = color.Gray{Y: 0xFF}
	black = color.Gray{Y: 0x00}
)

// Canvas is an in-memory monochrome surface implementing Display. Physical
// backends embed it and override Flush; tests use it directly.
type Canvas struct {
	img       *image.Gray
	faces     *Faces
	w, h      int
	powerSave bool
}

func NewCanvas(w, h int, faces *Faces) *Canvas {
	return &Canvas{
		img:   image.NewGray(image.Rect(0, 0, w, h)),
		faces: faces,
		w:     w,
		h:     h,
	}
}

func (c *Canvas) Size() (int, int) { return c.w, c.h }

// Image exposes the backing pixels for backends and tests.
func (c *Canvas) Image() *image.Gray { return c.img }

// PowerSaved reports whether the canvas is currently blanked.
func (c *Canvas) PowerSaved() bool { return c.powerSave }

func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: black}, image.Point{}, draw.Src)
}

func (c *Canvas) TextWidth(f Font, text string) int {
	d := &font.Drawer{Face: c.faces.Face(f)}
	return d.MeasureString(text).Ceil()
}

func (c *Canvas) DrawText(x, y int, f Font, text string) {
	face := c.faces.Face(f)
	d := &font.Drawer{
		Dst:  c.img,
		Src:  &image.Uniform{C: white},
		Face: face,
	}
	// (x, y) anchors the top-left of the text cell; the drawer wants a
	// baseline.
	d.Dot = fixed.P(x, y+face.Metrics().Ascent.Ceil())
	d.DrawString(text)
}

func (c *Canvas) DrawBitmap(x, y, w, h int, bits []byte) {
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			idx := row*w + col
			if idx>>3 >= len(bits) {
				return
			}
			if bits[idx>>3]&(1<<(idx&7)) != 0 {
				c.setPixel(x+col, y+row, white)
			} else {
				c.setPixel(x+col, y+row, black)
			}
		}
	}
}

// FillTriangle rasterizes the triangle with an edge-function test over its
// bounding box. Either winding is accepted.
func (c *Canvas) FillTriangle(x0, y0, x1, y1, x2, y2 int) {
	minX := min3(x0, x1, x2)
	maxX := max3(x0, x1, x2)
	minY := min3(y0, y1, y2)
	maxY := max3(y0, y1, y2)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			e0 := edge(x0, y0, x1, y1, x, y)
			e1 := edge(x1, y1, x2, y2, x, y)
			e2 := edge(x2, y2, x0, y0, x, y)
			if (e0 >= 0 && e1 >= 0 && e2 >= 0) || (e0 <= 0 && e1 <= 0 && e2 <= 0) {
				c.setPixel(x, y, white)
			}
		}
	}
}

func (c *Canvas) SetPowerSave(on bool) {
	c.powerSave = on
	if on {
		c.Clear()
	}
}

func (c *Canvas) Flush() error { return nil }

func (c *Canvas) setPixel(x, y int, col color.Gray) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.img.SetGray(x, y, col)
}

// Lit reports whether the pixel at (x, y) is above the monochrome
// threshold. Antialiased glyph edges count as lit from half intensity up.
func (c *Canvas) Lit(x, y int) bool {
	return c.img.GrayAt(x, y).Y >= 0x80
}

func edge(ax, ay, bx, by, px, py int) int {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3(a, b, c int) int {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
