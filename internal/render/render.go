// Package render provides the display capability: measuring and drawing
// text, blitting packed monochrome bitmaps, and pushing frames to a
// physical or in-memory backend. Rasterization details stay behind the
// Display interface; the composer only ever sees draw primitives.
package render

// Font selects one of the configured type faces by display region.
type Font int

const (
	// FontArtist is the small face for the artist row.
	FontArtist Font = iota
	// FontTitle is the face for the wrapped title lines.
	FontTitle
	// FontLabel is the face for footer labels and placeholders.
	FontLabel

	numFonts
)

// Metrics reports rendered pixel widths. Implemented by every Display.
type Metrics interface {
	TextWidth(f Font, text string) int
}

// Display is the rendering capability the session drives. Implementations
// are not safe for concurrent use; all calls come from the session
// goroutine.
type Display interface {
	Metrics

	// Size returns the logical canvas size in pixels.
	Size() (width, height int)

	// Clear fills the canvas with the background color.
	Clear()

	// DrawText draws text with its top-left corner at (x, y).
	DrawText(x, y int, f Font, text string)

	// DrawBitmap blits a packed 1-bpp bitmap (row-major, LSB first) with
	// its top-left corner at (x, y).
	DrawBitmap(x, y, w, h int, bits []byte)

	// FillTriangle fills the triangle spanned by the three points.
	FillTriangle(x0, y0, x1, y1, x2, y2 int)

	// SetPowerSave blanks the display (true) or re-enables it (false).
	SetPowerSave(on bool)

	// Flush pushes the canvas to the underlying device.
	Flush() error
}
