// Package compose turns the current session state into an ordered list of
// draw commands. Frame is a pure function: it measures and lays out but
// never touches a display, so every layout decision is testable without
// hardware.
package compose

import (
	"image"

	"github.com/soundshelf/coverscreen/internal/layout"
	"github.com/soundshelf/coverscreen/internal/render"
	"github.com/soundshelf/coverscreen/internal/state"
	"github.com/soundshelf/coverscreen/internal/wrap"
)

// Op is one draw command. Text, Bitmap and Triangle are the only variants.
type Op interface {
	op()
}

// Text draws a glyph run with its top-left corner at (X, Y).
type Text struct {
	X, Y int
	Font render.Font
	Text string
}

// Bitmap blits a packed 1-bpp image.
type Bitmap struct {
	X, Y, W, H int
	Bits       []byte
}

// Triangle fills the triangle spanned by the three points.
type Triangle struct {
	X0, Y0, X1, Y1, X2, Y2 int
}

func (Text) op()     {}
func (Bitmap) op()   {}
func (Triangle) op() {}

// Layout is the fixed pixel geometry of a frame: cover square left-aligned
// and vertically centered, text region in the remaining width, footer row
// at the bottom.
type Layout struct {
	Width  int
	Height int

	CoverSize    int
	CoverOffsetX int

	// TextGap separates the cover square from the text region.
	TextGap int

	ArtistY    int
	TitleY     int
	TitleLineH int
	FooterY    int

	// ShowPlaceholders draws "..." while a cover is pending and "Wait"
	// when none is available. The sparse firmware variant leaves the cover
	// region empty instead.
	ShowPlaceholders bool
}

// DefaultLayout is the 128×64 SH1106 geometry with a 48 px cover.
func DefaultLayout() Layout {
	return Layout{
		Width:            128,
		Height:           64,
		CoverSize:        48,
		CoverOffsetX:     0,
		TextGap:          4,
		ArtistY:          0,
		TitleY:           13,
		TitleLineH:       13,
		FooterY:          53,
		ShowPlaceholders: true,
	}
}

func (l Layout) screen() image.Rectangle {
	return image.Rect(0, 0, l.Width, l.Height)
}

// CoverRect is the cover square region.
func (l Layout) CoverRect() image.Rectangle {
	r := l.screen()
	r.Min.X += l.CoverOffsetX
	return layout.VCenterSquare(r, l.CoverSize)
}

// TextRect is the region right of the cover square.
func (l Layout) TextRect() image.Rectangle {
	_, right := layout.SplitVertical(l.screen(), l.CoverOffsetX+l.CoverSize+l.TextGap)
	return right
}

// Frame composes the draw commands for the current state. Pure: no side
// effects, no display access beyond width measurement.
func Frame(l Layout, m render.Metrics, media *state.Media, cover *state.Cover) []Op {
	var ops []Op

	coverRect := l.CoverRect()
	switch cover.Status {
	case state.CoverAvailable:
		ops = append(ops, Bitmap{
			X: coverRect.Min.X, Y: coverRect.Min.Y,
			W: cover.SizePx(), H: cover.SizePx(),
			Bits: cover.Bitmap,
		})
	case state.CoverPending:
		if l.ShowPlaceholders {
			ops = append(ops, centeredText(m, coverRect, render.FontLabel, "..."))
		}
	case state.CoverAbsent:
		if l.ShowPlaceholders {
			ops = append(ops, centeredText(m, coverRect, render.FontLabel, "Wait"))
		}
	}

	textRect := l.TextRect()
	budget := textRect.Dx()

	if media.Artist != "" {
		artist := wrap.Truncate(media.Artist, budget, fontMetrics(m, render.FontArtist))
		if artist != "" {
			ops = append(ops, Text{X: textRect.Min.X, Y: l.ArtistY, Font: render.FontArtist, Text: artist})
		}
	}

	if media.Title != "" {
		for i, line := range wrap.Lines(media.Title, budget, fontMetrics(m, render.FontTitle)) {
			if line == "" {
				continue
			}
			ops = append(ops, Text{
				X: textRect.Min.X, Y: l.TitleY + i*l.TitleLineH,
				Font: render.FontTitle, Text: line,
			})
		}
	}

	if media.Playing {
		ops = append(ops, playGlyph(l, m)...)
	} else {
		ops = append(ops, Text{X: textRect.Min.X, Y: l.FooterY, Font: render.FontLabel, Text: "Paused"})
	}

	return ops
}

// Offline composes the link-down frame: a QR code with the broker URI in
// the cover region (when available) and a short notice in the text region.
func Offline(l Layout, m render.Metrics, brokerURL string, qrBits []byte, qrSide int) []Op {
	var ops []Op

	if len(qrBits) > 0 {
		r := layout.CenterIn(l.CoverRect(), qrSide, qrSide)
		ops = append(ops, Bitmap{X: r.Min.X, Y: r.Min.Y, W: qrSide, H: qrSide, Bits: qrBits})
	}

	textRect := l.TextRect()
	budget := textRect.Dx()
	ops = append(ops, Text{X: textRect.Min.X, Y: l.ArtistY, Font: render.FontTitle, Text: "No link"})
	broker := wrap.Truncate(brokerURL, budget, fontMetrics(m, render.FontArtist))
	if broker != "" {
		ops = append(ops, Text{X: textRect.Min.X, Y: l.TitleY, Font: render.FontArtist, Text: broker})
	}
	return ops
}

// Apply clears the display and executes the command list. Flushing is the
// caller's job so a failed flush can keep the dirty flags set.
func Apply(ops []Op, d render.Display) {
	d.Clear()
	for _, op := range ops {
		switch o := op.(type) {
		case Text:
			d.DrawText(o.X, o.Y, o.Font, o.Text)
		case Bitmap:
			d.DrawBitmap(o.X, o.Y, o.W, o.H, o.Bits)
		case Triangle:
			d.FillTriangle(o.X0, o.Y0, o.X1, o.Y1, o.X2, o.Y2)
		}
	}
}

// playGlyph is the small triangular play marker plus "Play" label in the
// bottom-right corner.
func playGlyph(l Layout, m render.Metrics) []Op {
	labelW := m.TextWidth(render.FontLabel, "Play")
	labelX := l.Width - labelW - 2
	tipX := labelX - 4
	baseX := tipX - 7
	y0 := l.FooterY + 1
	return []Op{
		Triangle{X0: baseX, Y0: y0, X1: baseX, Y1: y0 + 8, X2: tipX, Y2: y0 + 4},
		Text{X: labelX, Y: l.FooterY, Font: render.FontLabel, Text: "Play"},
	}
}

func centeredText(m render.Metrics, rect image.Rectangle, f render.Font, s string) Op {
	w := m.TextWidth(f, s)
	r := layout.CenterIn(rect, w, 12)
	return Text{X: r.Min.X, Y: r.Min.Y, Font: f, Text: s}
}

func fontMetrics(m render.Metrics, f render.Font) wrap.TextMetrics {
	return wrap.WidthFunc(func(s string) int { return m.TextWidth(f, s) })
}
