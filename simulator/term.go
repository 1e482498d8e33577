package main

import (
	"fmt"
	"strings"

	"github.com/soundshelf/coverscreen/internal/render"
)

// termDisplay prints the logical canvas as Unicode half-blocks, two canvas
// rows per text line.
type termDisplay struct {
	*render.Canvas
	frames int
}

func newTermDisplay(c *render.Canvas) *termDisplay { return &termDisplay{Canvas: c} }

func (d *termDisplay) Flush() error {
	d.frames++
	w, h := d.Size()
	var b strings.Builder
	fmt.Fprintf(&b, "frame %d\n", d.frames)
	b.WriteString("+" + strings.Repeat("-", w) + "+\n")
	for y := 0; y < h; y += 2 {
		b.WriteString("|")
		for x := 0; x < w; x++ {
			top := d.Lit(x, y)
			bottom := y+1 < h && d.Lit(x, y+1)
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteString("|\n")
	}
	b.WriteString("+" + strings.Repeat("-", w) + "+\n")
	fmt.Print(b.String())
	return nil
}

func (d *termDisplay) SetPowerSave(on bool) {
	d.Canvas.SetPowerSave(on)
	if on {
		fmt.Println("[display off]")
	} else {
		fmt.Println("[display on]")
	}
}
