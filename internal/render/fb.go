package render

import (
	"image/color"

	fb "github.com/gonutz/framebuffer"
	"go.uber.org/zap"
)

// FBDisplay scales the logical canvas onto a Linux framebuffer. Each
// logical pixel becomes a block of framebuffer pixels via nearest-neighbor
// sampling; a 180° rotation covers displays mounted upside down.
type FBDisplay struct {
	*Canvas
	dev       *fb.Device
	rotate180 bool
	log       *zap.Logger
}

// OpenFramebuffer opens the framebuffer device. A failure here is fatal to
// the caller; without a working backend there is nothing to run.
func OpenFramebuffer(device string, canvas *Canvas, rotate180 bool, log *zap.Logger) (*FBDisplay, error) {
	dev, err := fb.Open(device)
	if err != nil {
		return nil, err
	}
	bounds := dev.Bounds()
	log.Info("framebuffer open",
		zap.String("device", device),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
		zap.Bool("rotate180", rotate180))
	return &FBDisplay{Canvas: canvas, dev: dev, rotate180: rotate180, log: log}, nil
}

func (d *FBDisplay) Flush() error {
	if d.PowerSaved() {
		d.blank()
		return nil
	}
	bounds := d.dev.Bounds()
	fbW, fbH := bounds.Dx(), bounds.Dy()
	cw, ch := d.Size()
	for y := 0; y < fbH; y++ {
		for x := 0; x < fbW; x++ {
			sx := x * cw / fbW
			sy := y * ch / fbH
			if d.rotate180 {
				sx = cw - 1 - sx
				sy = ch - 1 - sy
			}
			col := color.RGBA{A: 0xFF}
			if d.Lit(sx, sy) {
				col = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
			}
			d.dev.Set(bounds.Min.X+x, bounds.Min.Y+y, col)
		}
	}
	return nil
}

func (d *FBDisplay) SetPowerSave(on bool) {
	d.Canvas.SetPowerSave(on)
	if on {
		d.blank()
	}
}

func (d *FBDisplay) Close() {
	d.blank()
	d.dev.Close()
}

func (d *FBDisplay) blank() {
	bounds := d.dev.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			d.dev.Set(x, y, color.RGBA{A: 0xFF})
		}
	}
}
