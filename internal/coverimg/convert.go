// Package coverimg converts source album art into the packed monochrome
// bitmap the display consumes. The pipeline mirrors the display firmware's
// expectations exactly: grayscale, center-crop to square, Lanczos resize,
// Floyd–Steinberg dither, then 8 pixels per byte, row-major, LSB first.
package coverimg

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Convert decodes data (JPEG, PNG, GIF, ...) and produces the
// sizePx×sizePx packed bitmap.
func Convert(data []byte, sizePx int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("coverimg: decode: %w", err)
	}
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	cropped := imaging.CropCenter(gray, side, side)
	resized := imaging.Resize(cropped, sizePx, sizePx, imaging.Lanczos)
	return Pack(Dither(resized), sizePx, sizePx), nil
}

// Dither applies Floyd–Steinberg error diffusion to an already-grayscale
// image, returning one bool per pixel, row-major, true for white.
func Dither(img *image.NRGBA) []bool {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Grayscale input: the red channel is the luminance.
			buf[y*w+x] = float64(img.NRGBAAt(b.Min.X+x, b.Min.Y+y).R)
		}
	}

	out := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			old := buf[i]
			var val float64
			if old >= 128 {
				out[i] = true
				val = 255
			}
			diff := old - val
			if x+1 < w {
				buf[i+1] += diff * 7 / 16
			}
			if y+1 < h {
				if x > 0 {
					buf[i+w-1] += diff * 3 / 16
				}
				buf[i+w] += diff * 5 / 16
				if x+1 < w {
					buf[i+w+1] += diff * 1 / 16
				}
			}
		}
	}
	return out
}

// Pack packs row-major pixels into bytes, LSB first, matching the XBM-style
// layout the display unpacks.
func Pack(pixels []bool, w, h int) []byte {
	bits := make([]byte, (w*h+7)/8)
	for i, on := range pixels {
		if on {
			bits[i>>3] |= 1 << (i & 7)
		}
	}
	return bits
}
