package render

import "github.com/skip2/go-qrcode"

// QRBitmap renders content as a QR code in the display's packed 1-bpp
// format (row-major, LSB first). Set bits are lit pixels, so light modules
// and the quiet zone come out white on the dark screen. Returns the edge
// length in pixels alongside the bits. Empty content yields (nil, 0, nil).
func QRBitmap(content string) ([]byte, int, error) {
	if content == "" {
		return nil, 0, nil
	}
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, 0, err
	}
	grid := code.Bitmap()
	side := len(grid)
	bits := make([]byte, (side*side+7)/8)
	for y, row := range grid {
		for x, dark := range row {
			if !dark {
				idx := y*side + x
				bits[idx>>3] |= 1 << (idx & 7)
			}
		}
	}
	return bits, side, nil
}
