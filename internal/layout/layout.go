// Package layout has small rectangle helpers for carving the screen into
// regions.
package layout

import "image"

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// SplitVertical splits rect into left and right parts.
// leftWidthPx is clamped to [0, rect.Dx()].
func SplitVertical(rect image.Rectangle, leftWidthPx int) (left image.Rectangle, right image.Rectangle) {
	rect = Normalize(rect)
	width := rect.Dx()
	if leftWidthPx < 0 {
		leftWidthPx = 0
	}
	if leftWidthPx > width {
		leftWidthPx = width
	}
	left = image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+leftWidthPx, rect.Max.Y)
	right = image.Rect(rect.Min.X+leftWidthPx, rect.Min.Y, rect.Max.X, rect.Max.Y)
	return left, right
}

// CenterIn returns a widthPx×heightPx rectangle centered inside rect.
// Oversized boxes are anchored at the rect origin on that axis.
func CenterIn(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	dx := (rect.Dx() - widthPx) / 2
	dy := (rect.Dy() - heightPx) / 2
	if dx < 0 {
		dx = 0
	}
	if dy < 0 {
		dy = 0
	}
	x := rect.Min.X + dx
	y := rect.Min.Y + dy
	return image.Rect(x, y, x+widthPx, y+heightPx)
}

// VCenterSquare returns a side×side square at the rect's left edge,
// vertically centered.
func VCenterSquare(rect image.Rectangle, side int) image.Rectangle {
	rect = Normalize(rect)
	y := rect.Min.Y + (rect.Dy()-side)/2
	if y < rect.Min.Y {
		y = rect.Min.Y
	}
	return image.Rect(rect.Min.X, y, rect.Min.X+side, y+side)
}
