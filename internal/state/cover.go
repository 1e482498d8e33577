package state

import (
	"errors"
	"fmt"
	"time"
)

// ErrPayloadLength rejects cover payloads that are not exactly the packed
// bitmap size. Malformed upstream data must not reach the frame buffer.
var ErrPayloadLength = errors.New("cover: payload length mismatch")

// CoverStatus enumerates the cover art states.
type CoverStatus int

const (
	// CoverAbsent means no cover is available.
	CoverAbsent CoverStatus = iota
	// CoverPending means a cover has been signaled as incoming but has not
	// arrived yet.
	CoverPending
	// CoverAvailable means Bitmap holds a drawable image.
	CoverAvailable
)

func (s CoverStatus) String() string {
	switch s {
	case CoverAbsent:
		return "absent"
	case CoverPending:
		return "pending"
	case CoverAvailable:
		return "available"
	}
	return "unknown"
}

// Cover tracks the album art for the current track. Bitmap is only valid
// while Status is CoverAvailable; PendingSince only while CoverPending.
type Cover struct {
	Status       CoverStatus
	Bitmap       []byte
	PendingSince time.Time

	sizePx   int
	expected int
	dirty    bool
}

// NewCover prepares tracking for a sizePx×sizePx packed 1-bpp bitmap.
func NewCover(sizePx int) *Cover {
	return &Cover{sizePx: sizePx, expected: sizePx * sizePx / 8}
}

// SizePx returns the cover edge length in pixels.
func (c *Cover) SizePx() int { return c.sizePx }

// ExpectedLen returns the exact payload length SetBitmap accepts.
func (c *Cover) ExpectedLen() int { return c.expected }

// SetBitmap stores an inbound bitmap and moves to CoverAvailable. A payload
// of the wrong length leaves the state untouched.
func (c *Cover) SetBitmap(payload []byte) error {
	if len(payload) != c.expected {
		return fmt.Errorf("%w: got %d, want %d", ErrPayloadLength, len(payload), c.expected)
	}
	c.Bitmap = append(c.Bitmap[:0], payload...)
	c.Status = CoverAvailable
	c.PendingSince = time.Time{}
	c.dirty = true
	return nil
}

// Clear handles the "no cover" sentinel: any prior status, including a
// pending wait, collapses to CoverAbsent. Returns true when the status
// changed.
func (c *Cover) Clear() bool {
	if c.Status == CoverAbsent {
		return false
	}
	c.Status = CoverAbsent
	c.Bitmap = c.Bitmap[:0]
	c.PendingSince = time.Time{}
	c.dirty = true
	return true
}

// MarkPending flags that a cover is expected to arrive. Only an absent
// cover enters the pending state; an available one stays up until it is
// replaced or cleared.
func (c *Cover) MarkPending(now time.Time) bool {
	if c.Status != CoverAbsent {
		return false
	}
	c.Status = CoverPending
	c.PendingSince = now
	c.dirty = true
	return true
}

// ExpirePending gives up on a cover that never arrived. Checked once per
// scheduler tick.
func (c *Cover) ExpirePending(now time.Time, timeout time.Duration) bool {
	if c.Status != CoverPending || now.Sub(c.PendingSince) <= timeout {
		return false
	}
	c.Status = CoverAbsent
	c.PendingSince = time.Time{}
	c.dirty = true
	return true
}

// Dirty reports whether the cover changed since the last drawn frame.
func (c *Cover) Dirty() bool { return c.dirty }

// ClearDirty is called after a frame has been handed to the display.
func (c *Cover) ClearDirty() { c.dirty = false }
