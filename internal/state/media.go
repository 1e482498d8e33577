// Package state holds the mutable session state: playback metadata, cover
// art, and display power. The three structs are siblings; the frame
// composer reads them together, nothing owns anything. All mutation
// happens from the single session goroutine, so there is no locking.
package state

import "strings"

// Media is the last known playback metadata. Empty artist or title means
// unknown and is not drawn.
type Media struct {
	Artist  string
	Title   string
	Playing bool

	dirty bool
}

func NewMedia() *Media { return &Media{} }

// SetArtist stores a trimmed artist name. Returns true when the value
// actually changed; duplicate retained messages do not trigger redraws.
func (m *Media) SetArtist(s string) bool {
	s = strings.TrimSpace(s)
	if s == m.Artist {
		return false
	}
	m.Artist = s
	m.dirty = true
	return true
}

// SetTitle stores a trimmed track title, with the same change gating as
// SetArtist.
func (m *Media) SetTitle(s string) bool {
	s = strings.TrimSpace(s)
	if s == m.Title {
		return false
	}
	m.Title = s
	m.dirty = true
	return true
}

// SetPlaying flips the play/pause flag.
func (m *Media) SetPlaying(on bool) bool {
	if m.Playing == on {
		return false
	}
	m.Playing = on
	m.dirty = true
	return true
}

// Dirty reports whether anything changed since the last drawn frame.
func (m *Media) Dirty() bool { return m.dirty }

// MarkDirty forces a redraw on the next tick.
func (m *Media) MarkDirty() { m.dirty = true }

// ClearDirty is called after a frame has been handed to the display.
func (m *Media) ClearDirty() { m.dirty = false }
