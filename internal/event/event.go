// Package event defines the inbound events the display session consumes.
// Transport payloads are decoded exactly once, at the subscription
// boundary; everything past that point dispatches on the variant type.
package event

import (
	"errors"
	"fmt"
	"strings"
)

// ClearSentinel is the fixed payload shairport-sync publishes in place of
// real data when a field has no value ("no cover", "no title").
const ClearSentinel = "--"

// Event is an inbound event. The concrete types below are the only
// implementations.
type Event interface {
	event()
}

// CoverBitmap carries a packed 1-bpp cover image, 8 pixels per byte,
// row-major, LSB first.
type CoverBitmap struct {
	Payload []byte
}

// CoverClear signals that no cover is available for the current track.
type CoverClear struct{}

// Artist carries the artist name. Empty text means unknown.
type Artist struct {
	Text string
}

// Title carries the track title. Empty text means unknown.
type Title struct {
	Text string
}

// PlayStart marks the start of a new track.
type PlayStart struct{}

// PlayResume marks playback resuming after a pause.
type PlayResume struct{}

// PlayEnd marks playback stopping.
type PlayEnd struct{}

// DisplayEnable is the remote on/off toggle.
type DisplayEnable struct {
	On bool
}

func (CoverBitmap) event()   {}
func (CoverClear) event()    {}
func (Artist) event()        {}
func (Title) event()         {}
func (PlayStart) event()     {}
func (PlayResume) event()    {}
func (PlayEnd) event()       {}
func (DisplayEnable) event() {}

var (
	// ErrUnknownTopic is returned for subtopics the session does not consume.
	ErrUnknownTopic = errors.New("event: unknown topic")
	// ErrBadToken is returned for display_enable payloads that are neither
	// an on nor an off token.
	ErrBadToken = errors.New("event: unrecognized bool token")
)

// Decode maps a topic suffix and payload to an Event.
//
// The "--" sentinel clears covers and blanks text fields. active_start and
// active_end (AirPlay session boundaries) are folded into PlayStart and
// PlayEnd; the session does not distinguish them from track boundaries.
func Decode(subtopic string, payload []byte) (Event, error) {
	switch subtopic {
	case "cover":
		if string(payload) == ClearSentinel {
			return CoverClear{}, nil
		}
		return CoverBitmap{Payload: payload}, nil
	case "artist":
		return Artist{Text: textPayload(payload)}, nil
	case "title":
		return Title{Text: textPayload(payload)}, nil
	case "play_start", "active_start":
		return PlayStart{}, nil
	case "play_resume":
		return PlayResume{}, nil
	case "play_end", "active_end":
		return PlayEnd{}, nil
	case "display":
		on, err := ParseBoolToken(string(payload))
		if err != nil {
			return nil, err
		}
		return DisplayEnable{On: on}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, subtopic)
}

// ParseBoolToken interprets the remote toggle payload. Accepted on tokens
// are "ON", "1" and "TRUE", off tokens "OFF", "0" and "FALSE", all
// case-insensitive.
func ParseBoolToken(s string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ON", "1", "TRUE":
		return true, nil
	case "OFF", "0", "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrBadToken, s)
}

// FormatBoolToken renders a display state for the retained outbound topic.
func FormatBoolToken(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func textPayload(payload []byte) string {
	s := strings.TrimSpace(string(payload))
	if s == ClearSentinel {
		return ""
	}
	return s
}
