package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/soundshelf/coverscreen/internal/event"
)

// step is one scripted event with a delay before it fires.
type step struct {
	after time.Duration
	ev    event.Event
}

// scriptTransport satisfies session.Transport with a canned event
// sequence and no broker.
type scriptTransport struct {
	log    *zap.Logger
	steps  []step
	events chan event.Event
}

func newScriptTransport(log *zap.Logger, steps []step) *scriptTransport {
	return &scriptTransport{log: log, steps: steps, events: make(chan event.Event, 16)}
}

func (t *scriptTransport) play(ctx context.Context) {
	go func() {
		for _, s := range t.steps {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.after):
			}
			select {
			case <-ctx.Done():
				return
			case t.events <- s.ev:
			}
		}
	}()
}

func (t *scriptTransport) Events() <-chan event.Event { return t.events }
func (t *scriptTransport) Connected() bool            { return true }
func (t *scriptTransport) Connect() error             { return nil }
func (t *scriptTransport) Reset()                     {}
func (t *scriptTransport) Close()                     {}

func (t *scriptTransport) PublishDisplayState(on bool) error {
	t.log.Info("would publish display_state", zap.Bool("on", on))
	return nil
}

// demoScript walks through the interesting states: metadata before cover,
// pending cover resolving to a checkerboard, pause/resume, remote off/on,
// then silence long enough to hit the activity timeout.
func demoScript(coverSize int) []step {
	return []step{
		{1 * time.Second, event.PlayStart{}},
		{500 * time.Millisecond, event.Artist{Text: "Thelonious Monk Quartet"}},
		{100 * time.Millisecond, event.Title{Text: "Monk's Dream (Take 8)"}},
		{2 * time.Second, event.CoverBitmap{Payload: checkerboard(coverSize)}},
		{3 * time.Second, event.PlayEnd{}},
		{2 * time.Second, event.PlayResume{}},
		{2 * time.Second, event.DisplayEnable{On: false}},
		{3 * time.Second, event.DisplayEnable{On: true}},
		{1 * time.Second, event.CoverClear{}},
		{500 * time.Millisecond, event.Title{Text: "Straight, No Chaser"}},
	}
}

func checkerboard(size int) []byte {
	bits := make([]byte, size*size/8)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/4+y/4)%2 == 0 {
				idx := y*size + x
				bits[idx>>3] |= 1 << (idx & 7)
			}
		}
	}
	return bits
}
