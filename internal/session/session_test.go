package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soundshelf/coverscreen/internal/config"
	"github.com/soundshelf/coverscreen/internal/event"
	"github.com/soundshelf/coverscreen/internal/render"
)

type fakeTransport struct {
	events     chan event.Event
	connected  bool
	connectErr error
	connects   int
	resets     int
	published  []bool
}

func (f *fakeTransport) Events() <-chan event.Event { return f.events }
func (f *fakeTransport) Connected() bool            { return f.connected }
func (f *fakeTransport) Reset()                     { f.resets++ }
func (f *fakeTransport) Close()                     {}

func (f *fakeTransport) Connect() error {
	f.connects++
	return f.connectErr
}

func (f *fakeTransport) PublishDisplayState(on bool) error {
	f.published = append(f.published, on)
	return nil
}

type countingDisplay struct {
	*render.Canvas
	flushes  int
	flushErr error
}

func (d *countingDisplay) Flush() error {
	if d.flushErr != nil {
		return d.flushErr
	}
	d.flushes++
	return nil
}

func newTestSession(t *testing.T, mutate func(*config.Config)) (*Session, *fakeTransport, *countingDisplay, *time.Time) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	faces := render.LoadFaces("", render.FaceSizes{Artist: 12, Title: 14, Label: 12}, zap.NewNop())
	disp := &countingDisplay{Canvas: render.NewCanvas(cfg.Screen.Width, cfg.Screen.Height, faces)}
	tr := &fakeTransport{events: make(chan event.Event, 8), connected: true}
	s := New(cfg, disp, tr, zap.NewNop())

	now := time.Unix(10000, 0)
	s.now = func() time.Time { return now }
	s.power.Touch(now)
	return s, tr, disp, &now
}

func TestRedrawOnlyWhenDirty(t *testing.T) {
	s, _, disp, now := newTestSession(t, nil)

	s.tick()
	require.Equal(t, 1, disp.flushes, "initial frame")

	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, 1, disp.flushes, "nothing changed, no redraw")

	s.handleEvent(event.Artist{Text: "Monk"})
	s.handleEvent(event.Title{Text: "Evidence"})
	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, 2, disp.flushes, "coalesced into one frame")

	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, 2, disp.flushes)
}

func TestFailedFlushKeepsStateDirty(t *testing.T) {
	s, _, disp, now := newTestSession(t, nil)
	disp.flushErr = errors.New("i2c timeout")

	s.handleEvent(event.Title{Text: "Evidence"})
	s.tick()
	require.Zero(t, disp.flushes)

	// Once the device recovers, the next tick retries the same frame.
	disp.flushErr = nil
	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, 1, disp.flushes)
}

func TestRemoteToggleOffSleepsAndPublishes(t *testing.T) {
	s, tr, disp, now := newTestSession(t, nil)
	s.tick() // announce + initial frame
	tr.published = nil

	s.handleEvent(event.DisplayEnable{On: false})
	require.Equal(t, []bool{false}, tr.published)

	// Recent activity does not keep a remotely disabled display on.
	*now = now.Add(time.Second)
	s.tick()
	require.True(t, disp.PowerSaved())

	flushesAsleep := disp.flushes
	s.handleEvent(event.Title{Text: "ignored while asleep"})
	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, flushesAsleep, disp.flushes, "no frames while asleep")

	s.handleEvent(event.DisplayEnable{On: true})
	require.Equal(t, []bool{false, true}, tr.published)
	*now = now.Add(time.Second)
	s.tick()
	require.False(t, disp.PowerSaved())
	require.Equal(t, flushesAsleep+1, disp.flushes, "wake forces a redraw")
}

func TestDuplicateToggleNotRepublished(t *testing.T) {
	s, tr, _, _ := newTestSession(t, nil)
	s.tick()
	tr.published = nil

	s.handleEvent(event.DisplayEnable{On: true})
	require.Empty(t, tr.published, "already enabled, retained duplicate ignored")

	s.handleEvent(event.DisplayEnable{On: false})
	s.handleEvent(event.DisplayEnable{On: false})
	require.Equal(t, []bool{false}, tr.published)
}

func TestRemoteToggleDisabledByConfig(t *testing.T) {
	s, tr, disp, now := newTestSession(t, func(c *config.Config) {
		c.Behavior.RemoteToggle = false
	})
	s.tick()
	tr.published = nil

	s.handleEvent(event.DisplayEnable{On: false})
	require.Empty(t, tr.published)

	*now = now.Add(time.Second)
	s.tick()
	require.False(t, disp.PowerSaved())
}

func TestSleepsOnFirstTickPastTimeout(t *testing.T) {
	s, _, disp, now := newTestSession(t, nil)
	timeout := s.cfg.Behavior.ActivityTimeout.Std()
	tick := s.cfg.Behavior.Tick.Std()

	s.handleEvent(event.PlayStart{})
	s.tick()
	start := *now

	// play_end is not activity; the timeout keeps running from the last
	// real event.
	*now = start.Add(time.Second)
	s.handleEvent(event.PlayEnd{})

	*now = start.Add(timeout)
	s.tick()
	require.False(t, disp.PowerSaved(), "deadline not passed yet")

	*now = start.Add(timeout + tick)
	s.tick()
	require.True(t, disp.PowerSaved(), "asleep on the first tick past the deadline")
}

func TestEventsKeepDisplayAwake(t *testing.T) {
	s, _, disp, now := newTestSession(t, nil)
	timeout := s.cfg.Behavior.ActivityTimeout.Std()
	s.tick()

	for i := 0; i < 4; i++ {
		*now = now.Add(timeout / 2)
		s.handleEvent(event.Title{Text: time.Now().String()})
		s.tick()
		require.False(t, disp.PowerSaved())
	}
}

func TestMalformedCoverDropped(t *testing.T) {
	s, _, disp, now := newTestSession(t, nil)
	s.tick()
	flushes := disp.flushes

	s.handleEvent(event.CoverBitmap{Payload: []byte{1, 2, 3}})
	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, flushes, disp.flushes, "wrong-length cover must not trigger a redraw")
}

func TestCoverSentinelCancelsPendingWait(t *testing.T) {
	s, _, disp, now := newTestSession(t, nil)

	s.handleEvent(event.PlayStart{})
	s.tick()
	flushes := disp.flushes

	s.handleEvent(event.CoverClear{})
	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, flushes+1, disp.flushes, "pending to absent is a visible change")
}

func TestPendingCoverExpires(t *testing.T) {
	s, _, disp, now := newTestSession(t, nil)
	pending := s.cfg.Behavior.PendingTimeout.Std()
	tick := s.cfg.Behavior.Tick.Std()

	s.handleEvent(event.PlayStart{})
	s.tick()
	flushes := disp.flushes

	*now = now.Add(pending)
	s.tick()
	require.Equal(t, flushes, disp.flushes, "still waiting at the deadline")

	*now = now.Add(tick)
	s.tick()
	require.Equal(t, flushes+1, disp.flushes, "expiry redraws without the placeholder")
}

func TestGoodCoverReplacesPending(t *testing.T) {
	s, _, disp, now := newTestSession(t, nil)
	s.handleEvent(event.PlayStart{})
	s.tick()
	flushes := disp.flushes

	payload := make([]byte, s.cfg.Screen.CoverSize*s.cfg.Screen.CoverSize/8)
	for i := range payload {
		payload[i] = 0xFF
	}
	s.handleEvent(event.CoverBitmap{Payload: payload})
	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, flushes+1, disp.flushes)
	// The cover square is actually lit on the canvas.
	require.True(t, disp.Lit(1, s.cfg.Screen.Height/2))
}

func TestConnectCooldownAndEscalation(t *testing.T) {
	s, tr, _, now := newTestSession(t, func(c *config.Config) {
		c.Behavior.ReconnectCooldown = config.Duration(5 * time.Second)
		c.Behavior.ResetAfterFailures = 2
	})
	tr.connected = false
	tr.connectErr = errors.New("connection refused")

	s.tick()
	require.Equal(t, 1, tr.connects)

	// Inside the cooldown window nothing is attempted.
	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, 1, tr.connects)

	*now = now.Add(4 * time.Second)
	s.tick()
	require.Equal(t, 2, tr.connects)
	require.Equal(t, 1, tr.resets, "reset after two consecutive failures")

	// The failure counter restarts after a reset.
	*now = now.Add(5 * time.Second)
	s.tick()
	require.Equal(t, 3, tr.connects)
	require.Equal(t, 1, tr.resets)
}

func TestConnectSuccessAnnouncesState(t *testing.T) {
	s, tr, _, now := newTestSession(t, nil)
	tr.connected = false

	s.tick()
	require.Equal(t, 1, tr.connects)
	require.Empty(t, tr.published, "announce waits for the link to be up")

	tr.connected = true
	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, []bool{true}, tr.published)

	// Announced once per connection, not per tick.
	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, []bool{true}, tr.published)
}

func TestReannounceAfterLinkLoss(t *testing.T) {
	s, tr, _, now := newTestSession(t, nil)
	s.tick()
	require.Equal(t, []bool{true}, tr.published)

	tr.connected = false
	*now = now.Add(time.Second)
	s.tick()

	tr.connected = true
	*now = now.Add(time.Second)
	s.tick()
	require.Equal(t, []bool{true, true}, tr.published)
}

func TestOfflineQRPrepared(t *testing.T) {
	s, _, _, _ := newTestSession(t, func(c *config.Config) {
		c.Behavior.OfflineQR = true
	})
	require.NotEmpty(t, s.qrBits)
	require.Greater(t, s.qrSide, 0)

	s2, _, _, _ := newTestSession(t, nil)
	require.Empty(t, s2.qrBits)
}

func TestRunStopsOnCancel(t *testing.T) {
	s, tr, disp, _ := newTestSession(t, func(c *config.Config) {
		c.Behavior.Tick = config.Duration(5 * time.Millisecond)
	})
	s.now = time.Now
	s.power.Touch(time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	tr.events <- event.Title{Text: "So What"}
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
	require.True(t, disp.PowerSaved(), "display blanked on shutdown")
}
