// Package session runs the single-threaded tick loop that ties transport,
// state, and display together. Inbound events mutate state; each tick
// evaluates the time-driven transitions (sleep timeout, pending-cover
// timeout, reconnect cooldown) and redraws at most once when something is
// dirty and the display is awake.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/soundshelf/coverscreen/internal/compose"
	"github.com/soundshelf/coverscreen/internal/config"
	"github.com/soundshelf/coverscreen/internal/event"
	"github.com/soundshelf/coverscreen/internal/render"
	"github.com/soundshelf/coverscreen/internal/state"
)

// Transport is the pub/sub link the session drives. Reconnect mechanics
// live behind this interface; the session only decides when to call
// Connect and when to escalate to Reset.
type Transport interface {
	Events() <-chan event.Event
	Connected() bool
	Connect() error
	Reset()
	PublishDisplayState(on bool) error
	Close()
}

// Session owns the device state and the scheduler loop. Not safe for
// concurrent use; everything runs on the goroutine that calls Run.
type Session struct {
	cfg       config.Config
	log       *zap.Logger
	display   render.Display
	transport Transport
	layout    compose.Layout

	media *state.Media
	cover *state.Cover
	power *state.Power

	now func() time.Time

	forceRedraw bool
	linkUp      bool
	announced   bool
	lastAttempt time.Time
	failures    int

	qrBits []byte
	qrSide int
}

func New(cfg config.Config, display render.Display, tr Transport, log *zap.Logger) *Session {
	l := compose.DefaultLayout()
	l.Width = cfg.Screen.Width
	l.Height = cfg.Screen.Height
	l.CoverSize = cfg.Screen.CoverSize
	l.CoverOffsetX = cfg.Screen.CoverOffsetX
	l.ShowPlaceholders = cfg.Behavior.ShowPlaceholders

	s := &Session{
		cfg:         cfg,
		log:         log,
		display:     display,
		transport:   tr,
		layout:      l,
		media:       state.NewMedia(),
		cover:       state.NewCover(cfg.Screen.CoverSize),
		power:       state.NewPower(time.Now()),
		now:         time.Now,
		forceRedraw: true,
	}
	if cfg.Behavior.OfflineQR {
		bits, side, err := render.QRBitmap(cfg.BrokerURL())
		if err != nil {
			log.Warn("offline QR unavailable", zap.Error(err))
		} else {
			s.qrBits, s.qrSide = bits, side
		}
	}
	return s
}

// Run drives the loop until the context ends. Events and ticks interleave
// on one goroutine: an event handler always runs to completion before the
// next tick evaluates state.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Behavior.Tick.Std())
	defer ticker.Stop()

	s.tick()
	for {
		select {
		case <-ctx.Done():
			s.display.SetPowerSave(true)
			return ctx.Err()
		case ev := <-s.transport.Events():
			s.handleEvent(ev)
		case <-ticker.C:
			s.tick()
		}
	}
}

// handleEvent applies one inbound event. Handlers validate before they
// mutate and leave state untouched on failure.
func (s *Session) handleEvent(ev event.Event) {
	now := s.now()
	switch e := ev.(type) {
	case event.CoverBitmap:
		if err := s.cover.SetBitmap(e.Payload); err != nil {
			s.log.Warn("dropping malformed cover", zap.Int("bytes", len(e.Payload)), zap.Error(err))
			return
		}
		s.log.Debug("cover updated", zap.Int("bytes", len(e.Payload)))
		s.power.Touch(now)
	case event.CoverClear:
		if s.cover.Clear() {
			s.log.Debug("cover cleared")
		}
		s.power.Touch(now)
	case event.Artist:
		if s.media.SetArtist(e.Text) {
			s.log.Debug("artist changed", zap.String("artist", s.media.Artist))
		}
		s.power.Touch(now)
	case event.Title:
		if s.media.SetTitle(e.Text) {
			s.log.Debug("title changed", zap.String("title", s.media.Title))
		}
		s.power.Touch(now)
	case event.PlayStart:
		s.media.SetPlaying(true)
		s.cover.MarkPending(now)
		s.power.Touch(now)
	case event.PlayResume:
		s.media.SetPlaying(true)
		s.power.Touch(now)
	case event.PlayEnd:
		// Stopping is not activity: without further events the device
		// sleeps once the timeout runs out.
		s.media.SetPlaying(false)
	case event.DisplayEnable:
		if !s.cfg.Behavior.RemoteToggle {
			return
		}
		if !s.power.SetRemoteEnabled(e.On, now) {
			return
		}
		s.log.Info("remote display toggle", zap.Bool("enabled", e.On))
		if err := s.transport.PublishDisplayState(e.On); err != nil {
			s.log.Error("display_state publish failed", zap.Error(err))
		}
	}
}

// tick evaluates the time-driven transitions and redraws when needed.
// Redraw is throttled to once per tick; the dirty flags coalesce any
// number of events in between.
func (s *Session) tick() {
	now := s.now()

	s.maintainLink(now)

	if s.cover.ExpirePending(now, s.cfg.Behavior.PendingTimeout.Std()) {
		s.log.Info("cover wait timed out")
	}

	switch s.power.Reconcile(now, s.cfg.Behavior.ActivityTimeout.Std()) {
	case state.PowerSlept:
		s.log.Info("display sleeping", zap.Bool("remote_enabled", s.power.RemoteEnabled))
		s.display.SetPowerSave(true)
	case state.PowerWoke:
		s.log.Info("display waking")
		s.display.SetPowerSave(false)
		s.forceRedraw = true
	}

	if s.power.Asleep {
		return
	}
	if s.media.Dirty() || s.cover.Dirty() || s.forceRedraw {
		s.redraw()
	}
}

// maintainLink keeps the broker connection alive without ever stalling the
// loop: at most one bounded connect attempt per cooldown window, and a
// full transport reset after a run of consecutive failures.
func (s *Session) maintainLink(now time.Time) {
	up := s.transport.Connected()
	if up != s.linkUp {
		s.linkUp = up
		s.forceRedraw = true
	}
	if up {
		if !s.announced && s.cfg.Behavior.RemoteToggle {
			if err := s.transport.PublishDisplayState(s.power.RemoteEnabled); err != nil {
				s.log.Warn("display_state announce failed", zap.Error(err))
			} else {
				s.announced = true
			}
		}
		return
	}

	s.announced = false
	if now.Sub(s.lastAttempt) < s.cfg.Behavior.ReconnectCooldown.Std() {
		return
	}
	s.lastAttempt = now
	if err := s.transport.Connect(); err != nil {
		s.failures++
		s.log.Warn("broker connect failed", zap.Int("consecutive", s.failures), zap.Error(err))
		if s.failures >= s.cfg.Behavior.ResetAfterFailures {
			s.log.Warn("resetting transport after repeated failures")
			s.transport.Reset()
			s.failures = 0
		}
		return
	}
	s.failures = 0
	s.linkUp = true
	s.forceRedraw = true
	s.log.Info("broker connected", zap.String("broker", s.cfg.BrokerURL()))
}

// redraw composes and pushes one frame. A failed flush is logged and
// skipped; the dirty flags stay set so the next tick retries.
func (s *Session) redraw() {
	var ops []compose.Op
	if !s.linkUp && s.media.Artist == "" && s.media.Title == "" && s.cfg.Behavior.OfflineQR {
		ops = compose.Offline(s.layout, s.display, s.cfg.BrokerURL(), s.qrBits, s.qrSide)
	} else {
		ops = compose.Frame(s.layout, s.display, s.media, s.cover)
	}
	compose.Apply(ops, s.display)
	if err := s.display.Flush(); err != nil {
		s.log.Error("frame flush failed", zap.Error(err))
		return
	}
	s.media.ClearDirty()
	s.cover.ClearDirty()
	s.forceRedraw = false
}
