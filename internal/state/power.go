package state

import "time"

// PowerTransition is the result of one reconciliation pass.
type PowerTransition int

const (
	// PowerStay means the derived state already matched the invariant.
	PowerStay PowerTransition = iota
	// PowerSlept means the display just went to sleep.
	PowerSlept
	// PowerWoke means the display just woke up.
	PowerWoke
)

// Power derives the display power state from recent activity and the
// remote enable toggle. The invariant is
//
//	Asleep == (now-LastActivity > timeout) || !RemoteEnabled
//
// and Reconcile re-establishes it every scheduler tick; the timeout is
// time-driven, not event-driven.
type Power struct {
	RemoteEnabled bool
	Asleep        bool
	LastActivity  time.Time
}

func NewPower(now time.Time) *Power {
	return &Power{RemoteEnabled: true, LastActivity: now}
}

// Touch records playback activity, re-arming the sleep timeout.
func (p *Power) Touch(now time.Time) { p.LastActivity = now }

// SetRemoteEnabled records the remote toggle. Returns true on an actual
// change; the sleep/wake side effect happens on the next Reconcile.
// Re-enabling re-arms the timeout from the moment of the toggle.
func (p *Power) SetRemoteEnabled(on bool, now time.Time) bool {
	if p.RemoteEnabled == on {
		return false
	}
	p.RemoteEnabled = on
	if on {
		p.LastActivity = now
	}
	return true
}

// Reconcile re-evaluates the invariant. Idempotent: when the state already
// matches, nothing happens and PowerStay is returned, so the caller never
// re-issues power commands or redraws. Waking refreshes LastActivity so a
// woken display is not immediately put back to sleep.
func (p *Power) Reconcile(now time.Time, timeout time.Duration) PowerTransition {
	shouldSleep := now.Sub(p.LastActivity) > timeout || !p.RemoteEnabled
	if shouldSleep == p.Asleep {
		return PowerStay
	}
	p.Asleep = shouldSleep
	if shouldSleep {
		return PowerSlept
	}
	p.LastActivity = now
	return PowerWoke
}
