package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPowerStaysAwakeWithinTimeout(t *testing.T) {
	t0 := time.Unix(1000, 0)
	p := NewPower(t0)
	timeout := 5 * time.Minute

	require.Equal(t, PowerStay, p.Reconcile(t0.Add(timeout), timeout))
	require.False(t, p.Asleep)
}

func TestPowerSleepsOnFirstTickPastDeadline(t *testing.T) {
	t0 := time.Unix(1000, 0)
	p := NewPower(t0)
	timeout := 5 * time.Minute
	tick := 100 * time.Millisecond

	// Exactly at the deadline is still awake; one tick later it is not.
	require.Equal(t, PowerStay, p.Reconcile(t0.Add(timeout), timeout))
	require.Equal(t, PowerSlept, p.Reconcile(t0.Add(timeout+tick), timeout))
	require.True(t, p.Asleep)
}

func TestPowerReconcileIsIdempotent(t *testing.T) {
	t0 := time.Unix(1000, 0)
	p := NewPower(t0)
	timeout := time.Minute
	late := t0.Add(2 * timeout)

	require.Equal(t, PowerSlept, p.Reconcile(late, timeout))
	require.Equal(t, PowerStay, p.Reconcile(late, timeout))
	require.Equal(t, PowerStay, p.Reconcile(late.Add(time.Hour), timeout))
}

func TestPowerTouchWakes(t *testing.T) {
	t0 := time.Unix(1000, 0)
	p := NewPower(t0)
	timeout := time.Minute

	require.Equal(t, PowerSlept, p.Reconcile(t0.Add(2*timeout), timeout))

	touched := t0.Add(2*timeout + time.Second)
	p.Touch(touched)
	require.Equal(t, PowerWoke, p.Reconcile(touched, timeout))
	require.False(t, p.Asleep)
	require.Equal(t, touched, p.LastActivity)
}

func TestPowerRemoteDisableOverridesActivity(t *testing.T) {
	t0 := time.Unix(1000, 0)
	p := NewPower(t0)
	timeout := time.Hour

	require.True(t, p.SetRemoteEnabled(false, t0))
	require.Equal(t, PowerSlept, p.Reconcile(t0, timeout))
	require.True(t, p.Asleep)

	// Fresh activity cannot wake a remotely disabled display.
	p.Touch(t0.Add(time.Second))
	require.Equal(t, PowerStay, p.Reconcile(t0.Add(time.Second), timeout))
	require.True(t, p.Asleep)
}

func TestPowerReenableRearmsFromToggleMoment(t *testing.T) {
	t0 := time.Unix(1000, 0)
	p := NewPower(t0)
	timeout := time.Minute

	require.True(t, p.SetRemoteEnabled(false, t0))
	require.Equal(t, PowerSlept, p.Reconcile(t0, timeout))

	// Long after the old activity would have expired, re-enabling counts
	// as activity itself.
	later := t0.Add(time.Hour)
	require.True(t, p.SetRemoteEnabled(true, later))
	require.Equal(t, PowerWoke, p.Reconcile(later, timeout))
	require.False(t, p.Asleep)
	require.Equal(t, later, p.LastActivity)
}

func TestPowerSetRemoteEnabledReportsChange(t *testing.T) {
	t0 := time.Unix(1000, 0)
	p := NewPower(t0)

	require.False(t, p.SetRemoteEnabled(true, t0))
	require.True(t, p.SetRemoteEnabled(false, t0))
	require.False(t, p.SetRemoteEnabled(false, t0))
}

func TestPowerWakeRefreshesActivity(t *testing.T) {
	t0 := time.Unix(1000, 0)
	p := NewPower(t0)
	timeout := time.Minute

	require.Equal(t, PowerSlept, p.Reconcile(t0.Add(2*timeout), timeout))

	wakeAt := t0.Add(3 * timeout)
	require.True(t, p.SetRemoteEnabled(false, wakeAt))
	require.True(t, p.SetRemoteEnabled(true, wakeAt))
	require.Equal(t, PowerWoke, p.Reconcile(wakeAt, timeout))

	// The display must stay up for a full timeout after waking.
	require.Equal(t, PowerStay, p.Reconcile(wakeAt.Add(timeout), timeout))
	require.Equal(t, PowerSlept, p.Reconcile(wakeAt.Add(timeout+time.Second), timeout))
}
