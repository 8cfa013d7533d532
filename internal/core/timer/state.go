// Package timer is a countdown over absolute deadlines. Transitions are pure
// functions; remaining time is always derived from the deadline and a clock,
// so a process that sleeps through part of a countdown still reports it
// correctly.
package timer

import "time"

// Status names the state tag.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

// Clock supplies wall time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// State is one of Stopped, Running or Paused.
type State interface {
	Status() Status
	Notified() bool
	withNotified() State
}

// Stopped has no deadline.
type Stopped struct {
	NotificationTriggered bool
}

// Running counts down to EndsAt.
type Running struct {
	EndsAt                time.Time
	NotificationTriggered bool
}

// Paused froze a countdown at PausedAt.
type Paused struct {
	EndsAt                time.Time
	PausedAt              time.Time
	NotificationTriggered bool
}

func (Stopped) Status() Status { return StatusStopped }
func (Running) Status() Status { return StatusRunning }
func (Paused) Status() Status  { return StatusPaused }

func (state Stopped) Notified() bool { return state.NotificationTriggered }
func (state Running) Notified() bool { return state.NotificationTriggered }
func (state Paused) Notified() bool  { return state.NotificationTriggered }

func (state Stopped) withNotified() State {
	state.NotificationTriggered = true
	return state
}

func (state Running) withNotified() State {
	state.NotificationTriggered = true
	return state
}

func (state Paused) withNotified() State {
	state.NotificationTriggered = true
	return state
}

// Reset discards any countdown.
func Reset() Stopped {
	return Stopped{}
}

// Start begins a fresh countdown of duration.
func Start(clock Clock, duration time.Duration) Running {
	return Running{EndsAt: clock.Now().Add(duration)}
}

// Pause freezes a running countdown.
func Pause(clock Clock, state Running) Paused {
	return Paused{
		EndsAt:                state.EndsAt,
		PausedAt:              clock.Now(),
		NotificationTriggered: state.NotificationTriggered,
	}
}

// Resume moves the deadline forward by the time spent paused.
func Resume(clock Clock, state Paused) Running {
	return Running{
		EndsAt:                state.EndsAt.Add(clock.Now().Sub(state.PausedAt)),
		NotificationTriggered: state.NotificationTriggered,
	}
}

// MarkNotified sets the notification flag and keeps the tag.
func MarkNotified(state State) State {
	if state == nil {
		return Stopped{NotificationTriggered: true}
	}
	return state.withNotified()
}

// Remaining returns the time left, never negative. Stopped has none.
func Remaining(clock Clock, state State) time.Duration {
	var remaining time.Duration
	switch current := state.(type) {
	case Running:
		remaining = current.EndsAt.Sub(clock.Now())
	case Paused:
		remaining = current.EndsAt.Sub(current.PausedAt)
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether a running countdown has reached zero.
func Expired(clock Clock, state State) bool {
	running, ok := state.(Running)
	return ok && !clock.Now().Before(running.EndsAt)
}
