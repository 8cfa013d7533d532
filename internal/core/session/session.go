// Package session drives the timer through work and break phases and books
// the time spent on the selected task back into its checklist line.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pomotasks/internal/core/model"
	"pomotasks/internal/core/notation"
	"pomotasks/internal/core/timer"
)

// ErrIdleUnsupported indicates idle detection is not available on this system.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

const notificationTitle = "Pomotasks"

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// Notifier receives one message per finished countdown.
type Notifier interface {
	Notify(title, message string)
}

// TaskWriter stores a rewritten task line.
type TaskWriter interface {
	ReplaceLine(filePath, oldLine, newLine string) error
}

// Options contains runtime options for Session.
type Options struct {
	TickInterval time.Duration
	Clock        timer.Clock
}

// Session owns the timer state and the selected task.
type Session struct {
	mu            sync.Mutex
	config        model.SessionConfig
	options       Options
	clock         timer.Clock
	state         timer.State
	phase         Phase
	countdownID   string
	active        *activeTask
	writer        TaskWriter
	notifier      Notifier
	idleChecker   IdleChecker
	lastIdleCheck time.Time
	events        []chan Event
	stopCh        chan struct{}
	running       bool
}

// activeTask accumulates work time for the selected record. since is zero
// while nothing is being counted.
type activeTask struct {
	record  notation.Record
	since   time.Time
	elapsed time.Duration
}

// New creates a stopped Session in the work phase.
func New(config model.SessionConfig, writer TaskWriter, notifier Notifier, options Options) *Session {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Clock == nil {
		options.Clock = timer.SystemClock{}
	}
	if config.IdleCheckInterval <= 0 {
		config.IdleCheckInterval = 5 * time.Second
	}

	return &Session{
		config:   config,
		options:  options,
		clock:    options.Clock,
		state:    timer.Reset(),
		phase:    PhaseWork,
		writer:   writer,
		notifier: notifier,
	}
}

// SetIdleChecker injects an idle checker.
func (session *Session) SetIdleChecker(checker IdleChecker) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.idleChecker = checker
}

// Subscribe registers a new observer channel.
func (session *Session) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	session.mu.Lock()
	session.events = append(session.events, ch)
	session.mu.Unlock()
	return ch
}

// Start launches the polling loop.
func (session *Session) Start() {
	session.mu.Lock()
	if session.running {
		session.mu.Unlock()
		return
	}
	session.running = true
	stopCh := make(chan struct{})
	session.stopCh = stopCh
	session.mu.Unlock()

	go session.run(stopCh)
}

// Stop terminates the polling loop and closes observers. Time accumulated
// for the selected task is booked first.
func (session *Session) Stop() {
	session.mu.Lock()
	if !session.running {
		session.mu.Unlock()
		return
	}
	session.flushLocked(session.clock.Now())
	close(session.stopCh)
	session.running = false
	events := session.events
	session.events = nil
	session.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// StartTimer begins a countdown for the current phase, or resumes a paused one.
func (session *Session) StartTimer() {
	session.mu.Lock()
	defer session.mu.Unlock()

	now := session.clock.Now()
	switch state := session.state.(type) {
	case timer.Running:
		return
	case timer.Paused:
		session.resumeLocked(now, state)
	default:
		session.startLocked(now)
	}
}

// Pause freezes a running countdown.
func (session *Session) Pause() {
	session.mu.Lock()
	defer session.mu.Unlock()

	if running, ok := session.state.(timer.Running); ok {
		now := session.clock.Now()
		session.pauseLocked(now, now, running)
	}
}

// Resume continues a paused countdown.
func (session *Session) Resume() {
	session.mu.Lock()
	defer session.mu.Unlock()

	if paused, ok := session.state.(timer.Paused); ok {
		session.resumeLocked(session.clock.Now(), paused)
	}
}

// Toggle starts, pauses or resumes depending on the current state.
func (session *Session) Toggle() {
	session.mu.Lock()
	defer session.mu.Unlock()

	now := session.clock.Now()
	switch state := session.state.(type) {
	case timer.Running:
		session.pauseLocked(now, now, state)
	case timer.Paused:
		session.resumeLocked(now, state)
	default:
		session.startLocked(now)
	}
}

// Reset stops the countdown and drops the time counted for the selected
// task since it was last booked.
func (session *Session) Reset() {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.active != nil {
		session.active.since = time.Time{}
		session.active.elapsed = 0
	}
	session.state = timer.Reset()
	session.emitStateLocked(session.clock.Now())
}

// Skip books the selected task's time, stops the countdown and moves on to
// the next phase.
func (session *Session) Skip() {
	session.mu.Lock()
	defer session.mu.Unlock()

	now := session.clock.Now()
	session.flushLocked(now)
	session.state = timer.Reset()
	session.phase = session.phase.Next()
	session.emitStateLocked(now)
}

// SelectTask books the previous task's time and makes record the one that
// accumulates work time.
func (session *Session) SelectTask(record notation.Record) {
	session.mu.Lock()
	defer session.mu.Unlock()

	now := session.clock.Now()
	session.flushLocked(now)
	session.active = &activeTask{record: record}
	if session.countingLocked() {
		session.active.since = now
	}

	selected := record
	session.emitLocked(Event{
		Type:   EventTaskSelected,
		Phase:  session.phase,
		Status: session.state.Status(),
		Task:   &selected,
		At:     now,
	})
}

// ClearTask books the selected task's time, deselects it and returns the
// task as it now stands in its file.
func (session *Session) ClearTask() (notation.Record, bool) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.active == nil {
		return notation.Record{}, false
	}
	now := session.clock.Now()
	session.flushLocked(now)
	record := session.active.record
	session.active = nil
	session.emitLocked(Event{
		Type:   EventTaskSelected,
		Phase:  session.phase,
		Status: session.state.Status(),
		At:     now,
	})
	return record, true
}

// ActiveTask returns the selected task, if any.
func (session *Session) ActiveTask() (notation.Record, bool) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.active == nil {
		return notation.Record{}, false
	}
	return session.active.record, true
}

// UpdateConfig replaces durations and symbols. A running countdown keeps
// its deadline.
func (session *Session) UpdateConfig(config model.SessionConfig) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if config.IdleCheckInterval <= 0 {
		config.IdleCheckInterval = 5 * time.Second
	}
	session.config = config
}

// Snapshot describes the current state without changing it.
func (session *Session) Snapshot() Event {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.progressEventLocked(session.clock.Now())
}

func (session *Session) run(stopCh <-chan struct{}) {
	ticker := time.NewTicker(session.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			session.tick()
		}
	}
}

// tick polls the deadline. Nothing is decremented: remaining time is always
// read from the absolute deadline.
func (session *Session) tick() {
	session.mu.Lock()
	defer session.mu.Unlock()

	running, ok := session.state.(timer.Running)
	if !ok {
		return
	}
	now := session.clock.Now()

	if timer.Expired(session.clock, running) {
		if !running.Notified() {
			session.expireLocked(now, running)
		}
		return
	}

	if session.phase == PhaseWork && session.handleIdleCheckLocked(now, running) {
		return
	}
	session.emitLocked(session.progressEventLocked(now))
}

func (session *Session) expireLocked(now time.Time, running timer.Running) {
	session.state = timer.MarkNotified(running)
	finished := session.phase

	if finished == PhaseWork {
		session.flushLocked(earliest(now, running.EndsAt))
	}

	message := "Break session ended"
	if finished == PhaseWork {
		message = "Work session ended"
	}
	if session.notifier != nil {
		session.notifier.Notify(notificationTitle, message)
	}
	session.emitLocked(Event{
		Type:        EventExpired,
		Phase:       finished,
		Status:      timer.StatusRunning,
		CountdownID: session.countdownID,
		Message:     message,
		At:          now,
	})

	session.state = timer.Reset()
	session.phase = finished.Next()
	if finished == PhaseWork && session.config.AutoStartBreak {
		session.startLocked(now)
		return
	}
	session.emitStateLocked(now)
}

func (session *Session) handleIdleCheckLocked(now time.Time, running timer.Running) bool {
	if !session.config.IdlePauseEnabled || session.idleChecker == nil {
		return false
	}
	if !session.lastIdleCheck.IsZero() && now.Sub(session.lastIdleCheck) < session.config.IdleCheckInterval {
		return false
	}
	session.lastIdleCheck = now

	idleDuration, err := session.idleChecker.IdleDuration()
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			session.config.IdlePauseEnabled = false
		}
		session.emitLocked(Event{
			Type:        EventIdleError,
			Phase:       session.phase,
			Status:      session.state.Status(),
			CountdownID: session.countdownID,
			Message:     err.Error(),
			At:          now,
		})
		return false
	}
	if idleDuration < session.config.IdlePauseAfter {
		return false
	}

	session.pauseLocked(now, now.Add(-idleDuration), running)
	session.emitLocked(Event{
		Type:        EventIdlePause,
		Phase:       session.phase,
		Status:      timer.StatusPaused,
		CountdownID: session.countdownID,
		Message:     fmt.Sprintf("idle for %s", idleDuration.Round(time.Second)),
		At:          now,
	})
	return true
}

func (session *Session) startLocked(now time.Time) {
	session.state = timer.Start(instant(now), session.phaseDurationLocked())
	session.countdownID = uuid.NewString()
	session.lastIdleCheck = time.Time{}
	if session.active != nil && session.phase == PhaseWork {
		session.active.since = now
	}
	session.emitStateLocked(now)
}

// pauseLocked freezes the countdown at now. Task time stops counting at
// workedUntil, which is earlier than now when the user went idle.
func (session *Session) pauseLocked(now, workedUntil time.Time, running timer.Running) {
	session.state = timer.Pause(instant(now), running)
	session.active.fold(workedUntil)
	session.emitStateLocked(now)
}

func (session *Session) resumeLocked(now time.Time, paused timer.Paused) {
	session.state = timer.Resume(instant(now), paused)
	session.lastIdleCheck = time.Time{}
	if session.active != nil && session.phase == PhaseWork {
		session.active.since = now
	}
	session.emitStateLocked(now)
}

// flushLocked books the selected task's accumulated time into its line and
// stops counting. Less than a quarter unit is dropped without touching the
// line.
func (session *Session) flushLocked(now time.Time) {
	if session.active == nil {
		return
	}
	session.active.fold(now)
	elapsed := session.active.elapsed
	session.active.elapsed = 0

	perUnit := session.config.Symbols.WorkMinutesPerUnit
	if elapsed <= 0 || perUnit <= 0 {
		return
	}
	units := elapsed.Minutes() / perUnit
	if notation.FloorToQuarter(units) == 0 {
		return
	}

	previous := session.active.record
	updated, err := notation.Subtract(previous, units)
	if err != nil {
		session.emitErrorLocked(now, fmt.Errorf("book %s on %q: %w", elapsed, previous.Name, err))
		return
	}
	line := notation.FormatLine(session.config.Symbols, updated)
	if session.writer != nil {
		if err := session.writer.ReplaceLine(previous.FilePath, previous.RawLine, line); err != nil {
			session.emitErrorLocked(now, fmt.Errorf("write task %q: %w", previous.Name, err))
			return
		}
	}
	updated.RawLine = line
	session.active.record = updated

	booked := updated
	session.emitLocked(Event{
		Type:    EventTaskUpdated,
		Phase:   session.phase,
		Status:  session.state.Status(),
		Task:    &booked,
		Message: line,
		At:      now,
	})
}

func (session *Session) countingLocked() bool {
	_, running := session.state.(timer.Running)
	return running && session.phase == PhaseWork
}

func (session *Session) phaseDurationLocked() time.Duration {
	if session.phase == PhaseBreak {
		return session.config.Break
	}
	return session.config.Work
}

func (session *Session) progressEventLocked(now time.Time) Event {
	remaining := timer.Remaining(instant(now), session.state)
	event := Event{
		Type:        EventProgress,
		Phase:       session.phase,
		Status:      session.state.Status(),
		Remaining:   remaining,
		CountdownID: session.countdownID,
		At:          now,
	}
	if session.state.Status() == timer.StatusStopped {
		event.Remaining = session.phaseDurationLocked()
		event.CountdownID = ""
	} else if total := session.phaseDurationLocked(); total > 0 {
		event.Progress = clamp(float64(total-remaining) / float64(total))
	}
	if session.active != nil {
		task := session.active.record
		event.Task = &task
	}
	return event
}

func (session *Session) emitStateLocked(now time.Time) {
	event := session.progressEventLocked(now)
	event.Type = EventStateChange
	session.emitLocked(event)
}

func (session *Session) emitErrorLocked(now time.Time, err error) {
	session.emitLocked(Event{
		Type:        EventError,
		Phase:       session.phase,
		Status:      session.state.Status(),
		CountdownID: session.countdownID,
		Message:     err.Error(),
		At:          now,
	})
}

func (session *Session) emitLocked(event Event) {
	events := append([]chan Event(nil), session.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}

// fold moves counted time into elapsed and stops counting.
func (task *activeTask) fold(until time.Time) {
	if task == nil || task.since.IsZero() {
		return
	}
	if until.After(task.since) {
		task.elapsed += until.Sub(task.since)
	}
	task.since = time.Time{}
}

// instant is a Clock frozen at one moment, so a single operation sees one
// consistent now.
type instant time.Time

func (moment instant) Now() time.Time {
	return time.Time(moment)
}

func earliest(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
