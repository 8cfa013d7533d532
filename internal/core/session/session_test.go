package session

import (
	"errors"
	"testing"
	"time"

	"pomotasks/internal/core/model"
	"pomotasks/internal/core/notation"
	"pomotasks/internal/core/timer"
)

var epoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

var testSymbols = model.SymbolSetting{Full: "🍅", Half: "🍓", Quarter: "🍒", WorkMinutesPerUnit: 25}

type fakeClock struct {
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	return clock.now
}

func (clock *fakeClock) advance(d time.Duration) {
	clock.now = clock.now.Add(d)
}

type replacement struct {
	path, oldLine, newLine string
}

type fakeWriter struct {
	replacements []replacement
	err          error
}

func (writer *fakeWriter) ReplaceLine(path, oldLine, newLine string) error {
	if writer.err != nil {
		return writer.err
	}
	writer.replacements = append(writer.replacements, replacement{path, oldLine, newLine})
	return nil
}

type fakeNotifier struct {
	messages []string
}

func (notifier *fakeNotifier) Notify(title, message string) {
	notifier.messages = append(notifier.messages, message)
}

type fakeIdle struct {
	idle time.Duration
	err  error
}

func (checker fakeIdle) IdleDuration() (time.Duration, error) {
	return checker.idle, checker.err
}

type fixture struct {
	clock    *fakeClock
	writer   *fakeWriter
	notifier *fakeNotifier
	session  *Session
	events   <-chan Event
}

func newFixture(t *testing.T, mutate func(*model.SessionConfig)) *fixture {
	t.Helper()
	config := model.SessionConfig{
		Symbols: testSymbols,
		Work:    25 * time.Minute,
		Break:   5 * time.Minute,
	}
	if mutate != nil {
		mutate(&config)
	}
	f := &fixture{
		clock:    &fakeClock{now: epoch},
		writer:   &fakeWriter{},
		notifier: &fakeNotifier{},
	}
	f.session = New(config, f.writer, f.notifier, Options{Clock: f.clock})
	f.events = f.session.Subscribe(64)
	return f
}

func (f *fixture) drain() []Event {
	var events []Event
	for {
		select {
		case event := <-f.events:
			events = append(events, event)
		default:
			return events
		}
	}
}

func findEvent(events []Event, eventType EventType) (Event, bool) {
	for _, event := range events {
		if event.Type == eventType {
			return event, true
		}
	}
	return Event{}, false
}

func task(line string) notation.Record {
	return notation.Construct(testSymbols, line, "today.md")
}

func TestExpiryNotifiesOnceAndSwitchesPhase(t *testing.T) {
	f := newFixture(t, nil)

	f.session.StartTimer()
	first := f.session.Snapshot()
	if first.Status != timer.StatusRunning || first.Remaining != 25*time.Minute {
		t.Fatalf("unexpected snapshot after start: %+v", first)
	}
	if first.CountdownID == "" {
		t.Fatal("countdown has no ID")
	}

	f.clock.advance(10 * time.Minute)
	f.session.tick()
	if got := f.session.Snapshot().Remaining; got != 15*time.Minute {
		t.Fatalf("Remaining = %v, want 15m", got)
	}

	f.clock.advance(15 * time.Minute)
	f.session.tick()
	f.session.tick()

	if len(f.notifier.messages) != 1 || f.notifier.messages[0] != "Work session ended" {
		t.Fatalf("notifications = %v", f.notifier.messages)
	}
	snapshot := f.session.Snapshot()
	if snapshot.Phase != PhaseBreak || snapshot.Status != timer.StatusStopped {
		t.Fatalf("expected stopped break, got %s/%s", snapshot.Phase, snapshot.Status)
	}
	if snapshot.Remaining != 5*time.Minute {
		t.Errorf("stopped snapshot Remaining = %v, want break length", snapshot.Remaining)
	}

	expired, ok := findEvent(f.drain(), EventExpired)
	if !ok {
		t.Fatal("no expired event")
	}
	if expired.CountdownID != first.CountdownID || expired.Phase != PhaseWork {
		t.Errorf("unexpected expired event: %+v", expired)
	}
}

func TestBreakExpiryReturnsToWork(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Skip()
	f.session.StartTimer()

	f.clock.advance(5 * time.Minute)
	f.session.tick()

	if len(f.notifier.messages) != 1 || f.notifier.messages[0] != "Break session ended" {
		t.Fatalf("notifications = %v", f.notifier.messages)
	}
	if phase := f.session.Snapshot().Phase; phase != PhaseWork {
		t.Fatalf("phase = %s", phase)
	}
}

func TestAutoStartBreak(t *testing.T) {
	f := newFixture(t, func(config *model.SessionConfig) { config.AutoStartBreak = true })
	f.session.StartTimer()
	f.clock.advance(25 * time.Minute)
	f.session.tick()

	snapshot := f.session.Snapshot()
	if snapshot.Phase != PhaseBreak || snapshot.Status != timer.StatusRunning {
		t.Fatalf("expected running break, got %s/%s", snapshot.Phase, snapshot.Status)
	}
	if snapshot.Remaining != 5*time.Minute {
		t.Errorf("Remaining = %v", snapshot.Remaining)
	}
}

func TestExpiryBooksSelectedTask(t *testing.T) {
	f := newFixture(t, nil)
	f.session.SelectTask(task("- [ ] 🍅🍓 Reply to emails"))
	f.session.StartTimer()

	f.clock.advance(27 * time.Minute)
	f.session.tick()

	if len(f.writer.replacements) != 1 {
		t.Fatalf("expected one write, got %d", len(f.writer.replacements))
	}
	got := f.writer.replacements[0]
	want := replacement{"today.md", "- [ ] 🍅🍓 Reply to emails", "- [ ] ~~🍅~~ 🍓 Reply to emails"}
	if got != want {
		t.Fatalf("write = %+v, want %+v", got, want)
	}

	active, ok := f.session.ActiveTask()
	if !ok || active.RawLine != want.newLine || active.RemainingCount != 0.5 {
		t.Fatalf("active task not updated: %+v", active)
	}

	updated, ok := findEvent(f.drain(), EventTaskUpdated)
	if !ok || updated.Task == nil || updated.Task.CompletedCount != 1 {
		t.Fatalf("missing task update event: %+v", updated)
	}
}

func TestPausedTimeIsNotBooked(t *testing.T) {
	f := newFixture(t, nil)
	f.session.SelectTask(task("- [ ] 🍅🍓 Reply to emails"))
	f.session.StartTimer()

	f.clock.advance(10 * time.Minute)
	f.session.Pause()
	f.clock.advance(time.Hour)
	f.session.Resume()
	f.clock.advance(5 * time.Minute)
	cleared, ok := f.session.ClearTask()

	if len(f.writer.replacements) != 1 {
		t.Fatalf("expected one write, got %d", len(f.writer.replacements))
	}
	if got := f.writer.replacements[0].newLine; got != "- [ ] ~~🍓~~ 🍅 Reply to emails" {
		t.Fatalf("line = %q", got)
	}
	if !ok || cleared.RawLine != "- [ ] ~~🍓~~ 🍅 Reply to emails" || cleared.RemainingCount != 1 {
		t.Fatalf("cleared = %+v, %v", cleared, ok)
	}
	if _, ok := f.session.ActiveTask(); ok {
		t.Fatal("task still selected")
	}
	if _, ok := f.session.ClearTask(); ok {
		t.Fatal("second clear reported a task")
	}
}

func TestToggle(t *testing.T) {
	f := newFixture(t, nil)

	f.session.Toggle()
	if status := f.session.Snapshot().Status; status != timer.StatusRunning {
		t.Fatalf("after first toggle: %s", status)
	}
	f.clock.advance(time.Minute)
	f.session.Toggle()
	if status := f.session.Snapshot().Status; status != timer.StatusPaused {
		t.Fatalf("after second toggle: %s", status)
	}
	f.clock.advance(time.Hour)
	f.session.Toggle()
	snapshot := f.session.Snapshot()
	if snapshot.Status != timer.StatusRunning || snapshot.Remaining != 24*time.Minute {
		t.Fatalf("after third toggle: %+v", snapshot)
	}
}

func TestResetDiscardsAccumulatedTime(t *testing.T) {
	f := newFixture(t, nil)
	f.session.SelectTask(task("- [ ] 🍅 Write report"))
	f.session.StartTimer()
	f.clock.advance(20 * time.Minute)
	f.session.Reset()
	f.clock.advance(20 * time.Minute)
	f.session.ClearTask()

	if len(f.writer.replacements) != 0 {
		t.Fatalf("reset time was booked: %+v", f.writer.replacements)
	}
	if status := f.session.Snapshot().Status; status != timer.StatusStopped {
		t.Fatalf("status = %s", status)
	}
}

func TestSkipBooksAndSwitchesPhase(t *testing.T) {
	f := newFixture(t, nil)
	f.session.SelectTask(task("- [ ] 🍅 Write report"))
	f.session.StartTimer()
	f.clock.advance(12*time.Minute + 30*time.Second)
	f.session.Skip()

	if len(f.writer.replacements) != 1 || f.writer.replacements[0].newLine != "- [ ] ~~🍓~~ 🍓 Write report" {
		t.Fatalf("writes = %+v", f.writer.replacements)
	}
	snapshot := f.session.Snapshot()
	if snapshot.Phase != PhaseBreak || snapshot.Status != timer.StatusStopped {
		t.Fatalf("expected stopped break, got %s/%s", snapshot.Phase, snapshot.Status)
	}
	if len(f.notifier.messages) != 0 {
		t.Errorf("skip notified: %v", f.notifier.messages)
	}
}

func TestShortWorkIsDropped(t *testing.T) {
	f := newFixture(t, nil)
	f.session.SelectTask(task("- [ ] 🍅 Write report"))
	f.session.StartTimer()
	f.clock.advance(5 * time.Minute)
	f.session.ClearTask()

	if len(f.writer.replacements) != 0 {
		t.Fatalf("sub-quarter time was booked: %+v", f.writer.replacements)
	}
}

func TestBreakTimeIsNotBooked(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Skip()
	f.session.SelectTask(task("- [ ] 🍅 Write report"))
	f.session.StartTimer()
	f.clock.advance(5 * time.Minute)
	f.session.tick()
	f.session.ClearTask()

	if len(f.writer.replacements) != 0 {
		t.Fatalf("break time was booked: %+v", f.writer.replacements)
	}
}

func TestSelectingAnotherTaskBooksThePrevious(t *testing.T) {
	f := newFixture(t, nil)
	f.session.SelectTask(task("- [ ] 🍅 First"))
	f.session.StartTimer()
	f.clock.advance(25 * time.Minute / 2)
	f.session.SelectTask(task("- [ ] 🍅 Second"))
	f.clock.advance(25 * time.Minute / 4)
	f.session.ClearTask()

	if len(f.writer.replacements) != 2 {
		t.Fatalf("expected two writes, got %+v", f.writer.replacements)
	}
	if got := f.writer.replacements[0].newLine; got != "- [ ] ~~🍓~~ 🍓 First" {
		t.Errorf("first line = %q", got)
	}
	if got := f.writer.replacements[1].newLine; got != "- [ ] ~~🍒~~ 🍓🍒 Second" {
		t.Errorf("second line = %q", got)
	}
}

func TestOverrunIsRecorded(t *testing.T) {
	f := newFixture(t, func(config *model.SessionConfig) { config.Work = 50 * time.Minute })
	f.session.SelectTask(task("- [ ] 🍓 Quick fix"))
	f.session.StartTimer()
	f.clock.advance(50 * time.Minute)
	f.session.tick()

	if len(f.writer.replacements) != 1 {
		t.Fatalf("expected one write, got %d", len(f.writer.replacements))
	}
	if got := f.writer.replacements[0].newLine; got != "- [ ] ~~🍓+🍅🍓~~ Quick fix" {
		t.Fatalf("line = %q", got)
	}
}

func TestWriteFailureKeepsRecord(t *testing.T) {
	f := newFixture(t, nil)
	f.writer.err = errors.New("disk full")
	original := task("- [ ] 🍅 Write report")
	f.session.SelectTask(original)
	f.session.StartTimer()
	countdownID := f.session.Snapshot().CountdownID
	f.clock.advance(25 * time.Minute)
	f.session.tick()

	active, _ := f.session.ActiveTask()
	if active != original {
		t.Fatalf("record changed after failed write: %+v", active)
	}
	event, ok := findEvent(f.drain(), EventError)
	if !ok {
		t.Fatal("no error event")
	}
	if countdownID == "" || event.CountdownID != countdownID {
		t.Errorf("error event countdown = %q, want %q", event.CountdownID, countdownID)
	}
}

func TestIdlePause(t *testing.T) {
	f := newFixture(t, func(config *model.SessionConfig) {
		config.IdlePauseEnabled = true
		config.IdlePauseAfter = 5 * time.Minute
	})
	f.session.SetIdleChecker(fakeIdle{idle: 6 * time.Minute})
	f.session.SelectTask(task("- [ ] 🍅 Write report"))
	f.session.StartTimer()
	countdownID := f.session.Snapshot().CountdownID

	f.clock.advance(20 * time.Minute)
	f.session.tick()

	if status := f.session.Snapshot().Status; status != timer.StatusPaused {
		t.Fatalf("status = %s, want paused", status)
	}
	event, ok := findEvent(f.drain(), EventIdlePause)
	if !ok {
		t.Fatal("no idle pause event")
	}
	if event.CountdownID != countdownID {
		t.Errorf("idle pause countdown = %q, want %q", event.CountdownID, countdownID)
	}

	f.session.ClearTask()
	if len(f.writer.replacements) != 1 || f.writer.replacements[0].newLine != "- [ ] ~~🍓~~ 🍓 Write report" {
		t.Fatalf("writes = %+v", f.writer.replacements)
	}
}

func TestIdleUnsupportedDisablesCheck(t *testing.T) {
	f := newFixture(t, func(config *model.SessionConfig) {
		config.IdlePauseEnabled = true
		config.IdlePauseAfter = time.Minute
	})
	f.session.SetIdleChecker(fakeIdle{err: ErrIdleUnsupported})
	f.session.StartTimer()

	f.clock.advance(time.Minute)
	f.session.tick()
	f.clock.advance(time.Minute)
	f.session.tick()

	var idleErrors int
	for _, event := range f.drain() {
		if event.Type == EventIdleError {
			idleErrors++
		}
	}
	if idleErrors != 1 {
		t.Fatalf("idle errors = %d, want 1", idleErrors)
	}
	if status := f.session.Snapshot().Status; status != timer.StatusRunning {
		t.Fatalf("status = %s", status)
	}
}

func TestStartStop(t *testing.T) {
	session := New(model.SessionConfig{Symbols: testSymbols, Work: time.Minute, Break: time.Minute}, nil, nil, Options{TickInterval: time.Millisecond})
	events := session.Subscribe(1)
	session.Start()
	session.Start()
	session.Stop()
	session.Stop()

	for range events {
	}
}

func TestRestartKeepsTicking(t *testing.T) {
	session := New(model.SessionConfig{Symbols: testSymbols, Work: time.Hour, Break: time.Minute}, nil, nil, Options{TickInterval: time.Millisecond})
	session.Start()
	session.Stop()

	events := session.Subscribe(16)
	session.StartTimer()
	session.Start()
	defer session.Stop()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-events:
			if event.Type == EventProgress {
				return
			}
		case <-timeout:
			t.Fatal("no progress after restart")
		}
	}
}
