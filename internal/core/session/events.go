package session

import (
	"time"

	"pomotasks/internal/core/notation"
	"pomotasks/internal/core/timer"
)

// Phase is the part of the cycle a countdown belongs to.
type Phase string

const (
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
)

// Next returns the phase that follows.
func (phase Phase) Next() Phase {
	if phase == PhaseWork {
		return PhaseBreak
	}
	return PhaseWork
}

// EventType defines the type of Session event.
type EventType string

const (
	EventStateChange  EventType = "state_change"
	EventProgress     EventType = "progress"
	EventExpired      EventType = "expired"
	EventTaskSelected EventType = "task_selected"
	EventTaskUpdated  EventType = "task_updated"
	EventIdlePause    EventType = "idle_pause"
	EventIdleError    EventType = "idle_error"
	EventError        EventType = "error"
)

// Event represents a Session update for observers.
type Event struct {
	Type        EventType
	Phase       Phase
	Status      timer.Status
	Remaining   time.Duration
	Progress    float64
	CountdownID string
	Task        *notation.Record
	Message     string
	At          time.Time
}
