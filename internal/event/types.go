package event

import "time"

// Event is the interface all race milestone events implement.
type Event interface {
	// EventType returns a stable identifier such as TypeCycleStarted.
	EventType() string
}

// Event type identifiers, used as subscription keys on the Bus.
const (
	TypeHuntStarted   = "hunt.started"
	TypeCycleStarted  = "cycle.started"
	TypeWin           = "race.won"
	TypeWindowExpired = "cycle.window_expired"
	TypeCycleEnded    = "cycle.ended"
	TypePauseStarted  = "schedule.pause_started"
	TypePauseEnded    = "schedule.pause_ended"
	TypeStopped       = "hunt.stopped"
)

// HuntStartedEvent is published once at startup, before the first cycle.
type HuntStartedEvent struct {
	Workers   int
	Targets   string
	Scheduled bool
	Work      time.Duration
	Pause     time.Duration
}

// EventType returns the event type identifier.
func (HuntStartedEvent) EventType() string { return TypeHuntStarted }

// CycleStartedEvent is published when a duty cycle begins.
type CycleStartedEvent struct {
	Cycle   int
	Workers int
}

// EventType returns the event type identifier.
func (CycleStartedEvent) EventType() string { return TypeCycleStarted }

// WinEvent is published when a worker's claim is confirmed and it takes
// the race.
type WinEvent struct {
	Cycle   int
	Worker  int
	Address string
}

// EventType returns the event type identifier.
func (WinEvent) EventType() string { return TypeWin }

// WindowExpiredEvent is published when a cycle's work window elapses
// without a win.
type WindowExpiredEvent struct {
	Cycle int
	Work  time.Duration
}

// EventType returns the event type identifier.
func (WindowExpiredEvent) EventType() string { return TypeWindowExpired }

// CycleEndedEvent is published after all workers of a cycle have joined.
type CycleEndedEvent struct {
	Cycle     int
	Succeeded bool
}

// EventType returns the event type identifier.
func (CycleEndedEvent) EventType() string { return TypeCycleEnded }

// PauseStartedEvent is published when the scheduler begins an inter-cycle
// pause.
type PauseStartedEvent struct {
	Cycle int
	Pause time.Duration
}

// EventType returns the event type identifier.
func (PauseStartedEvent) EventType() string { return TypePauseStarted }

// PauseEndedEvent is published when a pause completes and a new cycle is
// about to start.
type PauseEndedEvent struct {
	NextCycle int
}

// EventType returns the event type identifier.
func (PauseEndedEvent) EventType() string { return TypePauseEnded }

// StoppedEvent is published when the hunt ends without a win.
// Reason is one of "interrupted" or "exhausted".
type StoppedEvent struct {
	Reason string
	Cycles int
}

// EventType returns the event type identifier.
func (StoppedEvent) EventType() string { return TypeStopped }
