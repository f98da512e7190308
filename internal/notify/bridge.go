package notify

import (
	"fmt"

	"github.com/ademaro/fiphunt/internal/event"
)

// Bridge translates race milestones from the event bus into notifications:
// the hunt starting, each window expiring, pauses starting and ending, the
// win, and the hunt ending without one. Per-cycle chatter stays off the
// wire.
type Bridge struct {
	notifier Notifier
}

// NewBridge creates a bridge delivering through the given notifier.
func NewBridge(n Notifier) *Bridge {
	return &Bridge{notifier: n}
}

// Attach subscribes the bridge to the bus.
func (b *Bridge) Attach(bus *event.Bus) {
	bus.Subscribe(event.TypeHuntStarted, b.onHuntStarted)
	bus.Subscribe(event.TypeWin, b.onWin)
	bus.Subscribe(event.TypeWindowExpired, b.onWindowExpired)
	bus.Subscribe(event.TypePauseStarted, b.onPauseStarted)
	bus.Subscribe(event.TypePauseEnded, b.onPauseEnded)
	bus.Subscribe(event.TypeStopped, b.onStopped)
}

func (b *Bridge) onHuntStarted(e event.Event) {
	started, ok := e.(event.HuntStartedEvent)
	if !ok {
		return
	}
	body := fmt.Sprintf("%d worker(s) hunting for %s", started.Workers, started.Targets)
	if started.Scheduled {
		body += fmt.Sprintf(", window %s", started.Work)
		if started.Pause > 0 {
			body += fmt.Sprintf(", pause %s", started.Pause)
		}
	}
	b.notifier.Send("fiphunt: hunt started", body)
}

func (b *Bridge) onWindowExpired(e event.Event) {
	expired, ok := e.(event.WindowExpiredEvent)
	if !ok {
		return
	}
	b.notifier.Send(
		"fiphunt: work window elapsed",
		fmt.Sprintf("cycle %d ran %s without a win", expired.Cycle, expired.Work),
	)
}

func (b *Bridge) onPauseStarted(e event.Event) {
	pause, ok := e.(event.PauseStartedEvent)
	if !ok {
		return
	}
	b.notifier.Send(
		"fiphunt: pausing",
		fmt.Sprintf("cycle %d done, sleeping %s", pause.Cycle, pause.Pause),
	)
}

func (b *Bridge) onPauseEnded(e event.Event) {
	resumed, ok := e.(event.PauseEndedEvent)
	if !ok {
		return
	}
	b.notifier.Send(
		"fiphunt: resuming",
		fmt.Sprintf("starting cycle %d", resumed.NextCycle),
	)
}

func (b *Bridge) onWin(e event.Event) {
	win, ok := e.(event.WinEvent)
	if !ok {
		return
	}
	b.notifier.Send(
		"fiphunt: target address acquired",
		fmt.Sprintf("worker %d acquired %s in cycle %d", win.Worker, win.Address, win.Cycle),
	)
}

func (b *Bridge) onStopped(e event.Event) {
	stopped, ok := e.(event.StoppedEvent)
	if !ok {
		return
	}
	b.notifier.Send(
		"fiphunt: hunt ended without a win",
		fmt.Sprintf("stopped after %d cycle(s): %s", stopped.Cycles, stopped.Reason),
	)
}
