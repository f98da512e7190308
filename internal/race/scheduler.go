package race

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/ademaro/fiphunt/internal/event"
	"github.com/ademaro/fiphunt/internal/logging"
)

// StopReason explains why a hunt ended.
type StopReason int

const (
	// ReasonWon means a worker acquired and confirmed a matching candidate.
	ReasonWon StopReason = iota
	// ReasonInterrupted means an external stop request ended the hunt.
	ReasonInterrupted
	// ReasonWindowExhausted means the work window elapsed and no pause was
	// configured, so the hunt ran exactly one bounded cycle.
	ReasonWindowExhausted
	// ReasonExhausted means all workers returned without a win and no
	// schedule was configured.
	ReasonExhausted
)

// String returns the reason as a short identifier.
func (r StopReason) String() string {
	switch r {
	case ReasonWon:
		return "won"
	case ReasonInterrupted:
		return "interrupted"
	case ReasonWindowExhausted:
		return "window_exhausted"
	case ReasonExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// RunResult is the outcome of a whole hunt: one or more cycles.
type RunResult struct {
	Result CycleResult
	Reason StopReason
	Cycles int
}

// SchedulerConfig carries the cycle and schedule tuning.
type SchedulerConfig struct {
	// Workers is the number of concurrent workers per cycle.
	Workers int
	// Stagger is the delay between spawning successive workers, to avoid
	// a thundering-herd burst of allocation calls at cycle start.
	Stagger time.Duration
	// Work bounds a cycle's duration. Zero disables duty-cycling: the
	// single cycle races until success or external stop.
	Work time.Duration
	// Pause is the sleep between unsuccessful cycles. Zero means no pause
	// is configured: a bounded cycle that fails ends the hunt.
	Pause time.Duration
	// Worker is the per-worker tuning; ID is assigned per worker.
	Worker WorkerConfig
}

// SourceFactory builds the per-worker SessionSource. Each worker gets its
// own source, and with it its own authenticated session.
type SourceFactory func(workerID int) SessionSource

// Scheduler runs cycles: it spawns the worker pool for each cycle, arms
// the work-window timer, joins the workers, and paces retries across
// pause windows.
type Scheduler struct {
	cfg       SchedulerConfig
	newSource SourceFactory
	bus       *event.Bus
	log       *logging.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(cfg SchedulerConfig, newSource SourceFactory, bus *event.Bus, log *logging.Logger) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		newSource: newSource,
		bus:       bus,
		log:       log,
	}
}

// Run executes the top-level loop: run a cycle; on success stop; otherwise
// pause and retry if a pause is configured, or stop. The pause is
// interruptible: an external stop aborts it immediately.
func (s *Scheduler) Run(ctx context.Context) RunResult {
	cycle := 0
	for {
		cycle++
		res := s.runCycle(ctx, cycle)

		if res.Succeeded {
			return RunResult{Result: res, Reason: ReasonWon, Cycles: cycle}
		}
		if ctx.Err() != nil {
			s.bus.Publish(event.StoppedEvent{Reason: "interrupted", Cycles: cycle})
			return RunResult{Result: res, Reason: ReasonInterrupted, Cycles: cycle}
		}
		if s.cfg.Work <= 0 {
			// No schedule: a cycle only ends on success or stop, so all
			// workers returning without either means the race is exhausted.
			s.bus.Publish(event.StoppedEvent{Reason: "exhausted", Cycles: cycle})
			return RunResult{Result: res, Reason: ReasonExhausted, Cycles: cycle}
		}
		if s.cfg.Pause <= 0 {
			s.bus.Publish(event.StoppedEvent{Reason: "exhausted", Cycles: cycle})
			return RunResult{Result: res, Reason: ReasonWindowExhausted, Cycles: cycle}
		}

		s.log.Info("pausing before next cycle", "pause", s.cfg.Pause.String())
		s.bus.Publish(event.PauseStartedEvent{Cycle: cycle, Pause: s.cfg.Pause})

		timer := time.NewTimer(s.cfg.Pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.bus.Publish(event.StoppedEvent{Reason: "interrupted", Cycles: cycle})
			return RunResult{Result: res, Reason: ReasonInterrupted, Cycles: cycle}
		case <-timer.C:
		}

		s.log.Info("pause over, starting next cycle")
		s.bus.Publish(event.PauseEndedEvent{NextCycle: cycle + 1})
	}
}

// runCycle races one fresh pool of workers over one fresh State. It arms
// the work-window timer when duty-cycling is enabled, propagates external
// cancellation into the shared state, and returns only after every
// spawned worker has joined.
func (s *Scheduler) runCycle(ctx context.Context, cycle int) CycleResult {
	state := NewState()
	log := s.log.WithCycle(cycle)

	log.Info("cycle started", "workers", s.cfg.Workers)
	s.bus.Publish(event.CycleStartedEvent{Cycle: cycle, Workers: s.cfg.Workers})

	if s.cfg.Work > 0 {
		timer := time.AfterFunc(s.cfg.Work, func() {
			log.Info("work window elapsed, cancelling cycle", "work", s.cfg.Work.String())
			s.bus.Publish(event.WindowExpiredEvent{Cycle: cycle, Work: s.cfg.Work})
			state.RequestCancel()
		})
		defer timer.Stop()
	}

	// Forward an external stop into the shared state so workers blocked in
	// a wait observe it within one poll interval.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			state.RequestCancel()
		case <-state.Done():
		case <-watchDone:
		}
	}()

	var wg conc.WaitGroup
	for i := 1; i <= s.cfg.Workers; i++ {
		cfg := s.cfg.Worker
		cfg.ID = i
		w := NewWorker(cfg, state, s.newSource(i), log)
		wg.Go(func() {
			w.Run(ctx)
		})

		if i < s.cfg.Workers && s.cfg.Stagger > 0 && !state.ShouldStop() {
			time.Sleep(s.cfg.Stagger)
		}
	}
	wg.Wait()

	res := state.Result()
	log.Info("cycle ended", "succeeded", res.Succeeded)
	s.bus.Publish(event.CycleEndedEvent{Cycle: cycle, Succeeded: res.Succeeded})

	if res.Succeeded {
		s.bus.Publish(event.WinEvent{Cycle: cycle, Worker: res.WinnerID, Address: res.Winner.Address})
	}
	return res
}
