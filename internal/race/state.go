package race

import "sync"

// Candidate is an allocated resource instance: a floating IP the allocator
// granted to one worker. It is owned by that worker from allocation until
// it is released, abandoned after a failed release, or handed to State by
// winning the race.
type Candidate struct {
	ID      string
	Address string
}

// CycleResult is the immutable outcome of one completed cycle.
type CycleResult struct {
	Succeeded bool
	Winner    Candidate
	WinnerID  int
}

// State is the shared coordination state of one race cycle: the at-most-one
// winner flag and the global cancellation signal. It is created fresh at
// cycle start and discarded at cycle end so that no stale flag can leak
// into the next cycle.
//
// All mutation happens under one mutex; the win transition is a
// check-then-set under that mutex, so exactly one concurrent TryWin call
// can return true.
type State struct {
	mu        sync.Mutex
	won       bool
	cancelled bool
	winner    Candidate
	winnerID  int

	// done is closed on the first win or cancel, waking any worker blocked
	// in a sleep or poll wait.
	done chan struct{}
}

// NewState creates the shared state for a new cycle.
func NewState() *State {
	return &State{done: make(chan struct{})}
}

// TryWin attempts to record the caller as the race winner. If no worker
// has won yet it records the candidate and worker, signals cancellation to
// all workers, and returns true: the caller is the sole winner. If the race
// is already won it returns false and the caller must release its candidate.
func (s *State) TryWin(c Candidate, workerID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.won {
		return false
	}
	s.won = true
	s.winner = c
	s.winnerID = workerID
	s.closeDoneLocked()
	return true
}

// RequestCancel sets the cancellation flag and wakes every worker blocked
// in a wait. It is idempotent and safe to call concurrently with TryWin.
func (s *State) RequestCancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelled = true
	s.closeDoneLocked()
}

// closeDoneLocked closes the wake-up channel once. Callers must hold mu.
func (s *State) closeDoneLocked() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// ShouldStop reports whether workers of this cycle must stop: either the
// race has been won or cancellation was requested.
func (s *State) ShouldStop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.won || s.cancelled
}

// Done returns a channel closed on the first win or cancel. Workers select
// on it at every suspension point so cancellation latency is bounded by
// the poll interval, never by a full sleep.
func (s *State) Done() <-chan struct{} {
	return s.done
}

// Result returns the cycle outcome accumulated so far. It is meaningful
// once all workers have joined.
func (s *State) Result() CycleResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CycleResult{
		Succeeded: s.won,
		Winner:    s.winner,
		WinnerID:  s.winnerID,
	}
}
