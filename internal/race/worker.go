package race

import (
	"context"
	"time"

	"github.com/ademaro/fiphunt/internal/errors"
	"github.com/ademaro/fiphunt/internal/logging"
)

// ClaimStatus is the allocator's view of who currently holds a candidate.
type ClaimStatus struct {
	ClaimedTarget string
}

// Allocator is the narrow resource-client interface the race consumes.
// Implementations talk to the external allocator; the engine never does.
type Allocator interface {
	// Allocate requests a new candidate. The returned candidate may lack
	// an address; the worker treats that as a malformed allocation.
	Allocate(ctx context.Context) (Candidate, error)
	// Release returns a candidate to the allocator. It is idempotent and
	// tolerates candidates that are already released.
	Release(ctx context.Context, c Candidate) error
	// Claim binds a candidate to the given target.
	Claim(ctx context.Context, c Candidate, target string) error
	// Status reports who the allocator currently considers the candidate
	// bound to.
	Status(ctx context.Context, id string) (ClaimStatus, error)
}

// SessionSource hands a worker a live Allocator each iteration, recreating
// the underlying session when authentication has expired. Each worker owns
// its own SessionSource, so re-authentication never races across workers.
type SessionSource interface {
	// Ensure returns an Allocator backed by a live session, establishing
	// or rebuilding the session as needed.
	Ensure(ctx context.Context) (Allocator, error)
	// Invalidate discards the current session so the next Ensure call
	// builds a fresh one. Called after an auth-classed failure.
	Invalidate()
}

// releaseTimeout bounds the best-effort release a worker performs while
// terminating, when its own context may already be cancelled.
const releaseTimeout = 10 * time.Second

// WorkerConfig carries the per-worker tuning, fixed for the whole run.
type WorkerConfig struct {
	// ID identifies the worker in logs and in the cycle result.
	ID int
	// ClaimTarget is the owner identifier matching candidates are bound to.
	ClaimTarget string
	// Match reports whether a candidate address qualifies.
	Match func(addr string) bool
	// AttemptDelay is the sleep between iterations.
	AttemptDelay time.Duration
	// VerifyTimeout bounds how long a claim may take to be confirmed.
	VerifyTimeout time.Duration
	// VerifyPoll is the interval between claim-status polls.
	VerifyPoll time.Duration
}

// Worker runs one concurrency slot of the race: an independent
// allocate → test → release-or-claim → verify loop bound to the cycle's
// shared State.
type Worker struct {
	cfg    WorkerConfig
	state  *State
	source SessionSource
	log    *logging.Logger
}

// NewWorker creates a worker bound to the given cycle state.
func NewWorker(cfg WorkerConfig, state *State, source SessionSource, log *logging.Logger) *Worker {
	return &Worker{
		cfg:    cfg,
		state:  state,
		source: source,
		log:    log.WithWorker(cfg.ID),
	}
}

// outcome is the result of one loop iteration.
type outcome int

const (
	// outcomeContinue means sleep the inter-attempt delay and iterate again.
	outcomeContinue outcome = iota
	// outcomeWon means this worker won the race.
	outcomeWon
	// outcomeStop means the race is over for this worker.
	outcomeStop
)

// Run executes the worker loop until the worker wins, observes another
// worker's win, or observes cancellation. It always returns with no
// candidate held.
func (w *Worker) Run(ctx context.Context) {
	w.log.Debug("worker started")

	for {
		switch w.runOnce(ctx) {
		case outcomeWon:
			w.log.Info("worker won the race")
			return
		case outcomeStop:
			w.log.Debug("worker stopped")
			return
		case outcomeContinue:
			if w.sleep(ctx, w.cfg.AttemptDelay) {
				w.log.Debug("worker stopped during delay")
				return
			}
		}
	}
}

// runOnce performs a single iteration of the worker state machine.
// Whatever path it takes, any candidate allocated inside the iteration is
// released before it returns, unless the candidate won the race.
func (w *Worker) runOnce(ctx context.Context) outcome {
	if w.stopping(ctx) {
		return outcomeStop
	}

	client, err := w.source.Ensure(ctx)
	if err != nil {
		return w.handleError(ctx, nil, Candidate{}, err)
	}

	if w.stopping(ctx) {
		return outcomeStop
	}

	cand, err := client.Allocate(ctx)
	if err != nil {
		return w.handleError(ctx, client, cand, err)
	}
	if cand.Address == "" {
		w.log.Warn("allocation has no usable address, releasing", "candidate", cand.ID)
		w.release(ctx, client, cand)
		return outcomeContinue
	}

	w.log.Info("allocated candidate", "candidate", cand.ID, "address", cand.Address)

	if w.stopping(ctx) {
		w.release(ctx, client, cand)
		return outcomeStop
	}

	if !w.cfg.Match(cand.Address) {
		w.log.Info("address outside target ranges, releasing", "address", cand.Address)
		w.release(ctx, client, cand)
		return outcomeContinue
	}

	w.log.Info("address matches target ranges, claiming", "address", cand.Address, "target", w.cfg.ClaimTarget)

	if err := client.Claim(ctx, cand, w.cfg.ClaimTarget); err != nil {
		w.release(ctx, client, cand)
		return w.handleError(ctx, client, Candidate{}, err)
	}

	if !w.verify(ctx, client, cand) {
		w.log.Warn("claim not confirmed in time, releasing", "address", cand.Address)
		w.release(ctx, client, cand)
		if w.stopping(ctx) {
			return outcomeStop
		}
		return outcomeContinue
	}

	if w.state.TryWin(cand, w.cfg.ID) {
		return outcomeWon
	}

	// Another worker confirmed first; this claim loses and the race is over.
	w.log.Info("another worker already won, releasing", "address", cand.Address)
	w.release(ctx, client, cand)
	return outcomeStop
}

// verify polls the allocator until the claim is visible, the timeout
// elapses, or a stop signal fires. Poll errors count as not-yet-confirmed.
func (w *Worker) verify(ctx context.Context, client Allocator, cand Candidate) bool {
	deadline := time.Now().Add(w.cfg.VerifyTimeout)
	for {
		if w.stopping(ctx) {
			return false
		}

		st, err := client.Status(ctx, cand.ID)
		if err != nil {
			w.log.Debug("claim status poll failed", "error", err)
		} else if st.ClaimedTarget == w.cfg.ClaimTarget {
			return true
		}

		if time.Now().After(deadline) {
			return false
		}
		if w.sleep(ctx, w.cfg.VerifyPoll) {
			return false
		}
	}
}

// handleError is the single error dispatch point of an iteration. The held
// candidate, if any, must already have been released by the caller except
// on the allocate path, where held is the zero Candidate.
func (w *Worker) handleError(ctx context.Context, client Allocator, held Candidate, err error) outcome {
	if held.ID != "" && client != nil {
		w.release(ctx, client, held)
	}

	switch errors.Classify(err) {
	case errors.ClassInterrupted:
		return outcomeStop
	case errors.ClassAuth:
		w.log.Warn("session invalid, will re-authenticate", "error", err)
		w.source.Invalidate()
		return outcomeContinue
	case errors.ClassMalformed, errors.ClassTransient:
		w.log.Warn("allocator error, retrying after delay", "error", err)
		return outcomeContinue
	default:
		if !w.state.ShouldStop() {
			w.log.Warn("unexpected error, retrying after delay", "error", err)
		}
		return outcomeContinue
	}
}

// release returns a candidate to the allocator. It is best-effort: it runs
// even when the worker's context is already cancelled, bounded by
// releaseTimeout, and a failure is logged rather than retried so that no
// error path can leave the worker holding a candidate.
func (w *Worker) release(ctx context.Context, client Allocator, cand Candidate) {
	if cand.ID == "" {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := client.Release(rctx, cand); err != nil {
		w.log.Error("failed to release candidate", "candidate", cand.ID, "address", cand.Address, "error", err)
	}
}

// stopping reports whether the worker must terminate: the cycle stop
// signal fired or the surrounding context was cancelled.
func (w *Worker) stopping(ctx context.Context) bool {
	return w.state.ShouldStop() || ctx.Err() != nil
}

// sleep blocks for d, waking early on cancellation. It returns true if
// the worker must stop instead of continuing.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	if w.stopping(ctx) {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return true
	case <-w.state.Done():
		return true
	case <-timer.C:
		return w.stopping(ctx)
	}
}
