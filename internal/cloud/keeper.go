package cloud

import (
	"context"
	"sync"

	"github.com/ademaro/fiphunt/internal/errors"
	"github.com/ademaro/fiphunt/internal/logging"
	"github.com/ademaro/fiphunt/internal/race"
)

// Keeper owns one worker's session lifecycle. It implements
// race.SessionSource: Ensure hands out an allocator backed by a live
// session, verifying the token before each iteration and rebuilding the
// session from the stored credentials when it has gone stale. Each worker
// gets its own Keeper, so re-authentication never contends across workers.
type Keeper struct {
	creds     Credentials
	networkID string
	log       *logging.Logger

	mu      sync.Mutex
	session *Session
	client  *NeutronClient
}

// NewKeeper creates a session keeper for one worker. The session itself is
// built lazily on the first Ensure call.
func NewKeeper(creds Credentials, networkID string, log *logging.Logger) *Keeper {
	return &Keeper{
		creds:     creds,
		networkID: networkID,
		log:       log,
	}
}

// Ensure returns an allocator backed by a live session. A held session is
// verified against the identity service first; if its token has expired the
// session is rebuilt in place. Transient identity failures are returned to
// the caller, which retries the iteration without discarding the session.
func (k *Keeper) Ensure(ctx context.Context) (race.Allocator, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.session != nil {
		err := k.session.CheckToken(ctx)
		if err == nil {
			return k.client, nil
		}
		if errors.Classify(err) != errors.ClassAuth {
			return nil, err
		}
		k.log.Warn("session token expired, rebuilding session", "error", err)
		k.dropLocked()
	}

	s, err := Connect(ctx, k.creds)
	if err != nil {
		return nil, err
	}
	k.session = s
	k.client = NewNeutronClient(s, k.networkID, k.log)
	k.log.Debug("session established")
	return k.client, nil
}

// Invalidate discards the held session so the next Ensure builds a fresh
// one. Called by the worker after an auth-classed allocator failure.
func (k *Keeper) Invalidate() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.dropLocked()
}

func (k *Keeper) dropLocked() {
	k.session = nil
	k.client = nil
}
