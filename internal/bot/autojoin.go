// ABOUTME: Auto-join controller accepting room invitations with exponential backoff
// ABOUTME: One goroutine per invited room, deduplicated by room ID

package bot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix/id"
)

const (
	// initialJoinDelay is the wait before the second join attempt.
	initialJoinDelay = 2 * time.Second
	// maxJoinDelay caps the backoff: once the next delay would exceed it,
	// the invitation is abandoned.
	maxJoinDelay = 3600 * time.Second
)

// AutoJoiner accepts room invitations. Synapse can deliver an invite before
// it is ready to accept the corresponding join, so failed joins are retried
// with a doubling delay (2s, 4s, 8s, ...) until the join succeeds or the
// next delay would exceed an hour. Each invitation retries in its own
// goroutine; a slow room never blocks the sync loop or other rooms.
type AutoJoiner struct {
	client Client
	log    zerolog.Logger

	// pending tracks rooms with an active join sequence so duplicate
	// invite events don't spawn concurrent attempts for the same room.
	pending sync.Map

	// sleep is replaced in tests to observe the backoff schedule.
	sleep func(ctx context.Context, d time.Duration) error

	// wg tracks in-flight join goroutines for tests.
	wg sync.WaitGroup
}

// NewAutoJoiner creates an auto-joiner sending join requests through client.
func NewAutoJoiner(client Client, log zerolog.Logger) *AutoJoiner {
	return &AutoJoiner{
		client: client,
		log:    log,
		sleep:  sleepContext,
	}
}

// HandleInvite starts a join sequence for roomID unless one is already
// running. It returns immediately; the sequence runs in its own goroutine.
func (aj *AutoJoiner) HandleInvite(ctx context.Context, roomID id.RoomID) {
	if _, loaded := aj.pending.LoadOrStore(roomID, true); loaded {
		aj.log.Debug().Stringer("room_id", roomID).Msg("join already in progress, ignoring duplicate invite")
		return
	}

	aj.wg.Add(1)
	go func() {
		defer aj.wg.Done()
		defer aj.pending.Delete(roomID)
		aj.join(ctx, roomID)
	}()
}

// join runs the retry loop for a single invitation.
func (aj *AutoJoiner) join(ctx context.Context, roomID id.RoomID) {
	aj.log.Info().Stringer("room_id", roomID).Msg("autojoining room")

	delay := initialJoinDelay
	for {
		err := aj.client.JoinRoom(ctx, roomID)
		if err == nil {
			aj.log.Info().Stringer("room_id", roomID).Msg("joined room")
			return
		}

		if delay > maxJoinDelay {
			aj.log.Warn().Err(err).Stringer("room_id", roomID).
				Msg("giving up joining room, retry budget exhausted")
			return
		}

		aj.log.Warn().Err(err).Stringer("room_id", roomID).
			Dur("retry_in", delay).Msg("failed to join room, retrying")

		if err := aj.sleep(ctx, delay); err != nil {
			aj.log.Debug().Stringer("room_id", roomID).Msg("join retry cancelled")
			return
		}
		delay *= 2
	}
}

// sleepContext blocks for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
