// ABOUTME: Tests for the auto-join controller's backoff and dedupe behavior
// ABOUTME: Uses an injected sleep to observe the retry schedule without waiting

package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maunium.net/go/mautrix/id"
)

// recordSleep replaces the auto-joiner's sleep and records each delay.
func recordSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	var mu sync.Mutex
	return func(_ context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		*delays = append(*delays, d)
		return nil
	}
}

func TestAutoJoiner_JoinsImmediately(t *testing.T) {
	client := &fakeClient{}
	aj := NewAutoJoiner(client, zerolog.Nop())

	var delays []time.Duration
	aj.sleep = recordSleep(&delays)

	aj.HandleInvite(context.Background(), "!room:example.org")
	aj.wg.Wait()

	assert.Equal(t, []id.RoomID{"!room:example.org"}, client.joinedRooms())
	assert.Empty(t, delays)
}

func TestAutoJoiner_BackoffDoubles(t *testing.T) {
	// First two attempts fail, third succeeds. The waits in between must
	// be exactly 2s then 4s.
	client := &fakeClient{
		joinErrs: []error{errors.New("not ready"), errors.New("not ready")},
	}
	aj := NewAutoJoiner(client, zerolog.Nop())

	var delays []time.Duration
	aj.sleep = recordSleep(&delays)

	aj.HandleInvite(context.Background(), "!room:example.org")
	aj.wg.Wait()

	assert.Len(t, client.joinedRooms(), 3)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
}

func TestAutoJoiner_AbandonsWhenBudgetExhausted(t *testing.T) {
	// Every attempt fails. Delays slept are 2, 4, ..., 2048 seconds;
	// the next delay would be 4096s > 3600s, so the room is abandoned
	// without sleeping again.
	client := &fakeClient{joinErr: errors.New("permanently broken")}
	aj := NewAutoJoiner(client, zerolog.Nop())

	var delays []time.Duration
	aj.sleep = recordSleep(&delays)

	aj.HandleInvite(context.Background(), "!room:example.org")
	aj.wg.Wait()

	require.Len(t, delays, 11)
	assert.Equal(t, 2*time.Second, delays[0])
	assert.Equal(t, 2048*time.Second, delays[10])
	for i := 1; i < len(delays); i++ {
		assert.Equal(t, 2*delays[i-1], delays[i])
	}
	// One attempt before each sleep plus the final one that triggers abandonment.
	assert.Len(t, client.joinedRooms(), 12)
}

func TestAutoJoiner_DeduplicatesConcurrentInvites(t *testing.T) {
	block := make(chan struct{})
	client := &fakeClient{joinBlock: block}
	aj := NewAutoJoiner(client, zerolog.Nop())

	aj.HandleInvite(context.Background(), "!room:example.org")
	// Second invite for the same room while the first join is in flight.
	aj.HandleInvite(context.Background(), "!room:example.org")

	close(block)
	aj.wg.Wait()

	assert.Len(t, client.joinedRooms(), 1)
}

func TestAutoJoiner_IndependentRooms(t *testing.T) {
	block := make(chan struct{})
	client := &fakeClient{joinBlock: block}
	aj := NewAutoJoiner(client, zerolog.Nop())

	// A second room's invite must proceed even while the first is blocked.
	aj.HandleInvite(context.Background(), "!a:example.org")
	aj.HandleInvite(context.Background(), "!b:example.org")

	close(block)
	aj.wg.Wait()

	assert.ElementsMatch(t, []id.RoomID{"!a:example.org", "!b:example.org"}, client.joinedRooms())
}

func TestAutoJoiner_StopsOnCancelledContext(t *testing.T) {
	client := &fakeClient{joinErr: errors.New("not ready")}
	aj := NewAutoJoiner(client, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	aj.HandleInvite(ctx, "!room:example.org")
	aj.wg.Wait()

	// One attempt, then the cancelled sleep ends the sequence.
	assert.Len(t, client.joinedRooms(), 1)
}
