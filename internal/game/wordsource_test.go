package game

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/drawguess-server/internal"
)

// gatedWords is a remote word source that answers only once released.
type gatedWords struct {
	release chan struct{}
	words   []string
	calls   *atomic.Int32
}

func (g gatedWords) RandomWords(ctx context.Context, _ int) ([]string, error) {
	g.calls.Add(1)
	select {
	case <-g.release:
		return g.words, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (gatedWords) Remote() {}

// waitFor drains the inbox until cond holds, as the room goroutine would.
func (h *harness) waitFor(cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		require.True(h.t, time.Now().Before(deadline), "condition not met in time")
		time.Sleep(5 * time.Millisecond)
		h.drain()
	}
}

func TestRemoteWordsAreFetchedOffTheRoomLoop(t *testing.T) {
	h := newHarness(t)
	words := gatedWords{
		release: make(chan struct{}),
		words:   []string{"kiwi", "mango", "papaya"},
		calls:   &atomic.Int32{},
	}
	h.s.words = words
	h.join("alice")
	h.join("bob")
	assert.True(t, h.s.prefetching)

	start := time.Now()
	h.signal("alice", internal.TypeStartGame)
	assert.Less(t, time.Since(start), wordLookupTimeout/2, "starting a turn does not wait on the word source")
	require.Equal(t, internal.RoundChooseWord, h.s.room.RoundState)
	assert.Len(t, h.s.room.WordChoices, wordChoiceCount, "built-in words stand in")

	close(words.release)
	h.waitFor(func() bool { return len(h.s.nextChoices) > 0 })
	assert.False(t, h.s.prefetching)
	assert.Equal(t, int32(1), words.calls.Load(), "one lookup in flight at a time")

	h.advance(h.s.settings.ChooseWordTime)
	h.advance(time.Duration(h.s.room.DrawTime) * time.Second)
	require.Equal(t, internal.RoundTurnReveal, h.s.room.RoundState)
	h.advance(h.s.settings.RevealTime)

	require.Equal(t, internal.RoundChooseWord, h.s.room.RoundState)
	assert.True(t, h.players["bob"].IsDrawing)
	assert.Equal(t, words.words, h.s.room.WordChoices)
	h.assertInvariants()
}
