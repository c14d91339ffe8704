package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/utils"
)

type fixedIDs []string

func (f *fixedIDs) Allocate(taken func(string) bool) (string, error) {
	for len(*f) > 0 {
		id := (*f)[0]
		*f = (*f)[1:]
		if !taken(id) {
			return id, nil
		}
	}
	return "", utils.ErrRoomCodesExhausted
}

func newTestHub(t *testing.T, opts ...Option) *Hub {
	t.Helper()
	h := NewHub(DefaultSettings(), utils.DefaultWords(), append([]Option{WithFillWorker(nil)}, opts...)...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	})
	return h
}

func TestHubCreateAndJoin(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	id, err := h.CreateRoom()
	require.NoError(t, err)
	assert.True(t, h.Exists(id))
	assert.Equal(t, 1, h.RoomCount())

	alicePeer := &recorder{}
	alice, err := h.Join(ctx, id, "  alice ", 0, 0, alicePeer)
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.Name)
	assert.True(t, alice.IsYou)
	assert.True(t, alice.IsHost)

	n, err := h.PlayerCount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Join returns only after the snapshot went out.
	assert.Equal(t, internal.TypeSetGameState, alicePeer.types(t)[0])
}

func TestHubJoinErrors(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	_, err := h.Join(ctx, "NOPE99", "alice", 0, 0, &recorder{})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	id, err := h.CreateRoom()
	require.NoError(t, err)
	_, err = h.Join(ctx, id, "   ", 0, 0, &recorder{})
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = h.Join(ctx, id, "abcdefghijklmnopqrstu", 0, 0, &recorder{})
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestHubRoomGoesAwayWithLastPlayer(t *testing.T) {
	ids := fixedIDs{"ROOM01"}
	h := newTestHub(t, WithRoomIDs(&ids))

	id, err := h.CreateRoom()
	require.NoError(t, err)
	assert.Equal(t, "ROOM01", id)

	alice, err := h.Join(context.Background(), id, "alice", 0, 0, &recorder{})
	require.NoError(t, err)
	h.Leave(id, alice.Id)

	assert.Eventually(t, func() bool { return !h.Exists(id) }, time.Second, 10*time.Millisecond)
	assert.False(t, h.Deliver(id, alice.Id, internal.Chat{Text: "hi"}))
}

func TestHubDeliverAndBroadcast(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	id, err := h.CreateRoom()
	require.NoError(t, err)

	alicePeer, bobPeer := &recorder{}, &recorder{}
	alice, err := h.Join(ctx, id, "alice", 0, 0, alicePeer)
	require.NoError(t, err)
	_, err = h.Join(ctx, id, "bob", 0, 0, bobPeer)
	require.NoError(t, err)

	require.True(t, h.Deliver(id, alice.Id, internal.Chat{Text: "hello"}))
	require.NoError(t, h.Broadcast(id, internal.SystemSenderID, internal.Info{Text: "maintenance soon"}, internal.SystemSenderID))

	// PlayerCount runs after the earlier events on the room goroutine.
	_, err = h.PlayerCount(ctx, id)
	require.NoError(t, err)

	chat, ok := last[internal.Chat](t, bobPeer)
	require.True(t, ok)
	assert.Equal(t, "hello", chat.Text)
	_, ok = last[internal.Chat](t, alicePeer)
	assert.False(t, ok, "sender is not echoed")
	info, ok := last[internal.Info](t, alicePeer)
	require.True(t, ok)
	assert.Equal(t, "maintenance soon", info.Text)
}

func TestHubCanvasSnapshot(t *testing.T) {
	h := newTestHub(t)
	id, err := h.CreateRoom()
	require.NoError(t, err)

	surf, err := h.CanvasSnapshot(context.Background(), id, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().CanvasWidth, surf.Width())

	surf, err = h.CanvasSnapshot(context.Background(), id, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, 200, surf.Width())
	assert.Equal(t, 100, surf.Height())

	_, err = h.CanvasSnapshot(context.Background(), "NOPE99", 0, 0)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestHubShutdownClosesPlayers(t *testing.T) {
	h := NewHub(DefaultSettings(), utils.DefaultWords())
	id, err := h.CreateRoom()
	require.NoError(t, err)
	peer := &recorder{}
	_, err = h.Join(context.Background(), id, "alice", 0, 0, peer)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.Shutdown(ctx))

	assert.Equal(t, 0, h.RoomCount())
	peer.mu.Lock()
	assert.True(t, peer.closed)
	peer.mu.Unlock()

	_, err = h.CreateRoom()
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHubJoinableRoom(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()

	_, ok := h.JoinableRoom(ctx)
	assert.False(t, ok, "no rooms")

	empty, err := h.CreateRoom()
	require.NoError(t, err)
	_, ok = h.JoinableRoom(ctx)
	assert.False(t, ok, "empty rooms are not offered")

	busy, err := h.CreateRoom()
	require.NoError(t, err)
	_, err = h.Join(ctx, busy, "alice", 0, 0, &recorder{})
	require.NoError(t, err)

	id, ok := h.JoinableRoom(ctx)
	require.True(t, ok)
	assert.Equal(t, busy, id)
	assert.NotEqual(t, empty, id)
}
