package game

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/scythe504/drawguess-server/internal"
)

func TestLateJoinerGetsLongDrawingInOneBatch(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.DrawTime = internal.MaxDrawTime })
	h.join("alice")
	h.join("bob")
	h.startAndChoose("alice", "apple")

	stroke := internal.Draw{Instruction: internal.DrawInstruction{
		StrokeStyle: "#000000", LineWidth: 0.01, MoveToX: 0.2, MoveToY: 0.2, LineToX: 0.21, LineToY: 0.2,
	}}
	n := sendQueueSize + 100
	for range n {
		h.send("alice", stroke)
	}
	require.Equal(t, n, h.s.renderer.Len())

	peer := newPeer(nil, rate.Inf, 1)
	reply := make(chan joinResult, 1)
	h.s.dispatch(joinRequest{name: "carol", peer: peer, reply: reply})
	res := <-reply
	require.NoError(t, res.err)
	assert.NotNil(t, h.s.room.GetPlayerByID(res.player.Id))
	assert.Contains(t, h.s.peers, res.player.Id)
	assert.False(t, peer.closed)

	batch := <-peer.send
	require.Len(t, batch, n+1, "snapshot plus every ledger entry")
	env, _, err := internal.Decode(batch[0])
	require.NoError(t, err)
	assert.Equal(t, internal.TypeSetGameState, env.Type)
	env, _, err = internal.Decode(batch[n])
	require.NoError(t, err)
	assert.Equal(t, internal.TypeDraw, env.Type)
	h.assertInvariants()
}

func TestJoinThatCannotQueueStateIsUndone(t *testing.T) {
	h := newHarness(t)
	_, alicePeer := h.join("alice")
	alicePeer.reset()

	peer := &recorder{full: true}
	reply := make(chan joinResult, 1)
	h.s.dispatch(joinRequest{name: "bob", peer: peer, reply: reply})
	res := <-reply

	assert.ErrorIs(t, res.err, ErrJoinIncomplete)
	assert.Equal(t, 1, h.s.room.GetPlayerCount())
	assert.Len(t, h.s.peers, 1)
	assert.True(t, peer.closed)
	assert.Equal(t, websocket.CloseInternalServerErr, peer.code)
	assert.Equal(t, string(internal.ReasonConnectionError), peer.reason)

	_, told := last[internal.PlayerJoin](t, alicePeer)
	assert.False(t, told, "others never hear about a join that failed")
	_, left := last[internal.PlayerLeave](t, alicePeer)
	assert.False(t, left)
	h.assertInvariants()
}
