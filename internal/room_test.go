package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomHostReassignment(t *testing.T) {
	assert := assert.New(t)
	now := time.Now()
	room := NewRoom("ROOM01", DefaultRounds, DefaultDrawTime, now)

	a := room.AddPlayer("a", now)
	b := room.AddPlayer("b", now)
	c := room.AddPlayer("c", now)

	assert.True(a.IsHost)
	assert.False(b.IsHost)
	assert.Equal([]int{1, 2, 3}, []int{a.Id, b.Id, c.Id})

	removed, newHost := room.RemovePlayer(a.Id)
	require.NotNil(t, newHost)
	assert.Equal(a, removed)
	assert.Equal(b.Id, newHost.Id, "earliest joined remaining player takes over")
	assert.Equal(b, room.Host())

	// Why: ids are never reused within a room
	d := room.AddPlayer("d", now)
	assert.Equal(4, d.Id)
	assert.False(d.IsHost)

	_, newHost = room.RemovePlayer(c.Id)
	assert.Nil(newHost)
}

func TestRoomNextDrawerFollowsJoinOrder(t *testing.T) {
	now := time.Now()
	room := NewRoom("ROOM01", DefaultRounds, DefaultDrawTime, now)
	a := room.AddPlayer("a", now)
	b := room.AddPlayer("b", now)

	assert.Equal(t, a, room.GetNextDrawer())
	a.HasDrawn = true
	assert.Equal(t, b, room.GetNextDrawer())
	b.HasDrawn = true
	assert.Nil(t, room.GetNextDrawer())
}

func TestRoomHasEveryoneGuessed(t *testing.T) {
	now := time.Now()
	room := NewRoom("ROOM01", DefaultRounds, DefaultDrawTime, now)
	a := room.AddPlayer("a", now)
	a.IsDrawing = true

	assert.False(t, room.HasEveryoneGuessed(), "no guessers means nobody guessed")

	b := room.AddPlayer("b", now)
	c := room.AddPlayer("c", now)
	b.IsGuessed = true
	assert.False(t, room.HasEveryoneGuessed())
	c.IsGuessed = true
	assert.True(t, room.HasEveryoneGuessed())
}

func TestRoomChatHistoryIsBounded(t *testing.T) {
	room := NewRoom("ROOM01", DefaultRounds, DefaultDrawTime, time.Now())
	for i := 0; i < MaxChatHistory+10; i++ {
		room.AppendChat(ChatMessage{Content: "x", Type: ChatPlain})
	}
	assert.Len(t, room.ChatMessages, MaxChatHistory)
}

func TestPlayerScoresOnlyGrow(t *testing.T) {
	p := &Player{Id: 1}
	p.AddScore(120)
	p.AddScore(-50)
	assert.Equal(t, 120, p.TurnScore)
	assert.Equal(t, 120, p.RoundScore)
	assert.Equal(t, 120, p.GameScore)

	p.ResetTurnState()
	p.AddScore(30)
	assert.Equal(t, 30, p.TurnScore)
	assert.Equal(t, 150, p.GameScore)
}
