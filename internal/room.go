package internal

import (
	"slices"
	"time"
)

// Room is the canonical state of one play session. It is not safe for
// concurrent use; the owning session loop is the only writer.
type Room struct {
	Id           string
	Players      []*Player // join order
	LobbyState   LobbyState
	RoundState   RoundState
	Rounds       int
	DrawTime     int
	CurrentRound int
	Word         string
	WordChoices  []string
	RevealReason RevealReason
	ChatMessages []ChatMessage

	TurnStartedAt   time.Time
	CorrectGuessers int
	CreatedAt       time.Time

	nextPlayerID int
}

func NewRoom(id string, rounds, drawTime int, now time.Time) *Room {
	return &Room{
		Id:           id,
		Players:      make([]*Player, 0, MaxPlayersPerRoom),
		LobbyState:   LobbyWait,
		RoundState:   RoundUnset,
		Rounds:       rounds,
		DrawTime:     drawTime,
		ChatMessages: make([]ChatMessage, 0),
		CreatedAt:    now,
		nextPlayerID: SystemSenderID + 1,
	}
}

// AddPlayer appends a player with a fresh id. The first player to join an
// empty room becomes host.
func (r *Room) AddPlayer(name string, now time.Time) *Player {
	p := &Player{
		Id:       r.nextPlayerID,
		Name:     name,
		IsHost:   len(r.Players) == 0,
		JoinedAt: now,
	}
	r.nextPlayerID++
	r.Players = append(r.Players, p)
	return p
}

// RemovePlayer drops the player and, if it was the host, hands the role to
// the earliest-joined remaining player. It returns the removed player and the
// new host (nil when the host did not change).
func (r *Room) RemovePlayer(id int) (removed *Player, newHost *Player) {
	idx := slices.IndexFunc(r.Players, func(p *Player) bool { return p.Id == id })
	if idx < 0 {
		return nil, nil
	}
	removed = r.Players[idx]
	r.Players = slices.Delete(r.Players, idx, idx+1)

	if removed.IsHost && len(r.Players) > 0 {
		removed.IsHost = false
		r.Players[0].IsHost = true
		newHost = r.Players[0]
	}
	return removed, newHost
}

func (r *Room) GetPlayerByID(id int) *Player {
	for _, p := range r.Players {
		if p.Id == id {
			return p
		}
	}
	return nil
}

func (r *Room) Host() *Player {
	for _, p := range r.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

func (r *Room) Drawer() *Player {
	for _, p := range r.Players {
		if p.IsDrawing {
			return p
		}
	}
	return nil
}

func (r *Room) GetPlayerCount() int {
	return len(r.Players)
}

func (r *Room) CanStartGame() bool {
	return r.LobbyState == LobbyWait && r.GetPlayerCount() >= MinPlayersToStart
}

// GetNextDrawer returns the earliest-joined player that has not drawn in the
// current round, or nil when everyone has.
func (r *Room) GetNextDrawer() *Player {
	for _, p := range r.Players {
		if !p.HasDrawn {
			return p
		}
	}
	return nil
}

func (r *Room) ResetPlayerGuessState() {
	for _, p := range r.Players {
		p.ResetTurnState()
	}
	r.CorrectGuessers = 0
}

// HasEveryoneGuessed reports whether every remaining non-drawing player has
// guessed. A room with no guessers left never counts as all guessed.
func (r *Room) HasEveryoneGuessed() bool {
	guessers := 0
	for _, p := range r.Players {
		if p.IsDrawing {
			continue
		}
		guessers++
		if !p.IsGuessed {
			return false
		}
	}
	return guessers > 0
}

// AppendChat records a chat line, keeping only the newest MaxChatHistory.
func (r *Room) AppendChat(msg ChatMessage) {
	r.ChatMessages = append(r.ChatMessages, msg)
	if over := len(r.ChatMessages) - MaxChatHistory; over > 0 {
		r.ChatMessages = slices.Delete(r.ChatMessages, 0, over)
	}
}
