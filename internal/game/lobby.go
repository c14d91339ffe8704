package game

import (
	"github.com/scythe504/drawguess-server/internal"
)

// =============================================================================
// LOBBY
// =============================================================================

func (s *Session) handleStartGame(p *internal.Player) {
	room := s.room
	if !p.IsHost || !room.CanStartGame() {
		s.reject(p, internal.Signal{Kind: internal.TypeStartGame}, "not host or not enough players")
		return
	}

	room.LobbyState = internal.LobbyPlay
	room.CurrentRound = 1
	room.RevealReason = ""
	for _, player := range room.Players {
		player.ResetGameState()
	}
	s.log.Info().Int("players", room.GetPlayerCount()).Int("rounds", room.Rounds).Int("draw_time", room.DrawTime).Msg("[handleStartGame] game started")

	s.signal(internal.TypeLobbyPlay)
	s.say(internal.ChatInfo, "The game has started!")
	s.beginTurn()
}

func (s *Session) handleSetRounds(p *internal.Player, rounds int) {
	if !s.canConfigure(p) || rounds < internal.MinRounds || rounds > internal.MaxRounds {
		s.reject(p, internal.SetRounds{Rounds: rounds}, "not host, not in lobby or out of range")
		return
	}
	s.room.Rounds = rounds
	s.broadcast(p.Id, internal.SetRounds{Rounds: rounds}, p.Id)
}

func (s *Session) handleSetDrawTime(p *internal.Player, seconds int) {
	if !s.canConfigure(p) || seconds < internal.MinDrawTime || seconds > internal.MaxDrawTime {
		s.reject(p, internal.SetDrawTime{Seconds: seconds}, "not host, not in lobby or out of range")
		return
	}
	s.room.DrawTime = seconds
	s.broadcast(p.Id, internal.SetDrawTime{Seconds: seconds}, p.Id)
}

func (s *Session) canConfigure(p *internal.Player) bool {
	return p.IsHost && s.room.LobbyState == internal.LobbyWait
}

// finishGame moves the room to the final reveal. An empty reason means the
// game ran its full course and nothing cut it short.
func (s *Session) finishGame(reason internal.RevealReason) {
	room := s.room
	s.cancelPhaseTimer()
	room.LobbyState = internal.LobbyReveal
	room.RoundState = internal.RoundWait
	room.RevealReason = reason
	for _, p := range room.Players {
		p.IsDrawing = false
	}
	s.log.Info().Str("reason", string(room.RevealReason)).Int("round", room.CurrentRound).Msg("[finishGame] game over")

	s.signal(internal.TypeLobbyReveal)
	s.pushSummaries()
	s.syncState()
}
