package game

import (
	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/drawing"
	"github.com/scythe504/drawguess-server/internal/utils"
)

// =============================================================================
// CANVAS OPERATIONS
// =============================================================================

// handleCanvasOp accepts draw, fill and clear from the drawer while the turn
// is running, records them and forwards them to everyone else.
func (s *Session) handleCanvasOp(p *internal.Player, op internal.CanvasOp) {
	if s.room.RoundState != internal.RoundOngoing || !p.IsDrawing {
		s.reject(p, op, "not the drawer or turn not running")
		return
	}

	switch o := op.(type) {
	case internal.Draw:
		norm, err := o.Instruction.Normalize()
		if err == nil {
			_, err = drawing.ParseColor(norm.StrokeStyle)
		}
		if err != nil {
			s.reject(p, op, err.Error())
			return
		}
		op = internal.Draw{Instruction: norm}
	case internal.Fill:
		norm, err := o.Instruction.Normalize()
		if err == nil {
			_, err = drawing.ParseColor(norm.Color)
		}
		if err != nil {
			s.reject(p, op, err.Error())
			return
		}
		op = internal.Fill{Instruction: norm}
	}

	if err := s.renderer.Record(op); err != nil {
		s.log.Warn().Err(err).Str("type", string(op.Type())).Msg("[handleCanvasOp] mirror could not apply op")
	}
	s.broadcast(p.Id, op, p.Id)
}

// =============================================================================
// BROADCASTING
// =============================================================================

func (s *Session) encode(senderID int, msg internal.Message) []byte {
	frame, err := internal.Encode(senderID, msg)
	if err != nil {
		s.log.Error().Err(err).Str("type", string(msg.Type())).Msg("[encode] failed to encode message")
		return nil
	}
	return frame
}

func (s *Session) sendTo(playerID, senderID int, msg internal.Message) {
	peer, ok := s.peers[playerID]
	if !ok {
		return
	}
	frame := s.encode(senderID, msg)
	if frame == nil {
		return
	}
	if !peer.Send(frame) {
		s.dropPeer(playerID)
	}
}

// broadcast sends msg to every player except exclude. Pass SystemSenderID to
// exclude nobody.
func (s *Session) broadcast(senderID int, msg internal.Message, exclude int) {
	s.broadcastWhere(senderID, msg, func(p *internal.Player) bool { return p.Id != exclude })
}

func (s *Session) broadcastWhere(senderID int, msg internal.Message, include func(*internal.Player) bool) {
	frame := s.encode(senderID, msg)
	if frame == nil {
		return
	}
	var slow []int
	for _, p := range s.room.Players {
		if !include(p) {
			continue
		}
		if peer, ok := s.peers[p.Id]; ok && !peer.Send(frame) {
			slow = append(slow, p.Id)
		}
	}
	for _, id := range slow {
		s.dropPeer(id)
	}
}

// broadcastEach sends every player a message built for them.
func (s *Session) broadcastEach(build func(*internal.Player) internal.Message) {
	var slow []int
	for _, p := range s.room.Players {
		peer, ok := s.peers[p.Id]
		if !ok {
			continue
		}
		frame := s.encode(internal.SystemSenderID, build(p))
		if frame != nil && !peer.Send(frame) {
			slow = append(slow, p.Id)
		}
	}
	for _, id := range slow {
		s.dropPeer(id)
	}
}

// say records a system chat line and sends it to everyone.
func (s *Session) say(kind internal.ChatMessageType, text string) {
	s.room.AppendChat(internal.ChatMessage{Content: text, Type: kind})
	s.broadcast(internal.SystemSenderID, internal.ChatFor(kind, text), internal.SystemSenderID)
}

func (s *Session) signal(kind internal.MessageType) {
	sig, ok := internal.NewSignal(kind)
	if !ok {
		s.log.Error().Str("type", string(kind)).Msg("[signal] not a signal type")
		return
	}
	s.broadcast(internal.SystemSenderID, sig, internal.SystemSenderID)
}

// =============================================================================
// STATE SNAPSHOTS
// =============================================================================

// gameStateFor builds the snapshot as viewer is allowed to see it.
func (s *Session) gameStateFor(viewer *internal.Player) internal.GameState {
	room := s.room
	players := make([]internal.Player, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, p.View(viewer.Id))
	}

	return internal.GameState{
		Word:         s.wordFor(viewer),
		LobbyID:      room.Id,
		Rounds:       room.Rounds,
		DrawTime:     room.DrawTime,
		LobbyState:   room.LobbyState,
		RoundState:   room.RoundState,
		Players:      players,
		CurrentRound: room.CurrentRound,
		TimeLeft:     s.timeLeft(),
		ChatMessages: s.chatFor(viewer),
	}
}

func (s *Session) wordFor(viewer *internal.Player) string {
	word := s.room.Word
	switch s.room.RoundState {
	case internal.RoundOngoing:
		if viewer.IsDrawing || viewer.IsGuessed {
			return word
		}
		return utils.GetMaskedWord(word)
	case internal.RoundTurnReveal, internal.RoundReveal:
		return word
	default:
		return ""
	}
}

// chatFor hides guessed-only chat from players still guessing.
func (s *Session) chatFor(viewer *internal.Player) []internal.ChatMessage {
	seesGuessed := viewer.IsDrawing || viewer.IsGuessed || s.room.RoundState != internal.RoundOngoing
	out := make([]internal.ChatMessage, 0, len(s.room.ChatMessages))
	for _, m := range s.room.ChatMessages {
		if m.Type == internal.ChatGuessed && !seesGuessed {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *Session) sendGameState(p *internal.Player) {
	s.sendTo(p.Id, internal.SystemSenderID, internal.SetGameState{State: s.gameStateFor(p)})
}

// syncState pushes a fresh snapshot to every player.
func (s *Session) syncState() {
	s.broadcastEach(func(p *internal.Player) internal.Message {
		return internal.SetGameState{State: s.gameStateFor(p)}
	})
}
