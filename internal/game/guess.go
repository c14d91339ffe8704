package game

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/utils"
)

// =============================================================================
// CHAT AND GUESSES
// =============================================================================

// handleChat treats a chat line as a guess while a turn is running. Once a
// player has guessed, their chat only reaches the drawer and other players
// who already know the word.
func (s *Session) handleChat(p *internal.Player, text string) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > internal.MaxChatLength {
		s.reject(p, internal.Chat{Text: text}, "empty or too long")
		return
	}

	room := s.room
	ongoing := room.RoundState == internal.RoundOngoing

	if ongoing && utils.IsCorrectGuess(text, room.Word) {
		if p.IsDrawing || p.IsGuessed {
			s.reject(p, internal.Chat{Text: text}, "would reveal the word")
			return
		}
		s.acceptGuess(p)
		return
	}

	kind := internal.ChatPlain
	if ongoing && (p.IsDrawing || p.IsGuessed) {
		kind = internal.ChatGuessed
	}
	room.AppendChat(internal.ChatMessage{SenderID: p.Id, SenderName: p.Name, Content: text, Type: kind})

	msg := internal.ChatFor(kind, text)
	if kind == internal.ChatGuessed {
		s.broadcastWhere(p.Id, msg, func(o *internal.Player) bool {
			return o.Id != p.Id && (o.IsDrawing || o.IsGuessed)
		})
		return
	}
	s.broadcast(p.Id, msg, p.Id)
}

func (s *Session) acceptGuess(p *internal.Player) {
	room := s.room
	elapsed := s.clock.Now().Sub(room.TurnStartedAt)
	drawTime := time.Duration(room.DrawTime) * time.Second

	room.CorrectGuessers++
	points := CalculateGuessPoints(elapsed, drawTime, room.CorrectGuessers, utils.DifficultyFor(room.Word))
	p.IsGuessed = true
	p.AddScore(points)
	if drawer := room.Drawer(); drawer != nil {
		drawer.AddScore(DrawerPointsPerGuess)
	}

	s.log.Info().
		Int("player", p.Id).
		Int("points", points).
		Int("position", room.CorrectGuessers).
		Dur("elapsed", elapsed).
		Msg("[acceptGuess] correct guess")

	s.broadcast(internal.SystemSenderID, internal.PlayerGuessed{PlayerID: p.Id}, internal.SystemSenderID)
	s.say(internal.ChatNotify, p.Name+" guessed the word!")
	s.sendTo(p.Id, internal.SystemSenderID, internal.WordReveal{Word: room.Word})

	if room.HasEveryoneGuessed() {
		s.endTurn(internal.ReasonAllGuessed)
		return
	}
	s.syncState()
}
