package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/utils"
)

var fallbackWords = utils.DefaultWords()

// =============================================================================
// TURN FLOW
// =============================================================================

// beginTurn hands the pen to the next player who has not drawn this round,
// or reveals the round when everyone has.
func (s *Session) beginTurn() {
	room := s.room
	drawer := room.GetNextDrawer()
	if drawer == nil {
		s.roundReveal()
		return
	}

	room.ResetPlayerGuessState()
	room.RevealReason = ""
	room.Word = ""
	drawer.IsDrawing = true
	drawer.HasDrawn = true
	room.RoundState = internal.RoundChooseWord
	room.WordChoices = s.pickWordChoices()

	if drawer.CanvasWidth > 0 && drawer.CanvasHeight > 0 {
		if err := s.renderer.Resize(drawer.CanvasWidth, drawer.CanvasHeight); err != nil {
			s.log.Debug().Err(err).Int("player", drawer.Id).Msg("[beginTurn] keeping mirror size")
		}
	}

	s.log.Info().Int("drawer", drawer.Id).Int("round", room.CurrentRound).Strs("choices", room.WordChoices).Msg("[beginTurn] turn started")

	s.signal(internal.TypeRoundChooseWord)
	s.broadcast(internal.SystemSenderID, internal.PlayerDrawing{PlayerID: drawer.Id}, internal.SystemSenderID)
	s.say(internal.ChatInfo, drawer.Name+" is choosing a word")
	s.sendTo(drawer.Id, internal.SystemSenderID, internal.SetWordChoices{Choices: room.WordChoices})
	s.startPhaseTimer(s.settings.ChooseWordTime)
	s.syncState()
}

// pickWordChoices asks the word source for options, falling back to the
// built-in list when it fails or comes back empty. Remote sources are never
// queried here; their words were fetched ahead of time by prefetchWords.
func (s *Session) pickWordChoices() []string {
	ctx, cancel := context.WithTimeout(context.Background(), wordLookupTimeout)
	defer cancel()

	if _, remote := s.words.(RemoteWordSource); remote {
		choices := s.nextChoices
		s.nextChoices = nil
		s.prefetchWords()
		if len(choices) > 0 {
			return choices
		}
		s.log.Warn().Msg("[pickWordChoices] prefetched words not ready, using built-in words")
	} else if s.words != nil {
		words, err := s.words.RandomWords(ctx, wordChoiceCount)
		if err == nil && len(words) > 0 {
			return words
		}
		s.log.Warn().Err(err).Msg("[pickWordChoices] word source failed, using built-in words")
	}
	words, _ := fallbackWords.RandomWords(ctx, wordChoiceCount)
	return words
}

// prefetchWords fetches the next turn's choices from a remote source on
// its own goroutine and posts them back to the room.
func (s *Session) prefetchWords() {
	source, remote := s.words.(RemoteWordSource)
	if !remote || s.prefetching || len(s.nextChoices) > 0 || s.closed {
		return
	}
	s.prefetching = true
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), wordLookupTimeout)
		defer cancel()
		words, err := source.RandomWords(ctx, wordChoiceCount)
		s.post(callback{fn: func() {
			s.prefetching = false
			if err != nil || len(words) == 0 {
				s.log.Warn().Err(err).Msg("[prefetchWords] word source failed")
				return
			}
			s.nextChoices = words
		}})
	}()
}

func (s *Session) handleGetWordChoices(p *internal.Player) {
	if s.room.RoundState != internal.RoundChooseWord || !p.IsDrawing {
		s.reject(p, internal.Signal{Kind: internal.TypeGetWordChoices}, "not choosing")
		return
	}
	s.sendTo(p.Id, internal.SystemSenderID, internal.SetWordChoices{Choices: s.room.WordChoices})
}

func (s *Session) handleChooseWord(p *internal.Player, word string) {
	room := s.room
	if room.RoundState != internal.RoundChooseWord || !p.IsDrawing {
		s.reject(p, internal.ChooseWord{Word: word}, "not choosing")
		return
	}
	for _, choice := range room.WordChoices {
		if strings.EqualFold(strings.TrimSpace(word), choice) {
			s.selectWord(choice)
			return
		}
	}
	s.reject(p, internal.ChooseWord{Word: word}, "not one of the offered words")
}

// autoChooseWord picks for a drawer who let the choice timer run out.
func (s *Session) autoChooseWord() {
	choices := s.room.WordChoices
	if len(choices) == 0 {
		s.endTurn(internal.ReasonUnexpectedError)
		return
	}
	s.log.Info().Str("word", choices[0]).Msg("[autoChooseWord] drawer did not choose in time")
	s.selectWord(choices[0])
}

// selectWord starts drawing. The canvas ledger belongs to the word, so it is
// cleared here and nowhere else during a game.
func (s *Session) selectWord(word string) {
	room := s.room
	s.cancelPhaseTimer()

	room.Word = word
	room.WordChoices = nil
	room.RoundState = internal.RoundOngoing
	room.TurnStartedAt = s.clock.Now()
	s.renderer.Reset()
	s.startPhaseTimer(time.Duration(room.DrawTime) * time.Second)

	s.log.Info().Str("word", word).Msg("[selectWord] drawing started")

	s.broadcast(internal.SystemSenderID, internal.ClearCanvas{}, internal.SystemSenderID)
	s.signal(internal.TypeRoundOngoing)
	masked := utils.GetMaskedWord(word)
	s.broadcastEach(func(p *internal.Player) internal.Message {
		if p.IsDrawing {
			return internal.SetWord{Word: word}
		}
		return internal.SetWord{Word: masked}
	})
	s.syncState()
}

// endTurn reveals the word and scores. It is a no-op outside a running turn.
func (s *Session) endTurn(reason internal.RevealReason) {
	room := s.room
	if room.RoundState != internal.RoundChooseWord && room.RoundState != internal.RoundOngoing {
		return
	}
	s.cancelPhaseTimer()
	room.RoundState = internal.RoundTurnReveal
	room.RevealReason = reason
	room.WordChoices = nil

	s.log.Info().Str("reason", string(reason)).Str("word", room.Word).Msg("[endTurn] turn over")

	s.signal(internal.TypeRoundTurnReveal)
	s.say(internal.ChatAlert, reason.Message())
	if room.Word != "" {
		s.say(internal.ChatInfo, fmt.Sprintf("The word was '%s'", room.Word))
		s.broadcast(internal.SystemSenderID, internal.WordReveal{Word: room.Word}, internal.SystemSenderID)
	}
	s.pushSummaries()
	s.startPhaseTimer(s.settings.RevealTime)
	s.syncState()
}

// advanceTurn leaves the turn reveal.
func (s *Session) advanceTurn() {
	room := s.room
	if room.RoundState != internal.RoundTurnReveal {
		return
	}
	s.cancelPhaseTimer()

	if room.GetPlayerCount() < internal.MinPlayersToStart {
		s.finishGame(internal.ReasonNotEnoughPlayers)
		return
	}
	s.beginTurn()
}

func (s *Session) handleStartNextTurn(p *internal.Player) {
	if !p.IsHost || s.room.RoundState != internal.RoundTurnReveal {
		s.reject(p, internal.Signal{Kind: internal.TypeStartNextTurn}, "not host or not revealing a turn")
		return
	}
	s.advanceTurn()
}

// =============================================================================
// ROUND FLOW
// =============================================================================

func (s *Session) roundReveal() {
	room := s.room
	s.cancelPhaseTimer()
	room.RoundState = internal.RoundReveal
	for _, p := range room.Players {
		p.IsDrawing = false
	}
	s.log.Info().Int("round", room.CurrentRound).Msg("[roundReveal] round over")

	s.signal(internal.TypeRoundReveal)
	s.say(internal.ChatInfo, fmt.Sprintf("Round %d is over", room.CurrentRound))
	s.pushSummaries()
	s.startPhaseTimer(s.settings.RevealTime)
	s.syncState()
}

// advanceRound starts the next round, or ends the game after the last one.
func (s *Session) advanceRound() {
	room := s.room
	if room.RoundState != internal.RoundReveal {
		return
	}
	s.cancelPhaseTimer()

	if room.GetPlayerCount() < internal.MinPlayersToStart {
		s.finishGame(internal.ReasonNotEnoughPlayers)
		return
	}
	if room.CurrentRound >= room.Rounds {
		s.finishGame("")
		return
	}

	room.CurrentRound++
	for _, p := range room.Players {
		p.ResetRoundState()
	}
	room.RoundState = internal.RoundWait

	s.signal(internal.TypeRoundWait)
	s.say(internal.ChatInfo, fmt.Sprintf("Round %d of %d", room.CurrentRound, room.Rounds))
	s.beginTurn()
}

func (s *Session) handleStartNextRound(p *internal.Player) {
	if !p.IsHost || s.room.RoundState != internal.RoundReveal {
		s.reject(p, internal.Signal{Kind: internal.TypeStartNextRound}, "not host or not revealing a round")
		return
	}
	s.advanceRound()
}
