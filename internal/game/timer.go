package game

import (
	"math"
	"time"

	"github.com/scythe504/drawguess-server/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// startPhaseTimer arms the single phase timer, replacing any running one.
// Expiry comes back through the inbox tagged with a generation so a timer
// that fired after being replaced is ignored.
func (s *Session) startPhaseTimer(d time.Duration) {
	s.cancelPhaseTimer()
	gen := s.timerGen
	s.timerStart = s.clock.Now()
	s.timerDur = d
	s.timer = s.clock.AfterFunc(d, func() {
		s.post(phaseTimeout{gen: gen})
	})
	s.log.Debug().Dur("duration", d).Uint64("gen", gen).Msg("[startPhaseTimer] timer armed")
}

func (s *Session) cancelPhaseTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
	s.timerDur = 0
}

// timeLeft is the whole seconds remaining on the phase timer, rounded up.
func (s *Session) timeLeft() int {
	if s.timer == nil {
		return 0
	}
	remaining := s.timerDur - s.clock.Now().Sub(s.timerStart)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Seconds()))
}

func (s *Session) handleTimeout(gen uint64) {
	if s.timer == nil || gen != s.timerGen {
		s.log.Debug().Uint64("gen", gen).Msg("[handleTimeout] stale timer")
		return
	}
	s.timer = nil

	switch s.room.RoundState {
	case internal.RoundChooseWord:
		s.autoChooseWord()
	case internal.RoundOngoing:
		s.endTurn(internal.ReasonTimeOut)
	case internal.RoundTurnReveal:
		s.advanceTurn()
	case internal.RoundReveal:
		s.advanceRound()
	}
}
