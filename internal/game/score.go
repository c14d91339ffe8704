package game

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/scythe504/drawguess-server/internal"
)

const (
	MaxGuessPoints       = 500
	DrawerPointsPerGuess = 100

	minOrderFactor = 0.5
	orderPenalty   = 0.1
)

// CalculateGuessPoints scores a correct guess made elapsed into a turn of
// length drawTime by the position-th correct guesser. Points shrink with time
// and guess order, and grow with word difficulty. A guess at or after the
// end of the turn is worth nothing.
func CalculateGuessPoints(elapsed, drawTime time.Duration, position int, difficulty internal.WordDifficulty) int {
	if drawTime <= 0 || elapsed >= drawTime {
		return 0
	}
	elapsed = max(elapsed, 0)
	position = max(position, 1)

	timeFactor := 1 - float64(elapsed)/float64(drawTime)
	orderFactor := math.Max(minOrderFactor, 1-orderPenalty*float64(position-1))

	return int(math.Ceil(MaxGuessPoints * timeFactor * orderFactor * difficultyMultiplier(difficulty)))
}

func difficultyMultiplier(d internal.WordDifficulty) float64 {
	switch d {
	case internal.DifficultyMedium:
		return 1.25
	case internal.DifficultyHard:
		return 1.5
	default:
		return 1
	}
}

// BuildSummary ranks players by game score, ties broken by join order.
func BuildSummary(room *internal.Room, viewerID int) internal.Summary {
	ranked := slices.Clone(room.Players)
	slices.SortStableFunc(ranked, func(a, b *internal.Player) int {
		return cmp.Compare(b.GameScore, a.GameScore)
	})

	scores := make([]internal.PlayerScore, 0, len(ranked))
	for _, p := range ranked {
		scores = append(scores, p.Score(viewerID))
	}

	return internal.Summary{
		Word:   room.Word,
		Reason: room.RevealReason,
		Scores: scores,
	}
}

func (s *Session) sendSummary(p *internal.Player) {
	s.sendTo(p.Id, internal.SystemSenderID, internal.SetSummary{Summary: BuildSummary(s.room, p.Id)})
}

// pushSummaries sends every player their own view of the scores.
func (s *Session) pushSummaries() {
	s.broadcastEach(func(p *internal.Player) internal.Message {
		return internal.SetSummary{Summary: BuildSummary(s.room, p.Id)}
	})
}
