package game

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/scythe504/drawguess-server/internal"
)

func TestCalculateGuessPoints(t *testing.T) {
	turn := 60 * time.Second

	tests := []struct {
		name       string
		elapsed    time.Duration
		position   int
		difficulty internal.WordDifficulty
		want       int
	}{
		{"instant first guess", 0, 1, internal.DifficultyEasy, 500},
		{"halfway", 30 * time.Second, 1, internal.DifficultyEasy, 250},
		{"second guesser", 30 * time.Second, 2, internal.DifficultyEasy, 225},
		{"order factor floors at half", 0, 9, internal.DifficultyEasy, 250},
		{"hard word", 30 * time.Second, 1, internal.DifficultyHard, 375},
		{"rounds up", 59 * time.Second, 1, internal.DifficultyEasy, 9},
		{"at the buzzer", turn, 1, internal.DifficultyEasy, 0},
		{"after time", turn + time.Second, 1, internal.DifficultyEasy, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateGuessPoints(tt.elapsed, turn, tt.position, tt.difficulty))
		})
	}
}

func TestGuessPointsNeverIncreaseWithTimeOrOrder(t *testing.T) {
	turn := 45 * time.Second
	prev := CalculateGuessPoints(0, turn, 1, internal.DifficultyMedium)
	for i := 1; i <= 10; i++ {
		got := CalculateGuessPoints(time.Duration(i)*4*time.Second, turn, i+1, internal.DifficultyMedium)
		assert.LessOrEqual(t, got, prev)
		prev = got
	}
}

func TestBuildSummaryRanksByGameScore(t *testing.T) {
	room := internal.NewRoom("ROOM42", 3, 60, time.Time{})
	alice := room.AddPlayer("alice", time.Time{})
	bob := room.AddPlayer("bob", time.Time{})
	carol := room.AddPlayer("carol", time.Time{})
	alice.AddScore(100)
	bob.AddScore(300)
	carol.AddScore(100)
	room.Word = "apple"
	room.RevealReason = internal.ReasonTimeOut

	got := BuildSummary(room, carol.Id)

	want := internal.Summary{
		Word:   "apple",
		Reason: internal.ReasonTimeOut,
		Scores: []internal.PlayerScore{
			{Name: "bob", TurnScore: 300, RoundScore: 300, GameScore: 300},
			{Name: "alice", TurnScore: 100, RoundScore: 100, GameScore: 100},
			{Name: "carol", IsYou: true, TurnScore: 100, RoundScore: 100, GameScore: 100},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildSummary() mismatch (-want +got):\n%s", diff)
	}
}
