package game

import (
	"context"
	"time"

	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/drawing"
)

// Settings are the per-server defaults every new room starts from.
type Settings struct {
	Rounds         int
	DrawTime       int
	ChooseWordTime time.Duration
	RevealTime     time.Duration
	MaxPlayers     int
	EmptyRoomTTL   time.Duration
	CanvasWidth    int
	CanvasHeight   int
	FillWorkers    int
	MessageRate    float64
	MessageBurst   int
	AllowedOrigin  string
}

func DefaultSettings() Settings {
	return Settings{
		Rounds:         internal.DefaultRounds,
		DrawTime:       internal.DefaultDrawTime,
		ChooseWordTime: internal.ChooseWordDuration,
		RevealTime:     internal.RevealDuration,
		MaxPlayers:     internal.MaxPlayersPerRoom,
		EmptyRoomTTL:   10 * time.Minute,
		CanvasWidth:    drawing.DefaultWidth,
		CanvasHeight:   drawing.DefaultHeight,
		FillWorkers:    2,
		MessageRate:    60,
		MessageBurst:   120,
		AllowedOrigin:  "*",
	}
}

// WordSource supplies candidate words for the drawer to choose from.
type WordSource interface {
	RandomWords(ctx context.Context, n int) ([]string, error)
}

// RemoteWordSource is a WordSource that leaves the process. Rooms look
// these up in the background, one turn ahead.
type RemoteWordSource interface {
	WordSource
	Remote()
}

// RoomIDAllocator hands out room ids that are not currently taken.
type RoomIDAllocator interface {
	Allocate(taken func(string) bool) (string, error)
}
