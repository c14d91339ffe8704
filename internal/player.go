package internal

import "time"

type Player struct {
	Id         int    `json:"id"`
	Name       string `json:"name"`
	IsHost     bool   `json:"isHost"`
	IsYou      bool   `json:"isYou"`
	IsDrawing  bool   `json:"isDrawing"`
	IsGuessed  bool   `json:"isGuessed"`
	TurnScore  int    `json:"turnScore"`
	RoundScore int    `json:"roundScore"`
	GameScore  int    `json:"gameScore"`

	// Server-side bookkeeping, never sent.
	HasDrawn     bool      `json:"-"`
	JoinedAt     time.Time `json:"-"`
	CanvasWidth  int       `json:"-"`
	CanvasHeight int       `json:"-"`
}

// ResetTurnState clears everything that only lives for one turn.
func (p *Player) ResetTurnState() {
	p.IsDrawing = false
	p.IsGuessed = false
	p.TurnScore = 0
}

func (p *Player) ResetRoundState() {
	p.RoundScore = 0
	p.HasDrawn = false
}

func (p *Player) ResetGameState() {
	p.ResetTurnState()
	p.ResetRoundState()
	p.GameScore = 0
}

// AddScore credits points to the turn, round and game totals. Negative
// points are ignored so totals never go down.
func (p *Player) AddScore(points int) {
	if points <= 0 {
		return
	}
	p.TurnScore += points
	p.RoundScore += points
	p.GameScore += points
}

// View returns a copy of the player as seen by viewerID.
func (p *Player) View(viewerID int) Player {
	v := *p
	v.IsYou = p.Id == viewerID
	return v
}

func (p *Player) Score(viewerID int) PlayerScore {
	return PlayerScore{
		Name:       p.Name,
		IsYou:      p.Id == viewerID,
		TurnScore:  p.TurnScore,
		RoundScore: p.RoundScore,
		GameScore:  p.GameScore,
	}
}
