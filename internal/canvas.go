package internal

import (
	"errors"
	"math"
)

var ErrInvalidInstruction = errors.New("INVALID_INSTRUCTION: canvas instruction out of range")

// DrawInstruction is one straight stroke segment. Points and width are
// normalized to the canvas so any surface size can replay them.
type DrawInstruction struct {
	StrokeStyle string  `json:"strokeStyle"`
	LineWidth   float64 `json:"lineWidth"` // fraction of canvas width
	MoveToX     float64 `json:"moveToX"`
	MoveToY     float64 `json:"moveToY"`
	LineToX     float64 `json:"lineToX"`
	LineToY     float64 `json:"lineToY"`
}

type FillInstruction struct {
	StartingX float64 `json:"startingX"`
	StartingY float64 `json:"startingY"`
	Color     string  `json:"color"`
}

// Normalize clamps the instruction to the unit square. Pointer moves that
// leave the canvas are kept at its edge.
func (d DrawInstruction) Normalize() (DrawInstruction, error) {
	for _, v := range []float64{d.LineWidth, d.MoveToX, d.MoveToY, d.LineToX, d.LineToY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return d, ErrInvalidInstruction
		}
	}
	if d.LineWidth <= 0 || d.LineWidth > 1 || d.StrokeStyle == "" {
		return d, ErrInvalidInstruction
	}
	d.MoveToX, d.MoveToY = clampUnit(d.MoveToX), clampUnit(d.MoveToY)
	d.LineToX, d.LineToY = clampUnit(d.LineToX), clampUnit(d.LineToY)
	return d, nil
}

// Normalize rejects fills that start outside the canvas; unlike strokes a
// fill seed has no meaningful edge position.
func (f FillInstruction) Normalize() (FillInstruction, error) {
	if math.IsNaN(f.StartingX) || math.IsNaN(f.StartingY) || f.Color == "" {
		return f, ErrInvalidInstruction
	}
	if f.StartingX < 0 || f.StartingX > 1 || f.StartingY < 0 || f.StartingY > 1 {
		return f, ErrInvalidInstruction
	}
	return f, nil
}

// ToPixel maps a normalized coordinate onto a surface dimension.
func ToPixel(v float64, size int) int {
	p := int(math.Floor(v * float64(size)))
	if p < 0 {
		return 0
	}
	if p >= size {
		return size - 1
	}
	return p
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
