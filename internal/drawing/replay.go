package drawing

import (
	"errors"
	"fmt"

	"github.com/scythe504/drawguess-server/internal"
)

// Apply applies one ledger entry to the surface.
func Apply(s *Surface, op internal.CanvasOp) error {
	switch o := op.(type) {
	case internal.Draw:
		return s.Stroke(o.Instruction)
	case internal.Fill:
		_, err := s.Fill(o.Instruction)
		return err
	case internal.ClearCanvas:
		s.Clear()
		return nil
	default:
		return fmt.Errorf("unsupported canvas op %T", op)
	}
}

// Replay clears s and applies every entry in order. Entries that fail are
// skipped and reported together; the rest still apply.
func Replay(ops []internal.CanvasOp, s *Surface) error {
	s.Clear()
	var errs []error
	for i, op := range ops {
		if err := Apply(s, op); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Render replays ops onto a fresh surface of the given size.
func Render(ops []internal.CanvasOp, width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	s := NewSurface(width, height)
	return s, Replay(ops, s)
}
