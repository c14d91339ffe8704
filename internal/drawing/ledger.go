package drawing

import (
	"slices"

	"github.com/scythe504/drawguess-server/internal"
)

// Ledger is the ordered log of canvas instructions for the current turn.
type Ledger struct {
	ops []internal.CanvasOp
}

func NewLedger() *Ledger {
	return &Ledger{ops: make([]internal.CanvasOp, 0, 256)}
}

// Append records op. A clear drops everything before it and is kept as
// the first entry, so a replay starts from a blank canvas.
func (l *Ledger) Append(op internal.CanvasOp) {
	if _, ok := op.(internal.ClearCanvas); ok {
		l.Reset()
	}
	l.ops = append(l.ops, op)
}

// Reset empties the ledger; called when the turn's word changes.
func (l *Ledger) Reset() {
	clear(l.ops)
	l.ops = l.ops[:0]
}

func (l *Ledger) Len() int {
	return len(l.ops)
}

// Entries returns a copy that stays valid after further appends.
func (l *Ledger) Entries() []internal.CanvasOp {
	return slices.Clone(l.ops)
}
