package drawing

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/clock"
)

const ReplayDebounce = 200 * time.Millisecond

// Renderer keeps a room's ledger and a server-side mirror of the canvas.
// Every method must be called from the owning room goroutine; results from
// the fill worker come back through post.
type Renderer struct {
	roomID string
	ledger *Ledger

	surface  *Surface // nil while a fill owns the buffer
	width    int
	height   int
	gen      uint64
	inFlight bool
	dirty    bool
	replay   clock.Timer

	worker *Worker
	post   func(func()) bool
	clock  clock.Clock
}

func NewRenderer(roomID string, width, height int, worker *Worker, post func(func()) bool, clk clock.Clock) *Renderer {
	return &Renderer{
		roomID:  roomID,
		ledger:  NewLedger(),
		surface: NewSurface(width, height),
		width:   width,
		height:  height,
		worker:  worker,
		post:    post,
		clock:   clk,
	}
}

// Record appends op to the ledger and applies it to the mirror. While a
// fill is in flight the mirror is only marked stale; the ledger stays
// authoritative and a replay catches up later.
func (r *Renderer) Record(op internal.CanvasOp) error {
	r.ledger.Append(op)
	if r.inFlight || r.surface == nil {
		r.dirty = true
		return nil
	}
	if fill, ok := op.(internal.Fill); ok {
		return r.dispatchFill(fill.Instruction)
	}
	return Apply(r.surface, op)
}

func (r *Renderer) dispatchFill(f internal.FillInstruction) error {
	col, err := ParseColor(f.Color)
	if err != nil {
		return err
	}
	owned := r.surface
	x := internal.ToPixel(f.StartingX, owned.Width())
	y := internal.ToPixel(f.StartingY, owned.Height())

	r.gen++
	job := FillJob{Pix: owned.Pix(), Width: owned.Width(), Height: owned.Height(), X: x, Y: y, Color: col, Gen: r.gen}

	if r.worker != nil {
		r.surface = nil
		r.inFlight = true
		err = r.worker.Submit(job, func(res FillResult) {
			r.post(func() { r.complete(res) })
		})
		if err == nil {
			return nil
		}
		r.surface = owned
		r.inFlight = false
		log.Debug().Str("room", r.roomID).Err(err).Msg("[Renderer.dispatchFill] running fill inline")
	}
	FloodFill(job.Pix, job.Width, job.Height, job.X, job.Y, job.Color)
	return nil
}

// complete takes the buffer back from the worker.
func (r *Renderer) complete(res FillResult) {
	if res.Gen != r.gen {
		log.Debug().Str("room", r.roomID).Uint64("gen", res.Gen).Msg("[Renderer.complete] dropping stale fill")
		return
	}
	r.inFlight = false
	r.surface = surfaceFrom(res.Pix, res.Width, res.Height)
	if r.dirty || res.Width != r.width || res.Height != r.height {
		r.scheduleReplay()
	}
}

// Reset starts a new turn: empty ledger, blank mirror.
func (r *Renderer) Reset() {
	r.ledger.Reset()
	r.stopReplay()
	r.gen++
	r.inFlight = false
	r.dirty = false
	r.surface = NewSurface(r.width, r.height)
}

// Resize changes the mirror geometry. The rebuild is debounced so a burst
// of resizes costs one replay.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if width == r.width && height == r.height {
		return nil
	}
	r.width, r.height = width, height
	r.scheduleReplay()
	return nil
}

func (r *Renderer) scheduleReplay() {
	r.dirty = true
	r.stopReplay()
	r.replay = r.clock.AfterFunc(ReplayDebounce, func() {
		r.post(r.ReplayNow)
	})
}

func (r *Renderer) stopReplay() {
	if r.replay != nil {
		r.replay.Stop()
		r.replay = nil
	}
}

// ReplayNow rebuilds the mirror from the ledger. Any fill still in flight
// becomes stale and its result is discarded.
func (r *Renderer) ReplayNow() {
	r.stopReplay()
	r.gen++
	r.inFlight = false
	r.dirty = false
	s := NewSurface(r.width, r.height)
	if err := Replay(r.ledger.Entries(), s); err != nil {
		log.Warn().Str("room", r.roomID).Err(err).Msg("[Renderer.ReplayNow] ledger entries skipped")
	}
	r.surface = s
}

// Snapshot returns a copy of the mirror when it is current.
func (r *Renderer) Snapshot() (*Surface, bool) {
	if r.surface == nil || r.inFlight || r.dirty {
		return nil, false
	}
	return r.surface.Clone(), true
}

func (r *Renderer) Entries() []internal.CanvasOp { return r.ledger.Entries() }

func (r *Renderer) Len() int { return r.ledger.Len() }

func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Busy reports whether a fill currently owns the mirror buffer.
func (r *Renderer) Busy() bool { return r.inFlight }

func (r *Renderer) Close() {
	r.stopReplay()
	r.gen++
}
