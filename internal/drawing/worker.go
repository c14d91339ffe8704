package drawing

import (
	"errors"
	"image/color"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrWorkerClosed = errors.New("FILL_WORKER_CLOSED: fill worker is shut down")
	ErrWorkerBusy   = errors.New("FILL_WORKER_BUSY: fill queue is full")
)

// FillJob carries a pixel buffer to the worker. The submitter gives up the
// buffer until the result comes back.
type FillJob struct {
	Pix    []byte
	Width  int
	Height int
	X, Y   int
	Color  color.RGBA
	Gen    uint64
}

type FillResult struct {
	Pix    []byte
	Width  int
	Height int
	Gen    uint64
	Filled int
}

type fillTask struct {
	job  FillJob
	done func(FillResult)
}

// Worker runs flood fills on a fixed pool of goroutines shared by all rooms.
type Worker struct {
	tasks  chan fillTask
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewWorker(workers, queue int) *Worker {
	if workers < 1 {
		workers = 1
	}
	w := &Worker{tasks: make(chan fillTask, queue)}
	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
	return w
}

func (w *Worker) run() {
	defer w.wg.Done()
	for t := range w.tasks {
		j := t.job
		filled := FloodFill(j.Pix, j.Width, j.Height, j.X, j.Y, j.Color)
		t.done(FillResult{Pix: j.Pix, Width: j.Width, Height: j.Height, Gen: j.Gen, Filled: filled})
	}
}

// Submit queues a job without blocking. done runs on a worker goroutine.
func (w *Worker) Submit(job FillJob, done func(FillResult)) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWorkerClosed
	}
	select {
	case w.tasks <- fillTask{job: job, done: done}:
		return nil
	default:
		log.Warn().Int("queued", len(w.tasks)).Msg("[Worker.Submit] fill queue full")
		return ErrWorkerBusy
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.tasks)
	w.mu.Unlock()
	w.wg.Wait()
}
