package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/clock"
	"github.com/scythe504/drawguess-server/internal/drawing"
	"github.com/scythe504/drawguess-server/internal/utils"
)

var (
	ErrRoomNotFound = errors.New("ROOM_NOT_FOUND: room does not exist")
	ErrRoomFull     = errors.New("ROOM_FULL: room has no free seats")
	ErrInvalidName  = errors.New("INVALID_NAME: player name must be 1-20 characters")
	ErrHubClosed    = errors.New("HUB_CLOSED: server is shutting down")

	ErrJoinIncomplete = errors.New("CONNECTION_ERROR: could not deliver the game state")
)

const fillQueueSize = 64

// Hub is the registry of live rooms. It only maps ids to sessions; all game
// state lives inside each session.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]*Session
	closed bool

	settings Settings
	words    WordSource
	ids      RoomIDAllocator
	clock    clock.Clock
	worker   *drawing.Worker
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Hub)

func WithClock(c clock.Clock) Option {
	return func(h *Hub) { h.clock = c }
}

func WithRoomIDs(a RoomIDAllocator) Option {
	return func(h *Hub) { h.ids = a }
}

// WithFillWorker replaces the shared fill worker. Passing nil makes every
// room fill inline.
func WithFillWorker(w *drawing.Worker) Option {
	return func(h *Hub) {
		if h.worker != nil {
			h.worker.Close()
		}
		h.worker = w
	}
}

func NewHub(settings Settings, words WordSource, opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		rooms:    make(map[string]*Session),
		settings: settings,
		words:    words,
		ids:      utils.RoomCodes{},
		clock:    clock.New(),
		worker:   drawing.NewWorker(settings.FillWorkers, fillQueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// =============================================================================
// ROOM REGISTRY
// =============================================================================

func (h *Hub) CreateRoom() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return "", ErrHubClosed
	}

	id, err := h.ids.Allocate(func(code string) bool {
		_, taken := h.rooms[code]
		return taken
	})
	if err != nil {
		return "", err
	}

	s := newSession(id, h.settings, h.words, h.clock, h.worker, h.removeRoom)
	h.rooms[id] = s
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		s.run(h.ctx)
	}()

	log.Info().Str("room", id).Int("rooms", len(h.rooms)).Msg("[CreateRoom] room created")
	return id, nil
}

func (h *Hub) removeRoom(id string) {
	h.mu.Lock()
	delete(h.rooms, id)
	n := len(h.rooms)
	h.mu.Unlock()
	log.Info().Str("room", id).Int("rooms", n).Msg("[removeRoom] room removed")
}

func (h *Hub) session(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.rooms[id]
	return s, ok
}

func (h *Hub) Exists(id string) bool {
	_, ok := h.session(id)
	return ok
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// =============================================================================
// ROOM ACCESS
// =============================================================================

// ValidatePlayerName trims name and checks its length.
func ValidatePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > internal.MaxPlayerNameLen {
		return "", ErrInvalidName
	}
	return name, nil
}

// Join seats a player. By the time it returns the player has been sent a
// snapshot and the current drawing, and the rest of the room has been told.
// width and height are the player's canvas size, zero when unknown.
func (h *Hub) Join(ctx context.Context, roomID, name string, width, height int, peer Sender) (internal.Player, error) {
	name, err := ValidatePlayerName(name)
	if err != nil {
		return internal.Player{}, err
	}
	s, ok := h.session(roomID)
	if !ok {
		return internal.Player{}, ErrRoomNotFound
	}

	reply := make(chan joinResult, 1)
	if !s.post(joinRequest{name: name, peer: peer, width: width, height: height, reply: reply}) {
		return internal.Player{}, ErrRoomNotFound
	}

	select {
	case res := <-reply:
		return res.player, res.err
	case <-s.done:
		return internal.Player{}, ErrRoomNotFound
	case <-ctx.Done():
		// The room may still seat the player; take them back out.
		go func() {
			select {
			case res := <-reply:
				if res.err == nil {
					h.Leave(roomID, res.player.Id)
				}
			case <-s.done:
			}
		}()
		return internal.Player{}, ctx.Err()
	}
}

// Leave removes a player. It is safe to call for players or rooms that are
// already gone.
func (h *Hub) Leave(roomID string, playerID int) {
	if s, ok := h.session(roomID); ok {
		s.post(leaveRequest{playerID: playerID})
	}
}

// Deliver hands an inbound message to the room. It reports false when the
// room no longer exists.
func (h *Hub) Deliver(roomID string, playerID int, msg internal.Message) bool {
	s, ok := h.session(roomID)
	if !ok {
		return false
	}
	return s.post(inboundMessage{from: playerID, msg: msg})
}

// Broadcast sends msg to everyone in the room except exclude.
func (h *Hub) Broadcast(roomID string, senderID int, msg internal.Message, exclude int) error {
	s, ok := h.session(roomID)
	if !ok || !s.post(broadcastRequest{senderID: senderID, msg: msg, exclude: exclude}) {
		return ErrRoomNotFound
	}
	return nil
}

// query runs fn on the room goroutine and waits for it.
func (h *Hub) query(ctx context.Context, roomID string, fn func(s *Session)) error {
	s, ok := h.session(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	finished := make(chan struct{})
	if !s.post(query{fn: func(s *Session) {
		defer close(finished)
		fn(s)
	}}) {
		return ErrRoomNotFound
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) PlayerCount(ctx context.Context, roomID string) (int, error) {
	var n int
	err := h.query(ctx, roomID, func(s *Session) { n = s.room.GetPlayerCount() })
	return n, err
}

// JoinableRoom finds a room with players in it and a free seat. Rooms still
// in their lobby are preferred.
func (h *Hub) JoinableRoom(ctx context.Context) (string, bool) {
	h.mu.RLock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	fallback := ""
	for _, id := range ids {
		var lobby, open bool
		err := h.query(ctx, id, func(s *Session) {
			n := s.room.GetPlayerCount()
			open = n > 0 && n < s.settings.MaxPlayers && s.room.LobbyState != internal.LobbyReveal
			lobby = s.room.LobbyState == internal.LobbyWait
		})
		if err != nil || !open {
			continue
		}
		if lobby {
			return id, true
		}
		if fallback == "" {
			fallback = id
		}
	}
	return fallback, fallback != ""
}

// CanvasSnapshot returns the room's current drawing at width x height. Zero
// sizes mean the room's own mirror size. The mirror is used when it is up to
// date; otherwise the ledger is replayed off the room goroutine.
func (h *Hub) CanvasSnapshot(ctx context.Context, roomID string, width, height int) (*drawing.Surface, error) {
	var (
		snap *drawing.Surface
		ops  []internal.CanvasOp
	)
	err := h.query(ctx, roomID, func(s *Session) {
		mw, mh := s.renderer.Size()
		if width <= 0 || height <= 0 {
			width, height = mw, mh
		}
		if surf, ok := s.renderer.Snapshot(); ok && surf.Width() == width && surf.Height() == height {
			snap = surf
			return
		}
		ops = s.renderer.Entries()
	})
	if err != nil {
		return nil, err
	}
	if snap != nil {
		return snap, nil
	}

	surf, err := drawing.Render(ops, width, height)
	if surf == nil {
		return nil, err
	}
	if err != nil {
		log.Debug().Str("room", roomID).Err(err).Msg("[CanvasSnapshot] ledger entries skipped")
	}
	return surf, nil
}

// Shutdown closes every room, disconnecting all players, and waits for the
// room goroutines to finish.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	h.cancel()
	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}
	if h.worker != nil {
		h.worker.Close()
	}
	log.Info().Msg("[Shutdown] all rooms closed")
	return nil
}
