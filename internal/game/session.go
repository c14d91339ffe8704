package game

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/clock"
	"github.com/scythe504/drawguess-server/internal/drawing"
)

const (
	inboxSize         = 256
	idleCheckInterval = 30 * time.Second
	wordChoiceCount   = 3
	wordLookupTimeout = 2 * time.Second
)

// Sender is the outbound half of a player connection as the room sees it.
// Send and SendBatch must not block; they report false when nothing could
// be queued. A batch is queued whole or not at all and its frames are
// written in order.
type Sender interface {
	Send(frame []byte) bool
	SendBatch(frames [][]byte) bool
	Close(code int, reason string)
}

// =============================================================================
// EVENTS
// =============================================================================

type joinRequest struct {
	name   string
	peer   Sender
	width  int
	height int
	reply  chan joinResult
}

type joinResult struct {
	player internal.Player
	err    error
}

type leaveRequest struct {
	playerID int
}

type inboundMessage struct {
	from int
	msg  internal.Message
}

type phaseTimeout struct {
	gen uint64
}

// callback runs a closure on the room goroutine. The renderer uses it to
// hand fill results back.
type callback struct {
	fn func()
}

type broadcastRequest struct {
	senderID int
	msg      internal.Message
	exclude  int
}

type query struct {
	fn func(s *Session)
}

// =============================================================================
// SESSION
// =============================================================================

// Session owns one room. All room state is touched only by the goroutine
// running run; everything else talks to it through post.
type Session struct {
	room     *internal.Room
	settings Settings
	renderer *drawing.Renderer
	peers    map[int]Sender
	words    WordSource
	clock    clock.Clock
	log      zerolog.Logger

	nextChoices []string
	prefetching bool

	timer      clock.Timer
	timerGen   uint64
	timerStart time.Time
	timerDur   time.Duration

	inbox   chan any
	done    chan struct{}
	closed  bool
	onClose func(roomID string)
}

func newSession(id string, settings Settings, words WordSource, clk clock.Clock, worker *drawing.Worker, onClose func(string)) *Session {
	s := &Session{
		room:     internal.NewRoom(id, settings.Rounds, settings.DrawTime, clk.Now()),
		settings: settings,
		peers:    make(map[int]Sender),
		words:    words,
		clock:    clk,
		log:      log.With().Str("room", id).Logger(),
		inbox:    make(chan any, inboxSize),
		done:     make(chan struct{}),
		onClose:  onClose,
	}
	s.renderer = drawing.NewRenderer(id, settings.CanvasWidth, settings.CanvasHeight, worker,
		func(fn func()) bool { return s.post(callback{fn: fn}) }, clk)
	return s
}

// post queues an event for the room goroutine. It reports false once the
// room has shut down.
func (s *Session) post(ev any) bool {
	select {
	case s.inbox <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	s.log.Info().Msg("[Session.run] room started")

	ticker := time.NewTicker(idleCheckInterval)
	defer ticker.Stop()

	for !s.closed {
		select {
		case <-ctx.Done():
			s.close(websocket.CloseNormalClosure, "")
		case ev := <-s.inbox:
			s.dispatch(ev)
		case <-ticker.C:
			s.checkIdle()
		}
	}
	s.log.Info().Msg("[Session.run] room stopped")
}

// dispatch handles one event. A panic in a handler ends the current turn
// instead of taking the room down.
func (s *Session) dispatch(ev any) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("[Session.dispatch] recovered from panic")
			s.recoverTurn()
		}
	}()

	switch e := ev.(type) {
	case joinRequest:
		s.handleJoin(e)
	case leaveRequest:
		s.handleLeave(e.playerID)
	case inboundMessage:
		s.handleMessage(e.from, e.msg)
	case phaseTimeout:
		s.handleTimeout(e.gen)
	case callback:
		e.fn()
	case broadcastRequest:
		s.broadcast(e.senderID, e.msg, e.exclude)
	case query:
		e.fn(s)
	default:
		s.log.Warn().Type("event", ev).Msg("[Session.dispatch] unknown event")
	}
}

func (s *Session) recoverTurn() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("[Session.recoverTurn] could not end turn")
		}
	}()
	switch s.room.RoundState {
	case internal.RoundChooseWord, internal.RoundOngoing:
		s.endTurn(internal.ReasonUnexpectedError)
	}
}

// checkIdle closes a room nobody ever joined once it outlives its TTL.
func (s *Session) checkIdle() {
	if s.room.GetPlayerCount() > 0 || s.settings.EmptyRoomTTL <= 0 {
		return
	}
	if s.clock.Now().Sub(s.room.CreatedAt) >= s.settings.EmptyRoomTTL {
		s.log.Info().Msg("[Session.checkIdle] closing empty room")
		s.close(websocket.CloseNormalClosure, "")
	}
}

// close ends the room and disconnects everyone still in it.
func (s *Session) close(code int, reason string) {
	if s.closed {
		return
	}
	s.closed = true
	s.cancelPhaseTimer()
	s.renderer.Close()
	for id, peer := range s.peers {
		peer.Close(code, reason)
		delete(s.peers, id)
	}
	if s.onClose != nil {
		s.onClose(s.room.Id)
	}
}

// =============================================================================
// MEMBERSHIP
// =============================================================================

func (s *Session) handleJoin(req joinRequest) {
	room := s.room
	if s.closed {
		req.reply <- joinResult{err: ErrRoomNotFound}
		return
	}
	if room.GetPlayerCount() >= s.settings.MaxPlayers {
		req.reply <- joinResult{err: ErrRoomFull}
		return
	}

	p := room.AddPlayer(req.name, s.clock.Now())
	if req.width > 0 && req.height > 0 {
		p.CanvasWidth, p.CanvasHeight = req.width, req.height
	}

	// Snapshot first, then the current drawing, as one batch. Nobody else
	// hears about the player until it is queued.
	if !req.peer.SendBatch(s.initialFrames(p)) {
		room.RemovePlayer(p.Id)
		req.peer.Close(websocket.CloseInternalServerErr, string(internal.ReasonConnectionError))
		s.log.Warn().Str("name", p.Name).Int("ledger", s.renderer.Len()).Msg("[handleJoin] could not queue initial state")
		req.reply <- joinResult{err: ErrJoinIncomplete}
		return
	}
	s.peers[p.Id] = req.peer
	s.log.Info().Int("player", p.Id).Str("name", p.Name).Bool("host", p.IsHost).Msg("[handleJoin] player joined")

	s.broadcast(internal.SystemSenderID, internal.PlayerJoin{Player: p.View(internal.SystemSenderID)}, p.Id)
	s.prefetchWords()
	if room.LobbyState == internal.LobbyPlay {
		s.say(internal.ChatInfo, p.Name+" joined the game")
	}

	req.reply <- joinResult{player: p.View(p.Id)}
}

// initialFrames is what a joining player receives before anything else:
// their snapshot, then the ledger of the turn in progress.
func (s *Session) initialFrames(p *internal.Player) [][]byte {
	ops := s.renderer.Entries()
	frames := make([][]byte, 0, len(ops)+1)
	if f := s.encode(internal.SystemSenderID, internal.SetGameState{State: s.gameStateFor(p)}); f != nil {
		frames = append(frames, f)
	}
	for _, op := range ops {
		if f := s.encode(internal.SystemSenderID, op); f != nil {
			frames = append(frames, f)
		}
	}
	return frames
}

func (s *Session) handleLeave(playerID int) {
	room := s.room
	p := room.GetPlayerByID(playerID)
	if p == nil {
		return
	}
	wasDrawing := p.IsDrawing
	_, newHost := room.RemovePlayer(playerID)
	delete(s.peers, playerID)
	s.log.Info().Int("player", playerID).Bool("drawing", wasDrawing).Msg("[handleLeave] player left")

	if room.GetPlayerCount() == 0 {
		s.close(websocket.CloseNormalClosure, "")
		return
	}

	s.broadcast(internal.SystemSenderID, internal.PlayerLeave{PlayerID: playerID}, internal.SystemSenderID)
	s.say(internal.ChatAlert, p.Name+" left the game")
	if newHost != nil {
		s.say(internal.ChatInfo, newHost.Name+" is now the host")
	}

	if room.LobbyState == internal.LobbyPlay {
		switch room.RoundState {
		case internal.RoundChooseWord, internal.RoundOngoing:
			switch {
			case room.GetPlayerCount() < internal.MinPlayersToStart:
				s.endTurn(internal.ReasonNotEnoughPlayers)
				return
			case wasDrawing:
				s.endTurn(internal.ReasonDrawerLeave)
				return
			case room.RoundState == internal.RoundOngoing && room.HasEveryoneGuessed():
				s.endTurn(internal.ReasonAllGuessed)
				return
			}
		}
	}
	s.syncState()
}

// handleQuit removes the player and closes their connection normally.
func (s *Session) handleQuit(p *internal.Player) {
	peer := s.peers[p.Id]
	s.handleLeave(p.Id)
	if peer != nil {
		peer.Close(websocket.CloseNormalClosure, "")
	}
}

// dropPeer disconnects a player whose send queue overflowed.
func (s *Session) dropPeer(playerID int) {
	peer, ok := s.peers[playerID]
	if !ok {
		return
	}
	s.log.Warn().Int("player", playerID).Msg("[dropPeer] send queue full, disconnecting")
	peer.Close(websocket.CloseInternalServerErr, string(internal.ReasonConnectionError))
	s.handleLeave(playerID)
}

// =============================================================================
// MESSAGE ROUTING
// =============================================================================

func (s *Session) handleMessage(from int, msg internal.Message) {
	p := s.room.GetPlayerByID(from)
	if p == nil {
		return
	}

	switch m := msg.(type) {
	case internal.CanvasOp:
		s.handleCanvasOp(p, m)
	case internal.Chat:
		s.handleChat(p, m.Text)
	case internal.SetRounds:
		s.handleSetRounds(p, m.Rounds)
	case internal.SetDrawTime:
		s.handleSetDrawTime(p, m.Seconds)
	case internal.ChooseWord:
		s.handleChooseWord(p, m.Word)
	case internal.CloseConnection:
		s.handleQuit(p)
	case internal.Signal:
		switch m.Kind {
		case internal.TypeStartGame:
			s.handleStartGame(p)
		case internal.TypeGetGameState:
			s.sendGameState(p)
		case internal.TypeGetSummary:
			s.sendSummary(p)
		case internal.TypeGetWordChoices:
			s.handleGetWordChoices(p)
		case internal.TypeStartNextTurn:
			s.handleStartNextTurn(p)
		case internal.TypeStartNextRound:
			s.handleStartNextRound(p)
		case internal.TypeQuitGame:
			s.handleQuit(p)
		default:
			s.reject(p, msg, "server-only signal")
		}
	default:
		s.reject(p, msg, "not accepted from clients")
	}
}

func (s *Session) reject(p *internal.Player, msg internal.Message, why string) {
	s.log.Debug().
		Int("player", p.Id).
		Str("type", string(msg.Type())).
		Str("room_state", string(s.room.RoundState)).
		Str("why", why).
		Msg("[handleMessage] dropped message")
}
