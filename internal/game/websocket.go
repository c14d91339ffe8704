package game

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/drawing"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	joinTimeout    = 5 * time.Second

	// In batches; a late joiner's whole replay is one entry.
	sendQueueSize = 4096
)

// =============================================================================
// PEER
// =============================================================================

// Peer is one websocket connection. The room queues frames with Send; a
// dedicated goroutine writes them so a slow client never blocks the room.
type Peer struct {
	ConnID string

	conn    *websocket.Conn
	send    chan [][]byte
	limiter *rate.Limiter
	log     zerolog.Logger

	mu         sync.Mutex
	closed     bool
	closeFrame []byte
}

func newPeer(conn *websocket.Conn, limit rate.Limit, burst int) *Peer {
	id := uuid.NewString()
	return &Peer{
		ConnID:  id,
		conn:    conn,
		send:    make(chan [][]byte, sendQueueSize),
		limiter: rate.NewLimiter(limit, burst),
		log:     log.With().Str("conn", id).Logger(),
	}
}

func (p *Peer) Send(frame []byte) bool {
	return p.SendBatch([][]byte{frame})
}

// SendBatch queues frames as a single entry.
func (p *Peer) SendBatch(frames [][]byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.send <- frames:
		return true
	default:
		return false
	}
}

// Close queues a close frame behind any pending frames and stops the peer.
func (p *Peer) Close(code int, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.closeFrame = websocket.FormatCloseMessage(code, reason)
	close(p.send)
}

func (p *Peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case frames, ok := <-p.send:
			if !ok {
				_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
				p.mu.Lock()
				closeFrame := p.closeFrame
				p.mu.Unlock()
				_ = p.conn.WriteMessage(websocket.CloseMessage, closeFrame)
				return
			}
			for _, frame := range frames {
				_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := p.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					p.log.Debug().Err(err).Msg("[writePump] write failed")
					return
				}
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump decodes inbound frames and hands them to the room until the
// connection drops, then removes the player.
func (p *Peer) readPump(h *Hub, roomID string, playerID int) {
	defer func() {
		h.Leave(roomID, playerID)
		p.Close(websocket.CloseNormalClosure, "")
	}()

	p.conn.SetReadLimit(maxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				p.log.Warn().Err(err).Str("room", roomID).Int("player", playerID).Msg("[readPump] connection lost")
			}
			return
		}
		if !p.limiter.Allow() {
			p.log.Debug().Str("room", roomID).Int("player", playerID).Msg("[readPump] rate limited, dropping frame")
			continue
		}
		_, msg, err := internal.Decode(raw)
		if err != nil {
			p.log.Debug().Err(err).Str("room", roomID).Int("player", playerID).Msg("[readPump] dropping undecodable frame")
			continue
		}
		if !h.Deliver(roomID, playerID, msg) {
			return
		}
	}
}

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

func (h *Hub) checkOrigin(r *http.Request) bool {
	allowed := h.settings.AllowedOrigin
	if allowed == "" || allowed == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == allowed
}

// HandleWebSocket validates the join before upgrading so a bad request gets
// a plain HTTP error, then upgrades and seats the player.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, roomID string) {
	name, err := ValidatePlayerName(r.URL.Query().Get("playerName"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	count, err := h.PlayerCount(r.Context(), roomID)
	if err != nil {
		http.Error(w, ErrRoomNotFound.Error(), http.StatusNotFound)
		return
	}
	if count >= h.settings.MaxPlayers {
		http.Error(w, ErrRoomFull.Error(), http.StatusConflict)
		return
	}
	width, height := canvasSize(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("room", roomID).Msg("[HandleWebSocket] upgrade failed")
		return
	}

	peer := newPeer(conn, rate.Limit(h.settings.MessageRate), h.settings.MessageBurst)
	go peer.writePump()

	ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
	defer cancel()
	player, err := h.Join(ctx, roomID, name, width, height, peer)
	if err != nil {
		log.Info().Err(err).Str("room", roomID).Str("conn", peer.ConnID).Msg("[HandleWebSocket] join refused")
		code := websocket.ClosePolicyViolation
		if errors.Is(err, context.DeadlineExceeded) {
			code = websocket.CloseTryAgainLater
		}
		peer.Close(code, err.Error())
		return
	}

	peer.log.Info().Str("room", roomID).Int("player", player.Id).Str("name", player.Name).Msg("[HandleWebSocket] player connected")
	go peer.readPump(h, roomID, player.Id)
}

// canvasSize reads the optional w and h query params describing the
// client's canvas.
func canvasSize(r *http.Request) (int, int) {
	width, errW := strconv.Atoi(r.URL.Query().Get("w"))
	height, errH := strconv.Atoi(r.URL.Query().Get("h"))
	if errW != nil || errH != nil || width <= 0 || height <= 0 ||
		width > drawing.MaxDimension || height > drawing.MaxDimension {
		return 0, 0
	}
	return width, height
}
