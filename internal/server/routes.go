package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/drawing"
	"github.com/scythe504/drawguess-server/internal/game"
	"github.com/scythe504/drawguess-server/internal/utils"
)

const (
	defaultQRSize = 320
	maxQRSize     = 1024
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.CreateRoomHandler).Methods(http.MethodPost)
	r.HandleFunc("/", noContent).Methods(http.MethodOptions)
	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms-available", s.GetRoomToJoin).Methods(http.MethodGet)

	r.HandleFunc("/{roomId}/canvas.png", s.CanvasHandler).Methods(http.MethodGet)
	r.HandleFunc("/{roomId}/invite.png", s.InviteHandler).Methods(http.MethodGet)
	r.HandleFunc("/{roomId}", s.RoomExistsHandler).Methods(http.MethodOptions)
	r.HandleFunc("/{roomId}", s.WebSocketHandler).Methods(http.MethodGet)

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("[http] request")
}

// CORS middleware. Only real preflights are answered here; a bare OPTIONS
// on a room is the existence check and goes through to its handler.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func roomID(r *http.Request) string {
	return utils.NormalizeRoomCode(mux.Vars(r)["roomId"])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("[writeJSON] error encoding response")
	}
}

// =============================================================================
// ROOMS
// =============================================================================

func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	id, err := s.hub.CreateRoom()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, game.ErrHubClosed) {
			status = http.StatusServiceUnavailable
		}
		hlog.FromRequest(r).Error().Err(err).Msg("[CreateRoomHandler] could not create room")
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusCreated, internal.CreateRoomResponse{RoomID: id})
}

func (s *Server) RoomExistsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.hub.Exists(roomID(r)) {
		http.Error(w, game.ErrRoomNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	s.hub.HandleWebSocket(w, r, roomID(r))
}

func (s *Server) GetRoomToJoin(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	var resp internal.Response
	if id, ok := s.hub.JoinableRoom(r.Context()); ok {
		resp = internal.Response{StatusCode: http.StatusOK, RespStartTime: startTime, Data: id}
	} else {
		resp = internal.Response{StatusCode: http.StatusNotFound, RespStartTime: startTime, Data: "No joinable rooms available"}
	}

	resp.RespEndTime = time.Now().UnixMilli()
	resp.NetRespTime = resp.RespEndTime - startTime
	writeJSON(w, resp.StatusCode, resp)
}

// =============================================================================
// IMAGES
// =============================================================================

// CanvasHandler serves the current drawing as PNG, optionally rescaled with
// the w and h query params.
func (s *Server) CanvasHandler(w http.ResponseWriter, r *http.Request) {
	width, height, err := sizeParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	surf, err := s.hub.CanvasSnapshot(r.Context(), roomID(r), width, height)
	if err != nil {
		if errors.Is(err, game.ErrRoomNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := surf.EncodePNG(w); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("[CanvasHandler] png encode failed")
	}
}

var errBadSize = errors.New("w and h must be integers between 1 and 2048")

func sizeParams(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	if q.Get("w") == "" && q.Get("h") == "" {
		return 0, 0, nil
	}
	width, errW := strconv.Atoi(q.Get("w"))
	height, errH := strconv.Atoi(q.Get("h"))
	if errW != nil || errH != nil || width <= 0 || height <= 0 ||
		width > drawing.MaxDimension || height > drawing.MaxDimension {
		return 0, 0, errBadSize
	}
	return width, height, nil
}

// InviteHandler serves a QR code of the room's join URL.
func (s *Server) InviteHandler(w http.ResponseWriter, r *http.Request) {
	id := roomID(r)
	if !s.hub.Exists(id) {
		http.Error(w, game.ErrRoomNotFound.Error(), http.StatusNotFound)
		return
	}

	size := defaultQRSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > maxQRSize {
			http.Error(w, "size must be between 64 and 1024", http.StatusBadRequest)
			return
		}
		size = n
	}

	png, err := qrcode.Encode(s.joinURL(r, id), qrcode.Medium, size)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("[InviteHandler] qr generation failed")
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// joinURL is PUBLIC_URL/{id} when configured, otherwise derived from the
// request, respecting TLS and X-Forwarded-Proto.
func (s *Server) joinURL(r *http.Request, id string) string {
	if s.publicURL != "" {
		return strings.TrimRight(s.publicURL, "/") + "/" + id
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/" + id
}

// =============================================================================
// HEALTH
// =============================================================================

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := internal.HealthResponse{
		Status: "ok",
		Rooms:  s.hub.RoomCount(),
	}
	if s.db != nil {
		resp.Database = s.db.Health(r.Context())
		if resp.Database["status"] != "up" {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
