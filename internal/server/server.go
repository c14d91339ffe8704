package server

import (
	"context"
	"net/http"
	"time"

	"github.com/scythe504/drawguess-server/internal/config"
	"github.com/scythe504/drawguess-server/internal/game"
)

// HealthChecker reports the status of a backing service for /health.
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

type Server struct {
	allowedOrigin string
	publicURL     string

	hub *game.Hub
	db  HealthChecker
}

// NewServer wires the routes for hub. db may be nil when the server runs
// without a database.
func NewServer(cfg config.Config, hub *game.Hub, db HealthChecker) *http.Server {
	s := &Server{
		allowedOrigin: cfg.AllowedOrigin,
		publicURL:     cfg.PublicURL,
		hub:           hub,
		db:            db,
	}

	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
