package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/drawguess-server/internal/config"
	"github.com/scythe504/drawguess-server/internal/database"
	"github.com/scythe504/drawguess-server/internal/game"
	"github.com/scythe504/drawguess-server/internal/logger"
	"github.com/scythe504/drawguess-server/internal/server"
	"github.com/scythe504/drawguess-server/internal/utils"
)

func gracefulShutdown(hub *game.Hub, httpServer *http.Server, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("[gracefulShutdown] signal received, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Rooms first so players get a close frame before the listener goes.
	if err := hub.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("[gracefulShutdown] rooms did not close in time")
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("[gracefulShutdown] http server forced to shutdown")
	}

	done <- true
}

// wordSource picks the dictionary: Postgres when DATABASE_URL is set (seeded
// from WORDS_CSV on first run), else the CSV file, else the built-in list.
func wordSource(ctx context.Context, cfg config.Config) (game.WordSource, *database.DB, error) {
	if cfg.DatabaseURL == "" {
		if cfg.WordsCSV == "" {
			return utils.DefaultWords(), nil, nil
		}
		words, err := utils.NewCSVWords(cfg.WordsCSV)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Int("words", words.Len()).Str("file", cfg.WordsCSV).Msg("[wordSource] using csv words")
		return words, nil, nil
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	store := database.NewWordStore(db)
	n, err := store.Count(ctx)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	if n == 0 && cfg.WordsCSV != "" {
		words, err := utils.ReadCsvFile(cfg.WordsCSV)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		added, err := store.Import(ctx, words)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info().Int64("words", added).Msg("[wordSource] seeded dictionary")
	}
	return store, db, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", true)
		log.Fatal().Err(err).Msg("[main] invalid configuration")
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	cfg.LogSummary()

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	words, db, err := wordSource(startCtx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("[main] could not load words")
	}

	hub := game.NewHub(cfg.Game, words)

	var health server.HealthChecker
	if db != nil {
		defer db.Close()
		health = db
	}
	httpServer := server.NewServer(cfg, hub, health)

	done := make(chan bool, 1)
	go gracefulShutdown(hub, httpServer, done)

	log.Info().Str("addr", httpServer.Addr).Msg("[main] listening")
	err = httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("[main] http server error")
	}

	<-done
	log.Info().Msg("[main] graceful shutdown complete")
}
