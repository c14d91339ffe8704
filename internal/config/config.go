package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/drawguess-server/internal"
	"github.com/scythe504/drawguess-server/internal/game"
)

type Config struct {
	Port          int
	AllowedOrigin string
	PublicURL     string

	Game game.Settings

	WordsCSV    string
	DatabaseURL string

	LogLevel  string
	LogPretty bool
}

// Load reads .env when present and then the environment. Unset variables
// keep their defaults; malformed ones are an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Config{
		Port:          8080,
		AllowedOrigin: "*",
		Game:          game.DefaultSettings(),
		LogLevel:      "info",
		LogPretty:     true,
	}
	p := parser{}

	p.int("PORT", &cfg.Port)
	p.str("ALLOWED_ORIGIN", &cfg.AllowedOrigin)
	p.str("PUBLIC_URL", &cfg.PublicURL)

	p.int("DEFAULT_ROUNDS", &cfg.Game.Rounds)
	p.int("DEFAULT_DRAW_TIME", &cfg.Game.DrawTime)
	p.duration("CHOOSE_WORD_TIME", &cfg.Game.ChooseWordTime)
	p.duration("REVEAL_TIME", &cfg.Game.RevealTime)
	p.int("MAX_PLAYERS", &cfg.Game.MaxPlayers)
	p.duration("EMPTY_ROOM_TTL", &cfg.Game.EmptyRoomTTL)
	p.int("CANVAS_WIDTH", &cfg.Game.CanvasWidth)
	p.int("CANVAS_HEIGHT", &cfg.Game.CanvasHeight)
	p.int("FILL_WORKERS", &cfg.Game.FillWorkers)
	p.float("MESSAGE_RATE", &cfg.Game.MessageRate)
	p.int("MESSAGE_BURST", &cfg.Game.MessageBurst)

	p.str("WORDS_CSV", &cfg.WordsCSV)
	p.str("DATABASE_URL", &cfg.DatabaseURL)
	p.str("LOG_LEVEL", &cfg.LogLevel)
	p.bool("LOG_PRETTY", &cfg.LogPretty)

	if p.err != nil {
		return Config{}, p.err
	}
	cfg.Game.AllowedOrigin = cfg.AllowedOrigin
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	g := c.Game
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("PORT out of range: %d", c.Port)
	case g.Rounds < internal.MinRounds || g.Rounds > internal.MaxRounds:
		return fmt.Errorf("DEFAULT_ROUNDS must be between %d and %d, got %d", internal.MinRounds, internal.MaxRounds, g.Rounds)
	case g.DrawTime < internal.MinDrawTime || g.DrawTime > internal.MaxDrawTime:
		return fmt.Errorf("DEFAULT_DRAW_TIME must be between %d and %d, got %d", internal.MinDrawTime, internal.MaxDrawTime, g.DrawTime)
	case g.MaxPlayers < internal.MinPlayersToStart:
		return fmt.Errorf("MAX_PLAYERS must be at least %d, got %d", internal.MinPlayersToStart, g.MaxPlayers)
	case g.ChooseWordTime <= 0 || g.RevealTime <= 0:
		return fmt.Errorf("CHOOSE_WORD_TIME and REVEAL_TIME must be positive")
	case g.CanvasWidth <= 0 || g.CanvasHeight <= 0:
		return fmt.Errorf("canvas size must be positive, got %dx%d", g.CanvasWidth, g.CanvasHeight)
	case g.MessageRate <= 0 || g.MessageBurst <= 0:
		return fmt.Errorf("MESSAGE_RATE and MESSAGE_BURST must be positive")
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// parser keeps the first error so Load reads as a flat list.
type parser struct {
	err error
}

func (p *parser) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *parser) int(key string, dst *int) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = n
}

func (p *parser) float(key string, dst *float64) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = f
}

func (p *parser) bool(key string, dst *bool) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = b
}

// duration accepts Go durations ("15s") and bare seconds ("15").
func (p *parser) duration(key string, dst *time.Duration) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = d
}

// LogSummary writes the effective settings at startup.
func (c Config) LogSummary() {
	log.Info().
		Int("port", c.Port).
		Str("allowed_origin", c.AllowedOrigin).
		Int("rounds", c.Game.Rounds).
		Int("draw_time", c.Game.DrawTime).
		Int("max_players", c.Game.MaxPlayers).
		Int("fill_workers", c.Game.FillWorkers).
		Bool("database", c.DatabaseURL != "").
		Str("words_csv", c.WordsCSV).
		Msg("[config] loaded")
}
