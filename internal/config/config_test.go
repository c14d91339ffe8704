package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 3, cfg.Game.Rounds)
	assert.Equal(t, 60, cfg.Game.DrawTime)
	assert.Equal(t, 15*time.Second, cfg.Game.ChooseWordTime)
	assert.Equal(t, 8, cfg.Game.MaxPlayers)
	assert.Equal(t, "*", cfg.Game.AllowedOrigin)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DEFAULT_ROUNDS", "5")
	t.Setenv("CHOOSE_WORD_TIME", "20")
	t.Setenv("REVEAL_TIME", "3s")
	t.Setenv("MESSAGE_RATE", "12.5")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("ALLOWED_ORIGIN", "https://draw.example")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 5, cfg.Game.Rounds)
	assert.Equal(t, 20*time.Second, cfg.Game.ChooseWordTime)
	assert.Equal(t, 3*time.Second, cfg.Game.RevealTime)
	assert.InDelta(t, 12.5, cfg.Game.MessageRate, 1e-9)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, "https://draw.example", cfg.Game.AllowedOrigin)
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DEFAULT_DRAW_TIME=90\n"), 0o600))
	t.Setenv("DEFAULT_DRAW_TIME", "")
	require.NoError(t, os.Unsetenv("DEFAULT_DRAW_TIME"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Game.DrawTime)
}

func TestLoadRejectsBadValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("PORT", "eighty")
	_, err := Load(missing)
	assert.ErrorContains(t, err, "PORT")

	t.Setenv("PORT", "8080")
	t.Setenv("DEFAULT_ROUNDS", "1")
	_, err = Load(missing)
	assert.ErrorContains(t, err, "DEFAULT_ROUNDS")
}
