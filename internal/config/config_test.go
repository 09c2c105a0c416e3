package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOKEN_EXPIRY", "")
	t.Setenv("IMAGE_MAX_WIDTH", "")
	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 1000, cfg.ImageMaxWidth)
	assert.Equal(t, int64(10<<20), cfg.ImageMaxBytes)
	assert.Equal(t, 2*time.Hour, cfg.LastPlayedOffset)
	assert.Equal(t, "puzzles", cfg.DynamoTables.Puzzles)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TOKEN_EXPIRY", "30m")
	t.Setenv("IMAGE_MAX_WIDTH", "500")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.TokenExpiry)
	assert.Equal(t, 500, cfg.ImageMaxWidth)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("IMAGE_MAX_WIDTH", "wide")
	t.Setenv("TOKEN_EXPIRY", "soon")
	cfg := Load()

	assert.Equal(t, 1000, cfg.ImageMaxWidth)
	assert.Equal(t, time.Hour, cfg.TokenExpiry)
}

func TestValidate_MissingSecrets(t *testing.T) {
	cfg := &Config{ImageMaxWidth: 1, ImageMaxBytes: 1}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "CIPHER_KEY")
	assert.ErrorContains(t, err, "TOKEN_SECRET")

	cfg.CipherKey = "k"
	cfg.TokenSecret = "s"
	assert.NoError(t, cfg.Validate())
}

func TestLogValue_RedactsSecrets(t *testing.T) {
	cfg := &Config{CipherKey: "super-secret-key", TokenSecret: "token-secret"}
	out := cfg.LogValue().String()
	assert.NotContains(t, out, "super-secret-key")
	assert.NotContains(t, out, "token-secret")
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "DEBUG"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warn"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "nope"}).SlogLevel())
}
