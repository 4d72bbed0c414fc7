package config

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".grow", "adventures"), c.Root)
	assert.Equal(t, StoreFile, c.Store)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.Equal(t, slog.LevelWarn, c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Zero(t, c.Seed)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("GROW_ROOT", "/srv/grow")
	t.Setenv("GROW_STORE", "redis")
	t.Setenv("GROW_REDIS_ADDR", "cache:6380")
	t.Setenv("GROW_ADVENTURE", "The Cave")
	t.Setenv("GROW_LOG_LEVEL", "DEBUG")
	t.Setenv("GROW_LOG_FORMAT", "json")
	t.Setenv("GROW_SEED", "42")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Root:      "/srv/grow",
		Store:     StoreRedis,
		RedisAddr: "cache:6380",
		Adventure: "The Cave",
		LogLevel:  slog.LevelDebug,
		LogFormat: "json",
		Seed:      42,
	}, c)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"store", "GROW_STORE", "s3"},
		{"format", "GROW_LOG_FORMAT", "xml"},
		{"level", "GROW_LOG_LEVEL", "loud"},
		{"seed", "GROW_SEED", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GROW_ROOT", t.TempDir())
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
