package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	assert.Error(t, Setup(cfg))
}

func TestSetup_FileOutputJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.log")
	require.NoError(t, Setup(LogConfig{Level: "debug", Format: "json", Output: path}))
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	l := WithComponent("store")
	l.Info().Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"store"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}
