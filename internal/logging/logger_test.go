package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matthieukhl/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_LevelAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "storefront.log")

	logger, err := New(config.LogConfig{Level: "warn", JSON: true, File: path}, false)
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger.Warn("catalog fetch failed")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "catalog fetch failed")
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := New(config.LogConfig{Level: "error", File: path}, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

func TestForTerminalUI_NoFileIsNop(t *testing.T) {
	logger, err := ForTerminalUI(config.LogConfig{}, true)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
