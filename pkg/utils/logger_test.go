package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	logger, err := NewLogger(LoggerConfig{Level: "info", OutputPath: path, Format: "json", Service: "opsflow"})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("visible")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"visible"`)
	assert.Contains(t, string(content), `"service":"opsflow"`)
	assert.NotContains(t, string(content), "hidden")
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{Level: "loud", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
