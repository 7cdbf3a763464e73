package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger_InvalidLevel(t *testing.T) {
	_, err := SetupLogger(Options{Level: "verbose"})
	assert.Error(t, err)
}

func TestSetupLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	loggers, err := SetupLogger(Options{Level: "info", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	loggers.InfoLogger.Infow("advertisement created", "id", "42")
	loggers.InfoLogger.Debugw("dropped below level")
	loggers.ErrorLogger.Errorw("storage unavailable")
	loggers.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, `"msg":"advertisement created"`)
	assert.Contains(t, content, `"id":"42"`)
	assert.Contains(t, content, `"msg":"storage unavailable"`)
	assert.NotContains(t, content, "dropped below level")
}

func TestNewNop(t *testing.T) {
	loggers := NewNop()
	loggers.InfoLogger.Infow("ignored")
	loggers.Sync()
}
