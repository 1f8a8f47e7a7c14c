package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scienceol/keep-awake/internal/config"
)

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "pid", 12)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown pid=12")

	_, err = New(&buf, "chatty")
	assert.Error(t, err)
}

func TestForWorkerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.log")
	logger, closer, err := ForWorker(&config.Config{LogFile: path, LogLevel: "info"})
	require.NoError(t, err)
	logger.Info("serving")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=serving")
}

func TestForWorkerDiscard(t *testing.T) {
	logger, closer, err := ForWorker(&config.Config{LogLevel: "info"})
	require.NoError(t, err)
	logger.Info("nowhere")
	assert.NoError(t, closer.Close())
}
