package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scienceol/keep-awake/internal/config"
	"github.com/scienceol/keep-awake/internal/ui"
)

func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KEEP_AWAKE_CONFIG", "")
	t.Setenv("KEEP_AWAKE_RUNTIME_DIR", "")
	t.Setenv(config.RoleEnv, "")

	dir, err := os.MkdirTemp("", "ka")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, msgs bytes.Buffer
	ui.SetOutput(&msgs)
	t.Cleanup(func() { ui.SetOutput(os.Stderr) })

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&msgs)
	err := root.Execute()
	return out.String(), msgs.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "keep-awake v"+version+"\n", out)

	out, _, err = run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "keep-awake v"+version+"\n", out)
}

func TestInvalidDuration(t *testing.T) {
	isolate(t)
	out, msgs, err := run(t, "tomorrow")
	assert.ErrorContains(t, err, "invalid duration")
	assert.Contains(t, out+msgs, "Usage:")

	_, _, err = run(t, "400d")
	assert.ErrorContains(t, err, "too large")
}

func TestStopRequiresPID(t *testing.T) {
	isolate(t)
	_, _, err := run(t, "stop")
	assert.Error(t, err)

	_, _, err = run(t, "stop", "12", "abc")
	assert.ErrorContains(t, err, `invalid pid "abc"`)
}

func TestListWithoutWorkers(t *testing.T) {
	dir := isolate(t)
	out, _, err := run(t, "list", "--runtime-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "PID  USER  SESSION  REMAINING\n", out)
}
