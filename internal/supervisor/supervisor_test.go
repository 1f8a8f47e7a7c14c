//go:build unix

package supervisor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const helperEnv = "KEEP_AWAKE_SUPERVISOR_HELPER"

// TestMain turns the test binary into a fake worker when re-executed.
func TestMain(m *testing.M) {
	switch os.Getenv(helperEnv) {
	case "":
		os.Exit(m.Run())
	case "detach":
		fmt.Println("ready")
		null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
		if err != nil {
			os.Exit(10)
		}
		_ = unix.Dup2(int(null.Fd()), 1)
		_ = unix.Dup2(int(null.Fd()), 2)
		time.Sleep(2 * time.Second)
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "cannot create control channel")
		os.Exit(3)
	case "quick":
		fmt.Println("done already")
		os.Exit(0)
	}
}

func launchHelper(t *testing.T, mode string) (int, string, time.Duration) {
	t.Helper()
	var out bytes.Buffer
	start := time.Now()
	code, err := Launch(context.Background(), Config{
		Executable: os.Args[0],
		Env:        append(os.Environ(), helperEnv+"="+mode),
		Output:     &out,
		ExitGrace:  500 * time.Millisecond,
	})
	require.NoError(t, err)
	return code, out.String(), time.Since(start)
}

func TestLaunchReturnsWhenWorkerDetaches(t *testing.T) {
	code, out, elapsed := launchHelper(t, "detach")
	assert.Equal(t, 0, code)
	assert.Equal(t, "ready\n", out)
	assert.Less(t, elapsed, 1500*time.Millisecond)
}

func TestLaunchRelaysStartupFailure(t *testing.T) {
	code, out, _ := launchHelper(t, "fail")
	assert.Equal(t, 3, code)
	assert.Contains(t, out, "cannot create control channel")
}

func TestLaunchWorkerExitsCleanly(t *testing.T) {
	code, out, _ := launchHelper(t, "quick")
	assert.Equal(t, 0, code)
	assert.Equal(t, "done already\n", out)
}

func TestLaunchMissingExecutable(t *testing.T) {
	code, err := Launch(context.Background(), Config{Executable: "/nonexistent/keep-awake"})
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}
