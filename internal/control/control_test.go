//go:build !windows

package control

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scienceol/keep-awake/internal/channel"
	"github.com/scienceol/keep-awake/internal/duration"
	"github.com/scienceol/keep-awake/internal/tracker"
)

const testPID = 424242

type serveResult struct {
	reason Reason
	err    error
}

type denyAll struct{}

func (denyAll) Authorize(*net.UnixConn) error { return ErrAccessDenied }

// socketDir returns a short directory; unix socket paths are length limited.
func socketDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ka")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func startServer(t *testing.T, ctx context.Context, budget time.Duration, access AccessControl) (*Client, <-chan serveResult) {
	t.Helper()
	dir := socketDir(t)
	srv, err := Listen(ServerConfig{
		Path:    channel.Path(dir, testPID),
		Tracker: tracker.New(budget),
		Access:  access,
	})
	require.NoError(t, err)

	done := make(chan serveResult, 1)
	go func() {
		reason, err := srv.Serve(ctx)
		done <- serveResult{reason, err}
	}()
	t.Cleanup(func() { srv.Close() })

	return NewClient(ClientConfig{Dir: dir, ReplyTimeout: time.Second}), done
}

func waitResult(t *testing.T, done <-chan serveResult, within time.Duration) serveResult {
	t.Helper()
	select {
	case r := <-done:
		return r
	case <-time.After(within):
		t.Fatalf("server did not return within %s", within)
		return serveResult{}
	}
}

func TestQueryThenExpire(t *testing.T) {
	client, done := startServer(t, context.Background(), 2*time.Second, AllowAll{})

	reply, err := client.Query(context.Background(), testPID)
	require.NoError(t, err)
	remaining, err := duration.Parse(reply)
	require.NoError(t, err)
	assert.Greater(t, remaining, time.Duration(0))
	assert.LessOrEqual(t, remaining, 2*time.Second)

	r := waitResult(t, done, 3*time.Second)
	require.NoError(t, r.err)
	assert.Equal(t, ReasonExpired, r.reason)

	_, err = client.Query(context.Background(), testPID)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestStopInfinite(t *testing.T) {
	client, done := startServer(t, context.Background(), duration.Infinite, AllowAll{})

	reply, err := client.Query(context.Background(), testPID)
	require.NoError(t, err)
	assert.Equal(t, tracker.InfiniteDisplay, reply)

	require.NoError(t, client.Stop(context.Background(), testPID))

	r := waitResult(t, done, time.Second)
	require.NoError(t, r.err)
	assert.Equal(t, ReasonStopRequested, r.reason)

	_, err = client.Query(context.Background(), testPID)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.ErrorIs(t, client.Stop(context.Background(), testPID), ErrUnreachable)
}

func TestInvalidRequestsAreDropped(t *testing.T) {
	client, done := startServer(t, context.Background(), duration.Infinite, AllowAll{})
	path := channel.Path(client.dir, testPID)

	for _, payload := range []string{"halt", "in", ""} {
		conn, err := net.Dial("unix", path)
		require.NoError(t, err)
		_, err = io.WriteString(conn, payload)
		require.NoError(t, err)
		if uc, ok := conn.(*net.UnixConn); ok {
			_ = uc.CloseWrite()
		}
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		reply, _ := io.ReadAll(conn)
		assert.Empty(t, reply, "payload %q", payload)
		conn.Close()
	}

	reply, err := client.Query(context.Background(), testPID)
	require.NoError(t, err)
	assert.Equal(t, tracker.InfiniteDisplay, reply)

	select {
	case r := <-done:
		t.Fatalf("server returned early: %v %v", r.reason, r.err)
	default:
	}
}

func TestRejectedPeer(t *testing.T) {
	client, done := startServer(t, context.Background(), duration.Infinite, denyAll{})

	_, err := client.Query(context.Background(), testPID)
	assert.ErrorIs(t, err, ErrInaccessible)

	err = client.Stop(context.Background(), testPID)
	assert.ErrorIs(t, err, ErrInaccessible)

	select {
	case r := <-done:
		t.Fatalf("server stopped for a rejected peer: %v", r.reason)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestServeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, done := startServer(t, ctx, duration.Infinite, AllowAll{})
	cancel()

	r := waitResult(t, done, time.Second)
	require.NoError(t, r.err)
	assert.Equal(t, ReasonCanceled, r.reason)
}

func TestConcurrentQueriesAreSerialized(t *testing.T) {
	client, _ := startServer(t, context.Background(), time.Hour, AllowAll{})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Query(context.Background(), testPID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestUnknownPID(t *testing.T) {
	client := NewClient(ClientConfig{Dir: socketDir(t)})

	_, err := client.Query(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrUnreachable), "got %v", err)
	assert.ErrorIs(t, client.Stop(context.Background(), 1), ErrUnreachable)
}

func TestListenFailsWithoutDirectory(t *testing.T) {
	_, err := Listen(ServerConfig{
		Path:    channel.Path("/nonexistent/keep-awake", testPID),
		Tracker: tracker.New(time.Second),
	})
	assert.ErrorContains(t, err, "create control channel")
}
