package pool

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/mir00r/conn-pool/internal/errors"
	"github.com/mir00r/conn-pool/pkg/logger"
)

// startUnixServer runs an HTTP server on a fresh Unix socket and returns
// the socket path
func startUnixServer(t *testing.T, handlerFn http.HandlerFunc) string {
	t.Helper()

	sock := t.TempDir() + "/server.sock"
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)

	srv := &http.Server{Handler: handlerFn}
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Close() })

	return sock
}

func testPoolConfig() Config {
	return Config{
		MaxIdle:        4,
		ConnectTimeout: 2 * time.Second,
		ReadTimeout:    2 * time.Second,
	}
}

func TestConnectionsCreatedCounterConcurrent(t *testing.T) {
	t.Parallel()

	p := NewUnixPool("/tmp/unused.sock", testPoolConfig(), logger.NewNop())

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := p.NewConnection(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Exactly one increment per factory call, no lost updates
	assert.Equal(t, int64(goroutines), p.ConnectionsCreated())
}

func TestPoolServesRequestsOverUnixSocket(t *testing.T) {
	t.Parallel()

	sock := startUnixServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "pong %s", r.URL.Path)
	})

	p := NewUnixPool(sock, testPoolConfig(), logger.NewNop())
	defer p.Close()

	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, "http://localhost/ping", nil)
		require.NoError(t, err)

		resp, err := p.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// All three requests rode the same reused connection
	assert.Equal(t, int64(1), p.ConnectionsCreated())
	assert.Equal(t, 1, p.IdleConnections())
}

func TestPoolConnectFailureOnMissingSocket(t *testing.T) {
	t.Parallel()

	p := NewUnixPool(t.TempDir()+"/nobody-listening.sock", testPoolConfig(), logger.NewNop())
	defer p.Close()

	req, err := http.NewRequest(http.MethodGet, "http://localhost/", nil)
	require.NoError(t, err)

	_, err = p.Do(req)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrCodeConnectFailed, pkgerrors.GetErrorCode(err))

	// The factory ran once before the dial failed
	assert.Equal(t, int64(1), p.ConnectionsCreated())
	assert.Equal(t, 0, p.IdleConnections())
}

func TestPoolDiscardsStaleIdleConnections(t *testing.T) {
	t.Parallel()

	sock := startUnixServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cfg := testPoolConfig()
	cfg.MaxIdleTime = time.Nanosecond
	p := NewUnixPool(sock, cfg, logger.NewNop())
	defer p.Close()

	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodGet, "http://localhost/", nil)
		require.NoError(t, err)
		resp, err := p.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		time.Sleep(10 * time.Millisecond)
	}

	// The idle connection aged out between requests, so each request
	// got a fresh one
	assert.Equal(t, int64(2), p.ConnectionsCreated())
}

func TestClosedPoolRejectsRequests(t *testing.T) {
	t.Parallel()

	p := NewUnixPool("/tmp/unused.sock", testPoolConfig(), logger.NewNop())
	require.NoError(t, p.Close())

	req, err := http.NewRequest(http.MethodGet, "http://localhost/", nil)
	require.NoError(t, err)

	_, err = p.Do(req)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrCodePoolClosed, pkgerrors.GetErrorCode(err))

	_, err = p.NewConnection(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrCodePoolClosed, pkgerrors.GetErrorCode(err))
}

func TestPoolStats(t *testing.T) {
	t.Parallel()

	sock := startUnixServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	p := NewUnixPool(sock, testPoolConfig(), logger.NewNop())
	defer p.Close()

	req, err := http.NewRequest(http.MethodGet, "http://localhost/", nil)
	require.NoError(t, err)
	resp, err := p.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	stats := p.Stats()
	assert.Equal(t, "http+unix://"+sock, stats.Destination)
	assert.Equal(t, 1, stats.IdleConnections)
	assert.Equal(t, int64(1), stats.ConnectionsCreated)
}
