package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/mir00r/conn-pool/internal/domain"
	pkgerrors "github.com/mir00r/conn-pool/internal/errors"
)

// timeoutError fakes a net.Error whose Timeout() is true
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func startUnixListener(t *testing.T) (string, net.Listener) {
	t.Helper()
	sock := t.TempDir() + "/listener.sock"
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return sock, ln
}

func TestForDestination(t *testing.T) {
	t.Parallel()

	assert.IsType(t, UnixConnector{}, ForDestination(domain.PathDestination("/tmp/x.sock")))
	assert.IsType(t, TCPConnector{}, ForDestination(domain.NetworkDestination("http", "example.com", 80)))
}

func TestOpenConnectsToListeningUnixSocket(t *testing.T) {
	t.Parallel()

	sock, ln := startUnixListener(t)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	conn, err := Open(context.Background(), domain.PathDestination(sock), DialConfig{
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "unix", conn.RemoteAddr().Network())
	conn.Close()
}

func TestOpenAppliesSocketOptions(t *testing.T) {
	t.Parallel()

	sock, ln := startUnixListener(t)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	conn, err := Open(context.Background(), domain.PathDestination(sock), DialConfig{
		Timeout: 2 * time.Second,
		SocketOptions: []domain.SocketOption{
			{Level: unix.SOL_SOCKET, Opt: unix.SO_KEEPALIVE, Value: 1},
		},
	})
	require.NoError(t, err)
	conn.Close()
}

func TestOpenFailsOnMissingSocketPath(t *testing.T) {
	t.Parallel()

	dest := domain.PathDestination(t.TempDir() + "/missing.sock")
	_, err := Open(context.Background(), dest, DialConfig{Timeout: 2 * time.Second})

	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrCodeConnectFailed, pkgerrors.GetErrorCode(err))
}

func TestOpenFailsWhenNobodyListens(t *testing.T) {
	t.Parallel()

	sock, ln := startUnixListener(t)
	ln.Close()

	_, err := Open(context.Background(), domain.PathDestination(sock), DialConfig{Timeout: 2 * time.Second})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrCodeConnectFailed, pkgerrors.GetErrorCode(err))
}

func TestClassifyDialError(t *testing.T) {
	t.Parallel()

	dest := domain.PathDestination("/tmp/x.sock")

	timeout := classifyDialError(dest, &net.OpError{Op: "dial", Err: timeoutError{}})
	assert.Equal(t, pkgerrors.ErrCodeTimeoutExceeded, pkgerrors.GetErrorCode(timeout))

	deadline := classifyDialError(dest, context.DeadlineExceeded)
	assert.Equal(t, pkgerrors.ErrCodeTimeoutExceeded, pkgerrors.GetErrorCode(deadline))

	refused := classifyDialError(dest, &net.OpError{Op: "dial", Err: unix.ECONNREFUSED})
	assert.Equal(t, pkgerrors.ErrCodeConnectFailed, pkgerrors.GetErrorCode(refused))
}
