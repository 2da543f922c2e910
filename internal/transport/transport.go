// Package transport opens the raw sockets behind pooled connections.
//
// A Connector is the strategy for one transport medium. It is selected by
// the destination's kind tag, so the pooling layers stay unaware of whether
// bytes travel over TCP or a Unix domain socket.
package transport

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mir00r/conn-pool/internal/domain"
	pkgerrors "github.com/mir00r/conn-pool/internal/errors"
)

// Connector defines the transport-specific dialing operations
type Connector interface {
	// Network returns the network name passed to the dialer (e.g. "tcp", "unix")
	Network() string

	// Address returns the dial address for a destination
	Address(dest domain.Destination) string
}

// ForDestination selects the connector matching the destination's kind
func ForDestination(dest domain.Destination) Connector {
	if dest.Kind == domain.KindPath {
		return UnixConnector{}
	}
	return TCPConnector{}
}

// DialConfig carries the per-dial configuration
type DialConfig struct {
	// Timeout bounds the connect; zero means no deadline is set and the
	// platform default governs
	Timeout time.Duration
	// SocketOptions are applied to the socket before connecting
	SocketOptions []domain.SocketOption
}

// Open establishes a connected socket to the destination. Socket options
// are applied before connect; a configured timeout bounds the dial. The
// returned errors distinguish timeouts (TIMEOUT_EXCEEDED) from other
// connect failures such as a missing socket path, a refused connection or
// a permission error (CONNECT_FAILED). No socket handle is leaked on any
// failure path: the dialer closes the socket when control or connect fails.
func Open(ctx context.Context, dest domain.Destination, cfg DialConfig) (net.Conn, error) {
	connector := ForDestination(dest)

	dialer := net.Dialer{
		Timeout: cfg.Timeout,
	}
	if len(cfg.SocketOptions) > 0 {
		dialer.Control = controlFunc(cfg.SocketOptions)
	}

	conn, err := dialer.DialContext(ctx, connector.Network(), connector.Address(dest))
	if err != nil {
		return nil, classifyDialError(dest, err)
	}
	return conn, nil
}

// controlFunc builds a dialer control hook applying raw socket options
// before the socket connects
func controlFunc(opts []domain.SocketOption) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var optErr error
		err := c.Control(func(fd uintptr) {
			for _, opt := range opts {
				if optErr = unix.SetsockoptInt(int(fd), opt.Level, opt.Opt, opt.Value); optErr != nil {
					return
				}
			}
		})
		if err != nil {
			return err
		}
		return optErr
	}
}

// classifyDialError maps a dial error into the pool error taxonomy
func classifyDialError(dest domain.Destination, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return pkgerrors.NewTimeoutError(dest.String(), err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.NewTimeoutError(dest.String(), err)
	}
	return pkgerrors.NewConnectFailedError(dest.String(), err)
}
