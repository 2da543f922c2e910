package pool

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/mir00r/conn-pool/internal/domain"
	pkgerrors "github.com/mir00r/conn-pool/internal/errors"
	"github.com/mir00r/conn-pool/internal/transport"
)

// Connection is a single reusable transport endpoint owned by a pool.
// The underlying socket is created lazily by Open, not at construction.
type Connection struct {
	dest           domain.Destination
	connectTimeout time.Duration // zero: platform default governs
	readTimeout    time.Duration // zero: no read deadline
	socketOptions  []domain.SocketOption
	tlsConfig      *tls.Config // nil for plaintext transports

	// hostHeader is the Host header default for requests without one.
	// Path destinations carry the synthetic "localhost" since a socket
	// path has no network host.
	hostHeader string

	conn       net.Conn
	reader     *bufio.Reader
	createdAt  time.Time
	lastUsed   time.Time
	usageCount int64
}

// newConnection constructs an unopened connection bound to a destination
func newConnection(dest domain.Destination, cfg Config, tlsConfig *tls.Config) *Connection {
	return &Connection{
		dest:           dest,
		connectTimeout: cfg.ConnectTimeout,
		readTimeout:    cfg.ReadTimeout,
		socketOptions:  cfg.SocketOptions,
		tlsConfig:      tlsConfig,
		hostHeader:     dest.Host,
		createdAt:      time.Now(),
		lastUsed:       time.Now(),
	}
}

// Destination returns the endpoint this connection is bound to
func (c *Connection) Destination() domain.Destination {
	return c.dest
}

// Open establishes the underlying socket if it is not yet connected.
// Socket options and the connect timeout are applied by the transport
// layer; a TLS handshake follows for TLS-configured connections.
func (c *Connection) Open(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	rawConn, err := transport.Open(ctx, c.dest, transport.DialConfig{
		Timeout:       c.connectTimeout,
		SocketOptions: c.socketOptions,
	})
	if err != nil {
		return err
	}

	conn := rawConn
	if c.tlsConfig != nil {
		tlsConn := tls.Client(rawConn, c.tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			rawConn.Close()
			return pkgerrors.NewConnectFailedError(c.dest.String(), err)
		}
		conn = tlsConn
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// RoundTrip performs one HTTP exchange over the connection, opening it
// first when needed. Request and response framing is delegated to
// net/http; this layer only owns the socket.
func (c *Connection) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := c.Open(req.Context()); err != nil {
		return nil, err
	}

	if req.Host == "" && req.URL.Host == "" {
		req.Host = c.hostHeader
	}

	deadline := time.Time{}
	if c.readTimeout > 0 {
		deadline = time.Now().Add(c.readTimeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, c.classifyIOError(err)
	}

	if err := req.Write(c.conn); err != nil {
		return nil, c.classifyIOError(err)
	}

	resp, err := http.ReadResponse(c.reader, req)
	if err != nil {
		return nil, c.classifyIOError(err)
	}

	c.lastUsed = time.Now()
	c.usageCount++
	return resp, nil
}

// IsStale reports whether the connection has outlived the pool's idle or
// lifetime bounds and must not be reused. A zero bound disables the check.
func (c *Connection) IsStale(maxIdleTime, maxLifetime time.Duration) bool {
	now := time.Now()
	if maxLifetime > 0 && now.Sub(c.createdAt) > maxLifetime {
		return true
	}
	if maxIdleTime > 0 && now.Sub(c.lastUsed) > maxIdleTime {
		return true
	}
	return false
}

// Close tears down the underlying socket, if any
func (c *Connection) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// classifyIOError maps a socket I/O error into the pool error taxonomy
func (c *Connection) classifyIOError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return pkgerrors.NewTimeoutError(c.dest.String(), err)
	}
	return pkgerrors.NewErrorWithCause(
		pkgerrors.ErrCodeConnectFailed,
		"pool",
		"Request over "+c.dest.String()+" failed",
		err,
	)
}
