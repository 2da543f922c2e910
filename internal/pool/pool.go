// Package pool implements reusable connection pools, one per destination.
//
// A pool owns a bounded container of idle connections and a creation
// counter. Connections are created lazily through the pool's factory and
// handed back after each request; stale or errored connections are
// discarded instead of returned. Pools are safe for concurrent use: the
// counter and the idle container are only touched under the pool's
// bookkeeping discipline.
package pool

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mir00r/conn-pool/internal/domain"
	pkgerrors "github.com/mir00r/conn-pool/internal/errors"
	"github.com/mir00r/conn-pool/internal/metrics"
	"github.com/mir00r/conn-pool/pkg/logger"
)

// Config holds the per-pool configuration
type Config struct {
	// MaxIdle bounds the idle connection container
	MaxIdle int
	// ConnectTimeout bounds socket connects; zero means the platform
	// default governs
	ConnectTimeout time.Duration
	// ReadTimeout bounds response reads; zero disables the deadline
	ReadTimeout time.Duration
	// MaxIdleTime discards idle connections unused for this long; zero disables
	MaxIdleTime time.Duration
	// MaxConnLifetime discards connections older than this; zero disables
	MaxConnLifetime time.Duration
	// SocketOptions are applied to every socket before connect
	SocketOptions []domain.SocketOption
	// DialLimiter throttles connection creation when non-nil
	DialLimiter *rate.Limiter
}

// Stats is a point-in-time snapshot of a pool's state
type Stats struct {
	Destination        string `json:"destination"`
	IdleConnections    int    `json:"idle_connections"`
	ConnectionsCreated int64  `json:"connections_created"`
}

// ConnectionPool manages a bounded set of reusable connections to one
// destination
type ConnectionPool struct {
	typeName  string
	dest      domain.Destination
	cfg       Config
	tlsConfig *tls.Config

	idle chan *Connection

	mu                 sync.Mutex
	connectionsCreated int64
	closed             bool

	logger *logger.Logger
}

// newPool constructs a pool around a destination. maxIdle falls back to 1
// so the idle container is never unbuffered.
func newPool(typeName string, dest domain.Destination, cfg Config, tlsConfig *tls.Config, log *logger.Logger) *ConnectionPool {
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 1
	}
	return &ConnectionPool{
		typeName:  typeName,
		dest:      dest,
		cfg:       cfg,
		tlsConfig: tlsConfig,
		idle:      make(chan *Connection, maxIdle),
		logger:    log.PoolLogger(dest.String()),
	}
}

// NewHTTPPool creates a pool of plaintext connections to host:port
func NewHTTPPool(host string, port int, cfg Config, log *logger.Logger) *ConnectionPool {
	dest := domain.NetworkDestination(domain.SchemeHTTP, host, port)
	return newPool("HTTPConnectionPool", dest, cfg, nil, log)
}

// NewHTTPSPool creates a pool of TLS connections to host:port. Certificate
// policy is the stock Go default; only the server name is pinned here.
func NewHTTPSPool(host string, port int, cfg Config, log *logger.Logger) *ConnectionPool {
	dest := domain.NetworkDestination(domain.SchemeHTTPS, host, port)
	return newPool("HTTPSConnectionPool", dest, cfg, &tls.Config{ServerName: host}, log)
}

// Destination returns the destination the pool serves
func (p *ConnectionPool) Destination() domain.Destination {
	return p.dest
}

// ConnectionsCreated returns the monotonically increasing creation counter
func (p *ConnectionPool) ConnectionsCreated() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectionsCreated
}

// IdleConnections returns the current idle connection count
func (p *ConnectionPool) IdleConnections() int {
	return len(p.idle)
}

// Stats returns a snapshot of the pool's state
func (p *ConnectionPool) Stats() Stats {
	p.mu.Lock()
	created := p.connectionsCreated
	p.mu.Unlock()
	return Stats{
		Destination:        p.dest.String(),
		IdleConnections:    len(p.idle),
		ConnectionsCreated: created,
	}
}

// String renders the pool for diagnostics. Unix pools render exactly as
// "<TypeName>(socket_path=<path>)"; logging consumers depend on the format.
func (p *ConnectionPool) String() string {
	if p.dest.Kind == domain.KindPath {
		return fmt.Sprintf("%s(socket_path=%s)", p.typeName, p.dest.SocketPath)
	}
	return fmt.Sprintf("%s(host=%s, port=%d)", p.typeName, p.dest.Host, p.dest.Port)
}

// NewConnection is the pool's connection factory. It increments the
// creation counter under the pool lock, emits one trace event carrying the
// counter and the destination, and returns an unopened connection bound to
// the pool's destination and timeouts. The socket itself is dialed lazily
// on first use.
func (p *ConnectionPool) NewConnection(ctx context.Context) (*Connection, error) {
	if p.cfg.DialLimiter != nil {
		if err := p.cfg.DialLimiter.Wait(ctx); err != nil {
			return nil, pkgerrors.NewPoolExhaustedError(p.dest.String(), err)
		}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, pkgerrors.NewPoolClosedError(p.dest.String())
	}
	p.connectionsCreated++
	created := p.connectionsCreated
	p.mu.Unlock()

	p.logger.WithField("connections_created", created).
		Debugf("Starting new %s connection (%d): %s", p.dest.Scheme, created, p.dest)
	metrics.ConnectionCreated(p.dest.Scheme)

	return newConnection(p.dest, p.cfg, p.tlsConfig), nil
}

// acquire hands out an idle connection, discarding stale ones, and falls
// back to the factory when the idle container is empty
func (p *ConnectionPool) acquire(ctx context.Context) (*Connection, error) {
	for {
		select {
		case conn := <-p.idle:
			if conn.IsStale(p.cfg.MaxIdleTime, p.cfg.MaxConnLifetime) {
				conn.Close()
				metrics.ConnectionDiscarded(p.dest.Scheme)
				continue
			}
			metrics.ConnectionReused(p.dest.Scheme)
			return conn, nil
		default:
			return p.NewConnection(ctx)
		}
	}
}

// release returns a connection to the idle container, closing it when the
// pool is closed or the container is full
func (p *ConnectionPool) release(conn *Connection) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		conn.Close()
		metrics.ConnectionDiscarded(p.dest.Scheme)
		return
	}

	select {
	case p.idle <- conn:
	default:
		conn.Close()
		metrics.ConnectionDiscarded(p.dest.Scheme)
	}
}

// Do performs one HTTP request over a pooled connection. The response body
// is fully read before the connection is released, so the returned
// response is safe to use after the connection has gone back to the pool.
// Failures are never retried here; the errored connection is closed and
// the classified error propagates to the caller.
func (p *ConnectionPool) Do(req *http.Request) (*http.Response, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, pkgerrors.NewPoolClosedError(p.dest.String())
	}
	p.mu.Unlock()

	conn, err := p.acquire(req.Context())
	if err != nil {
		metrics.RequestFailed(p.dest.Scheme)
		return nil, err
	}

	resp, err := conn.RoundTrip(req)
	if err != nil {
		conn.Close()
		metrics.ConnectionDiscarded(p.dest.Scheme)
		metrics.RequestFailed(p.dest.Scheme)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		conn.Close()
		metrics.ConnectionDiscarded(p.dest.Scheme)
		metrics.RequestFailed(p.dest.Scheme)
		return nil, pkgerrors.NewErrorWithCause(
			pkgerrors.ErrCodeInternalError,
			"pool",
			"Failed to read response body from "+p.dest.String(),
			err,
		)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if resp.Close {
		conn.Close()
		metrics.ConnectionDiscarded(p.dest.Scheme)
	} else {
		p.release(conn)
	}

	metrics.RequestServed(p.dest.Scheme)
	return resp, nil
}

// Close marks the pool closed and tears down all idle connections.
// In-flight connections are closed as they are released.
func (p *ConnectionPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	for {
		select {
		case conn := <-p.idle:
			conn.Close()
		default:
			p.logger.Debug("Connection pool closed")
			return nil
		}
	}
}
