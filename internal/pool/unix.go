package pool

import (
	"github.com/mir00r/conn-pool/internal/domain"
	"github.com/mir00r/conn-pool/pkg/logger"
)

// NewUnixPool creates a pool of connections to one Unix domain socket.
// The socket path is both the pool's identity and the dial target.
func NewUnixPool(socketPath string, cfg Config, log *logger.Logger) *ConnectionPool {
	dest := domain.PathDestination(socketPath)
	return newPool("UnixConnectionPool", dest, cfg, nil, log)
}

// NewUnixPoolFromHost creates a Unix socket pool from the generic
// (host, port) constructor shape used by the manager's pool factory
// registry. The host is the socket path as extracted from the URL
// authority (any percent-decoding is the URL parser's job) and is passed
// through verbatim. The port exists for signature compatibility only: a
// path destination has no port concept, so an explicit value is accepted
// and ignored, never rejected.
func NewUnixPoolFromHost(host string, port int, cfg Config, log *logger.Logger) *ConnectionPool {
	_ = port
	return NewUnixPool(host, cfg, log)
}
