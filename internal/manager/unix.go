package manager

import (
	"github.com/mir00r/conn-pool/internal/config"
	"github.com/mir00r/conn-pool/internal/domain"
	"github.com/mir00r/conn-pool/internal/pool"
	"github.com/mir00r/conn-pool/pkg/logger"
)

// UnixRegistry returns the standard registry extended with the http+unix
// scheme. The scheme's pool factory builds the Unix socket pool from the
// generic (host, port) shape; its key function is the very same function
// value as the http entry — the destination key for a socket path is
// derived exactly like an ordinary host, a deliberate reuse, not a new
// algorithm.
func UnixRegistry() Registry {
	standard := StandardRegistry()

	factories := make(map[string]PoolFactory, len(standard.poolFactories)+1)
	for scheme, f := range standard.poolFactories {
		factories[scheme] = f
	}
	factories[domain.SchemeHTTPUnix] = pool.NewUnixPoolFromHost

	keyFuncs := make(map[string]domain.KeyFunc, len(standard.keyFuncs)+1)
	for scheme, f := range standard.keyFuncs {
		keyFuncs[scheme] = f
	}
	keyFuncs[domain.SchemeHTTPUnix] = standard.keyFuncs[domain.SchemeHTTP]

	return NewRegistry(factories, keyFuncs)
}

// NewUnix creates a manager that transparently routes http+unix URLs to
// Unix socket pools alongside ordinary http/https dispatch:
//
//	m := manager.NewUnix(cfg, log)
//	resp, err := m.Request(ctx, "GET", "http+unix://%2Fvar%2Frun%2Fserver.sock/status", nil, nil)
func NewUnix(cfg *config.Config, log *logger.Logger) *PoolManager {
	return NewWithRegistry(UnixRegistry(), cfg, log)
}
