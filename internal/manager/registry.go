package manager

import (
	"github.com/mir00r/conn-pool/internal/domain"
	"github.com/mir00r/conn-pool/internal/pool"
	"github.com/mir00r/conn-pool/pkg/logger"
)

// PoolFactory constructs a connection pool from the generic
// (host, port) parameters extracted from a request URL. For the
// http+unix scheme the host is the socket path and the port is ignored.
type PoolFactory func(host string, port int, cfg pool.Config, log *logger.Logger) *pool.ConnectionPool

// Registry maps URL schemes to the pool factory and key-derivation
// function used at dispatch time. A registry is built once, before the
// manager is handed to any concurrent caller, and never mutated after:
// configuration by construction, not runtime-patchable state. Dispatching
// a scheme missing from either map fails fast with UNSUPPORTED_SCHEME.
type Registry struct {
	poolFactories map[string]PoolFactory
	keyFuncs      map[string]domain.KeyFunc
}

// NewRegistry builds a registry from explicit scheme tables
func NewRegistry(factories map[string]PoolFactory, keyFuncs map[string]domain.KeyFunc) Registry {
	return Registry{
		poolFactories: factories,
		keyFuncs:      keyFuncs,
	}
}

// StandardRegistry returns the registry for plain network schemes:
// http and https, both keyed by the default (scheme, host, port) function
func StandardRegistry() Registry {
	return NewRegistry(
		map[string]PoolFactory{
			domain.SchemeHTTP:  pool.NewHTTPPool,
			domain.SchemeHTTPS: pool.NewHTTPSPool,
		},
		map[string]domain.KeyFunc{
			domain.SchemeHTTP:  domain.DefaultKeyFunc,
			domain.SchemeHTTPS: domain.DefaultKeyFunc,
		},
	)
}

// PoolFactory returns the pool factory registered for a scheme
func (r Registry) PoolFactory(scheme string) (PoolFactory, bool) {
	f, ok := r.poolFactories[scheme]
	return f, ok
}

// KeyFunc returns the key-derivation function registered for a scheme
func (r Registry) KeyFunc(scheme string) (domain.KeyFunc, bool) {
	f, ok := r.keyFuncs[scheme]
	return f, ok
}

// Schemes returns all registered schemes (those present in both tables)
func (r Registry) Schemes() []string {
	schemes := make([]string, 0, len(r.poolFactories))
	for scheme := range r.poolFactories {
		if _, ok := r.keyFuncs[scheme]; ok {
			schemes = append(schemes, scheme)
		}
	}
	return schemes
}
