// Package manager routes HTTP-style requests to connection pools by URL
// scheme.
//
// A PoolManager keeps at most one pool per distinct destination key. The
// key is derived per scheme by the registry's key function; the pool
// itself is created lazily by the registry's pool factory on the first
// request to a new key. The pool map is bounded: when it would exceed the
// configured pool count, the least recently used pool is evicted and
// closed.
package manager

import (
	"container/list"
	"context"
	"io"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/mir00r/conn-pool/internal/config"
	"github.com/mir00r/conn-pool/internal/domain"
	pkgerrors "github.com/mir00r/conn-pool/internal/errors"
	"github.com/mir00r/conn-pool/internal/pool"
	"github.com/mir00r/conn-pool/pkg/logger"
)

// poolEntry is one pool in the manager's LRU order
type poolEntry struct {
	key  domain.PoolKey
	pool *pool.ConnectionPool
}

// PoolManager owns the scheme registry and the keyed pool map
type PoolManager struct {
	registry Registry
	poolCfg  pool.Config
	numPools int
	dialRate float64
	burst    int
	headers  map[string]string
	logger   *logger.Logger

	mu     sync.Mutex
	pools  map[domain.PoolKey]*list.Element
	lru    *list.List // front = most recently used
	closed bool
}

// New creates a manager with the standard http/https registry
func New(cfg *config.Config, log *logger.Logger) *PoolManager {
	return NewWithRegistry(StandardRegistry(), cfg, log)
}

// NewWithRegistry creates a manager dispatching through the given
// registry. The registry must be complete before the manager is shared
// with concurrent callers; it is never mutated afterwards.
func NewWithRegistry(registry Registry, cfg *config.Config, log *logger.Logger) *PoolManager {
	return &PoolManager{
		registry: registry,
		poolCfg:  poolConfigFrom(cfg.Pool),
		numPools: cfg.Pool.NumPools,
		dialRate: cfg.Pool.DialRatePerSecond,
		burst:    cfg.Pool.DialBurst,
		headers:  cfg.Headers,
		logger:   log.ManagerLogger(),
		pools:    make(map[domain.PoolKey]*list.Element),
		lru:      list.New(),
	}
}

// poolConfigFrom maps the application config onto the per-pool config
func poolConfigFrom(cfg config.PoolConfig) pool.Config {
	return pool.Config{
		MaxIdle:         cfg.MaxIdlePerPool,
		ConnectTimeout:  cfg.ConnectTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		MaxIdleTime:     cfg.MaxIdleTime,
		MaxConnLifetime: cfg.MaxConnLifetime,
		SocketOptions:   cfg.SocketOptions,
	}
}

// Registry returns the manager's scheme registry
func (m *PoolManager) Registry() Registry {
	return m.registry
}

// ConnectionPoolForHost looks up or lazily creates the pool serving the
// given scheme/host/port. An unregistered scheme fails before any pool or
// socket work happens.
func (m *PoolManager) ConnectionPoolForHost(scheme, host string, port int) (*pool.ConnectionPool, error) {
	factory, ok := m.registry.PoolFactory(scheme)
	if !ok {
		return nil, pkgerrors.NewUnsupportedSchemeError(scheme)
	}
	keyFn, ok := m.registry.KeyFunc(scheme)
	if !ok {
		return nil, pkgerrors.NewUnsupportedSchemeError(scheme)
	}

	key := keyFn(scheme, host, port)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, pkgerrors.NewPoolClosedError(string(key))
	}

	if elem, ok := m.pools[key]; ok {
		m.lru.MoveToFront(elem)
		return elem.Value.(*poolEntry).pool, nil
	}

	cfg := m.poolCfg
	if m.dialRate > 0 {
		cfg.DialLimiter = rate.NewLimiter(rate.Limit(m.dialRate), m.burst)
	}

	p := factory(host, port, cfg, m.logger)
	elem := m.lru.PushFront(&poolEntry{key: key, pool: p})
	m.pools[key] = elem
	m.logger.WithField("pool", p.String()).Debug("Created connection pool")

	// Evict the least recently used pool when over the bound
	if m.numPools > 0 && m.lru.Len() > m.numPools {
		oldest := m.lru.Back()
		if oldest != nil && oldest != elem {
			entry := oldest.Value.(*poolEntry)
			m.lru.Remove(oldest)
			delete(m.pools, entry.key)
			entry.pool.Close()
			m.logger.WithField("pool", entry.pool.String()).Debug("Evicted connection pool")
		}
	}

	return p, nil
}

// Request dispatches one HTTP request: parse the URL, resolve the scheme
// through the registry, compute the destination key, and delegate to the
// pool for that key. Default headers apply when the caller does not
// override them.
func (m *PoolManager) Request(ctx context.Context, method, rawurl string, body io.Reader, headers map[string]string) (*http.Response, error) {
	target, err := parseTarget(rawurl)
	if err != nil {
		return nil, err
	}

	p, err := m.ConnectionPoolForHost(target.Scheme, target.Host, target.Port)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target.RequestURL, body)
	if err != nil {
		return nil, pkgerrors.NewInvalidURLError(rawurl, err)
	}

	for k, v := range m.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return p.Do(req)
}

// Stats returns a snapshot of every live pool, keyed by pool key
func (m *PoolManager) Stats() map[string]pool.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := make(map[string]pool.Stats, len(m.pools))
	for key, elem := range m.pools {
		stats[string(key)] = elem.Value.(*poolEntry).pool.Stats()
	}
	return stats
}

// PoolCount returns the number of live pools
func (m *PoolManager) PoolCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// Close closes every pool and rejects further dispatch
func (m *PoolManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	for key, elem := range m.pools {
		elem.Value.(*poolEntry).pool.Close()
		delete(m.pools, key)
	}
	m.lru.Init()
	m.logger.Info("Pool manager closed")
	return nil
}
