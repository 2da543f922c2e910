package domain

import (
	"fmt"
	"strings"
)

// PoolKey is the value the manager uses to look up or create the
// connection pool serving a request. Keys are derived per scheme by a
// KeyFunc; two requests with the same key share a pool.
type PoolKey string

// KeyFunc derives a pool key from the constructor parameters of a pool.
// For network schemes the host is a DNS name or IP; for http+unix it is
// the encoded socket path standing in for the host, with the port unused.
type KeyFunc func(scheme, host string, port int) PoolKey

// DefaultKeyFunc derives a key from the (scheme, host, port) tuple.
// The scheme and host are lowercased so key equality matches URL
// equivalence; a zero port is normalized to the scheme's default when
// one exists. This is the key function for "http" and, deliberately,
// for "http+unix" as well: the manager aliases the same function value
// for both schemes rather than inventing a path-specific derivation.
func DefaultKeyFunc(scheme, host string, port int) PoolKey {
	scheme = strings.ToLower(scheme)
	if port == 0 {
		if def, ok := DefaultPort(scheme); ok {
			port = def
		}
	}
	return PoolKey(fmt.Sprintf("%s|%s|%d", scheme, strings.ToLower(host), port))
}
