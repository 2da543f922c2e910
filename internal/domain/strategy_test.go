package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyFunc(t *testing.T) {
	t.Parallel()

	// Explicit default port and zero port derive the same key
	assert.Equal(t,
		DefaultKeyFunc(SchemeHTTP, "example.com", 80),
		DefaultKeyFunc(SchemeHTTP, "example.com", 0))

	// Scheme and host are case-normalized
	assert.Equal(t,
		DefaultKeyFunc("HTTP", "Example.COM", 80),
		DefaultKeyFunc(SchemeHTTP, "example.com", 80))

	// Distinct ports yield distinct keys
	assert.NotEqual(t,
		DefaultKeyFunc(SchemeHTTP, "example.com", 80),
		DefaultKeyFunc(SchemeHTTP, "example.com", 8080))

	// A socket path standing in for the host keys like a host, with no
	// default-port substitution for the unix scheme
	assert.Equal(t,
		PoolKey("http+unix|/var/run/server.sock|0"),
		DefaultKeyFunc(SchemeHTTPUnix, "/var/run/server.sock", 0))
}

func TestDestinationShapes(t *testing.T) {
	t.Parallel()

	network := NetworkDestination(SchemeHTTP, "example.com", 0)
	assert.Equal(t, KindNetwork, network.Kind)
	assert.Equal(t, 80, network.Port)
	assert.Equal(t, "example.com:80", network.Address())
	assert.Equal(t, "http://example.com:80", network.String())

	path := PathDestination("/var/run/server.sock")
	assert.Equal(t, KindPath, path.Kind)
	assert.Equal(t, SchemeHTTPUnix, path.Scheme)
	assert.Equal(t, "localhost", path.Host)
	assert.Zero(t, path.Port)
	assert.Equal(t, "/var/run/server.sock", path.Address())
	assert.Equal(t, "http+unix:///var/run/server.sock", path.String())
}

func TestDefaultPort(t *testing.T) {
	t.Parallel()

	port, ok := DefaultPort(SchemeHTTP)
	assert.True(t, ok)
	assert.Equal(t, 80, port)

	port, ok = DefaultPort(SchemeHTTPS)
	assert.True(t, ok)
	assert.Equal(t, 443, port)

	// No port concept for the unix scheme
	_, ok = DefaultPort(SchemeHTTPUnix)
	assert.False(t, ok)
}
