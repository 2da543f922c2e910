package domain

import (
	"fmt"
	"net"
	"strconv"
)

// Supported URL schemes
const (
	// SchemeHTTP is plain HTTP over TCP
	SchemeHTTP = "http"
	// SchemeHTTPS is HTTP over TLS over TCP
	SchemeHTTPS = "https"
	// SchemeHTTPUnix is plain HTTP over a Unix domain socket. The authority
	// component of an http+unix URL is the percent-encoded socket path.
	SchemeHTTPUnix = "http+unix"
)

// DestinationKind discriminates the two destination shapes
type DestinationKind int

const (
	// KindNetwork is a (host, port) addressed destination
	KindNetwork DestinationKind = iota
	// KindPath is a filesystem (Unix socket path) addressed destination
	KindPath
)

// String returns the string representation of DestinationKind
func (k DestinationKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindPath:
		return "path"
	default:
		return "unknown"
	}
}

// Destination identifies where a connection pool's connections go.
// It is a tagged union: Kind selects which fields are meaningful.
// Network destinations use Host and Port; path destinations use SocketPath.
type Destination struct {
	Kind       DestinationKind
	Scheme     string
	Host       string
	Port       int
	SocketPath string
}

// NetworkDestination creates a (host, port) addressed destination.
// A zero port is resolved to the scheme's default port when one exists.
func NetworkDestination(scheme, host string, port int) Destination {
	if port == 0 {
		if def, ok := DefaultPort(scheme); ok {
			port = def
		}
	}
	return Destination{
		Kind:   KindNetwork,
		Scheme: scheme,
		Host:   host,
		Port:   port,
	}
}

// PathDestination creates a Unix-socket addressed destination. The host is
// the synthetic "localhost" so the HTTP layer has a Host header default;
// a socket path has no network host of its own.
func PathDestination(socketPath string) Destination {
	return Destination{
		Kind:       KindPath,
		Scheme:     SchemeHTTPUnix,
		Host:       "localhost",
		SocketPath: socketPath,
	}
}

// Address returns the dialable address for the destination:
// "host:port" for network destinations, the socket path for path ones.
func (d Destination) Address() string {
	if d.Kind == KindPath {
		return d.SocketPath
	}
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// String returns a human-readable identifier used in logs and pool stats
func (d Destination) String() string {
	if d.Kind == KindPath {
		return fmt.Sprintf("%s://%s", d.Scheme, d.SocketPath)
	}
	return fmt.Sprintf("%s://%s", d.Scheme, d.Address())
}

// DefaultPort returns the default port for a scheme. Path-addressed schemes
// have no port concept, so the second return value is false for them and
// for unknown schemes. Key derivation must never consult a port for the
// http+unix scheme.
func DefaultPort(scheme string) (int, bool) {
	switch scheme {
	case SchemeHTTP:
		return 80, true
	case SchemeHTTPS:
		return 443, true
	default:
		return 0, false
	}
}

// SocketOption is a raw socket option applied before connect,
// mirroring setsockopt(level, opt, value)
type SocketOption struct {
	Level int `yaml:"level" json:"level"`
	Opt   int `yaml:"opt" json:"opt"`
	Value int `yaml:"value" json:"value"`
}
