package transport

import (
	"github.com/mir00r/conn-pool/internal/domain"
)

// UnixConnector implements the Connector interface for path destinations.
// The dial address is the filesystem path of a stream-oriented Unix domain
// socket; there is no port concept.
type UnixConnector struct{}

// Network returns "unix"
func (UnixConnector) Network() string {
	return "unix"
}

// Address returns the destination's socket path
func (UnixConnector) Address(dest domain.Destination) string {
	return dest.SocketPath
}
