package transport

import (
	"github.com/mir00r/conn-pool/internal/domain"
)

// TCPConnector implements the Connector interface for network destinations
type TCPConnector struct{}

// Network returns "tcp"
func (TCPConnector) Network() string {
	return "tcp"
}

// Address returns the destination's "host:port" form
func (TCPConnector) Address(dest domain.Destination) string {
	return dest.Address()
}
