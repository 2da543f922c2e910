/*
Package domain contains the core value objects shared by the connection
pooling layers.

The central type is Destination, a tagged union describing where a pool's
connections go. A destination is either network-addressed (scheme, host,
port) or path-addressed (a Unix domain socket path). Exactly one shape is
valid per pool; the Kind tag selects the transport strategy instead of a
type hierarchy.

	dest := domain.NetworkDestination("http", "api.example.com", 8080)
	dest := domain.PathDestination("/var/run/server.sock")

Pool keys are derived from a destination's constructor parameters by a
KeyFunc. The manager keeps one KeyFunc per URL scheme; the "http+unix"
scheme deliberately shares the plain "http" key function, so the encoded
socket path takes the place of the host in the derived key.

SocketOption carries a raw (level, option, value) triple applied to the
socket before connect, matching setsockopt semantics.
*/
package domain
