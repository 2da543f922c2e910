package manager

import (
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/mir00r/conn-pool/internal/errors"
)

// target is the result of parsing a request URL into the pieces dispatch
// needs: the registry scheme, the pool constructor host/port, and the URL
// the HTTP request itself is built from.
type target struct {
	Scheme string
	Host   string
	Port   int
	// RequestURL is what the outgoing http.Request is constructed from.
	// For network schemes it is the original URL; for unix schemes it is
	// rewritten to the synthetic localhost authority, since the socket
	// path has no place in an HTTP request line or Host header.
	RequestURL string
}

// parseTarget parses a request URL. URLs of "+unix" schemes carry the
// percent-encoded socket path as their authority; net/url rejects %2F in
// a host, so the authority is split off and decoded here. Decoding the
// path is this parser's job — the pool factory receives it verbatim.
func parseTarget(rawurl string) (target, error) {
	schemeEnd := strings.Index(rawurl, "://")
	if schemeEnd <= 0 {
		return target{}, pkgerrors.NewInvalidURLError(rawurl, nil)
	}
	scheme := strings.ToLower(rawurl[:schemeEnd])

	if strings.HasSuffix(scheme, "+unix") {
		return parseUnixTarget(scheme, rawurl)
	}

	u, err := url.Parse(rawurl)
	if err != nil {
		return target{}, pkgerrors.NewInvalidURLError(rawurl, err)
	}

	port := 0
	if portStr := u.Port(); portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return target{}, pkgerrors.NewInvalidURLError(rawurl, err)
		}
	}

	return target{
		Scheme:     scheme,
		Host:       u.Hostname(),
		Port:       port,
		RequestURL: rawurl,
	}, nil
}

// parseUnixTarget splits a "<scheme>+unix://<encoded-path><request-path>"
// URL into the decoded socket path and the request path
func parseUnixTarget(scheme, rawurl string) (target, error) {
	rest := rawurl[len(scheme)+len("://"):]

	// The authority ends at the first path, query or fragment delimiter;
	// a query or fragment with no path still belongs to the request part,
	// not the socket path.
	authority := rest
	requestPath := "/"
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		authority = rest[:i]
		if rest[i] == '/' {
			requestPath = rest[i:]
		} else {
			requestPath = "/" + rest[i:]
		}
	}
	if authority == "" {
		return target{}, pkgerrors.NewInvalidURLError(rawurl, nil)
	}

	socketPath, err := url.PathUnescape(authority)
	if err != nil {
		return target{}, pkgerrors.NewInvalidURLError(rawurl, err)
	}

	return target{
		Scheme:     scheme,
		Host:       socketPath,
		Port:       0,
		RequestURL: "http://localhost" + requestPath,
	}, nil
}
