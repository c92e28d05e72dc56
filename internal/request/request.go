package request

import (
	"net"
	"net/http"

	"gitlab.com/fleetops/whitelistd/internal/host"
)

const (
	// SchemeHTTP name for the HTTP scheme
	SchemeHTTP = "http"
	// SchemeHTTPS name for the HTTPS scheme
	SchemeHTTPS = "https"
)

// IsHTTPS checks whether the request originated from HTTP or HTTPS.
// The scheme is set by the app before the handler pipeline runs.
func IsHTTPS(r *http.Request) bool {
	return r.URL.Scheme == SchemeHTTPS
}

// GetHostWithoutPort returns the requested host without the port
func GetHostWithoutPort(r *http.Request) string {
	return host.FromRequest(r)
}

// GetRemoteAddrWithoutPort returns the client address without the port
func GetRemoteAddrWithoutPort(r *http.Request) string {
	if remoteAddr, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return remoteAddr
	}

	return r.RemoteAddr
}
