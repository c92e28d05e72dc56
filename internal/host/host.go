package host

import (
	"net"
	"net/http"
	"strings"
)

// FromString strips an optional port and trailing dot from a host string.
// Case is preserved: whitelist patterns match case-sensitively.
func FromString(s string) string {
	host := s

	if splitHost, _, err := net.SplitHostPort(host); err == nil {
		host = splitHost
	}

	return strings.TrimSuffix(host, ".")
}

// FromRequest returns the normalized host of r.Host
func FromRequest(r *http.Request) string {
	return FromString(r.Host)
}
