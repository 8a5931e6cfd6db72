package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client address used to key rate limits and logs.
// Only r.RemoteAddr is read; behind a trusted proxy, run chi's RealIP middleware
// first so RemoteAddr already holds the forwarded address.
func RealClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.Trim(addr, "[]")
	if addr == "" {
		return "unknown"
	}
	return addr
}
