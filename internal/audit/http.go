package audit

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the originating client address for a request. Behind a
// reverse proxy the first X-Forwarded-For hop wins; otherwise RemoteAddr is
// used with its port stripped.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
