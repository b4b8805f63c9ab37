// clientip.go resolves the caller's IP for audit trail entries, honoring the
// first X-Forwarded-For hop set by a fronting proxy.
package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIPKey is the gin.Context key holding the resolved client IP string.
const ClientIPKey = "client_ip"

// unknownIP is recorded when no address could be resolved.
const unknownIP = "UNKNOWN"

// ClientIPMiddleware stores the resolved client IP in the gin context so
// handlers can stamp audit entries without re-deriving it
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ClientIPKey, resolveClientIP(c))
		c.Next()
	}
}

// ClientIP returns the IP resolved by ClientIPMiddleware, or "UNKNOWN"
func ClientIP(c *gin.Context) string {
	if ip, ok := c.Get(ClientIPKey); ok {
		if s, ok := ip.(string); ok && s != "" {
			return s
		}
	}
	return unknownIP
}

func resolveClientIP(c *gin.Context) string {
	// First hop of X-Forwarded-For is the original client when a trusted
	// proxy fronts the service.
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
		if first != "" {
			return normalizeIP(first)
		}
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	if host == "" {
		return unknownIP
	}
	return normalizeIP(host)
}

// normalizeIP maps IPv6 loopback and IPv4-mapped loopback forms onto the
// canonical 127.0.0.1 so local traffic reads consistently in the audit trail
func normalizeIP(ip string) string {
	switch ip {
	case "::1", "::ffff:127.0.0.1":
		return "127.0.0.1"
	}
	if strings.HasPrefix(ip, "::ffff:") {
		return strings.TrimPrefix(ip, "::ffff:")
	}
	return ip
}
