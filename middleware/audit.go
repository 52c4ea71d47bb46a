package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetIPFromContext extracts the client IP for audit logging, preferring
// proxy headers over the raw remote address.
func GetIPFromContext(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := c.GetHeader("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
