package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const ContextClientIP = "client_ip"

// forwardingHeaders are checked in order; X-Forwarded-For may hold a chain
// and only its first hop is used.
var forwardingHeaders = []string{"X-Forwarded-For", "X-Real-Ip", "CF-Connecting-IP", "X-Forwarded"}

// AuditMiddleware stores the caller's IP for audit logging.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextClientIP, clientIP(c))
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	for _, header := range forwardingHeaders {
		value := c.GetHeader(header)
		if value == "" {
			continue
		}
		first := strings.TrimSpace(strings.Split(value, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

// GetIPFromContext retrieves IP address from gin context
func GetIPFromContext(c *gin.Context) string {
	if ip := c.GetString(ContextClientIP); ip != "" {
		return ip
	}
	return clientIP(c)
}
