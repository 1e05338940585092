package middleware

import (
	"github.com/gin-gonic/gin"
)

// SSEMiddleware keeps reverse proxies from buffering an event stream.
func SSEMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		c.Next()
	}
}
