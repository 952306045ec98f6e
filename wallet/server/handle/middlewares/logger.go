package middlewares

import (
	"time"

	"github.com/btcsuite/btclog"
	"github.com/gin-gonic/gin"
)

// Logger writes one line per request. Request bodies carry digests only
// and are never logged.
func Logger(logger btclog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		logger.Infof("method: %s, path: %s, user: %s, status: %d, latency: %s, client_ip: %s, error_message: %s, body_size: %d",
			c.Request.Method, path, c.GetString(gin.AuthUserKey), c.Writer.Status(), time.Since(start),
			c.ClientIP(), c.Errors.ByType(gin.ErrorTypePrivate).String(), c.Writer.Size())
	}
}
