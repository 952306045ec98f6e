package middlewares

import (
	"net/http"

	"github.com/btcsuite/btclog"
	"github.com/gin-gonic/gin"
	"github.com/inscription-c/custody/internal/sentry"
	"github.com/inscription-c/custody/wallet/server/handle/api"
)

// Recovery turns a handler panic into a 500 response and reports it.
func Recovery(logger btclog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Errorf("panic serving %s: %v", c.Request.URL.Path, err)
				sentry.CapturePanic(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					api.RespErr(api.CodeError500, http.StatusText(http.StatusInternalServerError)))
			}
		}()
		c.Next()
	}
}
