package handle

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/inscription-c/custody/internal/metrics"
	"github.com/inscription-c/custody/wallet/server/handle/middlewares"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) InitRouter() {
	e := h.Engine()
	e.Use(middlewares.Recovery(h.options.logger), middlewares.Logger(h.options.logger), metrics.HTTP)
	if h.options.enablePProf {
		pprof.Register(e)
	}
	if h.options.enableMetrics {
		e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	g := e.Group("/", gin.BasicAuth(h.options.accounts))
	g.POST("/init_key", h.InitKey)
	g.POST("/public_key", h.PublicKey)
	g.POST("/sign_with_schnorr", h.SignSchnorr)
	g.POST("/sign_with_ecdsa", h.SignECDSA)
}
