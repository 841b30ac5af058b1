// Package ops exposes the generator's operational endpoints: health, the
// latest cycle snapshot and prometheus metrics. Presentation only; the core
// loop just emits events into the stats reporter.
package ops

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/generador-datos/internal/httpx"
	"github.com/MikeMC777/generador-datos/internal/stats"
)

func NewRouter(rep *stats.Reporter) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/stats", func(c *gin.Context) {
		ev, ok := rep.Last()
		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no cycle completed yet"})
			return
		}
		c.JSON(http.StatusOK, ev)
	})
	r.GET("/metrics", gin.WrapH(rep.MetricsHandler()))
	return r
}
