package relayserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edgefn/gemini-relay/internal/config"
	"github.com/edgefn/gemini-relay/internal/metrics"
	"github.com/edgefn/gemini-relay/internal/relay"
	"github.com/edgefn/gemini-relay/internal/version"
)

// LivenessMessage is the fixed GET / body the browser frontend checks for.
const LivenessMessage = "Backend is running. Access the frontend in your browser."

func NewRouter(cfg *config.Config, rc *relay.Client, mc *metrics.Collector, accessLogger *log.Logger, accessColor bool) *gin.Engine {
	r := gin.New()
	r.Use(requestIDMiddleware())
	if cfg.Logging.AccessLog {
		r.Use(requestLoggerWithColor(accessLogger, accessColor))
	}
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, LivenessMessage)
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get())
	})

	if cfg.Metrics.Enabled && mc != nil {
		r.GET("/metrics", gin.WrapH(mc.Handler()))
	}

	r.POST("/gemini-proxy", makeRelayHandler(rc, mc))

	return r
}
