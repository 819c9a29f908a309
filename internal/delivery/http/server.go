package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/ilindan-dev/pitch-dispatcher/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server is a wrapper for the HTTP server.
type Server struct {
	*http.Server
	logger zerolog.Logger
}

// NewServer creates and configures a new Gin server.
func NewServer(cfg *config.Config, handlers *Handlers, logger *zerolog.Logger) *Server {
	log := logger.With().Str("layer", "http_server").Logger()
	log.Info().Str("mode", cfg.HTTP.GinMode).Msg("initializing http server")
	gin.SetMode(cfg.HTTP.GinMode)

	return &Server{
		Server: &http.Server{
			Addr:         cfg.HTTP.Port,
			Handler:      NewRouter(handlers),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
		logger: log,
	}
}

// NewRouter builds the gin engine: the event intake routes plus health and metrics.
// Unsupported methods on a known path answer 405.
func NewRouter(handlers *Handlers) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), metrics.Middleware())

	handlers.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
