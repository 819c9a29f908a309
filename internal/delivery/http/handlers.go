package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/ilindan-dev/pitch-dispatcher/internal/intake"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Endpoint binds an event handler to its API path. The handler is also
// mounted at "/" for change-capture hooks that post to the service root.
type Endpoint struct {
	Path    string
	Handler intake.EventHandler
}

type Handlers struct {
	endpoint Endpoint
	logger   zerolog.Logger
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(endpoint Endpoint, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		endpoint: endpoint,
		logger:   logger.With().Str("layer", "http_handler").Logger(),
	}
}

// RegisterRoutes sets up the event intake routes.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	router.POST(h.endpoint.Path, h.HandleEvent)
	router.POST("/", h.HandleEvent)
}

// HandleEvent passes the raw body to the service. Unreadable bodies are
// answered as ignored; only a service error produces a 500.
func (h *Handlers) HandleEvent(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to read request body")
		c.JSON(http.StatusOK, EventResponse{Status: string(model.OutcomeIgnored), Reason: "unreadable body"})
		return
	}

	outcome, err := h.endpoint.Handler.Handle(c.Request.Context(), payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Rule: outcome.Rule})
		return
	}

	c.JSON(http.StatusOK, toEventResponse(outcome))
}
