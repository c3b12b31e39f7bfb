package events

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the event stream over websocket
type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

// NewHandler creates a new events handler
func NewHandler(hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// RegisterRoutes registers event routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/events/ws", h.stream)
}

// stream handles GET /api/events/ws?shipId=&shipId=
func (h *Handler) stream(c *gin.Context) {
	if err := h.hub.Serve(c.Writer, c.Request, c.QueryArray("shipId")); err != nil {
		// The upgrader has already written the HTTP error.
		h.logger.Warn("Failed to open event stream", zap.Error(err))
	}
}
