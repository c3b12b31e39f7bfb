package statements

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/outcome"
)

// Handler handles HTTP requests for ship statements
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new statements handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers statement routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/statements/:shipId", h.getStatement)
}

// getStatement handles GET /api/statements/:shipId?format=json|csv|xlsx|pdf
func (h *Handler) getStatement(c *gin.Context) {
	format, ok := ParseFormat(c.Query("format"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q", c.Query("format"))})
		return
	}

	st, err := h.service.Build(c.Request.Context(), c.Param("shipId"))
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to build statement", err)
		return
	}

	if format == FormatJSON {
		c.JSON(http.StatusOK, st)
		return
	}

	var buf bytes.Buffer
	if err := Export(&buf, st, format); err != nil {
		h.logger.Error("Failed to export statement", zap.String("ship_id", st.ShipID), zap.String("format", string(format)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export statement"})
		return
	}

	filename := fmt.Sprintf("statement-%s.%s", st.ShipID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
