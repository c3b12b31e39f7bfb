package borrowing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/outcome"
)

// Handler handles HTTP requests for advance compliance surplus
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new borrowing handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers borrowing routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	borrowing := router.Group("/borrowing")
	{
		borrowing.GET("/validate", h.validate)
		borrowing.POST("/borrow", h.borrow)
		borrowing.GET("/history", h.history)
	}
}

// validate handles GET /api/borrowing/validate?shipId=&year=
func (h *Handler) validate(c *gin.Context) {
	year, ok := compliance.QueryYear(c)
	if !ok {
		return
	}

	result, err := h.service.Validate(c.Request.Context(), c.Query("shipId"), year)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to validate borrowing", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// borrow handles POST /api/borrowing/borrow
func (h *Handler) borrow(c *gin.Context) {
	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Borrow(c.Request.Context(), req.ShipID, req.Year)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to borrow", err)
		return
	}
	if !result.Success {
		c.JSON(result.Rejection.HTTPStatus(), result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// history handles GET /api/borrowing/history?shipId=
func (h *Handler) history(c *gin.Context) {
	shipID := c.Query("shipId")
	if shipID == "" {
		outcome.Reject(c, outcome.Invalid(outcome.CodeInvalidShip, "shipId is required"))
		return
	}

	entries, err := h.service.History(c.Request.Context(), shipID)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to get borrow history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ship_id": shipID, "entries": entries})
}
