package banking

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/outcome"
)

// Handler handles HTTP requests for the banking ledger
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new banking handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers banking routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	banking := router.Group("/banking")
	{
		banking.GET("/records", h.getRecords)
		banking.GET("/applications", h.getApplications)
		banking.POST("/bank", h.bankSurplus)
		banking.POST("/apply", h.applyBanked)
	}
}

// getRecords handles GET /api/banking/records?shipId=
func (h *Handler) getRecords(c *gin.Context) {
	shipID := c.Query("shipId")
	if shipID == "" {
		outcome.Reject(c, outcome.Invalid(outcome.CodeInvalidShip, "shipId is required"))
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), shipID)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to get bank records", err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// getApplications handles GET /api/banking/applications?shipId=
func (h *Handler) getApplications(c *gin.Context) {
	applications, err := h.service.ListApplications(c.Request.Context(), c.Query("shipId"))
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to list bank applications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

// bankSurplus handles POST /api/banking/bank
func (h *Handler) bankSurplus(c *gin.Context) {
	var req BankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.BankSurplus(c.Request.Context(), req.ShipID, req.Year, req.Amount)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to bank surplus", err)
		return
	}
	if !result.Success {
		c.JSON(result.Rejection.HTTPStatus(), result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// applyBanked handles POST /api/banking/apply
func (h *Handler) applyBanked(c *gin.Context) {
	var req BankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.ApplyBanked(c.Request.Context(), req.ShipID, req.Year, req.Amount)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to apply banked surplus", err)
		return
	}
	if !result.Success {
		c.JSON(result.Rejection.HTTPStatus(), result)
		return
	}
	c.JSON(http.StatusOK, result)
}
