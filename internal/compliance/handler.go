package compliance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/compliance/calculation"
	"fueleu-ledger/compliance-backend/internal/outcome"
)

// Handler handles HTTP requests for compliance balances
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new compliance handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers compliance routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	compliance := router.Group("/compliance")
	{
		compliance.GET("/target", h.getTarget)
		compliance.GET("/schedule", h.getSchedule)
		compliance.GET("/cb", h.getBalance)
		compliance.GET("/adjusted-cb", h.getAdjustedBalance)
		compliance.GET("/penalty", h.getPenalty)
		compliance.GET("/balances/:shipId", h.listBalances)
	}
}

// getTarget handles GET /api/compliance/target?year=
func (h *Handler) getTarget(c *gin.Context) {
	year, ok := QueryYear(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.GetTarget(year))
}

// getSchedule handles GET /api/compliance/schedule
func (h *Handler) getSchedule(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"reference": calculation.ReferenceGHGIntensity,
		"bands":     calculation.Schedule(),
	})
}

// getBalance handles GET /api/compliance/cb?shipId=&year=
func (h *Handler) getBalance(c *gin.Context) {
	year, ok := QueryYear(c)
	if !ok {
		return
	}

	result, err := h.service.ComputeBalance(c.Request.Context(), c.Query("shipId"), year)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to compute compliance balance", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getAdjustedBalance handles GET /api/compliance/adjusted-cb?shipId=&year=
func (h *Handler) getAdjustedBalance(c *gin.Context) {
	year, ok := QueryYear(c)
	if !ok {
		return
	}

	result, err := h.service.AdjustedCB(c.Request.Context(), c.Query("shipId"), year)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to compute adjusted compliance balance", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getPenalty handles GET /api/compliance/penalty?shipId=&year=&consecutiveYears=
func (h *Handler) getPenalty(c *gin.Context) {
	year, ok := QueryYear(c)
	if !ok {
		return
	}
	consecutive, err := strconv.Atoi(c.DefaultQuery("consecutiveYears", "1"))
	if err != nil {
		outcome.Reject(c, outcome.Invalid(outcome.CodeInvalidYear, "consecutiveYears must be an integer"))
		return
	}

	result, err := h.service.AssessPenalty(c.Request.Context(), c.Query("shipId"), year, consecutive)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to assess penalty", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// listBalances handles GET /api/compliance/balances/:shipId
func (h *Handler) listBalances(c *gin.Context) {
	balances, err := h.service.ListBalances(c.Request.Context(), c.Param("shipId"))
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to list compliance balances", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// QueryYear parses the year query parameter, writing a 400 when it is
// missing or malformed.
func QueryYear(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	year, err := strconv.Atoi(raw)
	if err != nil {
		outcome.Reject(c, outcome.Invalid(outcome.CodeInvalidYear, "year must be an integer, got %q", raw))
		return 0, false
	}
	return year, true
}
