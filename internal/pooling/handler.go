package pooling

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/outcome"
)

// Handler handles HTTP requests for pools
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new pooling handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers pooling routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	pools := router.Group("/pools")
	{
		pools.POST("/validate", h.validatePool)
		pools.POST("", h.createPool)
		pools.GET("", h.listPools)
		pools.GET("/:id", h.getPool)
	}
}

// validatePool handles POST /api/pools/validate
func (h *Handler) validatePool(c *gin.Context) {
	var req ValidatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.ValidatePool(req.Members))
}

// createPool handles POST /api/pools
func (h *Handler) createPool(c *gin.Context) {
	var req CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreatePool(c.Request.Context(), req.Year, req.Members)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to create pool", err)
		return
	}
	if !result.IsValid {
		c.JSON(result.Rejection.HTTPStatus(), result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// listPools handles GET /api/pools?year=
func (h *Handler) listPools(c *gin.Context) {
	year := 0
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			outcome.Reject(c, outcome.Invalid(outcome.CodeInvalidYear, "year must be an integer, got %q", raw))
			return
		}
		year = parsed
	}

	pools, err := h.service.ListPools(c.Request.Context(), year)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to list pools", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pools": pools})
}

// getPool handles GET /api/pools/:id
func (h *Handler) getPool(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pool ID"})
		return
	}

	pool, err := h.service.GetPool(c.Request.Context(), id)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to get pool", err)
		return
	}
	c.JSON(http.StatusOK, pool)
}
