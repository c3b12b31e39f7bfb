package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fueleu-ledger/compliance-backend/internal/outcome"
)

// Handler handles HTTP requests for voyage routes
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new routes handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers voyage route endpoints
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	routes := router.Group("/routes")
	{
		routes.GET("", h.listRoutes)
		routes.POST("", h.createRoute)
		routes.GET("/comparison", h.comparison)
		routes.GET("/:id", h.getRoute)
		routes.POST("/:id/baseline", h.setBaseline)
	}
}

// listRoutes handles GET /api/routes?vesselType=&fuelType=&shipId=&year=
func (h *Handler) listRoutes(c *gin.Context) {
	filters := Filters{
		VesselType: c.Query("vesselType"),
		FuelType:   c.Query("fuelType"),
		ShipID:     c.Query("shipId"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			outcome.Reject(c, outcome.Invalid(outcome.CodeInvalidYear, "year must be an integer, got %q", raw))
			return
		}
		filters.Year = year
	}

	routes, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to list routes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes, "count": len(routes)})
}

// createRoute handles POST /api/routes
func (h *Handler) createRoute(c *gin.Context) {
	var req CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to create route", err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

// getRoute handles GET /api/routes/:id
func (h *Handler) getRoute(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}

	route, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to get route", err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// setBaseline handles POST /api/routes/:id/baseline
func (h *Handler) setBaseline(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}

	route, err := h.service.SetBaseline(c.Request.Context(), id)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to set baseline", err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// comparison handles GET /api/routes/comparison?year=
func (h *Handler) comparison(c *gin.Context) {
	var year int
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			outcome.Reject(c, outcome.Invalid(outcome.CodeInvalidYear, "year must be an integer, got %q", raw))
			return
		}
		year = parsed
	}

	result, err := h.service.Comparison(c.Request.Context(), year)
	if err != nil {
		outcome.Respond(c, h.logger, "Failed to compare routes", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func routeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return uuid.Nil, false
	}
	return id, true
}
