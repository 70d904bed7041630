package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "github.com/rentbook/api/internal/errors"
	"github.com/rentbook/api/internal/services"
)

// DashboardHandler handles dashboard statistics requests.
type DashboardHandler struct {
	service services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler instance.
func NewDashboardHandler(service services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats handles GET /api/v1/dashboard/stats.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load dashboard stats", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// Revenue handles GET /api/v1/dashboard/revenue. An optional year query
// parameter selects the year; it defaults to the current one.
func (h *DashboardHandler) Revenue(c *gin.Context) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2200 {
			apierrors.BadRequest(c, "Invalid year parameter", nil)
			return
		}
		year = parsed
	}

	series, err := h.service.RevenueByMonth(c.Request.Context(), year)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load revenue series", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":    year,
		"revenue": series,
	})
}
