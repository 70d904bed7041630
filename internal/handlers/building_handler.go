package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/rentbook/api/internal/errors"
	"github.com/rentbook/api/internal/services"
)

// BuildingHandler handles building-related HTTP requests.
type BuildingHandler struct {
	service services.BuildingService
}

// NewBuildingHandler creates a new BuildingHandler instance.
func NewBuildingHandler(service services.BuildingService) *BuildingHandler {
	return &BuildingHandler{service: service}
}

// BuildingRequest is the request body for creating or updating a building.
type BuildingRequest struct {
	Name       string  `json:"name" binding:"required"`
	Address    *string `json:"address"`
	TotalRooms int     `json:"total_rooms" binding:"gte=0"`
}

// List handles GET /api/v1/buildings.
func (h *BuildingHandler) List(c *gin.Context) {
	buildings, err := h.service.ListBuildings(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list buildings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"buildings": buildings,
		"count":     len(buildings),
	})
}

// Get handles GET /api/v1/buildings/:id.
func (h *BuildingHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	building, err := h.service.GetBuilding(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrBuildingNotFound) {
			apierrors.NotFound(c, "Building not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to get building", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"building": building})
}

// Create handles POST /api/v1/buildings. Owner only.
func (h *BuildingHandler) Create(c *gin.Context) {
	var req BuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	userID, ok := actingUser(c)
	if !ok {
		return
	}

	building, err := h.service.CreateBuilding(c.Request.Context(), services.BuildingInput{
		Name:       req.Name,
		Address:    req.Address,
		TotalRooms: req.TotalRooms,
	}, userID)
	if err != nil {
		if errors.Is(err, services.ErrBuildingName) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to create building", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"building": building})
}

// Update handles PUT /api/v1/buildings/:id. Owner only.
func (h *BuildingHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req BuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	building, err := h.service.UpdateBuilding(c.Request.Context(), id, services.BuildingInput{
		Name:       req.Name,
		Address:    req.Address,
		TotalRooms: req.TotalRooms,
	})
	if err != nil {
		if errors.Is(err, services.ErrBuildingNotFound) {
			apierrors.NotFound(c, "Building not found")
			return
		}
		if errors.Is(err, services.ErrBuildingName) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to update building", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"building": building})
}

// Delete handles DELETE /api/v1/buildings/:id. Owner only. Rooms in the
// building are removed with it.
func (h *BuildingHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteBuilding(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrBuildingNotFound) {
			apierrors.NotFound(c, "Building not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to delete building", err)
		return
	}

	c.Status(http.StatusNoContent)
}
