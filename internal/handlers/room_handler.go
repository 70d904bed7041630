package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apierrors "github.com/rentbook/api/internal/errors"
	"github.com/rentbook/api/internal/services"
)

// RoomHandler handles room-related HTTP requests.
type RoomHandler struct {
	service       services.RoomService
	tenantService services.TenantService
}

// NewRoomHandler creates a new RoomHandler instance.
func NewRoomHandler(service services.RoomService, tenantService services.TenantService) *RoomHandler {
	return &RoomHandler{service: service, tenantService: tenantService}
}

// RoomRequest is the request body for creating or updating a room.
type RoomRequest struct {
	BuildingID uuid.UUID       `json:"building_id" binding:"required"`
	RoomNumber string          `json:"room_number" binding:"required"`
	RoomType   string          `json:"room_type"`
	Capacity   int             `json:"capacity" binding:"gte=0"`
	RentAmount decimal.Decimal `json:"rent_amount"`
}

// List handles GET /api/v1/rooms. An optional building_id query parameter
// restricts the listing to one building.
func (h *RoomHandler) List(c *gin.Context) {
	var buildingID *uuid.UUID
	if raw := c.Query("building_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid building_id parameter, expected a UUID", nil)
			return
		}
		buildingID = &id
	}

	rooms, err := h.service.ListRooms(c.Request.Context(), buildingID)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list rooms", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// Get handles GET /api/v1/rooms/:id.
func (h *RoomHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	room, err := h.service.GetRoom(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			apierrors.NotFound(c, "Room not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to get room", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": room})
}

// Tenants handles GET /api/v1/rooms/:id/tenants, listing the active tenants
// assigned to the room.
func (h *RoomHandler) Tenants(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.service.GetRoom(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			apierrors.NotFound(c, "Room not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to get room", err)
		return
	}

	tenants, err := h.tenantService.TenantsInRoom(c.Request.Context(), id)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list tenants in room", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenants": tenants,
		"count":   len(tenants),
	})
}

// Create handles POST /api/v1/rooms. Owner only.
func (h *RoomHandler) Create(c *gin.Context) {
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	room, err := h.service.CreateRoom(c.Request.Context(), services.RoomInput{
		BuildingID: req.BuildingID,
		RoomNumber: req.RoomNumber,
		RoomType:   req.RoomType,
		Capacity:   req.Capacity,
		RentAmount: req.RentAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRoomNumber),
			errors.Is(err, services.ErrRoomCapacity),
			errors.Is(err, services.ErrRoomRentAmount):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to create room", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// Update handles PUT /api/v1/rooms/:id. Owner only.
func (h *RoomHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	room, err := h.service.UpdateRoom(c.Request.Context(), id, services.RoomInput{
		BuildingID: req.BuildingID,
		RoomNumber: req.RoomNumber,
		RoomType:   req.RoomType,
		Capacity:   req.Capacity,
		RentAmount: req.RentAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRoomNotFound):
			apierrors.NotFound(c, "Room not found")
		case errors.Is(err, services.ErrRoomNumber),
			errors.Is(err, services.ErrRoomCapacity),
			errors.Is(err, services.ErrRoomRentAmount):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to update room", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": room})
}

// Delete handles DELETE /api/v1/rooms/:id. Owner only. Tenants assigned to
// the room become unassigned.
func (h *RoomHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteRoom(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			apierrors.NotFound(c, "Room not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to delete room", err)
		return
	}

	c.Status(http.StatusNoContent)
}
