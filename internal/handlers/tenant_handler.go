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

// TenantHandler handles tenant-related HTTP requests.
type TenantHandler struct {
	service        services.TenantService
	paymentService services.PaymentService
}

// NewTenantHandler creates a new TenantHandler instance.
func NewTenantHandler(service services.TenantService, paymentService services.PaymentService) *TenantHandler {
	return &TenantHandler{service: service, paymentService: paymentService}
}

// TenantRequest is the request body for creating or updating a tenant.
// JoiningDate is a yyyy-mm-dd string.
type TenantRequest struct {
	Name        string          `json:"name" binding:"required"`
	Phone       string          `json:"phone" binding:"required"`
	Occupation  *string         `json:"occupation"`
	RoomID      *uuid.UUID      `json:"room_id"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	JoiningDate string          `json:"joining_date" binding:"required"`
}

func (h *TenantHandler) bindTenantInput(c *gin.Context) (services.TenantInput, bool) {
	var req TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return services.TenantInput{}, false
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return services.TenantInput{}, false
	}

	joiningDate, ok := parseDateField(c, "joining_date", req.JoiningDate)
	if !ok {
		return services.TenantInput{}, false
	}

	return services.TenantInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Occupation:  req.Occupation,
		RoomID:      req.RoomID,
		MonthlyRent: req.MonthlyRent,
		JoiningDate: joiningDate,
	}, true
}

// List handles GET /api/v1/tenants. Pass active=true to hide departed
// tenants.
func (h *TenantHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	tenants, err := h.service.ListTenants(c.Request.Context(), activeOnly)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list tenants", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenants": tenants,
		"count":   len(tenants),
	})
}

// Get handles GET /api/v1/tenants/:id.
func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tenant, err := h.service.GetTenant(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			apierrors.NotFound(c, "Tenant not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to get tenant", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenant": tenant})
}

// Payments handles GET /api/v1/tenants/:id/payments, the tenant's payment
// history newest first. Payments survive deactivation, so this works for
// departed tenants too.
func (h *TenantHandler) Payments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.service.GetTenant(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			apierrors.NotFound(c, "Tenant not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to get tenant", err)
		return
	}

	payments, err := h.paymentService.TenantPayments(c.Request.Context(), id)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list tenant payments", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": mapPayments(payments),
		"count":    len(payments),
	})
}

// Create handles POST /api/v1/tenants. Owner only.
func (h *TenantHandler) Create(c *gin.Context) {
	in, ok := h.bindTenantInput(c)
	if !ok {
		return
	}

	tenant, err := h.service.CreateTenant(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTenantName),
			errors.Is(err, services.ErrTenantPhone),
			errors.Is(err, services.ErrTenantRent):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to create tenant", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tenant": tenant})
}

// Update handles PUT /api/v1/tenants/:id. Owner only.
func (h *TenantHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	in, ok := h.bindTenantInput(c)
	if !ok {
		return
	}

	tenant, err := h.service.UpdateTenant(c.Request.Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTenantNotFound):
			apierrors.NotFound(c, "Tenant not found")
		case errors.Is(err, services.ErrTenantName),
			errors.Is(err, services.ErrTenantPhone),
			errors.Is(err, services.ErrTenantRent):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to update tenant", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenant": tenant})
}

// Deactivate handles POST /api/v1/tenants/:id/deactivate. Owner only. The
// tenant keeps their payment history but is detached from their room.
func (h *TenantHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tenant, err := h.service.DeactivateTenant(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			apierrors.NotFound(c, "Tenant not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to deactivate tenant", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenant": tenant})
}
