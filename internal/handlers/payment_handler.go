package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apierrors "github.com/rentbook/api/internal/errors"
	"github.com/rentbook/api/internal/models"
	"github.com/rentbook/api/internal/services"
)

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	service services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler instance.
func NewPaymentHandler(service services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreatePaymentRequest is the request body for creating a payment.
// DueDate is a yyyy-mm-dd string.
type CreatePaymentRequest struct {
	TenantID uuid.UUID       `json:"tenant_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Month    int             `json:"month" binding:"required,min=1,max=12"`
	Year     int             `json:"year" binding:"required"`
	DueDate  string          `json:"due_date" binding:"required"`
}

// TransactionRequest is the request body for recording an installment.
// PaymentDate is a yyyy-mm-dd string.
type TransactionRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate string          `json:"payment_date" binding:"required"`
	Note        *string         `json:"note"`
}

// PaymentView is a payment plus the figures list views derive from it: the
// outstanding balance and the collapsed display status.
type PaymentView struct {
	models.Payment
	Balance       decimal.Decimal      `json:"balance"`
	DisplayStatus models.DisplayStatus `json:"display_status"`
}

// PaymentWithTenantView is PaymentView with the tenant joined in.
type PaymentWithTenantView struct {
	PaymentView
	Tenant *models.TenantWithRoom `json:"tenant,omitempty"`
}

func mapPayment(p models.Payment) PaymentView {
	return PaymentView{
		Payment:       p,
		Balance:       p.Balance(),
		DisplayStatus: p.DisplayStatus(),
	}
}

func mapPayments(payments []models.Payment) []PaymentView {
	views := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, mapPayment(p))
	}
	return views
}

func mapPaymentsWithTenant(payments []models.PaymentWithTenant) []PaymentWithTenantView {
	views := make([]PaymentWithTenantView, 0, len(payments))
	for _, p := range payments {
		views = append(views, PaymentWithTenantView{
			PaymentView: mapPayment(p.Payment),
			Tenant:      p.Tenant,
		})
	}
	return views
}

// List handles GET /api/v1/payments. An optional status query parameter
// filters by display bucket (pending, paid, overdue, partial); the overdue
// bucket includes partially paid overdue payments.
func (h *PaymentHandler) List(c *gin.Context) {
	var status *models.DisplayStatus
	if raw := c.Query("status"); raw != "" {
		s := models.DisplayStatus(raw)
		status = &s
	}

	payments, err := h.service.ListPayments(c.Request.Context(), status)
	if err != nil {
		if errors.Is(err, services.ErrPaymentStatusFilter) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to list payments", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": mapPaymentsWithTenant(payments),
		"count":    len(payments),
	})
}

// DueToday handles GET /api/v1/payments/due-today.
func (h *PaymentHandler) DueToday(c *gin.Context) {
	payments, err := h.service.DueToday(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list payments due today", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": mapPaymentsWithTenant(payments),
		"count":    len(payments),
	})
}

// Overdue handles GET /api/v1/payments/overdue.
func (h *PaymentHandler) Overdue(c *gin.Context) {
	payments, err := h.service.Overdue(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list overdue payments", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": mapPaymentsWithTenant(payments),
		"count":    len(payments),
	})
}

// Get handles GET /api/v1/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			apierrors.NotFound(c, "Payment not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to get payment", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": mapPayment(*payment)})
}

// Create handles POST /api/v1/payments. Owner only.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	dueDate, ok := parseDateField(c, "due_date", req.DueDate)
	if !ok {
		return
	}

	payment, err := h.service.CreatePayment(c.Request.Context(), services.CreatePaymentInput{
		TenantID: req.TenantID,
		Amount:   req.Amount,
		Month:    req.Month,
		Year:     req.Year,
		DueDate:  dueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentMonth),
			errors.Is(err, services.ErrPaymentAmount):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, services.ErrPaymentDuplicate):
			apierrors.Conflict(c, err.Error())
		default:
			apierrors.InternalServerError(c, "Failed to create payment", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": mapPayment(*payment)})
}

// Transactions handles GET /api/v1/payments/:id/transactions, the recorded
// installments newest first.
func (h *PaymentHandler) Transactions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	transactions, err := h.service.Transactions(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			apierrors.NotFound(c, "Payment not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to list transactions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// RecordTransaction handles POST /api/v1/payments/:id/transactions. Both
// roles may record money received. The amount must be positive and no larger
// than the outstanding balance.
func (h *PaymentHandler) RecordTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	paymentDate, ok := parseDateField(c, "payment_date", req.PaymentDate)
	if !ok {
		return
	}

	userID, ok := actingUser(c)
	if !ok {
		return
	}

	payment, err := h.service.RecordPartialPayment(c.Request.Context(), id, services.PartialPaymentInput{
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Note:        req.Note,
	}, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			apierrors.NotFound(c, "Payment not found")
		case errors.Is(err, services.ErrTransactionAmount):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, services.ErrTransactionOverpays):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to record transaction", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": mapPayment(*payment)})
}

// MarkPaid handles POST /api/v1/payments/:id/mark-paid. Both roles may
// settle a payment; the remaining balance is recorded as one transaction
// dated today.
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := actingUser(c)
	if !ok {
		return
	}

	payment, err := h.service.MarkFullyPaid(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			apierrors.NotFound(c, "Payment not found")
		case errors.Is(err, services.ErrPaymentAlreadyPaid):
			apierrors.Conflict(c, err.Error())
		default:
			apierrors.InternalServerError(c, "Failed to mark payment paid", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": mapPayment(*payment)})
}

// Reminder handles GET /api/v1/payments/:id/reminder. Returns a WhatsApp
// deep link pre-filled with a reminder message for the payment's balance.
func (h *PaymentHandler) Reminder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	link, err := h.service.ReminderLink(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			apierrors.NotFound(c, "Payment not found")
		case errors.Is(err, services.ErrTenantNotFound):
			apierrors.NotFound(c, "Tenant not found")
		default:
			apierrors.InternalServerError(c, "Failed to build reminder link", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": link})
}
