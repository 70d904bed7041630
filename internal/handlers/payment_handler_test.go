package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rentbook/api/internal/logger"
	"github.com/rentbook/api/internal/middleware"
	"github.com/rentbook/api/internal/models"
	"github.com/rentbook/api/internal/services"
)

// MockPaymentService is a mock implementation of PaymentService for testing
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ListPayments(ctx context.Context, status *models.DisplayStatus) ([]models.PaymentWithTenant, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentWithTenant), args.Error(1)
}

func (m *MockPaymentService) DueToday(ctx context.Context) ([]models.PaymentWithTenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentWithTenant), args.Error(1)
}

func (m *MockPaymentService) Overdue(ctx context.Context) ([]models.PaymentWithTenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentWithTenant), args.Error(1)
}

func (m *MockPaymentService) TenantPayments(ctx context.Context, tenantID uuid.UUID) ([]models.Payment, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *MockPaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) CreatePayment(ctx context.Context, in services.CreatePaymentInput) (*models.Payment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) Transactions(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentTransaction, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentTransaction), args.Error(1)
}

func (m *MockPaymentService) RecordPartialPayment(ctx context.Context, paymentID uuid.UUID, in services.PartialPaymentInput, actingUser uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, paymentID, in, actingUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) MarkFullyPaid(ctx context.Context, paymentID uuid.UUID, actingUser uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, paymentID, actingUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) ReminderLink(ctx context.Context, paymentID uuid.UUID) (string, error) {
	args := m.Called(ctx, paymentID)
	return args.String(0), args.Error(1)
}

// stubAuth injects an authenticated user without going through JWT parsing.
func stubAuth(userID uuid.UUID, role models.AppRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID.String())
		c.Set(middleware.UserRoleKey, role)
		c.Next()
	}
}

func setupPaymentTestRouter(handler *PaymentHandler, userID uuid.UUID, role models.AppRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("test")

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	v1 := router.Group("/api/v1")
	v1.Use(stubAuth(userID, role))
	{
		payments := v1.Group("/payments")
		{
			payments.GET("", handler.List)
			payments.GET("/due-today", handler.DueToday)
			payments.GET("/:id", handler.Get)
			payments.GET("/:id/reminder", handler.Reminder)
			payments.POST("", middleware.RequireOwner(), handler.Create)
			payments.POST("/:id/transactions", handler.RecordTransaction)
			payments.POST("/:id/mark-paid", handler.MarkPaid)
		}
	}

	return router
}

func decBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListPayments_StatusFilterRejected(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	router := setupPaymentTestRouter(handler, uuid.New(), models.RoleOwner)

	mockService.On("ListPayments", mock.Anything, mock.Anything).
		Return(nil, services.ErrPaymentStatusFilter)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments?status=bogus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPayments_IncludesDerivedFields(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	router := setupPaymentTestRouter(handler, uuid.New(), models.RoleStaff)

	payment := models.Payment{
		ID:         uuid.New(),
		Amount:     decimal.RequireFromString("6000"),
		AmountPaid: decimal.RequireFromString("2500"),
		Status:     models.StatusPartialOverdue,
	}
	mockService.On("ListPayments", mock.Anything, (*models.DisplayStatus)(nil)).
		Return([]models.PaymentWithTenant{{Payment: payment}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decBody(t, w)
	assert.Equal(t, float64(1), body["count"])

	payments := body["payments"].([]interface{})
	first := payments[0].(map[string]interface{})
	assert.Equal(t, "3500", first["balance"])
	assert.Equal(t, "overdue", first["display_status"])
	assert.Equal(t, "partial_overdue", first["status"])
}

func TestGetPayment_NotFound(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	router := setupPaymentTestRouter(handler, uuid.New(), models.RoleOwner)

	id := uuid.New()
	mockService.On("GetPayment", mock.Anything, id).Return(nil, services.ErrPaymentNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/"+id.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPayment_BadID(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	router := setupPaymentTestRouter(handler, uuid.New(), models.RoleOwner)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetPayment")
}

func TestCreatePayment_StaffForbidden(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	router := setupPaymentTestRouter(handler, uuid.New(), models.RoleStaff)

	payload := `{"tenant_id":"` + uuid.NewString() + `","amount":"6000","month":3,"year":2025,"due_date":"2025-03-05"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertNotCalled(t, "CreatePayment")
}

func TestCreatePayment_OwnerSuccess(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	router := setupPaymentTestRouter(handler, uuid.New(), models.RoleOwner)

	tenantID := uuid.New()
	created := &models.Payment{
		ID:       uuid.New(),
		TenantID: tenantID,
		Amount:   decimal.RequireFromString("6000"),
		Month:    3,
		Year:     2025,
		Status:   models.StatusPending,
	}
	mockService.On("CreatePayment", mock.Anything, mock.MatchedBy(func(in services.CreatePaymentInput) bool {
		return in.TenantID == tenantID &&
			in.Month == 3 &&
			in.DueDate.Equal(time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC))
	})).Return(created, nil)

	payload := `{"tenant_id":"` + tenantID.String() + `","amount":"6000","month":3,"year":2025,"due_date":"2025-03-05"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreatePayment_DuplicatePeriod(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	router := setupPaymentTestRouter(handler, uuid.New(), models.RoleOwner)

	mockService.On("CreatePayment", mock.Anything, mock.Anything).
		Return(nil, services.ErrPaymentDuplicate)

	payload := `{"tenant_id":"` + uuid.NewString() + `","amount":"6000","month":3,"year":2025,"due_date":"2025-03-05"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreatePayment_BadDueDate(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	router := setupPaymentTestRouter(handler, uuid.New(), models.RoleOwner)

	payload := `{"tenant_id":"` + uuid.NewString() + `","amount":"6000","month":3,"year":2025,"due_date":"05-03-2025"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreatePayment")
}

func TestRecordTransaction_StaffAllowed(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	staffID := uuid.New()
	router := setupPaymentTestRouter(handler, staffID, models.RoleStaff)

	paymentID := uuid.New()
	updated := &models.Payment{
		ID:         paymentID,
		Amount:     decimal.RequireFromString("6000"),
		AmountPaid: decimal.RequireFromString("2500"),
		Status:     models.StatusPartial,
	}

	mockService.On("RecordPartialPayment", mock.Anything, paymentID, mock.MatchedBy(func(in services.PartialPaymentInput) bool {
		return in.Amount.Equal(decimal.RequireFromString("2500")) &&
			in.Note != nil && *in.Note == "upi transfer"
	}), staffID).Return(updated, nil)

	payload := `{"amount":"2500","payment_date":"2025-03-08","note":"upi transfer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+paymentID.String()+"/transactions", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decBody(t, w)
	payment := body["payment"].(map[string]interface{})
	assert.Equal(t, "partial", payment["status"])
	assert.Equal(t, "3500", payment["balance"])
	mockService.AssertExpectations(t)
}

func TestRecordTransaction_OverBalance(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	router := setupPaymentTestRouter(handler, uuid.New(), models.RoleOwner)

	paymentID := uuid.New()
	mockService.On("RecordPartialPayment", mock.Anything, paymentID, mock.Anything, mock.Anything).
		Return(nil, services.ErrTransactionOverpays)

	payload := `{"amount":"99999","payment_date":"2025-03-08"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+paymentID.String()+"/transactions", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkPaid_Conflict(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	router := setupPaymentTestRouter(handler, uuid.New(), models.RoleStaff)

	paymentID := uuid.New()
	mockService.On("MarkFullyPaid", mock.Anything, paymentID, mock.Anything).
		Return(nil, services.ErrPaymentAlreadyPaid)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+paymentID.String()+"/mark-paid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMarkPaid_Success(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	userID := uuid.New()
	router := setupPaymentTestRouter(handler, userID, models.RoleOwner)

	paymentID := uuid.New()
	settled := &models.Payment{
		ID:         paymentID,
		Amount:     decimal.RequireFromString("6000"),
		AmountPaid: decimal.RequireFromString("6000"),
		Status:     models.StatusPaid,
	}
	mockService.On("MarkFullyPaid", mock.Anything, paymentID, userID).Return(settled, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+paymentID.String()+"/mark-paid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decBody(t, w)
	payment := body["payment"].(map[string]interface{})
	assert.Equal(t, "paid", payment["status"])
	assert.Equal(t, "0", payment["balance"])
	mockService.AssertExpectations(t)
}

func TestReminder_ReturnsLink(t *testing.T) {
	mockService := new(MockPaymentService)
	handler := NewPaymentHandler(mockService)
	router := setupPaymentTestRouter(handler, uuid.New(), models.RoleStaff)

	paymentID := uuid.New()
	link := "https://wa.me/919876543210?text=hello"
	mockService.On("ReminderLink", mock.Anything, paymentID).Return(link, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/"+paymentID.String()+"/reminder", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decBody(t, w)
	assert.Equal(t, link, body["link"])
}
