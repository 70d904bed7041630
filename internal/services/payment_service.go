package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/rentbook/api/internal/format"
	"github.com/rentbook/api/internal/logger"
	"github.com/rentbook/api/internal/models"
	"github.com/rentbook/api/internal/notify"
	"github.com/rentbook/api/internal/repository"
)

// fullPaymentNote is the fixed note attached to the transaction inserted by
// the mark-fully-paid flow.
const fullPaymentNote = "Full payment"

// Service-level errors for payments.
var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentStatusFilter = errors.New("status filter must be one of: pending, paid, overdue, partial")
	ErrPaymentMonth        = errors.New("payment month must be between 1 and 12")
	ErrPaymentAmount       = errors.New("payment amount must be positive")
	ErrTransactionAmount   = errors.New("transaction amount must be positive")
	ErrTransactionOverpays = errors.New("transaction amount exceeds the outstanding balance")
	ErrPaymentAlreadyPaid  = errors.New("payment is already fully settled")
	ErrPaymentDuplicate    = errors.New("a payment for this tenant and period already exists")
)

// CreatePaymentInput describes one rent demand for a tenant and period.
type CreatePaymentInput struct {
	TenantID uuid.UUID
	Amount   decimal.Decimal
	Month    int
	Year     int
	DueDate  time.Time
}

// PartialPaymentInput describes one installment against a payment.
type PartialPaymentInput struct {
	Amount      decimal.Decimal
	PaymentDate time.Time
	Note        *string
}

// PaymentService defines the interface for payment business logic.
type PaymentService interface {
	// ListPayments returns payments with tenant, room and building. A
	// non-nil status restricts to one display bucket (the overdue and
	// partial buckets expand to their stored variants).
	// Returns ErrPaymentStatusFilter for an unknown bucket.
	ListPayments(ctx context.Context, status *models.DisplayStatus) ([]models.PaymentWithTenant, error)

	// DueToday returns pending payments due today.
	DueToday(ctx context.Context) ([]models.PaymentWithTenant, error)

	// Overdue returns unsettled payments past their due date.
	Overdue(ctx context.Context) ([]models.PaymentWithTenant, error)

	// TenantPayments returns a tenant's payment history, newest first.
	TenantPayments(ctx context.Context, tenantID uuid.UUID) ([]models.Payment, error)

	// GetPayment returns one payment.
	// Returns ErrPaymentNotFound if it does not exist.
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)

	// CreatePayment creates a pending payment for a tenant and period.
	CreatePayment(ctx context.Context, in CreatePaymentInput) (*models.Payment, error)

	// Transactions returns a payment's recorded installments, newest first.
	// Returns ErrPaymentNotFound if the payment does not exist.
	Transactions(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentTransaction, error)

	// RecordPartialPayment appends one installment. The amount is validated
	// against the payment's current balance here, at the service boundary,
	// regardless of what any client-side form allowed.
	RecordPartialPayment(ctx context.Context, paymentID uuid.UUID, in PartialPaymentInput, actingUser uuid.UUID) (*models.Payment, error)

	// MarkFullyPaid settles the remaining balance with a single transaction
	// dated today, attributed to the acting user.
	// Returns ErrPaymentNotFound or ErrPaymentAlreadyPaid.
	MarkFullyPaid(ctx context.Context, paymentID uuid.UUID, actingUser uuid.UUID) (*models.Payment, error)

	// ReminderLink builds a WhatsApp reminder deep link for a payment's
	// outstanding balance, addressed to its tenant.
	ReminderLink(ctx context.Context, paymentID uuid.UUID) (string, error)
}

// paymentService is the concrete implementation of PaymentService.
type paymentService struct {
	repo       repository.PaymentRepository
	tenantRepo repository.TenantRepository
	log        *logger.Logger
	now        func() time.Time
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(repo repository.PaymentRepository, tenantRepo repository.TenantRepository, log *logger.Logger) PaymentService {
	return &paymentService{
		repo:       repo,
		tenantRepo: tenantRepo,
		log:        log,
		now:        time.Now,
	}
}

func (s *paymentService) ListPayments(ctx context.Context, status *models.DisplayStatus) ([]models.PaymentWithTenant, error) {
	var statuses []models.PaymentStatus
	if status != nil {
		if !models.ValidDisplayStatus(*status) {
			return nil, fmt.Errorf("%w: got %q", ErrPaymentStatusFilter, *status)
		}
		statuses = models.StoredStatuses(*status)
	}

	payments, err := s.repo.List(ctx, statuses)
	if err != nil {
		s.log.Error("Failed to list payments", err, nil)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}

func (s *paymentService) DueToday(ctx context.Context) ([]models.PaymentWithTenant, error) {
	payments, err := s.repo.ListDueToday(ctx, s.now())
	if err != nil {
		s.log.Error("Failed to list payments due today", err, nil)
		return nil, fmt.Errorf("failed to list payments due today: %w", err)
	}
	return payments, nil
}

func (s *paymentService) Overdue(ctx context.Context) ([]models.PaymentWithTenant, error) {
	payments, err := s.repo.ListOverdue(ctx, s.now())
	if err != nil {
		s.log.Error("Failed to list overdue payments", err, nil)
		return nil, fmt.Errorf("failed to list overdue payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) TenantPayments(ctx context.Context, tenantID uuid.UUID) ([]models.Payment, error) {
	payments, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		s.log.Error("Failed to list tenant payments", err, map[string]interface{}{"tenant_id": tenantID})
		return nil, fmt.Errorf("failed to list tenant payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get payment", err, map[string]interface{}{"payment_id": id})
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *paymentService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	if in.Month < 1 || in.Month > 12 {
		return nil, fmt.Errorf("%w: got %d", ErrPaymentMonth, in.Month)
	}
	if !in.Amount.IsPositive() {
		return nil, ErrPaymentAmount
	}

	// New payments start pending; due dates in the past flip to overdue on
	// the first recorded write, per the derived-status policy.
	payment := &models.Payment{
		TenantID: in.TenantID,
		Amount:   in.Amount,
		Month:    in.Month,
		Year:     in.Year,
		DueDate:  in.DueDate,
		Status:   models.DeriveStatus(in.Amount, decimal.Zero, in.DueDate, s.now()),
	}

	created, err := s.repo.Create(ctx, payment)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation on the one-payment-per-period index
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrPaymentDuplicate
		}
		s.log.Error("Failed to create payment", err, map[string]interface{}{
			"tenant_id": in.TenantID,
			"month":     in.Month,
			"year":      in.Year,
		})
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.log.Info("Payment created", map[string]interface{}{
		"payment_id": created.ID,
		"tenant_id":  created.TenantID,
		"month":      created.Month,
		"year":       created.Year,
	})

	return created, nil
}

func (s *paymentService) Transactions(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentTransaction, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		s.log.Error("Failed to get payment", err, map[string]interface{}{"payment_id": paymentID})
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	transactions, err := s.repo.Transactions(ctx, paymentID)
	if err != nil {
		s.log.Error("Failed to list transactions", err, map[string]interface{}{"payment_id": paymentID})
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}

func (s *paymentService) RecordPartialPayment(ctx context.Context, paymentID uuid.UUID, in PartialPaymentInput, actingUser uuid.UUID) (*models.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrTransactionAmount
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		s.log.Error("Failed to get payment", err, map[string]interface{}{"payment_id": paymentID})
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	// The entry form caps the amount at the balance, but that cap is a UI
	// convenience. The real check happens here.
	if in.Amount.GreaterThan(payment.Balance()) {
		return nil, fmt.Errorf("%w: balance is %s", ErrTransactionOverpays, payment.Balance())
	}

	updated, inserted, err := s.repo.RecordTransaction(ctx, repository.RecordTransactionInput{
		PaymentID:   paymentID,
		Amount:      in.Amount,
		PaymentDate: in.PaymentDate,
		Note:        in.Note,
		CreatedBy:   actingUser,
	})
	if err != nil {
		s.log.Error("Failed to record payment transaction", err, map[string]interface{}{
			"payment_id": paymentID,
			"amount":     in.Amount,
		})
		return nil, fmt.Errorf("failed to record payment transaction: %w", err)
	}
	if updated == nil {
		// The payment vanished between the read and the insert.
		return nil, ErrPaymentNotFound
	}

	s.log.Info("Payment transaction recorded", map[string]interface{}{
		"payment_id":     paymentID,
		"transaction_id": inserted.ID,
		"amount":         inserted.Amount,
		"status":         string(updated.Status),
	})

	return updated, nil
}

func (s *paymentService) MarkFullyPaid(ctx context.Context, paymentID uuid.UUID, actingUser uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		s.log.Error("Failed to get payment", err, map[string]interface{}{"payment_id": paymentID})
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	remaining := payment.Balance()
	if !remaining.IsPositive() {
		return nil, ErrPaymentAlreadyPaid
	}

	note := fullPaymentNote
	updated, _, err := s.repo.RecordTransaction(ctx, repository.RecordTransactionInput{
		PaymentID:   paymentID,
		Amount:      remaining,
		PaymentDate: s.now(),
		Note:        &note,
		CreatedBy:   actingUser,
	})
	if err != nil {
		s.log.Error("Failed to mark payment paid", err, map[string]interface{}{
			"payment_id": paymentID,
			"remaining":  remaining,
		})
		return nil, fmt.Errorf("failed to mark payment paid: %w", err)
	}
	if updated == nil {
		return nil, ErrPaymentNotFound
	}

	s.log.Info("Payment marked fully paid", map[string]interface{}{
		"payment_id": paymentID,
		"amount":     remaining,
		"marked_by":  actingUser,
	})

	return updated, nil
}

func (s *paymentService) ReminderLink(ctx context.Context, paymentID uuid.UUID) (string, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		s.log.Error("Failed to get payment", err, map[string]interface{}{"payment_id": paymentID})
		return "", fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return "", ErrPaymentNotFound
	}

	tenant, err := s.tenantRepo.GetByID(ctx, payment.TenantID)
	if err != nil {
		s.log.Error("Failed to get tenant for reminder", err, map[string]interface{}{
			"payment_id": paymentID,
			"tenant_id":  payment.TenantID,
		})
		return "", fmt.Errorf("failed to get tenant for reminder: %w", err)
	}
	if tenant == nil {
		return "", ErrTenantNotFound
	}

	// The reminder asks for the outstanding balance, not the nominal rent.
	link := notify.WhatsAppLink(tenant.Phone, tenant.Name, payment.Balance(), format.MonthName(payment.Month))

	s.log.Info("Reminder link built", map[string]interface{}{
		"payment_id": paymentID,
		"tenant_id":  tenant.ID,
	})

	return link, nil
}
