package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the stored status of a payment row.
type PaymentStatus string

const (
	StatusPending        PaymentStatus = "pending"
	StatusPaid           PaymentStatus = "paid"
	StatusOverdue        PaymentStatus = "overdue"
	StatusPartial        PaymentStatus = "partial"
	StatusPartialOverdue PaymentStatus = "partial_overdue"
)

// DisplayStatus is the simplified four-bucket status used by list views.
// Both overdue variants collapse into DisplayOverdue.
type DisplayStatus string

const (
	DisplayPaid    DisplayStatus = "paid"
	DisplayPartial DisplayStatus = "partial"
	DisplayOverdue DisplayStatus = "overdue"
	DisplayPending DisplayStatus = "pending"
)

// Payment represents the rent due from a tenant for one billing period.
// AmountPaid is the running total of recorded transactions; it is reconciled
// from the transaction log inside the same database transaction that inserts
// a payment transaction, and Status is always recomputed via DeriveStatus in
// that path, so the stored field cannot drift from the actual balance.
type Payment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	AmountPaid decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount_paid"`
	Month      int             `gorm:"not null" json:"month"`
	Year       int             `gorm:"not null" json:"year"`
	DueDate    time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	PaidDate   *time.Time      `gorm:"type:date" json:"paid_date,omitempty"`
	Status     PaymentStatus   `gorm:"size:20;not null;default:'pending';index" json:"status"`
	MarkedBy   *uuid.UUID      `gorm:"type:uuid" json:"marked_by,omitempty"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the payments table.
func (Payment) TableName() string {
	return "payments"
}

// PaymentTransaction is one recorded installment against a payment.
// Rows are append-only; the sum of a payment's transactions is the source
// of truth for its AmountPaid.
type PaymentTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"payment_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"type:date;not null" json:"payment_date"`
	Note        *string         `gorm:"type:text" json:"note,omitempty"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for the payment_transactions table.
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

// PaymentWithTenant is a payment joined with its tenant (and, transitively,
// the tenant's room and building) for list views.
type PaymentWithTenant struct {
	Payment
	Tenant *TenantWithRoom `json:"tenant,omitempty"`
}

// Balance returns amount - amount_paid. It is intentionally not clamped:
// an overpaid payment yields a negative balance.
func (p *Payment) Balance() decimal.Decimal {
	return p.Amount.Sub(p.AmountPaid)
}

// IsPartial reports whether the payment has been partially settled.
func (p *Payment) IsPartial() bool {
	return p.Status == StatusPartial || p.Status == StatusPartialOverdue
}

// IsOverdue reports whether the payment is past its due date and unsettled.
func (p *Payment) IsOverdue() bool {
	return p.Status == StatusOverdue || p.Status == StatusPartialOverdue
}

// DisplayStatus collapses the five stored statuses into the four buckets
// used for badges. Unknown values fall back to pending.
func (p *Payment) DisplayStatus() DisplayStatus {
	switch p.Status {
	case StatusPaid:
		return DisplayPaid
	case StatusPartial:
		return DisplayPartial
	case StatusOverdue, StatusPartialOverdue:
		return DisplayOverdue
	default:
		return DisplayPending
	}
}

// DeriveStatus is the single authority for payment status. It is a pure
// function of the amounts and dates, computed whenever amounts change, so a
// stored status can never disagree with the balance it was derived from.
//
// Overdue means due_date is strictly before today at date granularity; a
// payment due today is not overdue.
func DeriveStatus(amount, amountPaid decimal.Decimal, dueDate, today time.Time) PaymentStatus {
	if amountPaid.GreaterThanOrEqual(amount) {
		return StatusPaid
	}

	overdue := truncateToDate(dueDate).Before(truncateToDate(today))
	partial := amountPaid.IsPositive()

	switch {
	case partial && overdue:
		return StatusPartialOverdue
	case partial:
		return StatusPartial
	case overdue:
		return StatusOverdue
	default:
		return StatusPending
	}
}

// ValidDisplayStatus reports whether s is one of the four display buckets.
func ValidDisplayStatus(s DisplayStatus) bool {
	switch s {
	case DisplayPaid, DisplayPartial, DisplayOverdue, DisplayPending:
		return true
	}
	return false
}

// StoredStatuses expands a display bucket into the stored statuses it covers.
func StoredStatuses(s DisplayStatus) []PaymentStatus {
	switch s {
	case DisplayPaid:
		return []PaymentStatus{StatusPaid}
	case DisplayPartial:
		return []PaymentStatus{StatusPartial, StatusPartialOverdue}
	case DisplayOverdue:
		return []PaymentStatus{StatusOverdue, StatusPartialOverdue}
	case DisplayPending:
		return []PaymentStatus{StatusPending}
	default:
		return nil
	}
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
