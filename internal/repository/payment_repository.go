package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rentbook/api/internal/database"
	"github.com/rentbook/api/internal/models"
)

// RecordTransactionInput describes one installment to append to a payment.
type RecordTransactionInput struct {
	PaymentID   uuid.UUID
	Amount      decimal.Decimal
	PaymentDate time.Time
	Note        *string
	CreatedBy   uuid.UUID
}

// PaymentRepository defines the interface for payment data access operations.
type PaymentRepository interface {
	// List returns payments joined with tenant, room and building, ordered
	// by due date. An empty status list returns everything.
	List(ctx context.Context, statuses []models.PaymentStatus) ([]models.PaymentWithTenant, error)

	// ListDueToday returns pending payments whose due date is today.
	ListDueToday(ctx context.Context, today time.Time) ([]models.PaymentWithTenant, error)

	// ListOverdue returns unsettled payments whose due date is before today,
	// oldest first.
	ListOverdue(ctx context.Context, today time.Time) ([]models.PaymentWithTenant, error)

	// ListByTenant returns a tenant's payments, newest period first.
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Payment, error)

	// GetByID returns the payment with the given id.
	// Returns nil, nil if no payment is found (not an error).
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)

	// Create inserts a new pending payment with nothing paid yet.
	Create(ctx context.Context, p *models.Payment) (*models.Payment, error)

	// Transactions returns a payment's installments, newest first.
	Transactions(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentTransaction, error)

	// RecordTransaction appends one installment and, in the same database
	// transaction, reconciles the payment's amount_paid from the transaction
	// log and re-derives its status. When the payment becomes settled it
	// stamps paid_date and marked_by. Returns the updated payment and the
	// inserted transaction, or nil, nil, nil if the payment does not exist.
	RecordTransaction(ctx context.Context, in RecordTransactionInput) (*models.Payment, *models.PaymentTransaction, error)
}

// paymentRepository is the concrete implementation of PaymentRepository.
type paymentRepository struct {
	db *database.Database
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *database.Database) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `
	p.id,
	p.tenant_id,
	p.amount,
	p.amount_paid,
	p.month,
	p.year,
	p.due_date,
	p.paid_date,
	p.status,
	p.marked_by,
	p.created_at,
	p.updated_at
`

// paymentWithTenantQuery fetches payment -> tenant -> room -> building in
// one round trip, the same nested shape list views render.
const paymentWithTenantQuery = `
	SELECT ` + paymentColumns + `,
		t.id,
		t.name,
		t.phone,
		t.occupation,
		t.room_id,
		t.monthly_rent,
		t.joining_date,
		t.leaving_date,
		t.is_active,
		t.created_at,
		t.updated_at,
		r.id,
		r.building_id,
		r.room_number,
		r.room_type,
		r.capacity,
		r.rent_amount,
		r.created_at,
		r.updated_at,
		b.id,
		b.name,
		b.address,
		b.total_rooms,
		b.created_by,
		b.created_at,
		b.updated_at
	FROM payments p
	JOIN tenants t ON t.id = p.tenant_id
	LEFT JOIN rooms r ON r.id = t.room_id
	LEFT JOIN buildings b ON b.id = r.building_id
`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.Amount,
		&p.AmountPaid,
		&p.Month,
		&p.Year,
		&p.DueDate,
		&p.PaidDate,
		&p.Status,
		&p.MarkedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// scanPaymentWithTenant scans one joined row. Room and building columns are
// nullable because the tenant may be unassigned.
func scanPaymentWithTenant(row pgx.Row) (*models.PaymentWithTenant, error) {
	var payment models.PaymentWithTenant
	var tenant models.TenantWithRoom

	var (
		roomID         *uuid.UUID
		roomBuildingID *uuid.UUID
		roomNumber     *string
		roomType       *string
		roomCapacity   *int
		roomRent       decimal.NullDecimal
		roomCreatedAt  *time.Time
		roomUpdatedAt  *time.Time

		buildingID         *uuid.UUID
		buildingName       *string
		buildingAddress    *string
		buildingTotalRooms *int
		buildingCreatedBy  *uuid.UUID
		buildingCreatedAt  *time.Time
		buildingUpdatedAt  *time.Time
	)

	err := row.Scan(
		&payment.ID,
		&payment.TenantID,
		&payment.Amount,
		&payment.AmountPaid,
		&payment.Month,
		&payment.Year,
		&payment.DueDate,
		&payment.PaidDate,
		&payment.Status,
		&payment.MarkedBy,
		&payment.CreatedAt,
		&payment.UpdatedAt,
		&tenant.ID,
		&tenant.Name,
		&tenant.Phone,
		&tenant.Occupation,
		&tenant.RoomID,
		&tenant.MonthlyRent,
		&tenant.JoiningDate,
		&tenant.LeavingDate,
		&tenant.IsActive,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
		&roomID,
		&roomBuildingID,
		&roomNumber,
		&roomType,
		&roomCapacity,
		&roomRent,
		&roomCreatedAt,
		&roomUpdatedAt,
		&buildingID,
		&buildingName,
		&buildingAddress,
		&buildingTotalRooms,
		&buildingCreatedBy,
		&buildingCreatedAt,
		&buildingUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if roomID != nil {
		room := models.RoomWithBuilding{
			Room: models.Room{
				ID:         *roomID,
				BuildingID: *roomBuildingID,
				RoomNumber: *roomNumber,
				RoomType:   *roomType,
				Capacity:   *roomCapacity,
				RentAmount: roomRent.Decimal,
				CreatedAt:  *roomCreatedAt,
				UpdatedAt:  *roomUpdatedAt,
			},
		}
		if buildingID != nil {
			room.Building = &models.Building{
				ID:         *buildingID,
				Name:       *buildingName,
				Address:    buildingAddress,
				TotalRooms: *buildingTotalRooms,
				CreatedBy:  buildingCreatedBy,
				CreatedAt:  *buildingCreatedAt,
				UpdatedAt:  *buildingUpdatedAt,
			}
		}
		tenant.Room = &room
	}

	payment.Tenant = &tenant
	return &payment, nil
}

func (r *paymentRepository) queryPaymentsWithTenant(ctx context.Context, query string, args ...interface{}) ([]models.PaymentWithTenant, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []models.PaymentWithTenant{}
	for rows.Next() {
		p, err := scanPaymentWithTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}

	return payments, nil
}

func (r *paymentRepository) List(ctx context.Context, statuses []models.PaymentStatus) ([]models.PaymentWithTenant, error) {
	query := paymentWithTenantQuery
	args := []interface{}{}

	if len(statuses) > 0 {
		query += ` WHERE p.status = ANY($1)`
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		args = append(args, values)
	}
	query += ` ORDER BY p.due_date`

	return r.queryPaymentsWithTenant(ctx, query, args...)
}

func (r *paymentRepository) ListDueToday(ctx context.Context, today time.Time) ([]models.PaymentWithTenant, error) {
	query := paymentWithTenantQuery + `
		WHERE p.due_date = $1 AND p.status = 'pending'
		ORDER BY p.created_at
	`
	return r.queryPaymentsWithTenant(ctx, query, today)
}

func (r *paymentRepository) ListOverdue(ctx context.Context, today time.Time) ([]models.PaymentWithTenant, error) {
	query := paymentWithTenantQuery + `
		WHERE p.due_date < $1 AND p.status <> 'paid'
		ORDER BY p.due_date
	`
	return r.queryPaymentsWithTenant(ctx, query, today)
}

func (r *paymentRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments p
		WHERE p.tenant_id = $1
		ORDER BY p.year DESC, p.month DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}

	return payments, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.id = $1`

	p, err := scanPayment(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query payment %s: %w", id, err)
	}

	return p, nil
}

const paymentColumnsBare = `
	id, tenant_id, amount, amount_paid, month, year,
	due_date, paid_date, status, marked_by, created_at, updated_at
`

func (r *paymentRepository) Create(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	query := `
		INSERT INTO payments (tenant_id, amount, amount_paid, month, year, due_date, status)
		VALUES ($1, $2, 0, $3, $4, $5, $6)
		RETURNING ` + paymentColumnsBare

	created, err := scanPayment(r.db.Pool.QueryRow(ctx, query,
		p.TenantID,
		p.Amount,
		p.Month,
		p.Year,
		p.DueDate,
		string(p.Status),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	return created, nil
}

const transactionColumns = `
	id, payment_id, amount, payment_date, note, created_by, created_at
`

func scanTransaction(row pgx.Row) (*models.PaymentTransaction, error) {
	var t models.PaymentTransaction
	err := row.Scan(
		&t.ID,
		&t.PaymentID,
		&t.Amount,
		&t.PaymentDate,
		&t.Note,
		&t.CreatedBy,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *paymentRepository) Transactions(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM payment_transactions
		WHERE payment_id = $1
		ORDER BY payment_date DESC, created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for payment %s: %w", paymentID, err)
	}
	defer rows.Close()

	transactions := []models.PaymentTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

// RecordTransaction is the only write path that changes a payment's paid
// amount. It locks the payment row, appends the installment, recomputes
// amount_paid as the sum of the transaction log and re-derives the status,
// all in one database transaction, so the running total and the log cannot
// drift apart.
func (r *paymentRepository) RecordTransaction(ctx context.Context, in RecordTransactionInput) (*models.Payment, *models.PaymentTransaction, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the payment row for the duration of the reconciliation.
	payment, err := scanPayment(tx.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments p WHERE p.id = $1 FOR UPDATE`,
		in.PaymentID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to lock payment %s: %w", in.PaymentID, err)
	}

	inserted, err := scanTransaction(tx.QueryRow(ctx, `
		INSERT INTO payment_transactions (payment_id, amount, payment_date, note, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+transactionColumns,
		in.PaymentID,
		in.Amount,
		in.PaymentDate,
		in.Note,
		in.CreatedBy,
	))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert transaction for payment %s: %w", in.PaymentID, err)
	}

	// Reconcile the running total from the append-only log.
	var amountPaid decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payment_transactions WHERE payment_id = $1`,
		in.PaymentID,
	).Scan(&amountPaid)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum transactions for payment %s: %w", in.PaymentID, err)
	}

	status := models.DeriveStatus(payment.Amount, amountPaid, payment.DueDate, time.Now())

	var paidDate *time.Time
	var markedBy *uuid.UUID
	if status == models.StatusPaid {
		settledOn := in.PaymentDate
		paidDate = &settledOn
		markedBy = &in.CreatedBy
	} else {
		paidDate = payment.PaidDate
		markedBy = payment.MarkedBy
	}

	updated, err := scanPayment(tx.QueryRow(ctx, `
		UPDATE payments p
		SET amount_paid = $2, status = $3, paid_date = $4, marked_by = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+paymentColumns,
		in.PaymentID,
		amountPaid,
		string(status),
		paidDate,
		markedBy,
	))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update payment %s: %w", in.PaymentID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction for payment %s: %w", in.PaymentID, err)
	}

	return updated, inserted, nil
}
