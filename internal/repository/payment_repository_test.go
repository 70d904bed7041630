package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentbook/api/internal/config"
	"github.com/rentbook/api/internal/database"
	"github.com/rentbook/api/internal/models"
)

// getTestConfig returns database configuration for integration tests.
func getTestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "rentbook"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:  2,
		PoolMax:  5,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupTestDatabase connects to the integration database, skipping in short
// mode. Requires the schema from migrations/ to be applied.
func setupTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}

	return db
}

// seedTenant inserts a throwaway tenant (no room) and registers cleanup.
// Payments and transactions cascade away with it.
func seedTenant(t *testing.T, db *database.Database) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	var id uuid.UUID
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO tenants (name, phone, monthly_rent, joining_date)
		VALUES ('Integration Tenant', '9876543210', 6000, '2025-01-01')
		RETURNING id
	`).Scan(&id)
	require.NoError(t, err, "Failed to seed tenant")

	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM tenants WHERE id = $1`, id)
	})

	return id
}

func TestPaymentLifecycle(t *testing.T) {
	db := setupTestDatabase(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewPaymentRepository(db)
	tenantID := seedTenant(t, db)
	userID := uuid.New()

	dueDate := time.Now().AddDate(0, 0, -5)

	created, err := repo.Create(ctx, &models.Payment{
		TenantID: tenantID,
		Amount:   decimal.RequireFromString("6000"),
		Month:    int(dueDate.Month()),
		Year:     dueDate.Year(),
		DueDate:  dueDate,
		Status:   models.StatusOverdue,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, created.AmountPaid.IsZero())

	// First installment leaves a balance and a partial_overdue status.
	note := "cash"
	updated, txn, err := repo.RecordTransaction(ctx, RecordTransactionInput{
		PaymentID:   created.ID,
		Amount:      decimal.RequireFromString("2500"),
		PaymentDate: time.Now(),
		Note:        &note,
		CreatedBy:   userID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, txn)
	assert.True(t, updated.AmountPaid.Equal(decimal.RequireFromString("2500")))
	assert.Equal(t, models.StatusPartialOverdue, updated.Status)
	assert.Nil(t, updated.PaidDate)

	// Second installment settles it and stamps paid_date / marked_by.
	updated, _, err = repo.RecordTransaction(ctx, RecordTransactionInput{
		PaymentID:   created.ID,
		Amount:      decimal.RequireFromString("3500"),
		PaymentDate: time.Now(),
		CreatedBy:   userID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.AmountPaid.Equal(decimal.RequireFromString("6000")))
	assert.Equal(t, models.StatusPaid, updated.Status)
	require.NotNil(t, updated.PaidDate)
	require.NotNil(t, updated.MarkedBy)
	assert.Equal(t, userID, *updated.MarkedBy)

	// The stored running total must equal the sum of the transaction log.
	transactions, err := repo.Transactions(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	total := decimal.Zero
	for _, txn := range transactions {
		total = total.Add(txn.Amount)
	}
	assert.True(t, total.Equal(updated.AmountPaid))
}

func TestRecordTransaction_MissingPayment(t *testing.T) {
	db := setupTestDatabase(t)
	defer db.Close()

	repo := NewPaymentRepository(db)

	updated, txn, err := repo.RecordTransaction(context.Background(), RecordTransactionInput{
		PaymentID:   uuid.New(),
		Amount:      decimal.RequireFromString("100"),
		PaymentDate: time.Now(),
		CreatedBy:   uuid.New(),
	})

	require.NoError(t, err)
	assert.Nil(t, updated)
	assert.Nil(t, txn)
}

func TestGetByID_MissingPayment(t *testing.T) {
	db := setupTestDatabase(t)
	defer db.Close()

	repo := NewPaymentRepository(db)

	payment, err := repo.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, payment)
}

func TestListByTenant_OrderedNewestFirst(t *testing.T) {
	db := setupTestDatabase(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewPaymentRepository(db)
	tenantID := seedTenant(t, db)

	periods := []struct{ month, year int }{
		{1, 2025}, {12, 2024}, {2, 2025},
	}
	for _, p := range periods {
		_, err := repo.Create(ctx, &models.Payment{
			TenantID: tenantID,
			Amount:   decimal.RequireFromString("6000"),
			Month:    p.month,
			Year:     p.year,
			DueDate:  time.Date(p.year, time.Month(p.month), 5, 0, 0, 0, 0, time.UTC),
			Status:   models.StatusPending,
		})
		require.NoError(t, err)
	}

	payments, err := repo.ListByTenant(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, payments, 3)

	assert.Equal(t, 2025, payments[0].Year)
	assert.Equal(t, 2, payments[0].Month)
	assert.Equal(t, 1, payments[1].Month)
	assert.Equal(t, 2024, payments[2].Year)
}

func TestStatsRepository_MonthlyRevenueBuckets(t *testing.T) {
	db := setupTestDatabase(t)
	defer db.Close()

	repo := NewStatsRepository(db)

	// A year far in the past has no data; the series must still be twelve
	// zero buckets.
	series, err := repo.MonthlyRevenue(context.Background(), 1990)
	require.NoError(t, err)
	require.Len(t, series, 12)
	for i, bucket := range series {
		assert.Equal(t, i+1, bucket.Month)
		assert.True(t, bucket.Revenue.IsZero())
	}
}
