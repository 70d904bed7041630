package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentbook/api/internal/database"
)

// DashboardCounts holds the raw aggregates behind the dashboard statistics.
// Derived figures (vacancy, occupancy rate) are computed by the service.
type DashboardCounts struct {
	TotalBuildings int
	TotalRooms     int
	TotalCapacity  int
	ActiveTenants  int
	DueToday       int
	OverdueCount   int
	MonthlyRevenue decimal.Decimal
}

// MonthRevenue is one bucket of the per-month revenue series.
type MonthRevenue struct {
	Month   int             `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// StatsRepository computes dashboard aggregates. Every figure is a single
// aggregate query; no row sets are pulled and reduced in the application.
type StatsRepository interface {
	// Counts returns the dashboard aggregates as of today, with revenue for
	// the given month and year.
	Counts(ctx context.Context, today time.Time, month, year int) (*DashboardCounts, error)

	// MonthlyRevenue returns twelve buckets of paid-payment revenue for the
	// given year. Months without revenue are zero, not missing.
	MonthlyRevenue(ctx context.Context, year int) ([]MonthRevenue, error)
}

// statsRepository is the concrete implementation of StatsRepository.
type statsRepository struct {
	db *database.Database
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *database.Database) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Counts(ctx context.Context, today time.Time, month, year int) (*DashboardCounts, error) {
	var counts DashboardCounts

	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM buildings`).Scan(&counts.TotalBuildings)
	if err != nil {
		return nil, fmt.Errorf("failed to count buildings: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx,
		`SELECT count(*), COALESCE(SUM(capacity), 0) FROM rooms`,
	).Scan(&counts.TotalRooms, &counts.TotalCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate rooms: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM tenants WHERE is_active`,
	).Scan(&counts.ActiveTenants)
	if err != nil {
		return nil, fmt.Errorf("failed to count active tenants: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM payments WHERE due_date = $1 AND status = 'pending'`,
		today,
	).Scan(&counts.DueToday)
	if err != nil {
		return nil, fmt.Errorf("failed to count payments due today: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM payments WHERE due_date < $1 AND status <> 'paid'`,
		today,
	).Scan(&counts.OverdueCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue payments: %w", err)
	}

	// Revenue sums the nominal amount of paid payments for the period, not
	// amount_paid.
	err = r.db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE month = $1 AND year = $2 AND status = 'paid'`,
		month, year,
	).Scan(&counts.MonthlyRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}

	return &counts, nil
}

func (r *statsRepository) MonthlyRevenue(ctx context.Context, year int) ([]MonthRevenue, error) {
	query := `
		SELECT month, COALESCE(SUM(amount), 0)
		FROM payments
		WHERE year = $1 AND status = 'paid'
		GROUP BY month
	`

	rows, err := r.db.Pool.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue for year %d: %w", year, err)
	}
	defer rows.Close()

	// Twelve fixed buckets; months without paid payments stay at zero.
	series := make([]MonthRevenue, 12)
	for i := range series {
		series[i] = MonthRevenue{Month: i + 1, Revenue: decimal.Zero}
	}

	for rows.Next() {
		var month int
		var revenue decimal.Decimal
		if err := rows.Scan(&month, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		if month >= 1 && month <= 12 {
			series[month-1].Revenue = revenue
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revenue rows: %w", err)
	}

	return series, nil
}
