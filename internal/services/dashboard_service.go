package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentbook/api/internal/logger"
	"github.com/rentbook/api/internal/repository"
)

// DashboardStats is the summary block shown at the top of the dashboard.
type DashboardStats struct {
	TotalBuildings int             `json:"total_buildings"`
	TotalRooms     int             `json:"total_rooms"`
	TotalCapacity  int             `json:"total_capacity"`
	ActiveTenants  int             `json:"active_tenants"`
	VacantBeds     int             `json:"vacant_beds"`
	OccupancyRate  float64         `json:"occupancy_rate"`
	DueToday       int             `json:"due_today"`
	OverdueCount   int             `json:"overdue_count"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
}

// DashboardService defines the interface for dashboard statistics.
type DashboardService interface {
	// Stats returns the current summary figures: portfolio counts,
	// occupancy, payments due today, overdue payments and revenue for the
	// current calendar month.
	Stats(ctx context.Context) (*DashboardStats, error)

	// RevenueByMonth returns paid-payment revenue per month for a year,
	// always twelve buckets.
	RevenueByMonth(ctx context.Context, year int) ([]repository.MonthRevenue, error)
}

// dashboardService is the concrete implementation of DashboardService.
type dashboardService struct {
	repo repository.StatsRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(repo repository.StatsRepository, log *logger.Logger) DashboardService {
	return &dashboardService{repo: repo, log: log, now: time.Now}
}

func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	today := s.now()

	counts, err := s.repo.Counts(ctx, today, int(today.Month()), today.Year())
	if err != nil {
		s.log.Error("Failed to load dashboard counts", err, nil)
		return nil, fmt.Errorf("failed to load dashboard counts: %w", err)
	}

	stats := &DashboardStats{
		TotalBuildings: counts.TotalBuildings,
		TotalRooms:     counts.TotalRooms,
		TotalCapacity:  counts.TotalCapacity,
		ActiveTenants:  counts.ActiveTenants,
		VacantBeds:     counts.TotalCapacity - counts.ActiveTenants,
		DueToday:       counts.DueToday,
		OverdueCount:   counts.OverdueCount,
		MonthlyRevenue: counts.MonthlyRevenue,
	}

	// An empty portfolio reads as 0% occupied, not a division error.
	if counts.TotalCapacity > 0 {
		stats.OccupancyRate = float64(counts.ActiveTenants) / float64(counts.TotalCapacity) * 100
	}

	return stats, nil
}

func (s *dashboardService) RevenueByMonth(ctx context.Context, year int) ([]repository.MonthRevenue, error) {
	series, err := s.repo.MonthlyRevenue(ctx, year)
	if err != nil {
		s.log.Error("Failed to load revenue series", err, map[string]interface{}{"year": year})
		return nil, fmt.Errorf("failed to load revenue series: %w", err)
	}
	return series, nil
}
