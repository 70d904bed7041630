package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rentbook/api/internal/logger"
	"github.com/rentbook/api/internal/repository"
)

// MockStatsRepository is a mock implementation of StatsRepository for testing
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Counts(ctx context.Context, today time.Time, month, year int) (*repository.DashboardCounts, error) {
	args := m.Called(ctx, today, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DashboardCounts), args.Error(1)
}

func (m *MockStatsRepository) MonthlyRevenue(ctx context.Context, year int) ([]repository.MonthRevenue, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.MonthRevenue), args.Error(1)
}

func newDashboardServiceForTest(repo *MockStatsRepository, now time.Time) *dashboardService {
	return &dashboardService{
		repo: repo,
		log:  logger.New("test"),
		now:  func() time.Time { return now },
	}
}

func TestStats_DerivedFigures(t *testing.T) {
	mockRepo := new(MockStatsRepository)
	today := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	service := newDashboardServiceForTest(mockRepo, today)
	ctx := context.Background()

	mockRepo.On("Counts", ctx, today, 3, 2025).Return(&repository.DashboardCounts{
		TotalBuildings: 2,
		TotalRooms:     12,
		TotalCapacity:  10,
		ActiveTenants:  5,
		DueToday:       3,
		OverdueCount:   4,
		MonthlyRevenue: decimal.RequireFromString("30000"),
	}, nil)

	stats, err := service.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 5, stats.VacantBeds)
	assert.InDelta(t, 50.0, stats.OccupancyRate, 0.0001)
	assert.Equal(t, 3, stats.DueToday)
	assert.Equal(t, 4, stats.OverdueCount)
	assert.True(t, stats.MonthlyRevenue.Equal(decimal.RequireFromString("30000")))
	mockRepo.AssertExpectations(t)
}

func TestStats_ZeroCapacity(t *testing.T) {
	mockRepo := new(MockStatsRepository)
	today := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	service := newDashboardServiceForTest(mockRepo, today)
	ctx := context.Background()

	mockRepo.On("Counts", ctx, today, 3, 2025).Return(&repository.DashboardCounts{
		TotalCapacity:  0,
		ActiveTenants:  0,
		MonthlyRevenue: decimal.Zero,
	}, nil)

	stats, err := service.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.OccupancyRate)
	assert.Equal(t, 0, stats.VacantBeds)
}

func TestRevenueByMonth(t *testing.T) {
	mockRepo := new(MockStatsRepository)
	service := newDashboardServiceForTest(mockRepo, time.Now())
	ctx := context.Background()

	series := make([]repository.MonthRevenue, 12)
	for i := range series {
		series[i] = repository.MonthRevenue{Month: i + 1, Revenue: decimal.Zero}
	}
	series[2].Revenue = decimal.RequireFromString("18000")

	mockRepo.On("MonthlyRevenue", ctx, 2025).Return(series, nil)

	got, err := service.RevenueByMonth(ctx, 2025)

	require.NoError(t, err)
	require.Len(t, got, 12)
	assert.True(t, got[2].Revenue.Equal(decimal.RequireFromString("18000")))
	assert.True(t, got[0].Revenue.IsZero())
	mockRepo.AssertExpectations(t)
}
