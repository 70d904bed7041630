package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentbook/api/internal/logger"
	"github.com/rentbook/api/internal/models"
	"github.com/rentbook/api/internal/repository"
)

// Service-level errors for tenants.
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantName     = errors.New("tenant name is required")
	ErrTenantPhone    = errors.New("tenant phone is required")
	ErrTenantRent     = errors.New("tenant monthly rent must not be negative")
)

// TenantInput carries the mutable fields of a tenant. RoomID may be nil for
// an unassigned tenant; setting it on update overwrites any previous
// assignment without keeping history.
type TenantInput struct {
	Name        string
	Phone       string
	Occupation  *string
	RoomID      *uuid.UUID
	MonthlyRent decimal.Decimal
	JoiningDate time.Time
}

// TenantService defines the interface for tenant business logic.
type TenantService interface {
	// ListTenants returns tenants with room and building. When activeOnly
	// is true, departed tenants are excluded.
	ListTenants(ctx context.Context, activeOnly bool) ([]models.TenantWithRoom, error)

	// GetTenant returns one tenant with room and building.
	// Returns ErrTenantNotFound if it does not exist.
	GetTenant(ctx context.Context, id uuid.UUID) (*models.TenantWithRoom, error)

	// TenantsInRoom returns the active tenants assigned to a room.
	TenantsInRoom(ctx context.Context, roomID uuid.UUID) ([]models.Tenant, error)

	// CreateTenant creates an active tenant.
	CreateTenant(ctx context.Context, in TenantInput) (*models.Tenant, error)

	// UpdateTenant updates a tenant in place.
	UpdateTenant(ctx context.Context, id uuid.UUID, in TenantInput) (*models.Tenant, error)

	// DeactivateTenant marks a tenant as departed: is_active false, room
	// reference cleared, leaving date stamped with today. Historical
	// payments are left untouched and remain queryable.
	DeactivateTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

// tenantService is the concrete implementation of TenantService.
type tenantService struct {
	repo repository.TenantRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewTenantService creates a new instance of TenantService.
func NewTenantService(repo repository.TenantRepository, log *logger.Logger) TenantService {
	return &tenantService{repo: repo, log: log, now: time.Now}
}

func (s *tenantService) ListTenants(ctx context.Context, activeOnly bool) ([]models.TenantWithRoom, error) {
	tenants, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		s.log.Error("Failed to list tenants", err, map[string]interface{}{"active_only": activeOnly})
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

func (s *tenantService) GetTenant(ctx context.Context, id uuid.UUID) (*models.TenantWithRoom, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get tenant", err, map[string]interface{}{"tenant_id": id})
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}

func (s *tenantService) TenantsInRoom(ctx context.Context, roomID uuid.UUID) ([]models.Tenant, error) {
	tenants, err := s.repo.ListByRoom(ctx, roomID)
	if err != nil {
		s.log.Error("Failed to list tenants in room", err, map[string]interface{}{"room_id": roomID})
		return nil, fmt.Errorf("failed to list tenants in room: %w", err)
	}
	return tenants, nil
}

func validateTenantInput(in TenantInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrTenantName
	}
	if strings.TrimSpace(in.Phone) == "" {
		return ErrTenantPhone
	}
	if in.MonthlyRent.IsNegative() {
		return ErrTenantRent
	}
	return nil
}

func (s *tenantService) CreateTenant(ctx context.Context, in TenantInput) (*models.Tenant, error) {
	if err := validateTenantInput(in); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		Name:        strings.TrimSpace(in.Name),
		Phone:       strings.TrimSpace(in.Phone),
		Occupation:  in.Occupation,
		RoomID:      in.RoomID,
		MonthlyRent: in.MonthlyRent,
		JoiningDate: in.JoiningDate,
	}

	created, err := s.repo.Create(ctx, tenant)
	if err != nil {
		s.log.Error("Failed to create tenant", err, map[string]interface{}{"name": in.Name})
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.log.Info("Tenant created", map[string]interface{}{
		"tenant_id": created.ID,
		"name":      created.Name,
	})

	return created, nil
}

func (s *tenantService) UpdateTenant(ctx context.Context, id uuid.UUID, in TenantInput) (*models.Tenant, error) {
	if err := validateTenantInput(in); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Phone:       strings.TrimSpace(in.Phone),
		Occupation:  in.Occupation,
		RoomID:      in.RoomID,
		MonthlyRent: in.MonthlyRent,
		JoiningDate: in.JoiningDate,
	}

	updated, err := s.repo.Update(ctx, tenant)
	if err != nil {
		s.log.Error("Failed to update tenant", err, map[string]interface{}{"tenant_id": id})
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	if updated == nil {
		return nil, ErrTenantNotFound
	}

	s.log.Info("Tenant updated", map[string]interface{}{"tenant_id": id})

	return updated, nil
}

func (s *tenantService) DeactivateTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	today := s.now()

	tenant, err := s.repo.Deactivate(ctx, id, today)
	if err != nil {
		s.log.Error("Failed to deactivate tenant", err, map[string]interface{}{"tenant_id": id})
		return nil, fmt.Errorf("failed to deactivate tenant: %w", err)
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	s.log.Info("Tenant deactivated", map[string]interface{}{
		"tenant_id":    id,
		"leaving_date": today.Format("2006-01-02"),
	})

	return tenant, nil
}
