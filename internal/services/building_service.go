package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rentbook/api/internal/logger"
	"github.com/rentbook/api/internal/models"
	"github.com/rentbook/api/internal/repository"
)

// Service-level errors for buildings.
var (
	ErrBuildingNotFound = errors.New("building not found")
	ErrBuildingName     = errors.New("building name is required")
)

// BuildingInput carries the mutable fields of a building.
type BuildingInput struct {
	Name       string
	Address    *string
	TotalRooms int
}

// BuildingService defines the interface for building business logic.
type BuildingService interface {
	// ListBuildings returns all buildings ordered by name.
	ListBuildings(ctx context.Context) ([]models.Building, error)

	// GetBuilding returns one building.
	// Returns ErrBuildingNotFound if it does not exist.
	GetBuilding(ctx context.Context, id uuid.UUID) (*models.Building, error)

	// CreateBuilding creates a building owned by the acting user.
	// Returns ErrBuildingName if the name is blank.
	CreateBuilding(ctx context.Context, in BuildingInput, createdBy uuid.UUID) (*models.Building, error)

	// UpdateBuilding updates a building in place.
	// Returns ErrBuildingNotFound or ErrBuildingName.
	UpdateBuilding(ctx context.Context, id uuid.UUID, in BuildingInput) (*models.Building, error)

	// DeleteBuilding removes a building; rooms cascade at the store level.
	// Returns ErrBuildingNotFound if it does not exist.
	DeleteBuilding(ctx context.Context, id uuid.UUID) error
}

// buildingService is the concrete implementation of BuildingService.
type buildingService struct {
	repo repository.BuildingRepository
	log  *logger.Logger
}

// NewBuildingService creates a new instance of BuildingService.
func NewBuildingService(repo repository.BuildingRepository, log *logger.Logger) BuildingService {
	return &buildingService{repo: repo, log: log}
}

func (s *buildingService) ListBuildings(ctx context.Context) ([]models.Building, error) {
	buildings, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("Failed to list buildings", err, nil)
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	return buildings, nil
}

func (s *buildingService) GetBuilding(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	building, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get building", err, map[string]interface{}{"building_id": id})
		return nil, fmt.Errorf("failed to get building: %w", err)
	}
	if building == nil {
		return nil, ErrBuildingNotFound
	}
	return building, nil
}

func (s *buildingService) CreateBuilding(ctx context.Context, in BuildingInput, createdBy uuid.UUID) (*models.Building, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrBuildingName
	}

	building := &models.Building{
		Name:       strings.TrimSpace(in.Name),
		Address:    in.Address,
		TotalRooms: in.TotalRooms,
		CreatedBy:  &createdBy,
	}

	created, err := s.repo.Create(ctx, building)
	if err != nil {
		s.log.Error("Failed to create building", err, map[string]interface{}{"name": in.Name})
		return nil, fmt.Errorf("failed to create building: %w", err)
	}

	s.log.Info("Building created", map[string]interface{}{
		"building_id": created.ID,
		"name":        created.Name,
	})

	return created, nil
}

func (s *buildingService) UpdateBuilding(ctx context.Context, id uuid.UUID, in BuildingInput) (*models.Building, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrBuildingName
	}

	building := &models.Building{
		ID:         id,
		Name:       strings.TrimSpace(in.Name),
		Address:    in.Address,
		TotalRooms: in.TotalRooms,
	}

	updated, err := s.repo.Update(ctx, building)
	if err != nil {
		s.log.Error("Failed to update building", err, map[string]interface{}{"building_id": id})
		return nil, fmt.Errorf("failed to update building: %w", err)
	}
	if updated == nil {
		return nil, ErrBuildingNotFound
	}

	s.log.Info("Building updated", map[string]interface{}{"building_id": id})

	return updated, nil
}

func (s *buildingService) DeleteBuilding(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error("Failed to delete building", err, map[string]interface{}{"building_id": id})
		return fmt.Errorf("failed to delete building: %w", err)
	}
	if !deleted {
		return ErrBuildingNotFound
	}

	s.log.Info("Building deleted", map[string]interface{}{"building_id": id})

	return nil
}
