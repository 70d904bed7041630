package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentbook/api/internal/logger"
	"github.com/rentbook/api/internal/models"
	"github.com/rentbook/api/internal/repository"
)

// Service-level errors for rooms.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomNumber     = errors.New("room number is required")
	ErrRoomCapacity   = errors.New("room capacity must not be negative")
	ErrRoomRentAmount = errors.New("room rent amount must not be negative")
)

// RoomInput carries the mutable fields of a room.
type RoomInput struct {
	BuildingID uuid.UUID
	RoomNumber string
	RoomType   string
	Capacity   int
	RentAmount decimal.Decimal
}

// RoomService defines the interface for room business logic.
type RoomService interface {
	// ListRooms returns rooms with their building, optionally restricted to
	// one building.
	ListRooms(ctx context.Context, buildingID *uuid.UUID) ([]models.RoomWithBuilding, error)

	// GetRoom returns one room with its building.
	// Returns ErrRoomNotFound if it does not exist.
	GetRoom(ctx context.Context, id uuid.UUID) (*models.RoomWithBuilding, error)

	// CreateRoom creates a room. Capacity and rent must not be negative.
	// Note that occupancy against capacity is never enforced on writes.
	CreateRoom(ctx context.Context, in RoomInput) (*models.Room, error)

	// UpdateRoom updates a room in place.
	UpdateRoom(ctx context.Context, id uuid.UUID, in RoomInput) (*models.Room, error)

	// DeleteRoom removes a room; tenant references are cleared at the store
	// level. Returns ErrRoomNotFound if it does not exist.
	DeleteRoom(ctx context.Context, id uuid.UUID) error
}

// roomService is the concrete implementation of RoomService.
type roomService struct {
	repo repository.RoomRepository
	log  *logger.Logger
}

// NewRoomService creates a new instance of RoomService.
func NewRoomService(repo repository.RoomRepository, log *logger.Logger) RoomService {
	return &roomService{repo: repo, log: log}
}

func (s *roomService) ListRooms(ctx context.Context, buildingID *uuid.UUID) ([]models.RoomWithBuilding, error) {
	rooms, err := s.repo.List(ctx, buildingID)
	if err != nil {
		s.log.Error("Failed to list rooms", err, nil)
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *roomService) GetRoom(ctx context.Context, id uuid.UUID) (*models.RoomWithBuilding, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get room", err, map[string]interface{}{"room_id": id})
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func validateRoomInput(in RoomInput) error {
	if strings.TrimSpace(in.RoomNumber) == "" {
		return ErrRoomNumber
	}
	if in.Capacity < 0 {
		return ErrRoomCapacity
	}
	if in.RentAmount.IsNegative() {
		return ErrRoomRentAmount
	}
	return nil
}

func (s *roomService) CreateRoom(ctx context.Context, in RoomInput) (*models.Room, error) {
	if err := validateRoomInput(in); err != nil {
		return nil, err
	}

	room := &models.Room{
		BuildingID: in.BuildingID,
		RoomNumber: strings.TrimSpace(in.RoomNumber),
		RoomType:   in.RoomType,
		Capacity:   in.Capacity,
		RentAmount: in.RentAmount,
	}

	created, err := s.repo.Create(ctx, room)
	if err != nil {
		s.log.Error("Failed to create room", err, map[string]interface{}{
			"building_id": in.BuildingID,
			"room_number": in.RoomNumber,
		})
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	s.log.Info("Room created", map[string]interface{}{
		"room_id":     created.ID,
		"building_id": created.BuildingID,
		"room_number": created.RoomNumber,
	})

	return created, nil
}

func (s *roomService) UpdateRoom(ctx context.Context, id uuid.UUID, in RoomInput) (*models.Room, error) {
	if err := validateRoomInput(in); err != nil {
		return nil, err
	}

	room := &models.Room{
		ID:         id,
		RoomNumber: strings.TrimSpace(in.RoomNumber),
		RoomType:   in.RoomType,
		Capacity:   in.Capacity,
		RentAmount: in.RentAmount,
	}

	updated, err := s.repo.Update(ctx, room)
	if err != nil {
		s.log.Error("Failed to update room", err, map[string]interface{}{"room_id": id})
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	if updated == nil {
		return nil, ErrRoomNotFound
	}

	s.log.Info("Room updated", map[string]interface{}{"room_id": id})

	return updated, nil
}

func (s *roomService) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error("Failed to delete room", err, map[string]interface{}{"room_id": id})
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if !deleted {
		return ErrRoomNotFound
	}

	s.log.Info("Room deleted", map[string]interface{}{"room_id": id})

	return nil
}
