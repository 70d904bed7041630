package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rentbook/api/internal/database"
	"github.com/rentbook/api/internal/models"
)

// RoomRepository defines the interface for room data access operations.
type RoomRepository interface {
	// List returns rooms joined with their building, ordered by room number.
	// A non-nil buildingID restricts the result to one building.
	List(ctx context.Context, buildingID *uuid.UUID) ([]models.RoomWithBuilding, error)

	// GetByID returns the room with the given id, joined with its building.
	// Returns nil, nil if no room is found (not an error).
	GetByID(ctx context.Context, id uuid.UUID) (*models.RoomWithBuilding, error)

	// Create inserts a new room and returns the stored row.
	Create(ctx context.Context, room *models.Room) (*models.Room, error)

	// Update updates a room's mutable fields by id and returns the stored
	// row. Returns nil, nil if no room is found.
	Update(ctx context.Context, room *models.Room) (*models.Room, error)

	// Delete removes a room. Tenant references are cleared at the store
	// level. Returns false, nil if no room was found.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// roomRepository is the concrete implementation of RoomRepository.
type roomRepository struct {
	db *database.Database
}

// NewRoomRepository creates a new instance of RoomRepository.
func NewRoomRepository(db *database.Database) RoomRepository {
	return &roomRepository{db: db}
}

const roomColumns = `
	r.id,
	r.building_id,
	r.room_number,
	r.room_type,
	r.capacity,
	r.rent_amount,
	r.created_at,
	r.updated_at
`

const roomWithBuildingQuery = `
	SELECT ` + roomColumns + `,
		b.id,
		b.name,
		b.address,
		b.total_rooms,
		b.created_by,
		b.created_at,
		b.updated_at
	FROM rooms r
	JOIN buildings b ON b.id = r.building_id
`

func scanRoomWithBuilding(row pgx.Row) (*models.RoomWithBuilding, error) {
	var room models.RoomWithBuilding
	var building models.Building

	err := row.Scan(
		&room.ID,
		&room.BuildingID,
		&room.RoomNumber,
		&room.RoomType,
		&room.Capacity,
		&room.RentAmount,
		&room.CreatedAt,
		&room.UpdatedAt,
		&building.ID,
		&building.Name,
		&building.Address,
		&building.TotalRooms,
		&building.CreatedBy,
		&building.CreatedAt,
		&building.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	room.Building = &building
	return &room, nil
}

func (r *roomRepository) List(ctx context.Context, buildingID *uuid.UUID) ([]models.RoomWithBuilding, error) {
	query := roomWithBuildingQuery
	args := []interface{}{}

	if buildingID != nil {
		query += ` WHERE r.building_id = $1`
		args = append(args, *buildingID)
	}
	query += ` ORDER BY r.room_number`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	rooms := []models.RoomWithBuilding{}
	for rows.Next() {
		room, err := scanRoomWithBuilding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room row: %w", err)
		}
		rooms = append(rooms, *room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating room rows: %w", err)
	}

	return rooms, nil
}

func (r *roomRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RoomWithBuilding, error) {
	query := roomWithBuildingQuery + ` WHERE r.id = $1`

	room, err := scanRoomWithBuilding(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query room %s: %w", id, err)
	}

	return room, nil
}

func (r *roomRepository) Create(ctx context.Context, room *models.Room) (*models.Room, error) {
	query := `
		INSERT INTO rooms (building_id, room_number, room_type, capacity, rent_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, building_id, room_number, room_type, capacity, rent_amount, created_at, updated_at
	`

	var created models.Room
	err := r.db.Pool.QueryRow(ctx, query,
		room.BuildingID,
		room.RoomNumber,
		room.RoomType,
		room.Capacity,
		room.RentAmount,
	).Scan(
		&created.ID,
		&created.BuildingID,
		&created.RoomNumber,
		&created.RoomType,
		&created.Capacity,
		&created.RentAmount,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert room: %w", err)
	}

	return &created, nil
}

func (r *roomRepository) Update(ctx context.Context, room *models.Room) (*models.Room, error) {
	query := `
		UPDATE rooms
		SET room_number = $2, room_type = $3, capacity = $4, rent_amount = $5, updated_at = now()
		WHERE id = $1
		RETURNING id, building_id, room_number, room_type, capacity, rent_amount, created_at, updated_at
	`

	var updated models.Room
	err := r.db.Pool.QueryRow(ctx, query,
		room.ID,
		room.RoomNumber,
		room.RoomType,
		room.Capacity,
		room.RentAmount,
	).Scan(
		&updated.ID,
		&updated.BuildingID,
		&updated.RoomNumber,
		&updated.RoomType,
		&updated.Capacity,
		&updated.RentAmount,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update room %s: %w", room.ID, err)
	}

	return &updated, nil
}

func (r *roomRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete room %s: %w", id, err)
	}

	return tag.RowsAffected() > 0, nil
}
