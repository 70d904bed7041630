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

// BuildingRepository defines the interface for building data access operations.
type BuildingRepository interface {
	// List returns all buildings ordered by name.
	List(ctx context.Context) ([]models.Building, error)

	// GetByID returns the building with the given id.
	// Returns nil, nil if no building is found (not an error).
	GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error)

	// Create inserts a new building and returns the stored row.
	Create(ctx context.Context, b *models.Building) (*models.Building, error)

	// Update updates a building's mutable fields by id and returns the
	// stored row. Returns nil, nil if no building is found.
	Update(ctx context.Context, b *models.Building) (*models.Building, error)

	// Delete removes a building. Rooms cascade at the store level.
	// Returns false, nil if no building was found.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// buildingRepository is the concrete implementation of BuildingRepository.
type buildingRepository struct {
	db *database.Database
}

// NewBuildingRepository creates a new instance of BuildingRepository.
func NewBuildingRepository(db *database.Database) BuildingRepository {
	return &buildingRepository{db: db}
}

const buildingColumns = `
	id,
	name,
	address,
	total_rooms,
	created_by,
	created_at,
	updated_at
`

func scanBuilding(row pgx.Row) (*models.Building, error) {
	var b models.Building
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Address,
		&b.TotalRooms,
		&b.CreatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *buildingRepository) List(ctx context.Context) ([]models.Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query buildings: %w", err)
	}
	defer rows.Close()

	buildings := []models.Building{}
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan building row: %w", err)
		}
		buildings = append(buildings, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating building rows: %w", err)
	}

	return buildings, nil
}

func (r *buildingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings WHERE id = $1`

	b, err := scanBuilding(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query building %s: %w", id, err)
	}

	return b, nil
}

func (r *buildingRepository) Create(ctx context.Context, b *models.Building) (*models.Building, error) {
	query := `
		INSERT INTO buildings (name, address, total_rooms, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + buildingColumns

	created, err := scanBuilding(r.db.Pool.QueryRow(ctx, query, b.Name, b.Address, b.TotalRooms, b.CreatedBy))
	if err != nil {
		return nil, fmt.Errorf("failed to insert building: %w", err)
	}

	return created, nil
}

func (r *buildingRepository) Update(ctx context.Context, b *models.Building) (*models.Building, error) {
	query := `
		UPDATE buildings
		SET name = $2, address = $3, total_rooms = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + buildingColumns

	updated, err := scanBuilding(r.db.Pool.QueryRow(ctx, query, b.ID, b.Name, b.Address, b.TotalRooms))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update building %s: %w", b.ID, err)
	}

	return updated, nil
}

func (r *buildingRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete building %s: %w", id, err)
	}

	return tag.RowsAffected() > 0, nil
}
