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

// TenantRepository defines the interface for tenant data access operations.
type TenantRepository interface {
	// List returns tenants joined with their room and building, ordered by
	// name. When activeOnly is true, departed tenants are excluded.
	List(ctx context.Context, activeOnly bool) ([]models.TenantWithRoom, error)

	// GetByID returns the tenant with the given id, joined with room and
	// building. Returns nil, nil if no tenant is found (not an error).
	GetByID(ctx context.Context, id uuid.UUID) (*models.TenantWithRoom, error)

	// ListByRoom returns the active tenants assigned to a room, by name.
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Tenant, error)

	// Create inserts a new active tenant and returns the stored row.
	Create(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error)

	// Update updates a tenant's mutable fields by id and returns the stored
	// row. Returns nil, nil if no tenant is found.
	Update(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error)

	// Deactivate marks a tenant as departed: is_active false, room cleared,
	// leaving date stamped. Historical payment rows are left untouched.
	// Returns nil, nil if no tenant is found.
	Deactivate(ctx context.Context, id uuid.UUID, leavingDate time.Time) (*models.Tenant, error)
}

// tenantRepository is the concrete implementation of TenantRepository.
type tenantRepository struct {
	db *database.Database
}

// NewTenantRepository creates a new instance of TenantRepository.
func NewTenantRepository(db *database.Database) TenantRepository {
	return &tenantRepository{db: db}
}

const tenantColumns = `
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
	t.updated_at
`

const tenantWithRoomQuery = `
	SELECT ` + tenantColumns + `,
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
	FROM tenants t
	LEFT JOIN rooms r ON r.id = t.room_id
	LEFT JOIN buildings b ON b.id = r.building_id
`

// scanTenantWithRoom scans one joined row. The room and building columns
// are nullable because the tenant may be unassigned.
func scanTenantWithRoom(row pgx.Row) (*models.TenantWithRoom, error) {
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

	return &tenant, nil
}

func (r *tenantRepository) List(ctx context.Context, activeOnly bool) ([]models.TenantWithRoom, error) {
	query := tenantWithRoomQuery
	if activeOnly {
		query += ` WHERE t.is_active`
	}
	query += ` ORDER BY t.name`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	tenants := []models.TenantWithRoom{}
	for rows.Next() {
		tenant, err := scanTenantWithRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant row: %w", err)
		}
		tenants = append(tenants, *tenant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows: %w", err)
	}

	return tenants, nil
}

func (r *tenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TenantWithRoom, error) {
	query := tenantWithRoomQuery + ` WHERE t.id = $1`

	tenant, err := scanTenantWithRoom(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query tenant %s: %w", id, err)
	}

	return tenant, nil
}

const tenantOnlyColumns = `
	id, name, phone, occupation, room_id, monthly_rent,
	joining_date, leaving_date, is_active, created_at, updated_at
`

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Phone,
		&t.Occupation,
		&t.RoomID,
		&t.MonthlyRent,
		&t.JoiningDate,
		&t.LeavingDate,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tenantRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Tenant, error) {
	query := `
		SELECT ` + tenantOnlyColumns + `
		FROM tenants
		WHERE room_id = $1 AND is_active
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants in room %s: %w", roomID, err)
	}
	defer rows.Close()

	tenants := []models.Tenant{}
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant row: %w", err)
		}
		tenants = append(tenants, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows: %w", err)
	}

	return tenants, nil
}

func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error) {
	query := `
		INSERT INTO tenants (name, phone, occupation, room_id, monthly_rent, joining_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING ` + tenantOnlyColumns

	created, err := scanTenant(r.db.Pool.QueryRow(ctx, query,
		tenant.Name,
		tenant.Phone,
		tenant.Occupation,
		tenant.RoomID,
		tenant.MonthlyRent,
		tenant.JoiningDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}

	return created, nil
}

func (r *tenantRepository) Update(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error) {
	query := `
		UPDATE tenants
		SET name = $2, phone = $3, occupation = $4, room_id = $5,
			monthly_rent = $6, joining_date = $7, updated_at = now()
		WHERE id = $1
		RETURNING ` + tenantOnlyColumns

	updated, err := scanTenant(r.db.Pool.QueryRow(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Phone,
		tenant.Occupation,
		tenant.RoomID,
		tenant.MonthlyRent,
		tenant.JoiningDate,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update tenant %s: %w", tenant.ID, err)
	}

	return updated, nil
}

func (r *tenantRepository) Deactivate(ctx context.Context, id uuid.UUID, leavingDate time.Time) (*models.Tenant, error) {
	query := `
		UPDATE tenants
		SET is_active = false, room_id = NULL, leaving_date = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + tenantOnlyColumns

	deactivated, err := scanTenant(r.db.Pool.QueryRow(ctx, query, id, leavingDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to deactivate tenant %s: %w", id, err)
	}

	return deactivated, nil
}
