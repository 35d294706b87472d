package repositories

import (
	"context"
	"errors"

	"depot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *models.Warehouse) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	GetByName(ctx context.Context, name string) (*models.Warehouse, error)
	Update(ctx context.Context, warehouse *models.Warehouse) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error)
	Count(ctx context.Context) (int, error)
}

type warehouseRepo struct {
	db Database
}

func NewWarehouseRepository(db Database) WarehouseRepository {
	return &warehouseRepo{db: db}
}

func (r *warehouseRepo) Create(ctx context.Context, warehouse *models.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, name, location, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, warehouse.ID, warehouse.Name, warehouse.Location, warehouse.Capacity)
	return err
}

func (r *warehouseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{}
	query := `
		SELECT id, name, location, capacity, created_at, updated_at
		FROM warehouses
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&warehouse.ID, &warehouse.Name, &warehouse.Location, &warehouse.Capacity, &warehouse.CreatedAt, &warehouse.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (r *warehouseRepo) GetByName(ctx context.Context, name string) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{}
	query := `
		SELECT id, name, location, capacity, created_at, updated_at
		FROM warehouses
		WHERE name = $1
	`
	err := r.db.QueryRow(ctx, query, name).Scan(&warehouse.ID, &warehouse.Name, &warehouse.Location, &warehouse.Capacity, &warehouse.CreatedAt, &warehouse.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (r *warehouseRepo) Update(ctx context.Context, warehouse *models.Warehouse) error {
	query := `
		UPDATE warehouses
		SET name = $1, location = $2, capacity = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, warehouse.Name, warehouse.Location, warehouse.Capacity, warehouse.ID)
	return err
}

func (r *warehouseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM warehouses WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *warehouseRepo) List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	query := `
		SELECT id, name, location, capacity, created_at, updated_at
		FROM warehouses
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []*models.Warehouse
	for rows.Next() {
		warehouse := &models.Warehouse{}
		if err := rows.Scan(&warehouse.ID, &warehouse.Name, &warehouse.Location, &warehouse.Capacity, &warehouse.CreatedAt, &warehouse.UpdatedAt); err != nil {
			return nil, err
		}
		warehouses = append(warehouses, warehouse)
	}
	return warehouses, rows.Err()
}

func (r *warehouseRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM warehouses`).Scan(&count)
	return count, err
}
