package repositories

import (
	"context"
	"errors"
	"fmt"

	"depot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StockRepository is the durable (product, warehouse) -> quantity mapping.
// All writes go through CompareAndSet; there is no blind update. A false
// return is a conflict, not an error: the caller re-reads and retries.
type StockRepository interface {
	Get(ctx context.Context, productID, warehouseID uuid.UUID) (*models.StockEntry, error)
	CompareAndSet(ctx context.Context, productID, warehouseID uuid.UUID, expected, newQuantity int) (bool, error)
	List(ctx context.Context, warehouseID *uuid.UUID, limit, offset int) ([]*models.StockView, error)
	Search(ctx context.Context, filter *models.StockSearchFilter) ([]*models.StockView, error)
	LowStock(ctx context.Context, threshold int) ([]*models.StockView, error)
}

type stockRepo struct {
	db Database
}

func NewStockRepository(db Database) StockRepository {
	return &stockRepo{db: db}
}

// Get returns nil without error when no row exists; absent means quantity 0.
func (r *stockRepo) Get(ctx context.Context, productID, warehouseID uuid.UUID) (*models.StockEntry, error) {
	entry := &models.StockEntry{}
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock
		WHERE product_id = $1 AND warehouse_id = $2
	`
	err := r.db.QueryRow(ctx, query, productID, warehouseID).Scan(&entry.ProductID, &entry.WarehouseID, &entry.Quantity, &entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CompareAndSet updates the quantity only if it still equals expected.
// The guard in the WHERE clause makes the update a single-key atomic
// operation; two racing writers can never both win. When expected is 0
// and no row exists yet, the row is created lazily; ON CONFLICT DO NOTHING
// keeps the insert race-safe as well.
func (r *stockRepo) CompareAndSet(ctx context.Context, productID, warehouseID uuid.UUID, expected, newQuantity int) (bool, error) {
	update := `
		UPDATE stock
		SET quantity = $3, updated_at = NOW()
		WHERE product_id = $1 AND warehouse_id = $2 AND quantity = $4
	`
	tag, err := r.db.Exec(ctx, update, productID, warehouseID, newQuantity, expected)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	if expected != 0 {
		return false, nil
	}

	insert := `
		INSERT INTO stock (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING
	`
	tag, err = r.db.Exec(ctx, insert, productID, warehouseID, newQuantity)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const stockViewSelect = `
	SELECT s.product_id, s.warehouse_id, s.quantity, s.updated_at, p.name, p.sku, w.name
	FROM stock s
	JOIN products p ON p.id = s.product_id
	JOIN warehouses w ON w.id = s.warehouse_id
`

func (r *stockRepo) List(ctx context.Context, warehouseID *uuid.UUID, limit, offset int) ([]*models.StockView, error) {
	query := stockViewSelect
	args := []any{}
	if warehouseID != nil {
		query += ` WHERE s.warehouse_id = $1 ORDER BY p.name, w.name LIMIT $2 OFFSET $3`
		args = append(args, *warehouseID, limit, offset)
	} else {
		query += ` ORDER BY p.name, w.name LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStockViews(rows)
}

func (r *stockRepo) Search(ctx context.Context, filter *models.StockSearchFilter) ([]*models.StockView, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := stockViewSelect + ` WHERE 1=1`
	args := []any{}
	conditionCount := 0

	if filter.WarehouseID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND s.warehouse_id = $%d`, conditionCount)
		args = append(args, *filter.WarehouseID)
	}
	if filter.ProductID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND s.product_id = $%d`, conditionCount)
		args = append(args, *filter.ProductID)
	}
	if filter.MinQuantity != nil {
		conditionCount++
		query += fmt.Sprintf(` AND s.quantity >= $%d`, conditionCount)
		args = append(args, *filter.MinQuantity)
	}
	if filter.MaxQuantity != nil {
		conditionCount++
		query += fmt.Sprintf(` AND s.quantity <= $%d`, conditionCount)
		args = append(args, *filter.MaxQuantity)
	}

	query += fmt.Sprintf(` ORDER BY p.name, w.name LIMIT $%d`, conditionCount+1)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, conditionCount+2)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStockViews(rows)
}

func (r *stockRepo) LowStock(ctx context.Context, threshold int) ([]*models.StockView, error) {
	query := stockViewSelect + ` WHERE s.quantity < $1 ORDER BY s.quantity, p.name`
	rows, err := r.db.Query(ctx, query, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStockViews(rows)
}

func scanStockViews(rows pgx.Rows) ([]*models.StockView, error) {
	var views []*models.StockView
	for rows.Next() {
		view := &models.StockView{}
		if err := rows.Scan(&view.ProductID, &view.WarehouseID, &view.Quantity, &view.UpdatedAt, &view.ProductName, &view.ProductSKU, &view.WarehouseName); err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, rows.Err()
}
