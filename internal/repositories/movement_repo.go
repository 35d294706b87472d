package repositories

import (
	"context"
	"fmt"

	"depot/internal/models"

	"github.com/google/uuid"
)

// MovementRepository is the append-only ledger. Append is the only
// mutation; no update or delete exists. Stock can always be rebuilt from
// the ledger, which makes the stock table a materialized view rather than
// a second source of truth.
type MovementRepository interface {
	Append(ctx context.Context, movement *models.Movement) error
	List(ctx context.Context, filter *models.MovementFilter) ([]*models.Movement, error)
	NetQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (int, error)
}

type movementRepo struct {
	db Database
}

func NewMovementRepository(db Database) MovementRepository {
	return &movementRepo{db: db}
}

func (r *movementRepo) Append(ctx context.Context, movement *models.Movement) error {
	query := `
		INSERT INTO movements (id, type, product_id, quantity, from_warehouse_id, to_warehouse_id, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query,
		movement.ID, movement.Type, movement.ProductID, movement.Quantity,
		movement.FromWarehouseID, movement.ToWarehouseID, movement.Notes, movement.CreatedBy,
	).Scan(&movement.CreatedAt)
}

func (r *movementRepo) List(ctx context.Context, filter *models.MovementFilter) ([]*models.Movement, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `
		SELECT id, type, product_id, quantity, from_warehouse_id, to_warehouse_id, notes, created_by, created_at
		FROM movements
		WHERE 1=1
	`
	args := []any{}
	conditionCount := 0

	if filter.Type != nil {
		conditionCount++
		query += fmt.Sprintf(` AND type = $%d`, conditionCount)
		args = append(args, *filter.Type)
	}
	if filter.ProductID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND product_id = $%d`, conditionCount)
		args = append(args, *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND (from_warehouse_id = $%d OR to_warehouse_id = $%d)`, conditionCount, conditionCount)
		args = append(args, *filter.WarehouseID)
	}
	if filter.From != nil {
		conditionCount++
		query += fmt.Sprintf(` AND created_at >= $%d`, conditionCount)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditionCount++
		query += fmt.Sprintf(` AND created_at <= $%d`, conditionCount)
		args = append(args, *filter.To)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, conditionCount+1)
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

	var movements []*models.Movement
	for rows.Next() {
		movement := &models.Movement{}
		if err := rows.Scan(&movement.ID, &movement.Type, &movement.ProductID, &movement.Quantity,
			&movement.FromWarehouseID, &movement.ToWarehouseID, &movement.Notes, &movement.CreatedBy, &movement.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	return movements, rows.Err()
}

// NetQuantity folds the ledger for one (product, warehouse) pair: the most
// recent adjustment snapshot (if any) plus every movement delta recorded
// after it. The audit sweep compares this against the materialized stock
// row to detect drift.
func (r *movementRepo) NetQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (int, error) {
	query := `
		WITH last_adjustment AS (
			SELECT new_quantity, created_at
			FROM adjustments
			WHERE product_id = $1 AND warehouse_id = $2
			ORDER BY created_at DESC
			LIMIT 1
		)
		SELECT COALESCE((SELECT new_quantity FROM last_adjustment), 0) + COALESCE((
			SELECT SUM(CASE WHEN to_warehouse_id = $2 THEN quantity ELSE -quantity END)
			FROM movements
			WHERE product_id = $1
			  AND (to_warehouse_id = $2 OR from_warehouse_id = $2)
			  AND created_at > COALESCE((SELECT created_at FROM last_adjustment), '-infinity'::timestamptz)
		), 0)
	`
	var net int
	err := r.db.QueryRow(ctx, query, productID, warehouseID).Scan(&net)
	return net, err
}
