package repositories

import (
	"context"
	"fmt"

	"depot/internal/models"
)

// AdjustmentRepository stores out-of-band correction records. Like the
// movement ledger it is append-only.
type AdjustmentRepository interface {
	Append(ctx context.Context, adjustment *models.Adjustment) error
	List(ctx context.Context, filter *models.AdjustmentFilter) ([]*models.Adjustment, error)
}

type adjustmentRepo struct {
	db Database
}

func NewAdjustmentRepository(db Database) AdjustmentRepository {
	return &adjustmentRepo{db: db}
}

func (r *adjustmentRepo) Append(ctx context.Context, adjustment *models.Adjustment) error {
	query := `
		INSERT INTO adjustments (id, product_id, warehouse_id, previous_quantity, new_quantity, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query,
		adjustment.ID, adjustment.ProductID, adjustment.WarehouseID,
		adjustment.PreviousQuantity, adjustment.NewQuantity, adjustment.Reason, adjustment.CreatedBy,
	).Scan(&adjustment.CreatedAt)
}

func (r *adjustmentRepo) List(ctx context.Context, filter *models.AdjustmentFilter) ([]*models.Adjustment, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `
		SELECT id, product_id, warehouse_id, previous_quantity, new_quantity, reason, created_by, created_at
		FROM adjustments
		WHERE 1=1
	`
	args := []any{}
	conditionCount := 0

	if filter.ProductID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND product_id = $%d`, conditionCount)
		args = append(args, *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND warehouse_id = $%d`, conditionCount)
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

	var adjustments []*models.Adjustment
	for rows.Next() {
		adjustment := &models.Adjustment{}
		if err := rows.Scan(&adjustment.ID, &adjustment.ProductID, &adjustment.WarehouseID,
			&adjustment.PreviousQuantity, &adjustment.NewQuantity, &adjustment.Reason,
			&adjustment.CreatedBy, &adjustment.CreatedAt); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, adjustment)
	}
	return adjustments, rows.Err()
}
