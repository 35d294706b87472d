package models

import (
	"time"

	"github.com/google/uuid"
)

// Adjustment is an audit record for an out-of-band stock correction.
// It stores snapshots (previous and new quantity), not a delta, and is
// disjoint from the movement ledger.
type Adjustment struct {
	ID               uuid.UUID `json:"id" db:"id"`
	ProductID        uuid.UUID `json:"product_id" db:"product_id"`
	WarehouseID      uuid.UUID `json:"warehouse_id" db:"warehouse_id"`
	PreviousQuantity int       `json:"previous_quantity" db:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity" db:"new_quantity"`
	Reason           string    `json:"reason" db:"reason"`
	CreatedBy        uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// AdjustmentFilter holds filter criteria for adjustment listings.
type AdjustmentFilter struct {
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Offset      int        `json:"offset,omitempty"`
}
