package models

import (
	"time"

	"github.com/google/uuid"
)

// StockEntry is the materialized quantity for a (product, warehouse) pair.
// It is derived state: its value must equal the fold of all movements and
// adjustments touching the pair. Rows are created lazily on first movement
// and zeroed rather than deleted.
type StockEntry struct {
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	WarehouseID uuid.UUID `json:"warehouse_id" db:"warehouse_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// StockView is a StockEntry joined with product and warehouse names for
// read-only projections.
type StockView struct {
	StockEntry
	ProductName   string `json:"product_name" db:"product_name"`
	ProductSKU    string `json:"product_sku" db:"product_sku"`
	WarehouseName string `json:"warehouse_name" db:"warehouse_name"`
}

// StockSearchFilter holds filter criteria for stock queries
type StockSearchFilter struct {
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	MinQuantity *int       `json:"min_quantity,omitempty"`
	MaxQuantity *int       `json:"max_quantity,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Offset      int        `json:"offset,omitempty"`
}
