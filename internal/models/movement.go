package models

import (
	"time"

	"github.com/google/uuid"
)

// Movement types. Transfers move stock between two warehouses,
// production output takes stock out of the system, returns bring it back in.
const (
	MovementTypeTransfer         = "transfer"
	MovementTypeProductionOutput = "production_output"
	MovementTypeReturn           = "return"
)

// Movement is one immutable ledger record. The ledger is append-only:
// corrections happen via compensating movements, never edits.
type Movement struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Type            string     `json:"type" db:"type"`
	ProductID       uuid.UUID  `json:"product_id" db:"product_id"`
	Quantity        int        `json:"quantity" db:"quantity"`
	FromWarehouseID *uuid.UUID `json:"from_warehouse_id" db:"from_warehouse_id"`
	ToWarehouseID   *uuid.UUID `json:"to_warehouse_id" db:"to_warehouse_id"`
	Notes           *string    `json:"notes" db:"notes"`
	CreatedBy       uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// MovementIntent is a caller's request to record a movement. The engine
// validates it and turns it into stock updates plus a ledger append.
type MovementIntent struct {
	Type            string     `json:"type"`
	ProductID       uuid.UUID  `json:"product_id"`
	Quantity        int        `json:"quantity"`
	FromWarehouseID *uuid.UUID `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   *uuid.UUID `json:"to_warehouse_id,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// MovementFilter holds filter criteria for ledger listings. WarehouseID
// matches either side of a movement.
type MovementFilter struct {
	Type        *string    `json:"type,omitempty"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Offset      int        `json:"offset,omitempty"`
}

// ValidMovementType reports whether t is one of the known movement types.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeTransfer, MovementTypeProductionOutput, MovementTypeReturn:
		return true
	}
	return false
}
