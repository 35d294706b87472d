package models

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse capacity is informational only; the ledger never enforces it
// as a ceiling on incoming stock.
type Warehouse struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Location  *string   `json:"location" db:"location"`
	Capacity  *int      `json:"capacity" db:"capacity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
