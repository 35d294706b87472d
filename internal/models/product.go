package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	SKU         string          `json:"sku" db:"sku"`
	Description *string         `json:"description" db:"description"`
	Unit        string          `json:"unit" db:"unit"`
	Cost        decimal.Decimal `json:"cost" db:"cost"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
