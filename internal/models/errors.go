package models

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError rejects a malformed movement or adjustment intent.
// Never retried; the caller must fix the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientStockError rejects an intent that would drive a stock entry
// negative. A business-rule rejection, not a transient failure.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s in warehouse %s: available %d, requested %d",
		e.ProductID, e.WarehouseID, e.Available, e.Requested)
}

// ContentionError signals that compare-and-set retries were exhausted.
// No partial state was committed, so resubmitting the identical intent
// is safe.
type ContentionError struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Attempts    int
}

func (e *ContentionError) Error() string {
	return fmt.Sprintf("stock update for product %s in warehouse %s lost %d compare-and-set races, giving up",
		e.ProductID, e.WarehouseID, e.Attempts)
}

// LedgerAppendError means the stock mutation committed but the audit
// record did not persist. Stock integrity holds; auditability is broken
// until the audit sweep reconciles it, so this is surfaced distinctly
// instead of being folded into a generic store failure.
type LedgerAppendError struct {
	Err error
}

func (e *LedgerAppendError) Error() string {
	return fmt.Sprintf("stock updated but ledger append failed: %v", e.Err)
}

func (e *LedgerAppendError) Unwrap() error { return e.Err }

// StoreUnavailableError wraps backing-store failures (timeouts,
// connectivity). No partial mutation beyond what compare-and-set already
// made atomic.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }
