package jobs

import (
	"context"

	"depot/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const auditPageSize = 500

// LedgerAuditService is the recovery mechanism for the stock table. The
// stock quantity is derived state; folding the movement and adjustment
// history for a (product, warehouse) pair must reproduce it. The sweep
// recomputes the fold for every materialized row and reports drift.
//
// Drift is expected transiently when a transfer crashed between its debit
// and credit (stock in flight), and permanently when a ledger append failed
// after a stock mutation. The sweep reports; correction is an explicit
// adjustment by an operator, never an automatic write.
type LedgerAuditService struct {
	stockRepo    repositories.StockRepository
	movementRepo repositories.MovementRepository
	logger       zerolog.Logger
}

type LedgerDrift struct {
	ProductID    uuid.UUID
	WarehouseID  uuid.UUID
	Materialized int
	LedgerFold   int
}

func NewLedgerAuditService(stockRepo repositories.StockRepository, movementRepo repositories.MovementRepository, logger zerolog.Logger) *LedgerAuditService {
	return &LedgerAuditService{
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// Sweep walks every stock row and compares the materialized quantity with
// the ledger fold. Returns the drifted pairs.
func (a *LedgerAuditService) Sweep(ctx context.Context) ([]LedgerDrift, error) {
	var drifts []LedgerDrift
	offset := 0

	for {
		views, err := a.stockRepo.List(ctx, nil, auditPageSize, offset)
		if err != nil {
			a.logger.Error().Err(err).Msg("audit sweep: listing stock failed")
			return nil, err
		}
		if len(views) == 0 {
			break
		}

		for _, v := range views {
			fold, err := a.movementRepo.NetQuantity(ctx, v.ProductID, v.WarehouseID)
			if err != nil {
				a.logger.Error().Err(err).
					Str("product_id", v.ProductID.String()).
					Str("warehouse_id", v.WarehouseID.String()).
					Msg("audit sweep: ledger fold failed")
				continue
			}
			if fold != v.Quantity {
				drifts = append(drifts, LedgerDrift{
					ProductID:    v.ProductID,
					WarehouseID:  v.WarehouseID,
					Materialized: v.Quantity,
					LedgerFold:   fold,
				})
			}
		}

		if len(views) < auditPageSize {
			break
		}
		offset += auditPageSize
	}

	return drifts, nil
}

// Run is the scheduled entry point.
func (a *LedgerAuditService) Run(ctx context.Context) error {
	drifts, err := a.Sweep(ctx)
	if err != nil {
		return err
	}

	if len(drifts) == 0 {
		a.logger.Debug().Msg("audit sweep: ledger and stock agree")
		return nil
	}

	for _, d := range drifts {
		a.logger.Error().
			Str("product_id", d.ProductID.String()).
			Str("warehouse_id", d.WarehouseID.String()).
			Int("materialized", d.Materialized).
			Int("ledger_fold", d.LedgerFold).
			Int("difference", d.Materialized-d.LedgerFold).
			Msg("audit sweep: stock drift detected")
	}
	return nil
}
