package jobs

import (
	"context"

	"depot/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type LowStockAlertService struct {
	stockRepo repositories.StockRepository
	threshold int
	logger    zerolog.Logger
}

type LowStockAlert struct {
	ProductID    uuid.UUID
	ProductName  string
	WarehouseID  uuid.UUID
	Warehouse    string
	CurrentStock int
	Threshold    int
}

func NewLowStockAlertService(stockRepo repositories.StockRepository, threshold int, logger zerolog.Logger) *LowStockAlertService {
	if threshold <= 0 {
		threshold = 10
	}
	return &LowStockAlertService{
		stockRepo: stockRepo,
		threshold: threshold,
		logger:    logger,
	}
}

func (a *LowStockAlertService) CheckLowStock(ctx context.Context) ([]LowStockAlert, error) {
	views, err := a.stockRepo.LowStock(ctx, a.threshold)
	if err != nil {
		a.logger.Error().Err(err).Msg("low stock query failed")
		return nil, err
	}

	alerts := make([]LowStockAlert, 0, len(views))
	for _, v := range views {
		alerts = append(alerts, LowStockAlert{
			ProductID:    v.ProductID,
			ProductName:  v.ProductName,
			WarehouseID:  v.WarehouseID,
			Warehouse:    v.WarehouseName,
			CurrentStock: v.Quantity,
			Threshold:    a.threshold,
		})
	}
	return alerts, nil
}

func (a *LowStockAlertService) LogAlerts(alerts []LowStockAlert) {
	if len(alerts) == 0 {
		a.logger.Debug().Msg("no low stock alerts")
		return
	}

	for _, alert := range alerts {
		a.logger.Warn().
			Str("product", alert.ProductName).
			Str("warehouse", alert.Warehouse).
			Int("quantity", alert.CurrentStock).
			Int("threshold", alert.Threshold).
			Msg("low stock")
	}
}

// Run is the scheduled entry point.
func (a *LowStockAlertService) Run(ctx context.Context) error {
	alerts, err := a.CheckLowStock(ctx)
	if err != nil {
		return err
	}
	a.LogAlerts(alerts)
	return nil
}
