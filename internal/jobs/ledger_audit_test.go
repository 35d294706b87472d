package jobs

import (
	"context"
	"testing"

	"depot/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type pairKey struct {
	productID   uuid.UUID
	warehouseID uuid.UUID
}

type stubStockRepo struct {
	views []*models.StockView
}

func (s *stubStockRepo) Get(ctx context.Context, productID, warehouseID uuid.UUID) (*models.StockEntry, error) {
	return nil, nil
}

func (s *stubStockRepo) CompareAndSet(ctx context.Context, productID, warehouseID uuid.UUID, expected, newQuantity int) (bool, error) {
	return false, nil
}

func (s *stubStockRepo) List(ctx context.Context, warehouseID *uuid.UUID, limit, offset int) ([]*models.StockView, error) {
	if offset >= len(s.views) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.views) {
		end = len(s.views)
	}
	return s.views[offset:end], nil
}

func (s *stubStockRepo) Search(ctx context.Context, filter *models.StockSearchFilter) ([]*models.StockView, error) {
	return s.views, nil
}

func (s *stubStockRepo) LowStock(ctx context.Context, threshold int) ([]*models.StockView, error) {
	var low []*models.StockView
	for _, v := range s.views {
		if v.Quantity < threshold {
			low = append(low, v)
		}
	}
	return low, nil
}

type stubMovementRepo struct {
	folds map[pairKey]int
}

func (s *stubMovementRepo) Append(ctx context.Context, movement *models.Movement) error { return nil }

func (s *stubMovementRepo) List(ctx context.Context, filter *models.MovementFilter) ([]*models.Movement, error) {
	return nil, nil
}

func (s *stubMovementRepo) NetQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (int, error) {
	return s.folds[pairKey{productID, warehouseID}], nil
}

func stockView(productID, warehouseID uuid.UUID, quantity int) *models.StockView {
	return &models.StockView{
		StockEntry: models.StockEntry{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    quantity,
		},
	}
}

func TestSweepReportsNoDriftWhenLedgerAgrees(t *testing.T) {
	productID, warehouseID := uuid.New(), uuid.New()
	stockRepo := &stubStockRepo{views: []*models.StockView{stockView(productID, warehouseID, 12)}}
	movementRepo := &stubMovementRepo{folds: map[pairKey]int{{productID, warehouseID}: 12}}

	audit := NewLedgerAuditService(stockRepo, movementRepo, zerolog.Nop())
	drifts, err := audit.Sweep(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestSweepDetectsDrift(t *testing.T) {
	productID, warehouseID := uuid.New(), uuid.New()
	okProduct, okWarehouse := uuid.New(), uuid.New()

	stockRepo := &stubStockRepo{views: []*models.StockView{
		stockView(productID, warehouseID, 10),
		stockView(okProduct, okWarehouse, 7),
	}}
	// The ledger says 15: a credit never landed, or an append was lost.
	movementRepo := &stubMovementRepo{folds: map[pairKey]int{
		{productID, warehouseID}: 15,
		{okProduct, okWarehouse}: 7,
	}}

	audit := NewLedgerAuditService(stockRepo, movementRepo, zerolog.Nop())
	drifts, err := audit.Sweep(context.Background())

	assert.NoError(t, err)
	assert.Len(t, drifts, 1)
	assert.Equal(t, productID, drifts[0].ProductID)
	assert.Equal(t, 10, drifts[0].Materialized)
	assert.Equal(t, 15, drifts[0].LedgerFold)
}

func TestCheckLowStockBuildsAlerts(t *testing.T) {
	productID, warehouseID := uuid.New(), uuid.New()
	view := stockView(productID, warehouseID, 3)
	view.ProductName = "Widget"
	view.WarehouseName = "Main"
	stockRepo := &stubStockRepo{views: []*models.StockView{
		view,
		stockView(uuid.New(), uuid.New(), 50),
	}}

	alerts := NewLowStockAlertService(stockRepo, 10, zerolog.Nop())
	got, err := alerts.CheckLowStock(context.Background())

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Widget", got[0].ProductName)
	assert.Equal(t, 3, got[0].CurrentStock)
	assert.Equal(t, 10, got[0].Threshold)
}
