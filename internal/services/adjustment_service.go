package services

import (
	"context"
	"errors"

	"depot/internal/caching"
	"depot/internal/models"
	"depot/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// AdjustmentService applies out-of-band stock corrections. An adjustment
// sets the quantity to an absolute snapshot value; the previous value is
// captured in the audit record. The same compare-and-set discipline as the
// movement engine applies, so an adjustment racing a transfer never
// produces a torn write.
type AdjustmentService interface {
	Apply(ctx context.Context, actorID uuid.UUID, productID, warehouseID uuid.UUID, newQuantity int, reason string) (*models.Adjustment, error)
	List(ctx context.Context, filter *models.AdjustmentFilter) ([]*models.Adjustment, error)
}

type adjustmentService struct {
	stockRepo      repositories.StockRepository
	adjustmentRepo repositories.AdjustmentRepository
	productRepo    repositories.ProductRepository
	warehouseRepo  repositories.WarehouseRepository
	cache          caching.CacheService
	logger         zerolog.Logger
}

func NewAdjustmentService(
	stockRepo repositories.StockRepository,
	adjustmentRepo repositories.AdjustmentRepository,
	productRepo repositories.ProductRepository,
	warehouseRepo repositories.WarehouseRepository,
	cache caching.CacheService,
	logger zerolog.Logger,
) AdjustmentService {
	return &adjustmentService{
		stockRepo:      stockRepo,
		adjustmentRepo: adjustmentRepo,
		productRepo:    productRepo,
		warehouseRepo:  warehouseRepo,
		cache:          cache,
		logger:         logger,
	}
}

func (s *adjustmentService) Apply(ctx context.Context, actorID uuid.UUID, productID, warehouseID uuid.UUID, newQuantity int, reason string) (*models.Adjustment, error) {
	if newQuantity < 0 {
		return nil, &models.ValidationError{Field: "new_quantity", Reason: "must not be negative"}
	}
	if reason == "" {
		return nil, &models.ValidationError{Field: "reason", Reason: "is required"}
	}
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.ValidationError{Field: "product_id", Reason: "unknown product"}
		}
		return nil, &models.StoreUnavailableError{Op: "product lookup", Err: err}
	}
	if _, err := s.warehouseRepo.GetByID(ctx, warehouseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.ValidationError{Field: "warehouse_id", Reason: "unknown warehouse"}
		}
		return nil, &models.StoreUnavailableError{Op: "warehouse lookup", Err: err}
	}

	var previous int
	for attempt := 0; ; attempt++ {
		if attempt == casMaxRetries {
			return nil, &models.ContentionError{ProductID: productID, WarehouseID: warehouseID, Attempts: casMaxRetries}
		}
		entry, err := s.stockRepo.Get(ctx, productID, warehouseID)
		if err != nil {
			return nil, &models.StoreUnavailableError{Op: "stock read", Err: err}
		}
		previous = 0
		if entry != nil {
			previous = entry.Quantity
		}
		ok, err := s.stockRepo.CompareAndSet(ctx, productID, warehouseID, previous, newQuantity)
		if err != nil {
			return nil, &models.StoreUnavailableError{Op: "stock update", Err: err}
		}
		if ok {
			break
		}
	}

	adjustment := &models.Adjustment{
		ID:               uuid.New(),
		ProductID:        productID,
		WarehouseID:      warehouseID,
		PreviousQuantity: previous,
		NewQuantity:      newQuantity,
		Reason:           reason,
		CreatedBy:        actorID,
	}
	if err := s.adjustmentRepo.Append(ctx, adjustment); err != nil {
		s.logger.Error().Err(err).
			Str("product_id", productID.String()).
			Str("warehouse_id", warehouseID.String()).
			Int("previous_quantity", previous).
			Int("new_quantity", newQuantity).
			Msg("adjustment audit append failed, stock mutation stands")
		return nil, &models.LedgerAppendError{Err: err}
	}

	if err := s.cache.DeleteStockEntry(ctx, productID, warehouseID); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate stock cache entry")
	}
	return adjustment, nil
}

func (s *adjustmentService) List(ctx context.Context, filter *models.AdjustmentFilter) ([]*models.Adjustment, error) {
	return s.adjustmentRepo.List(ctx, filter)
}
