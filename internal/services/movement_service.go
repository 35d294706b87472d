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

// casMaxRetries bounds the compare-and-set retry loop. Each retry re-reads
// the current quantity, so losing a race never corrupts state; exhausting
// the budget surfaces as a ContentionError the caller may safely resubmit.
const casMaxRetries = 5

// MovementService is the reconciliation engine: it turns a movement intent
// into a consistent state change across the stock table and the ledger.
//
// The two sides of a transfer are independent single-key compare-and-set
// operations, not one multi-key transaction. A crash between the debit and
// the credit leaves stock in flight (debited from the source, not yet
// credited to the destination); the ledger plus the periodic audit sweep
// is the recovery mechanism for that window.
type MovementService interface {
	Submit(ctx context.Context, actorID uuid.UUID, intent models.MovementIntent) (*models.Movement, error)
	List(ctx context.Context, filter *models.MovementFilter) ([]*models.Movement, error)
}

type movementService struct {
	stockRepo     repositories.StockRepository
	movementRepo  repositories.MovementRepository
	productRepo   repositories.ProductRepository
	warehouseRepo repositories.WarehouseRepository
	cache         caching.CacheService
	logger        zerolog.Logger
}

func NewMovementService(
	stockRepo repositories.StockRepository,
	movementRepo repositories.MovementRepository,
	productRepo repositories.ProductRepository,
	warehouseRepo repositories.WarehouseRepository,
	cache caching.CacheService,
	logger zerolog.Logger,
) MovementService {
	return &movementService{
		stockRepo:     stockRepo,
		movementRepo:  movementRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		cache:         cache,
		logger:        logger,
	}
}

func (s *movementService) Submit(ctx context.Context, actorID uuid.UUID, intent models.MovementIntent) (*models.Movement, error) {
	if err := s.validate(ctx, intent); err != nil {
		return nil, err
	}

	switch intent.Type {
	case models.MovementTypeTransfer:
		if err := s.debit(ctx, intent.ProductID, *intent.FromWarehouseID, intent.Quantity); err != nil {
			return nil, err
		}
		if err := s.credit(ctx, intent.ProductID, *intent.ToWarehouseID, intent.Quantity); err != nil {
			// The debit already committed. Stock is in flight until the
			// audit sweep reconciles it against the ledger.
			s.logger.Error().Err(err).
				Str("product_id", intent.ProductID.String()).
				Str("from_warehouse_id", intent.FromWarehouseID.String()).
				Str("to_warehouse_id", intent.ToWarehouseID.String()).
				Int("quantity", intent.Quantity).
				Msg("transfer credit failed after debit, stock in flight")
			return nil, err
		}
	case models.MovementTypeProductionOutput:
		if err := s.debit(ctx, intent.ProductID, *intent.FromWarehouseID, intent.Quantity); err != nil {
			return nil, err
		}
	case models.MovementTypeReturn:
		if err := s.credit(ctx, intent.ProductID, *intent.ToWarehouseID, intent.Quantity); err != nil {
			return nil, err
		}
	}

	movement := &models.Movement{
		ID:              uuid.New(),
		Type:            intent.Type,
		ProductID:       intent.ProductID,
		Quantity:        intent.Quantity,
		FromWarehouseID: intent.FromWarehouseID,
		ToWarehouseID:   intent.ToWarehouseID,
		Notes:           intent.Notes,
		CreatedBy:       actorID,
	}

	// The stock mutation is authoritative at this point; a failed append
	// breaks auditability, not stock integrity, and is surfaced as its own
	// error kind so it cannot be mistaken for a rejected intent.
	if err := s.movementRepo.Append(ctx, movement); err != nil {
		s.logger.Error().Err(err).
			Str("type", movement.Type).
			Str("product_id", movement.ProductID.String()).
			Int("quantity", movement.Quantity).
			Str("created_by", actorID.String()).
			Msg("ledger append failed, stock mutation stands")
		return nil, &models.LedgerAppendError{Err: err}
	}

	s.invalidate(ctx, intent)
	return movement, nil
}

func (s *movementService) List(ctx context.Context, filter *models.MovementFilter) ([]*models.Movement, error) {
	return s.movementRepo.List(ctx, filter)
}

func (s *movementService) validate(ctx context.Context, intent models.MovementIntent) error {
	if !models.ValidMovementType(intent.Type) {
		return &models.ValidationError{Field: "type", Reason: "must be transfer, production_output or return"}
	}
	if intent.Quantity <= 0 {
		return &models.ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}

	switch intent.Type {
	case models.MovementTypeTransfer:
		if intent.FromWarehouseID == nil || intent.ToWarehouseID == nil {
			return &models.ValidationError{Field: "warehouse", Reason: "transfer requires both source and destination"}
		}
		if *intent.FromWarehouseID == *intent.ToWarehouseID {
			return &models.ValidationError{Field: "warehouse", Reason: "source and destination must differ"}
		}
	case models.MovementTypeProductionOutput:
		if intent.FromWarehouseID == nil {
			return &models.ValidationError{Field: "from_warehouse_id", Reason: "production output requires a source warehouse"}
		}
		if intent.ToWarehouseID != nil {
			return &models.ValidationError{Field: "to_warehouse_id", Reason: "production output has no destination"}
		}
	case models.MovementTypeReturn:
		if intent.ToWarehouseID == nil {
			return &models.ValidationError{Field: "to_warehouse_id", Reason: "return requires a destination warehouse"}
		}
		if intent.FromWarehouseID != nil {
			return &models.ValidationError{Field: "from_warehouse_id", Reason: "return has no source"}
		}
	}

	if _, err := s.productRepo.GetByID(ctx, intent.ProductID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.ValidationError{Field: "product_id", Reason: "unknown product"}
		}
		return &models.StoreUnavailableError{Op: "product lookup", Err: err}
	}
	for field, id := range map[string]*uuid.UUID{
		"from_warehouse_id": intent.FromWarehouseID,
		"to_warehouse_id":   intent.ToWarehouseID,
	} {
		if id == nil {
			continue
		}
		if _, err := s.warehouseRepo.GetByID(ctx, *id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &models.ValidationError{Field: field, Reason: "unknown warehouse"}
			}
			return &models.StoreUnavailableError{Op: "warehouse lookup", Err: err}
		}
	}
	return nil
}

// debit subtracts quantity from (product, warehouse) with the
// read-modify-compare-and-set loop. The non-negativity floor is checked
// against the freshly read value on every attempt, so a racing writer can
// never push the entry below zero.
func (s *movementService) debit(ctx context.Context, productID, warehouseID uuid.UUID, quantity int) error {
	for attempt := 0; attempt < casMaxRetries; attempt++ {
		current, err := s.currentQuantity(ctx, productID, warehouseID)
		if err != nil {
			return err
		}
		if current < quantity {
			return &models.InsufficientStockError{
				ProductID:   productID,
				WarehouseID: warehouseID,
				Available:   current,
				Requested:   quantity,
			}
		}
		ok, err := s.stockRepo.CompareAndSet(ctx, productID, warehouseID, current, current-quantity)
		if err != nil {
			return &models.StoreUnavailableError{Op: "stock update", Err: err}
		}
		if ok {
			return nil
		}
	}
	return &models.ContentionError{ProductID: productID, WarehouseID: warehouseID, Attempts: casMaxRetries}
}

// credit adds quantity to (product, warehouse); the entry is created
// lazily by the repository when it does not exist yet.
func (s *movementService) credit(ctx context.Context, productID, warehouseID uuid.UUID, quantity int) error {
	for attempt := 0; attempt < casMaxRetries; attempt++ {
		current, err := s.currentQuantity(ctx, productID, warehouseID)
		if err != nil {
			return err
		}
		ok, err := s.stockRepo.CompareAndSet(ctx, productID, warehouseID, current, current+quantity)
		if err != nil {
			return &models.StoreUnavailableError{Op: "stock update", Err: err}
		}
		if ok {
			return nil
		}
	}
	return &models.ContentionError{ProductID: productID, WarehouseID: warehouseID, Attempts: casMaxRetries}
}

func (s *movementService) currentQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (int, error) {
	entry, err := s.stockRepo.Get(ctx, productID, warehouseID)
	if err != nil {
		return 0, &models.StoreUnavailableError{Op: "stock read", Err: err}
	}
	if entry == nil {
		return 0, nil
	}
	return entry.Quantity, nil
}

// invalidate drops cached projections for the touched pairs. Cache errors
// are logged and swallowed; the TTL bounds staleness either way.
func (s *movementService) invalidate(ctx context.Context, intent models.MovementIntent) {
	for _, id := range []*uuid.UUID{intent.FromWarehouseID, intent.ToWarehouseID} {
		if id == nil {
			continue
		}
		if err := s.cache.DeleteStockEntry(ctx, intent.ProductID, *id); err != nil {
			s.logger.Warn().Err(err).
				Str("product_id", intent.ProductID.String()).
				Str("warehouse_id", id.String()).
				Msg("failed to invalidate stock cache entry")
		}
	}
	if err := s.cache.DeleteDashboardSummary(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard summary cache")
	}
}
