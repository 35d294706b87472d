package services

import (
	"context"
	"errors"

	"depot/internal/caching"
	"depot/internal/models"
	"depot/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type WarehouseService interface {
	Create(ctx context.Context, warehouse *models.Warehouse) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	Update(ctx context.Context, warehouse *models.Warehouse) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error)
}

type warehouseService struct {
	warehouseRepo repositories.WarehouseRepository
	cache         caching.CacheService
	logger        zerolog.Logger
}

func NewWarehouseService(warehouseRepo repositories.WarehouseRepository, cache caching.CacheService, logger zerolog.Logger) WarehouseService {
	return &warehouseService{warehouseRepo: warehouseRepo, cache: cache, logger: logger}
}

func (s *warehouseService) Create(ctx context.Context, warehouse *models.Warehouse) error {
	if warehouse.Name == "" {
		return errors.New("warehouse name is required")
	}
	if warehouse.Capacity != nil && *warehouse.Capacity < 0 {
		return errors.New("warehouse capacity must not be negative")
	}

	existing, err := s.warehouseRepo.GetByName(ctx, warehouse.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("warehouse with this name already exists")
	}

	warehouse.ID = uuid.New()
	return s.warehouseRepo.Create(ctx, warehouse)
}

func (s *warehouseService) GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	if cached, err := s.cache.GetWarehouse(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("warehouse_id", id.String()).Msg("warehouse cache read failed")
	}

	warehouse, err := s.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetWarehouse(ctx, warehouse, productCacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("warehouse_id", id.String()).Msg("warehouse cache write failed")
	}
	return warehouse, nil
}

func (s *warehouseService) Update(ctx context.Context, warehouse *models.Warehouse) error {
	if warehouse.Name == "" {
		return errors.New("warehouse name is required")
	}
	if warehouse.Capacity != nil && *warehouse.Capacity < 0 {
		return errors.New("warehouse capacity must not be negative")
	}

	if err := s.warehouseRepo.Update(ctx, warehouse); err != nil {
		return err
	}
	if err := s.cache.DeleteWarehouse(ctx, warehouse.ID); err != nil {
		s.logger.Warn().Err(err).Str("warehouse_id", warehouse.ID.String()).Msg("failed to invalidate warehouse cache")
	}
	return nil
}

func (s *warehouseService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.warehouseRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.DeleteWarehouse(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("warehouse_id", id.String()).Msg("failed to invalidate warehouse cache")
	}
	return nil
}

func (s *warehouseService) List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	return s.warehouseRepo.List(ctx, limit, offset)
}
