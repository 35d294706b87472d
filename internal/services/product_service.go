package services

import (
	"context"
	"errors"
	"time"

	"depot/internal/caching"
	"depot/internal/models"
	"depot/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const productCacheTTL = 10 * time.Minute

type ProductService interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
}

type productService struct {
	productRepo repositories.ProductRepository
	cache       caching.CacheService
	logger      zerolog.Logger
}

func NewProductService(productRepo repositories.ProductRepository, cache caching.CacheService, logger zerolog.Logger) ProductService {
	return &productService{productRepo: productRepo, cache: cache, logger: logger}
}

func (s *productService) Create(ctx context.Context, product *models.Product) error {
	if product.Name == "" {
		return errors.New("product name is required")
	}
	if product.SKU == "" {
		return errors.New("product SKU is required")
	}
	if product.Cost.IsNegative() {
		return errors.New("product cost must not be negative")
	}

	existing, err := s.productRepo.GetBySKU(ctx, product.SKU)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("product with this SKU already exists")
	}

	product.ID = uuid.New()
	if product.Unit == "" {
		product.Unit = "unit"
	}
	return s.productRepo.Create(ctx, product)
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if cached, err := s.cache.GetProduct(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("product_id", id.String()).Msg("product cache read failed")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetProduct(ctx, product, productCacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id.String()).Msg("product cache write failed")
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, product *models.Product) error {
	if product.Name == "" {
		return errors.New("product name is required")
	}
	if product.SKU == "" {
		return errors.New("product SKU is required")
	}
	if product.Cost.IsNegative() {
		return errors.New("product cost must not be negative")
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	if err := s.cache.DeleteProduct(ctx, product.ID); err != nil {
		s.logger.Warn().Err(err).Str("product_id", product.ID.String()).Msg("failed to invalidate product cache")
	}
	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.DeleteProduct(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id.String()).Msg("failed to invalidate product cache")
	}
	return nil
}

func (s *productService) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	return s.productRepo.List(ctx, limit, offset)
}
