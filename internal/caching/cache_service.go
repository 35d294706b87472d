package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"depot/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CacheService is a read-through cache for projection data. Entries carry
// a short TTL; writers invalidate the touched keys, so staleness is
// bounded by the TTL even when an invalidation is lost.
type CacheService interface {
	GetStockEntry(ctx context.Context, productID, warehouseID uuid.UUID) (*models.StockEntry, error)
	SetStockEntry(ctx context.Context, entry *models.StockEntry, ttl time.Duration) error
	DeleteStockEntry(ctx context.Context, productID, warehouseID uuid.UUID) error

	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	GetWarehouse(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error)
	SetWarehouse(ctx context.Context, warehouse *models.Warehouse, ttl time.Duration) error
	DeleteWarehouse(ctx context.Context, warehouseID uuid.UUID) error

	GetDashboardSummary(ctx context.Context) (map[string]int, error)
	SetDashboardSummary(ctx context.Context, summary map[string]int, ttl time.Duration) error
	DeleteDashboardSummary(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisCacheService(addr, password string, db int, logger zerolog.Logger) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("redis ping failed on initialization")
	}

	return &redisCacheService{client: client, logger: logger}
}

func stockKey(productID, warehouseID uuid.UUID) string {
	return fmt.Sprintf("depot:stock:%s:%s", productID, warehouseID)
}

func (r *redisCacheService) GetStockEntry(ctx context.Context, productID, warehouseID uuid.UUID) (*models.StockEntry, error) {
	entry := &models.StockEntry{}
	if err := r.get(ctx, stockKey(productID, warehouseID), entry); err != nil {
		return nil, err
	} else if entry.ProductID == uuid.Nil {
		return nil, nil
	}
	return entry, nil
}

func (r *redisCacheService) SetStockEntry(ctx context.Context, entry *models.StockEntry, ttl time.Duration) error {
	return r.set(ctx, stockKey(entry.ProductID, entry.WarehouseID), entry, ttl)
}

func (r *redisCacheService) DeleteStockEntry(ctx context.Context, productID, warehouseID uuid.UUID) error {
	return r.client.Del(ctx, stockKey(productID, warehouseID)).Err()
}

func (r *redisCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product := &models.Product{}
	if err := r.get(ctx, fmt.Sprintf("depot:product:%s", productID), product); err != nil {
		return nil, err
	} else if product.ID == uuid.Nil {
		return nil, nil
	}
	return product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	return r.set(ctx, fmt.Sprintf("depot:product:%s", product.ID), product, ttl)
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return r.client.Del(ctx, fmt.Sprintf("depot:product:%s", productID)).Err()
}

func (r *redisCacheService) GetWarehouse(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{}
	if err := r.get(ctx, fmt.Sprintf("depot:warehouse:%s", warehouseID), warehouse); err != nil {
		return nil, err
	} else if warehouse.ID == uuid.Nil {
		return nil, nil
	}
	return warehouse, nil
}

func (r *redisCacheService) SetWarehouse(ctx context.Context, warehouse *models.Warehouse, ttl time.Duration) error {
	return r.set(ctx, fmt.Sprintf("depot:warehouse:%s", warehouse.ID), warehouse, ttl)
}

func (r *redisCacheService) DeleteWarehouse(ctx context.Context, warehouseID uuid.UUID) error {
	return r.client.Del(ctx, fmt.Sprintf("depot:warehouse:%s", warehouseID)).Err()
}

const dashboardKey = "depot:dashboard:summary"

func (r *redisCacheService) GetDashboardSummary(ctx context.Context) (map[string]int, error) {
	data, err := r.client.Get(ctx, dashboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary map[string]int
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *redisCacheService) SetDashboardSummary(ctx context.Context, summary map[string]int, ttl time.Duration) error {
	return r.set(ctx, dashboardKey, summary, ttl)
}

func (r *redisCacheService) DeleteDashboardSummary(ctx context.Context) error {
	return r.client.Del(ctx, dashboardKey).Err()
}

// get unmarshals the value at key into dst; a cache miss leaves dst
// zero-valued and returns nil.
func (r *redisCacheService) get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (r *redisCacheService) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}
