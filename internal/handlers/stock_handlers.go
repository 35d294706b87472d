package handlers

import (
	"net/http"
	"strconv"
	"time"

	"depot/internal/caching"
	"depot/internal/common"
	"depot/internal/models"
	"depot/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const stockEntryCacheTTL = 30 * time.Second

// StockHandlers serves the current-stock projection. Single-entry reads go
// through the cache with a short TTL; mutation happens only through
// movements and adjustments, which invalidate the touched keys.
type StockHandlers struct {
	stockRepo repositories.StockRepository
	cache     caching.CacheService
}

func NewStockHandlers(stockRepo repositories.StockRepository, cache caching.CacheService) *StockHandlers {
	return &StockHandlers{stockRepo: stockRepo, cache: cache}
}

// ListStock handles GET /stock.
func (h *StockHandlers) ListStock(c echo.Context) error {
	ctx := c.Request().Context()

	var warehouseID *uuid.UUID
	if w := c.QueryParam("warehouse_id"); w != "" {
		id, err := common.ValidateUUID(w, "warehouse_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		warehouseID = &id
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	views, err := h.stockRepo.List(ctx, warehouseID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list stock")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"stock": views,
		"count": len(views),
	})
}

// SearchStock handles POST /stock/search with a filter body.
func (h *StockHandlers) SearchStock(c echo.Context) error {
	ctx := c.Request().Context()

	var filter models.StockSearchFilter
	if err := c.Bind(&filter); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)

	views, err := h.stockRepo.Search(ctx, &filter)
	if err != nil {
		return common.SendServerError(c, "Failed to search stock")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"stock": views,
		"count": len(views),
	})
}

// GetStockEntry handles GET /stock/:product_id/:warehouse_id.
func (h *StockHandlers) GetStockEntry(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("product_id"), "product_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	warehouseID, err := common.ValidateUUID(c.Param("warehouse_id"), "warehouse_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if cached, err := h.cache.GetStockEntry(ctx, productID, warehouseID); err == nil && cached != nil {
		return c.JSON(http.StatusOK, cached)
	}

	entry, err := h.stockRepo.Get(ctx, productID, warehouseID)
	if err != nil {
		return common.SendServerError(c, "Failed to get stock entry")
	}
	if entry == nil {
		// Absent row reads as zero, same as the engine sees it.
		entry = &models.StockEntry{ProductID: productID, WarehouseID: warehouseID, Quantity: 0}
	} else {
		// Best effort; the TTL bounds staleness if invalidation is missed.
		_ = h.cache.SetStockEntry(ctx, entry, stockEntryCacheTTL)
	}

	return c.JSON(http.StatusOK, entry)
}

// LowStock handles GET /stock/low.
func (h *StockHandlers) LowStock(c echo.Context) error {
	ctx := c.Request().Context()

	threshold, _ := strconv.Atoi(c.QueryParam("threshold"))
	if threshold <= 0 {
		threshold = 10
	}

	views, err := h.stockRepo.LowStock(ctx, threshold)
	if err != nil {
		return common.SendServerError(c, "Failed to list low stock")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"stock":     views,
		"count":     len(views),
		"threshold": threshold,
	})
}
