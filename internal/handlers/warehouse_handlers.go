package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"depot/internal/common"
	"depot/internal/models"
	"depot/internal/services"

	"github.com/labstack/echo/v4"
)

// WarehouseHandlers handles HTTP requests for warehouses.
type WarehouseHandlers struct {
	warehouseService services.WarehouseService
}

func NewWarehouseHandlers(warehouseService services.WarehouseService) *WarehouseHandlers {
	return &WarehouseHandlers{warehouseService: warehouseService}
}

type warehouseRequest struct {
	Name     string  `json:"name"`
	Location *string `json:"location"`
	Capacity *int    `json:"capacity"`
}

func (r *warehouseRequest) toModel() (*models.Warehouse, error) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Warehouse name is required")
	}
	if r.Capacity != nil && *r.Capacity < 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Capacity cannot be negative")
	}
	return &models.Warehouse{
		Name:     strings.TrimSpace(r.Name),
		Location: r.Location,
		Capacity: r.Capacity,
	}, nil
}

// CreateWarehouse handles POST /warehouses.
func (h *WarehouseHandlers) CreateWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	var req warehouseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	warehouse, err := req.toModel()
	if err != nil {
		return err
	}

	if err := h.warehouseService.Create(ctx, warehouse); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, warehouse)
}

// GetWarehouse handles GET /warehouses/:id.
func (h *WarehouseHandlers) GetWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	warehouse, err := h.warehouseService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Warehouse")
	}
	return c.JSON(http.StatusOK, warehouse)
}

// UpdateWarehouse handles PUT /warehouses/:id.
func (h *WarehouseHandlers) UpdateWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req warehouseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	warehouse, err := req.toModel()
	if err != nil {
		return err
	}
	warehouse.ID = id

	if err := h.warehouseService.Update(ctx, warehouse); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, warehouse)
}

// DeleteWarehouse handles DELETE /warehouses/:id.
func (h *WarehouseHandlers) DeleteWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.warehouseService.Delete(ctx, id); err != nil {
		return common.SendServerError(c, "Failed to delete warehouse")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListWarehouses handles GET /warehouses.
func (h *WarehouseHandlers) ListWarehouses(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	warehouses, err := h.warehouseService.List(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list warehouses")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"warehouses": warehouses,
		"count":      len(warehouses),
	})
}
