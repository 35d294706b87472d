package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"depot/internal/common"
	"depot/internal/models"
	"depot/internal/services"

	"github.com/labstack/echo/v4"
)

// AdjustmentHandlers handles HTTP requests for stock adjustments.
type AdjustmentHandlers struct {
	adjustmentService services.AdjustmentService
}

func NewAdjustmentHandlers(adjustmentService services.AdjustmentService) *AdjustmentHandlers {
	return &AdjustmentHandlers{adjustmentService: adjustmentService}
}

// ApplyAdjustment handles POST /adjustments.
func (h *AdjustmentHandlers) ApplyAdjustment(c echo.Context) error {
	ctx := c.Request().Context()

	actorID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		ProductID   string `json:"product_id"`
		WarehouseID string `json:"warehouse_id"`
		NewQuantity int    `json:"new_quantity"`
		Reason      string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	productID, err := common.ValidateUUID(req.ProductID, "product_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	warehouseID, err := common.ValidateUUID(req.WarehouseID, "warehouse_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	adjustment, err := h.adjustmentService.Apply(ctx, actorID, productID, warehouseID, req.NewQuantity, req.Reason)
	if err != nil {
		var validationErr *models.ValidationError
		var contentionErr *models.ContentionError
		var ledgerErr *models.LedgerAppendError

		switch {
		case errors.As(err, &validationErr):
			return common.SendValidationError(c, validationErr.Field, validationErr.Reason)
		case errors.As(err, &contentionErr):
			return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("CONTENTION", "Concurrent updates exhausted retries, resubmit the adjustment", nil))
		case errors.As(err, &ledgerErr):
			return c.JSON(http.StatusInternalServerError, common.CreateErrorResponse("LEDGER_APPEND_FAILED", "Stock was updated but the adjustment record was not persisted", nil))
		default:
			return common.SendServerError(c, "Failed to apply adjustment")
		}
	}

	return c.JSON(http.StatusCreated, adjustment)
}

// ListAdjustments handles GET /adjustments.
func (h *AdjustmentHandlers) ListAdjustments(c echo.Context) error {
	ctx := c.Request().Context()

	filter := &models.AdjustmentFilter{}
	if p := c.QueryParam("product_id"); p != "" {
		id, err := common.ValidateUUID(p, "product_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.ProductID = &id
	}
	if w := c.QueryParam("warehouse_id"); w != "" {
		id, err := common.ValidateUUID(w, "warehouse_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.WarehouseID = &id
	}
	if f := c.QueryParam("from"); f != "" {
		parsed, err := time.Parse(time.RFC3339, f)
		if err != nil {
			return common.SendClientError(c, "from must be RFC3339")
		}
		filter.From = &parsed
	}
	if t := c.QueryParam("to"); t != "" {
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return common.SendClientError(c, "to must be RFC3339")
		}
		filter.To = &parsed
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset = common.ValidatePaginationParams(limit, offset)

	adjustments, err := h.adjustmentService.List(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to list adjustments")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"adjustments": adjustments,
		"count":       len(adjustments),
	})
}
