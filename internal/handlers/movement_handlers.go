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

// MovementHandlers handles HTTP requests for the stock ledger.
type MovementHandlers struct {
	movementService services.MovementService
}

func NewMovementHandlers(movementService services.MovementService) *MovementHandlers {
	return &MovementHandlers{movementService: movementService}
}

// SubmitMovement handles POST /movements. Each distinct failure kind maps
// to its own status so callers can tell a safe retry from a broken request:
// validation and stock shortfalls are the caller's problem, contention and
// store outages are retryable, and a ledger append failure means the stock
// change stands but the audit record is missing.
func (h *MovementHandlers) SubmitMovement(c echo.Context) error {
	ctx := c.Request().Context()

	actorID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var intent models.MovementIntent
	if err := c.Bind(&intent); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	movement, err := h.movementService.Submit(ctx, actorID, intent)
	if err != nil {
		var validationErr *models.ValidationError
		var insufficientErr *models.InsufficientStockError
		var contentionErr *models.ContentionError
		var ledgerErr *models.LedgerAppendError
		var storeErr *models.StoreUnavailableError

		switch {
		case errors.As(err, &validationErr):
			return common.SendValidationError(c, validationErr.Field, validationErr.Reason)
		case errors.As(err, &insufficientErr):
			return c.JSON(http.StatusConflict, common.CreateErrorResponse("INSUFFICIENT_STOCK", err.Error(), map[string]string{
				"available": strconv.Itoa(insufficientErr.Available),
				"requested": strconv.Itoa(insufficientErr.Requested),
			}))
		case errors.As(err, &contentionErr):
			return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("CONTENTION", "Concurrent updates exhausted retries, resubmit the movement", nil))
		case errors.As(err, &ledgerErr):
			return c.JSON(http.StatusInternalServerError, common.CreateErrorResponse("LEDGER_APPEND_FAILED", "Stock was updated but the movement record was not persisted", nil))
		case errors.As(err, &storeErr):
			return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("STORE_UNAVAILABLE", "Backing store unavailable, retry later", nil))
		default:
			return common.SendServerError(c, "Failed to record movement")
		}
	}

	return c.JSON(http.StatusCreated, movement)
}

// ListMovements handles GET /movements.
func (h *MovementHandlers) ListMovements(c echo.Context) error {
	ctx := c.Request().Context()

	filter, err := parseMovementFilter(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	movements, err := h.movementService.List(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to list movements")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"movements": movements,
		"count":     len(movements),
	})
}

func parseMovementFilter(c echo.Context) (*models.MovementFilter, error) {
	filter := &models.MovementFilter{}

	if t := c.QueryParam("type"); t != "" {
		if !models.ValidMovementType(t) {
			return nil, errors.New("unknown movement type")
		}
		filter.Type = &t
	}
	if p := c.QueryParam("product_id"); p != "" {
		id, err := common.ValidateUUID(p, "product_id")
		if err != nil {
			return nil, err
		}
		filter.ProductID = &id
	}
	if w := c.QueryParam("warehouse_id"); w != "" {
		id, err := common.ValidateUUID(w, "warehouse_id")
		if err != nil {
			return nil, err
		}
		filter.WarehouseID = &id
	}

	var from, to *time.Time
	if f := c.QueryParam("from"); f != "" {
		parsed, err := time.Parse(time.RFC3339, f)
		if err != nil {
			return nil, errors.New("from must be RFC3339")
		}
		from = &parsed
	}
	if t := c.QueryParam("to"); t != "" {
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil, errors.New("to must be RFC3339")
		}
		to = &parsed
	}
	if from != nil && to != nil {
		if err := common.ValidateDateRange(*from, *to); err != nil {
			return nil, err
		}
	}
	filter.From = from
	filter.To = to

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset = common.ValidatePaginationParams(limit, offset)

	return filter, nil
}
