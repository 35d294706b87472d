package handlers

import (
	"errors"
	"net/http"

	"depot/internal/common"
	"depot/internal/models"
	"depot/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ReportHandlers serves the dashboard summary and file exports.
type ReportHandlers struct {
	reportService     services.ReportService
	lowStockThreshold int
}

func NewReportHandlers(reportService services.ReportService, lowStockThreshold int) *ReportHandlers {
	return &ReportHandlers{
		reportService:     reportService,
		lowStockThreshold: lowStockThreshold,
	}
}

// Dashboard handles GET /dashboard.
func (h *ReportHandlers) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	summary, err := h.reportService.DashboardSummary(ctx, h.lowStockThreshold)
	if err != nil {
		return common.SendServerError(c, "Failed to build dashboard summary")
	}
	return c.JSON(http.StatusOK, summary)
}

// ExportStock handles GET /reports/stock?format=xlsx|pdf.
func (h *ReportHandlers) ExportStock(c echo.Context) error {
	ctx := c.Request().Context()

	var warehouseID *uuid.UUID
	if w := c.QueryParam("warehouse_id"); w != "" {
		id, err := common.ValidateUUID(w, "warehouse_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		warehouseID = &id
	}

	format := c.QueryParam("format")
	if format == "" {
		format = services.FormatXLSX
	}

	url, err := h.reportService.ExportStock(ctx, warehouseID, format)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			return common.SendValidationError(c, validationErr.Field, validationErr.Reason)
		}
		return common.SendServerError(c, "Failed to export stock report")
	}

	return c.JSON(http.StatusOK, map[string]string{"download_url": url})
}

// ExportMovements handles GET /reports/movements?format=xlsx|pdf.
func (h *ReportHandlers) ExportMovements(c echo.Context) error {
	ctx := c.Request().Context()

	filter, err := parseMovementFilter(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	format := c.QueryParam("format")
	if format == "" {
		format = services.FormatXLSX
	}

	url, err := h.reportService.ExportMovements(ctx, filter, format)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			return common.SendValidationError(c, validationErr.Field, validationErr.Reason)
		}
		return common.SendServerError(c, "Failed to export movement report")
	}

	return c.JSON(http.StatusOK, map[string]string{"download_url": url})
}

// ExportAdjustments handles GET /reports/adjustments.
func (h *ReportHandlers) ExportAdjustments(c echo.Context) error {
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

	url, err := h.reportService.ExportAdjustments(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to export adjustment report")
	}

	return c.JSON(http.StatusOK, map[string]string{"download_url": url})
}
