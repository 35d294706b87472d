package services

import (
	"context"
	"fmt"
	"time"

	"depot/internal/caching"
	"depot/internal/models"
	"depot/internal/reports"
	"depot/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	dashboardCacheTTL = time.Minute
	reportURLExpiry   = time.Hour
)

// Export formats.
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ReportService is the read-only projection over the ledger and the stock
// table, plus file exports. It has no mutation capability and tolerates
// bounded staleness through the cache.
type ReportService interface {
	CurrentStock(ctx context.Context, warehouseID *uuid.UUID, limit, offset int) ([]*models.StockView, error)
	LowStock(ctx context.Context, threshold int) ([]*models.StockView, error)
	MovementHistory(ctx context.Context, filter *models.MovementFilter) ([]*models.Movement, error)
	DashboardSummary(ctx context.Context, lowStockThreshold int) (map[string]int, error)
	ExportStock(ctx context.Context, warehouseID *uuid.UUID, format string) (string, error)
	ExportMovements(ctx context.Context, filter *models.MovementFilter, format string) (string, error)
	ExportAdjustments(ctx context.Context, filter *models.AdjustmentFilter) (string, error)
}

type reportService struct {
	stockRepo      repositories.StockRepository
	movementRepo   repositories.MovementRepository
	adjustmentRepo repositories.AdjustmentRepository
	productRepo    repositories.ProductRepository
	warehouseRepo  repositories.WarehouseRepository
	userRepo       repositories.UserRepository
	cache          caching.CacheService
	storage        StorageService
	bucket         string
	logger         zerolog.Logger
}

func NewReportService(
	stockRepo repositories.StockRepository,
	movementRepo repositories.MovementRepository,
	adjustmentRepo repositories.AdjustmentRepository,
	productRepo repositories.ProductRepository,
	warehouseRepo repositories.WarehouseRepository,
	userRepo repositories.UserRepository,
	cache caching.CacheService,
	storage StorageService,
	bucket string,
	logger zerolog.Logger,
) ReportService {
	return &reportService{
		stockRepo:      stockRepo,
		movementRepo:   movementRepo,
		adjustmentRepo: adjustmentRepo,
		productRepo:    productRepo,
		warehouseRepo:  warehouseRepo,
		userRepo:       userRepo,
		cache:          cache,
		storage:        storage,
		bucket:         bucket,
		logger:         logger,
	}
}

func (s *reportService) CurrentStock(ctx context.Context, warehouseID *uuid.UUID, limit, offset int) ([]*models.StockView, error) {
	return s.stockRepo.List(ctx, warehouseID, limit, offset)
}

func (s *reportService) LowStock(ctx context.Context, threshold int) ([]*models.StockView, error) {
	if threshold <= 0 {
		threshold = 10
	}
	return s.stockRepo.LowStock(ctx, threshold)
}

func (s *reportService) MovementHistory(ctx context.Context, filter *models.MovementFilter) ([]*models.Movement, error) {
	return s.movementRepo.List(ctx, filter)
}

func (s *reportService) DashboardSummary(ctx context.Context, lowStockThreshold int) (map[string]int, error) {
	if cached, err := s.cache.GetDashboardSummary(ctx); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Msg("dashboard summary cache read failed")
	}

	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}

	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	warehouses, err := s.warehouseRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	low, err := s.stockRepo.LowStock(ctx, lowStockThreshold)
	if err != nil {
		return nil, err
	}

	summary := map[string]int{
		"products":        products,
		"warehouses":      warehouses,
		"users":           users,
		"low_stock_items": len(low),
	}

	if err := s.cache.SetDashboardSummary(ctx, summary, dashboardCacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("dashboard summary cache write failed")
	}
	return summary, nil
}

func (s *reportService) ExportStock(ctx context.Context, warehouseID *uuid.UUID, format string) (string, error) {
	views, err := s.stockRepo.List(ctx, warehouseID, 10000, 0)
	if err != nil {
		return "", err
	}

	var data []byte
	switch format {
	case FormatPDF:
		data, err = reports.StockSummaryPDF("Stock Summary", views)
	case FormatXLSX:
		data, err = reports.StockSummaryXLSX(views)
	default:
		return "", &models.ValidationError{Field: "format", Reason: "must be xlsx or pdf"}
	}
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("stock-summary-%s.%s", time.Now().Format("2006-01-02-150405"), format)
	return s.store(ctx, objectName, format, data)
}

func (s *reportService) ExportMovements(ctx context.Context, filter *models.MovementFilter, format string) (string, error) {
	if filter.Limit == 0 {
		filter.Limit = 10000
	}
	movements, err := s.movementRepo.List(ctx, filter)
	if err != nil {
		return "", err
	}

	rows := make([]reports.MovementRow, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, reports.MovementRow{
			Date:     m.CreatedAt.Format("2006-01-02 15:04"),
			Type:     m.Type,
			Product:  s.productName(ctx, m.ProductID),
			Quantity: m.Quantity,
			From:     s.warehouseName(ctx, m.FromWarehouseID),
			To:       s.warehouseName(ctx, m.ToWarehouseID),
			Notes:    stringValue(m.Notes),
		})
	}

	var data []byte
	switch format {
	case FormatPDF:
		data, err = reports.MovementsPDF("Movement History", rows)
	case FormatXLSX:
		data, err = reports.MovementsXLSX(rows)
	default:
		return "", &models.ValidationError{Field: "format", Reason: "must be xlsx or pdf"}
	}
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("movements-%s.%s", time.Now().Format("2006-01-02-150405"), format)
	return s.store(ctx, objectName, format, data)
}

func (s *reportService) ExportAdjustments(ctx context.Context, filter *models.AdjustmentFilter) (string, error) {
	if filter.Limit == 0 {
		filter.Limit = 10000
	}
	adjustments, err := s.adjustmentRepo.List(ctx, filter)
	if err != nil {
		return "", err
	}

	rows := make([]reports.AdjustmentRow, 0, len(adjustments))
	for _, a := range adjustments {
		rows = append(rows, reports.AdjustmentRow{
			Date:      a.CreatedAt.Format("2006-01-02 15:04"),
			Product:   s.productName(ctx, a.ProductID),
			Warehouse: s.warehouseName(ctx, &a.WarehouseID),
			Previous:  a.PreviousQuantity,
			New:       a.NewQuantity,
			Reason:    a.Reason,
		})
	}

	data, err := reports.AdjustmentsXLSX(rows)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("adjustments-%s.xlsx", time.Now().Format("2006-01-02-150405"))
	return s.store(ctx, objectName, FormatXLSX, data)
}

func (s *reportService) store(ctx context.Context, objectName, format string, data []byte) (string, error) {
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == FormatPDF {
		contentType = "application/pdf"
	}

	if err := s.storage.UploadReport(ctx, s.bucket, objectName, contentType, data); err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, s.bucket, objectName, reportURLExpiry)
}

// productName resolves a product name for display, falling back to the id
// when the product was deleted after the movement was recorded.
func (s *reportService) productName(ctx context.Context, id uuid.UUID) string {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return id.String()
	}
	return product.Name
}

func (s *reportService) warehouseName(ctx context.Context, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	warehouse, err := s.warehouseRepo.GetByID(ctx, *id)
	if err != nil {
		return id.String()
	}
	return warehouse.Name
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
