package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"depot/internal/caching"
	"depot/internal/config"
	"depot/internal/handlers"
	"depot/internal/jobs"
	"depot/internal/jobs/background"
	"depot/internal/middleware"
	"depot/internal/models"
	"depot/internal/repositories"
	"depot/internal/services"
	"depot/pkg/database"
	"depot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env, os.Getenv("DEPOT_LOG_LEVEL"))

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DB.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)

	storageSvc, err := services.NewMinioStorageService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}
	if err := storageSvc.EnsureBucketExists(ctx, cfg.Minio.Bucket); err != nil {
		log.Fatal().Err(err).Str("bucket", cfg.Minio.Bucket).Msg("failed to ensure report bucket")
	}

	// Repositories
	productRepo := repositories.NewProductRepository(pool)
	warehouseRepo := repositories.NewWarehouseRepository(pool)
	stockRepo := repositories.NewStockRepository(pool)
	movementRepo := repositories.NewMovementRepository(pool)
	adjustmentRepo := repositories.NewAdjustmentRepository(pool)
	userRepo := repositories.NewUserRepository(pool)

	// Services
	productSvc := services.NewProductService(productRepo, cacheSvc, log)
	warehouseSvc := services.NewWarehouseService(warehouseRepo, cacheSvc, log)
	movementSvc := services.NewMovementService(stockRepo, movementRepo, productRepo, warehouseRepo, cacheSvc, log)
	adjustmentSvc := services.NewAdjustmentService(stockRepo, adjustmentRepo, productRepo, warehouseRepo, cacheSvc, log)
	userSvc := services.NewUserService(userRepo)
	reportSvc := services.NewReportService(stockRepo, movementRepo, adjustmentRepo, productRepo, warehouseRepo, userRepo, cacheSvc, storageSvc, cfg.Minio.Bucket, log)

	// Background jobs
	alertSvc := jobs.NewLowStockAlertService(stockRepo, cfg.Jobs.LowStockThreshold, log)
	auditSvc := jobs.NewLedgerAuditService(stockRepo, movementRepo, log)
	scheduler, err := background.NewJobScheduler(alertSvc, auditSvc, background.Intervals{
		LowStockAlerts: cfg.Jobs.AlertInterval,
		LedgerAudit:    cfg.Jobs.AuditSweepInterval,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create job scheduler")
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("scheduler shutdown failed")
		}
	}()

	// Auth
	authMiddleware, err := middleware.NewAuthMiddleware(userRepo, cfg.Auth.JWKSURL, cfg.Auth.HMACSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth middleware")
	}

	// Handlers
	productHandlers := handlers.NewProductHandlers(productSvc)
	warehouseHandlers := handlers.NewWarehouseHandlers(warehouseSvc)
	stockHandlers := handlers.NewStockHandlers(stockRepo, cacheSvc)
	movementHandlers := handlers.NewMovementHandlers(movementSvc)
	adjustmentHandlers := handlers.NewAdjustmentHandlers(adjustmentSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	reportHandlers := handlers.NewReportHandlers(reportSvc, cfg.Jobs.LowStockThreshold)
	healthHandlers := handlers.NewHealthHandlers(pool, scheduler)

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.Health)
	e.GET("/health/ready", healthHandlers.Ready)

	v1 := e.Group("/v1")
	v1.Use(authMiddleware.Authenticate)

	// Product routes
	v1.GET("/products", productHandlers.ListProducts)
	v1.POST("/products", productHandlers.CreateProduct, middleware.RequireRole(models.RoleAdmin, models.RoleManager))
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.PUT("/products/:id", productHandlers.UpdateProduct, middleware.RequireRole(models.RoleAdmin, models.RoleManager))
	v1.DELETE("/products/:id", productHandlers.DeleteProduct, middleware.RequireRole(models.RoleAdmin))

	// Warehouse routes
	v1.GET("/warehouses", warehouseHandlers.ListWarehouses)
	v1.POST("/warehouses", warehouseHandlers.CreateWarehouse, middleware.RequireRole(models.RoleAdmin, models.RoleManager))
	v1.GET("/warehouses/:id", warehouseHandlers.GetWarehouse)
	v1.PUT("/warehouses/:id", warehouseHandlers.UpdateWarehouse, middleware.RequireRole(models.RoleAdmin, models.RoleManager))
	v1.DELETE("/warehouses/:id", warehouseHandlers.DeleteWarehouse, middleware.RequireRole(models.RoleAdmin))

	// Stock projection routes
	v1.GET("/stock", stockHandlers.ListStock)
	v1.POST("/stock/search", stockHandlers.SearchStock)
	v1.GET("/stock/low", stockHandlers.LowStock)
	v1.GET("/stock/:product_id/:warehouse_id", stockHandlers.GetStockEntry)

	// Ledger routes
	v1.GET("/movements", movementHandlers.ListMovements)
	v1.POST("/movements", movementHandlers.SubmitMovement)

	// Adjustment routes
	v1.GET("/adjustments", adjustmentHandlers.ListAdjustments)
	v1.POST("/adjustments", adjustmentHandlers.ApplyAdjustment, middleware.RequireRole(models.RoleAdmin, models.RoleManager))

	// User routes
	v1.GET("/users", userHandlers.ListUsers, middleware.RequireRole(models.RoleAdmin))
	v1.POST("/users", userHandlers.CreateUser, middleware.RequireRole(models.RoleAdmin))
	v1.GET("/users/:id", userHandlers.GetUser, middleware.RequireRole(models.RoleAdmin))
	v1.PUT("/users/:id/role", userHandlers.ChangeRole, middleware.RequireRole(models.RoleAdmin))
	v1.DELETE("/users/:id", userHandlers.DeactivateUser, middleware.RequireRole(models.RoleAdmin))

	// Dashboard and report routes
	v1.GET("/dashboard", reportHandlers.Dashboard)
	v1.GET("/reports/stock", reportHandlers.ExportStock)
	v1.GET("/reports/movements", reportHandlers.ExportMovements)
	v1.GET("/reports/adjustments", reportHandlers.ExportAdjustments)

	log.Info().Str("env", cfg.App.Env).Int("port", cfg.App.Port).Msg("starting server")
	if err := e.Start(fmt.Sprintf(":%d", cfg.App.Port)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
