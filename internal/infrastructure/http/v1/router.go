// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"coldstore/internal/domain/documents/bill"
	"coldstore/internal/domain/documents/receipt"
	"coldstore/internal/infrastructure/http/v1/handlers"
	"coldstore/internal/infrastructure/http/v1/middleware"
	"coldstore/internal/infrastructure/storage/postgres"
	"coldstore/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// BillService for rent bill endpoints
	BillService *bill.Service

	// ReceiptService for payment receipt endpoints
	ReceiptService *receipt.Service

	// IdempotencyStore enables the idempotency middleware when non-nil
	IdempotencyStore *postgres.IdempotencyStore
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	if cfg.IdempotencyStore != nil {
		v1.Use(middleware.Idempotency(cfg.IdempotencyStore))
	}

	baseHandler := handlers.NewBaseHandler()

	// --- BILLS ---
	{
		handler := handlers.NewBillHandler(baseHandler, cfg.BillService)

		bills := v1.Group("/bills")
		bills.POST("", handler.Create)
		bills.POST("/preview", handler.Preview)
		bills.GET("/:id", handler.GetByID)

		v1.GET("/parties/:partyId/open-bills", handler.OpenBills)

		// Stateless engine previews
		billing := v1.Group("/billing")
		billing.POST("/rent-preview", handler.RentPreview)
		billing.POST("/amount-in-words", handler.AmountWords)
	}

	// --- RECEIPTS ---
	{
		handler := handlers.NewReceiptHandler(baseHandler, cfg.ReceiptService)

		receipts := v1.Group("/receipts")
		receipts.POST("", handler.Create)
		receipts.GET("/:id", handler.GetByID)
	}

	return router
}
