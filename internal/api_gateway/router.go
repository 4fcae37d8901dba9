package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deducta-loan-ledger/internal/api_gateway/handler"
	"github.com/deducta-loan-ledger/internal/api_gateway/middleware"
	"github.com/deducta-loan-ledger/internal/domain/settings"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	jwtSecret string,
	settingsStore settings.Store,
	customerHandler *handler.CustomerHandler,
	loanHandler *handler.LoanHandler,
	batchHandler *handler.BatchHandler,
	reviewHandler *handler.ReviewHandler,
	liquidationHandler *handler.LiquidationHandler,
	platformHandler *handler.PlatformHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	auth := middleware.Auth(jwtSecret)
	maintenance := middleware.Maintenance(settingsStore, logger)

	// API v1 endpoints. Everything except platform administration honors
	// the maintenance flag.
	v1 := r.Group("/api/v1", auth, maintenance)
	{
		// Customer operations
		customers := v1.Group("/customers")
		{
			customers.POST("", customerHandler.Create)
			customers.GET("/:id", customerHandler.GetByID)
			customers.GET("/:id/loans", customerHandler.ListLoans)
		}

		// Loan lifecycle
		loans := v1.Group("/loans")
		{
			loans.POST("", loanHandler.Create)
			loans.GET("/:id", loanHandler.GetByID)
			loans.PUT("/:id/terms", loanHandler.SetTerms)
			loans.POST("/:id/approve", loanHandler.Approve)
			loans.POST("/:id/reject", loanHandler.Reject)
			loans.POST("/:id/disburse", loanHandler.Disburse)
		}

		// Deduction sheet ingestion
		batches := v1.Group("/batches")
		{
			batches.POST("", batchHandler.Upload)
			batches.GET("/:id", batchHandler.GetByID)
		}
		v1.GET("/reports/:period", batchHandler.GetReport)

		// Manual-resolution queue
		review := v1.Group("/review")
		{
			review.GET("", reviewHandler.List)
			review.POST("/:id/resolve", reviewHandler.Resolve)
		}

		// Lump-sum payoff requests
		liquidations := v1.Group("/liquidations")
		{
			liquidations.POST("", liquidationHandler.Create)
			liquidations.GET("", liquidationHandler.ListPending)
			liquidations.GET("/:id", liquidationHandler.GetByID)
			liquidations.POST("/:id/approve", liquidationHandler.Approve)
			liquidations.POST("/:id/reject", liquidationHandler.Reject)
		}
	}

	// Platform administration bypasses the maintenance flag so operators can
	// clear it.
	admin := r.Group("/api/v1/admin/platform", auth)
	{
		admin.GET("", platformHandler.Overview)
		admin.PUT("/rates", platformHandler.SetRate)
		admin.PUT("/maintenance", platformHandler.SetMaintenance)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
