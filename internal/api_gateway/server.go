package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deducta-loan-ledger/internal/api_gateway/handler"
	"github.com/deducta-loan-ledger/internal/api_gateway/service"
	"github.com/deducta-loan-ledger/internal/config"
	"github.com/deducta-loan-ledger/internal/domain/settings"
)

// Services bundles everything the HTTP surface exposes.
type Services struct {
	Customers    service.CustomerService
	Loans        service.LoanService
	Batches      service.BatchService
	Review       service.ReviewService
	Liquidations service.LiquidationService
	Platform     service.PlatformService
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, settingsStore settings.Store, services Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	customerHandler := handler.NewCustomerHandler(log, services.Customers)
	loanHandler := handler.NewLoanHandler(log, services.Loans)
	batchHandler := handler.NewBatchHandler(log, services.Batches)
	reviewHandler := handler.NewReviewHandler(log, services.Review)
	liquidationHandler := handler.NewLiquidationHandler(log, services.Liquidations)
	platformHandler := handler.NewPlatformHandler(log, services.Platform)

	setupRouter(log, httpRouter, cfg.Auth.JWTSecret, settingsStore,
		customerHandler, loanHandler, batchHandler, reviewHandler, liquidationHandler, platformHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
