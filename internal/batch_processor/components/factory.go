package components

import (
	"log/slog"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/batch_processor/service"
	"github.com/deducta-loan-ledger/internal/config"
	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/loan"
	"github.com/deducta-loan-ledger/internal/domain/repayment"
	"github.com/deducta-loan-ledger/internal/domain/report"
	"github.com/deducta-loan-ledger/internal/domain/settings"
	"github.com/deducta-loan-ledger/internal/platform/persistence"
)

// CreateIngestionService wires the ingestion service and all its components.
func CreateIngestionService(
	pgDB *persistence.PostgresDB,
	loanRepo loan.Repository,
	customerRepo customer.Repository,
	repaymentRepo repayment.Repository,
	batchRepo batch.Repository,
	reportRepo report.Repository,
	settingsStore settings.Store,
	fileStore batch.FileStore,
	logger *slog.Logger,
	cfg *config.Config,
) service.IngestionService {
	allocator := allocation.NewAllocator(logger, pgDB, loanRepo, customerRepo, repaymentRepo, settingsStore)

	preCreator := NewAwaitingPreCreator(loanRepo, repaymentRepo, logger)
	rowAllocator := NewRowAllocator(customerRepo, repaymentRepo, allocator, logger)
	sweeper := NewSweeper(pgDB, loanRepo, repaymentRepo, settingsStore, cfg.Sweeper.BatchSize, logger)
	reportPublisher := NewReportPublisher(reportRepo, logger)

	baseService := service.NewIngestionService(
		batchRepo,
		fileStore,
		settingsStore,
		preCreator,
		rowAllocator,
		sweeper,
		reportPublisher,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolIngestionService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool ingestion service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
