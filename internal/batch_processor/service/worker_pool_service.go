package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolIngestionService runs batches on an ants worker pool so distinct
// periods can process concurrently. Rows within a batch stay sequential; an
// in-process guard rejects a second batch for a period already running,
// because both would pre-create and sweep the same AWAITING rows.
type WorkerPoolIngestionService struct {
	baseService IngestionService
	pool        *ants.Pool
	logger      *slog.Logger
	// Guards the in-flight period map
	mu       sync.Mutex
	inFlight map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolIngestionService(
	baseService IngestionService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolIngestionService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolIngestionService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		inFlight:    make(map[string]chan error),
	}, nil
}

// ProcessBatch submits a batch to the worker pool and waits for its result.
// Returns batch.ErrPeriodInFlight when the period already has a running
// batch.
func (s *WorkerPoolIngestionService) ProcessBatch(ctx context.Context, request *shared.DeductionBatchRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	period := request.Period
	resultChan := make(chan error, 1)

	s.mu.Lock()
	if _, running := s.inFlight[period]; running {
		s.mu.Unlock()
		logger.Warn("Rejecting batch for period already in flight",
			"batch_id", request.BatchID.String(),
			"period", period,
		)
		return batch.ErrPeriodInFlight{Period: period}
	}
	s.inFlight[period] = resultChan
	s.mu.Unlock()

	logger.Info("Submitting deduction batch to worker pool",
		"batch_id", request.BatchID.String(),
		"period", period,
	)

	// Copy the request so the worker never shares it with the caller
	requestCopy := *request

	err := s.pool.Submit(func() {
		err := s.baseService.ProcessBatch(ctx, &requestCopy)

		resultChan <- err

		s.mu.Lock()
		delete(s.inFlight, period)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		s.mu.Lock()
		delete(s.inFlight, period)
		close(resultChan)
		s.mu.Unlock()

		logger.Error("Failed to submit batch to worker pool",
			"batch_id", request.BatchID.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolIngestionService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolIngestionService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolIngestionService) Capacity() int {
	return s.pool.Cap()
}
