package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/settings"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/spreadsheet"
)

// MockBatchRepository mocks batch.Repository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Create(ctx context.Context, b *batch.Batch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*batch.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*batch.Batch), args.Error(1)
}

func (m *MockBatchRepository) ExistsActiveForPeriod(ctx context.Context, period string) (bool, error) {
	args := m.Called(ctx, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchRepository) MarkRunning(ctx context.Context, id uuid.UUID, rowsTotal int) error {
	args := m.Called(ctx, id, rowsTotal)
	return args.Error(0)
}

func (m *MockBatchRepository) UpdateProgress(ctx context.Context, id uuid.UUID, rowsProcessed, progress int) error {
	args := m.Called(ctx, id, rowsProcessed, progress)
	return args.Error(0)
}

func (m *MockBatchRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBatchRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

// MockFileStore mocks batch.FileStore
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func (m *MockFileStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockSettingsStore mocks settings.Store
type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Get(ctx context.Context, key settings.Key) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockSettingsStore) Amount(ctx context.Context, key settings.Key) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSettingsStore) Rate(ctx context.Context, key settings.Key) (float64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockSettingsStore) Bool(ctx context.Context, key settings.Key) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettingsStore) List(ctx context.Context, key settings.Key) ([]string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSettingsStore) Set(ctx context.Context, key settings.Key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockSettingsStore) SetRate(ctx context.Context, key settings.Key, percent float64) error {
	args := m.Called(ctx, key, percent)
	return args.Error(0)
}

func (m *MockSettingsStore) Accumulate(ctx context.Context, key settings.Key, delta int64) error {
	args := m.Called(ctx, key, delta)
	return args.Error(0)
}

func (m *MockSettingsStore) WithTx(tx pgx.Tx) settings.Store {
	return m
}

// MockAwaitingPreCreator mocks AwaitingPreCreator
type MockAwaitingPreCreator struct {
	mock.Mock
}

func (m *MockAwaitingPreCreator) PreCreate(ctx context.Context, period shared.Period) (int, error) {
	args := m.Called(ctx, period)
	return args.Int(0), args.Error(1)
}

// MockRowAllocator mocks RowAllocator
type MockRowAllocator struct {
	mock.Mock
}

func (m *MockRowAllocator) ProcessRow(ctx context.Context, row spreadsheet.Row, period shared.Period, penaltyRate float64) (*allocation.Result, error) {
	args := m.Called(ctx, row, period, penaltyRate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocation.Result), args.Error(1)
}

// MockSweeper mocks Sweeper
type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) Sweep(ctx context.Context, period shared.Period, penaltyRate float64) (*SweepResult, error) {
	args := m.Called(ctx, period, penaltyRate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SweepResult), args.Error(1)
}

// MockReportPublisher mocks ReportPublisher
type MockReportPublisher struct {
	mock.Mock
}

func (m *MockReportPublisher) Publish(ctx context.Context, b *batch.Batch, summary *RunSummary) error {
	args := m.Called(ctx, b, summary)
	return args.Error(0)
}

type ingestionMocks struct {
	batches    *MockBatchRepository
	files      *MockFileStore
	settings   *MockSettingsStore
	preCreator *MockAwaitingPreCreator
	rows       *MockRowAllocator
	sweeper    *MockSweeper
	reports    *MockReportPublisher
}

func newIngestionService(t *testing.T) (IngestionService, *ingestionMocks) {
	t.Helper()
	m := &ingestionMocks{
		batches:    &MockBatchRepository{},
		files:      &MockFileStore{},
		settings:   &MockSettingsStore{},
		preCreator: &MockAwaitingPreCreator{},
		rows:       &MockRowAllocator{},
		sweeper:    &MockSweeper{},
		reports:    &MockReportPublisher{},
	}
	svc := NewIngestionService(
		m.batches, m.files, m.settings,
		m.preCreator, m.rows, m.sweeper, m.reports,
		slog.Default(),
	)
	return svc, m
}

func (m *ingestionMocks) assertExpectations(t *testing.T) {
	m.batches.AssertExpectations(t)
	m.files.AssertExpectations(t)
	m.settings.AssertExpectations(t)
	m.preCreator.AssertExpectations(t)
	m.rows.AssertExpectations(t)
	m.sweeper.AssertExpectations(t)
	m.reports.AssertExpectations(t)
}

func pendingBatch(period string) *batch.Batch {
	p, _ := shared.ParsePeriod(period)
	return batch.New(p, "sheets/"+p.Label)
}

func batchRequest(b *batch.Batch) *shared.DeductionBatchRequest {
	return &shared.DeductionBatchRequest{
		BatchID:       b.ID,
		Period:        b.Period,
		CorrelationID: "corr-1",
	}
}

func TestIngestionService_ProcessBatch(t *testing.T) {
	ctx := context.Background()
	sheet := []byte("staff_id,amount\nA100,500.00\nB200,250.00\n")

	t.Run("full run produces a completed batch and an archived report", func(t *testing.T) {
		svc, m := newIngestionService(t)
		b := pendingBatch("MAY 2026")

		m.batches.On("GetByID", ctx, b.ID).Return(b, nil)
		m.files.On("Get", ctx, b.FileKey).Return(sheet, nil)
		m.settings.On("Rate", ctx, settings.KeyPenaltyRate).Return(0.05, nil)
		m.preCreator.On("PreCreate", ctx, mock.MatchedBy(func(p shared.Period) bool {
			return p.Label == "MAY 2026"
		})).Return(3, nil)
		m.batches.On("MarkRunning", ctx, b.ID, 2).Return(nil)

		m.rows.On("ProcessRow", ctx, mock.MatchedBy(func(r spreadsheet.Row) bool {
			return r.StaffID == "A100" && r.Amount == 500_00
		}), mock.Anything, 0.05).Return(&allocation.Result{
			Received: 500_00, Allocated: 500_00, Expected: 500_00, Loans: 1,
		}, nil)
		m.rows.On("ProcessRow", ctx, mock.MatchedBy(func(r spreadsheet.Row) bool {
			return r.StaffID == "B200" && r.Amount == 250_00
		}), mock.Anything, 0.05).Return(&allocation.Result{
			Received: 250_00, Allocated: 200_00, Expected: 200_00, Leftover: 50_00, Loans: 1,
		}, nil)

		// Progress never reaches 100 before the sweep has run
		m.batches.On("UpdateProgress", ctx, b.ID, 1, 33).Return(nil)
		m.batches.On("UpdateProgress", ctx, b.ID, 2, 66).Return(nil)

		m.sweeper.On("Sweep", ctx, mock.Anything, 0.05).Return(&SweepResult{
			RowsFailed: 2, PenaltyAccrued: 40_00,
		}, nil)
		m.settings.On("Set", ctx, settings.KeyLastProcessedPeriod, "MAY 2026").Return(nil)
		m.batches.On("MarkCompleted", ctx, b.ID).Return(nil)

		m.reports.On("Publish", ctx, b, mock.MatchedBy(func(s *RunSummary) bool {
			return s.Customers == 2 &&
				s.TotalReceived == 750_00 &&
				s.TotalRepaid == 700_00 &&
				s.TotalLeftover == 50_00 &&
				s.TotalPenalty == 40_00 &&
				s.FailedLoans == 2
		})).Return(nil)

		err := svc.ProcessBatch(ctx, batchRequest(b))

		require.NoError(t, err)
		m.assertExpectations(t)
	})

	t.Run("terminal batch commits without reprocessing", func(t *testing.T) {
		svc, m := newIngestionService(t)
		b := pendingBatch("MAY 2026")
		b.MarkCompleted()

		m.batches.On("GetByID", ctx, b.ID).Return(b, nil)

		err := svc.ProcessBatch(ctx, batchRequest(b))

		require.NoError(t, err)
		m.files.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("header-only sheet fails the batch terminally", func(t *testing.T) {
		svc, m := newIngestionService(t)
		b := pendingBatch("MAY 2026")

		m.batches.On("GetByID", ctx, b.ID).Return(b, nil)
		m.files.On("Get", ctx, b.FileKey).Return([]byte("staff_id,amount\n"), nil)
		m.batches.On("MarkFailed", ctx, b.ID, mock.MatchedBy(func(reason string) bool {
			return assert.Contains(t, reason, "unreadable deduction sheet")
		})).Return(nil)

		err := svc.ProcessBatch(ctx, batchRequest(b))

		require.NoError(t, err)
		m.preCreator.AssertNotCalled(t, "PreCreate", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("missing archived sheet fails the batch terminally", func(t *testing.T) {
		svc, m := newIngestionService(t)
		b := pendingBatch("MAY 2026")

		m.batches.On("GetByID", ctx, b.ID).Return(b, nil)
		m.files.On("Get", ctx, b.FileKey).Return(nil, batch.ErrFileNotFound{Key: b.FileKey})
		m.batches.On("MarkFailed", ctx, b.ID, mock.Anything).Return(nil)

		err := svc.ProcessBatch(ctx, batchRequest(b))

		require.NoError(t, err)
		m.assertExpectations(t)
	})

	t.Run("unconfigured penalty rate fails the batch terminally", func(t *testing.T) {
		svc, m := newIngestionService(t)
		b := pendingBatch("MAY 2026")

		m.batches.On("GetByID", ctx, b.ID).Return(b, nil)
		m.files.On("Get", ctx, b.FileKey).Return(sheet, nil)
		m.settings.On("Rate", ctx, settings.KeyPenaltyRate).Return(0.0, settings.ErrRateNotConfigured)
		m.batches.On("MarkFailed", ctx, b.ID, "penalty rate is not configured").Return(nil)

		err := svc.ProcessBatch(ctx, batchRequest(b))

		require.NoError(t, err)
		m.assertExpectations(t)
	})

	t.Run("row failure aborts remaining rows and names the row", func(t *testing.T) {
		svc, m := newIngestionService(t)
		b := pendingBatch("MAY 2026")

		m.batches.On("GetByID", ctx, b.ID).Return(b, nil)
		m.files.On("Get", ctx, b.FileKey).Return(sheet, nil)
		m.settings.On("Rate", ctx, settings.KeyPenaltyRate).Return(0.05, nil)
		m.preCreator.On("PreCreate", ctx, mock.Anything).Return(0, nil)
		m.batches.On("MarkRunning", ctx, b.ID, 2).Return(nil)

		m.rows.On("ProcessRow", ctx, mock.Anything, mock.Anything, 0.05).
			Return(nil, errors.New("db write failed")).Once()
		m.batches.On("MarkFailed", ctx, b.ID, mock.MatchedBy(func(reason string) bool {
			return assert.Contains(t, reason, "row 1 (staff A100)") &&
				assert.Contains(t, reason, "db write failed")
		})).Return(nil)

		err := svc.ProcessBatch(ctx, batchRequest(b))

		require.NoError(t, err)
		m.rows.AssertNumberOfCalls(t, "ProcessRow", 1)
		m.sweeper.AssertNotCalled(t, "Sweep", mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("infrastructure error loading the batch propagates for retry", func(t *testing.T) {
		svc, m := newIngestionService(t)
		id := uuid.New()

		m.batches.On("GetByID", ctx, id).Return(nil, errors.New("connection refused"))

		err := svc.ProcessBatch(ctx, &shared.DeductionBatchRequest{BatchID: id, Period: "MAY 2026"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		m.assertExpectations(t)
	})

	t.Run("report archival failure does not fail a completed batch", func(t *testing.T) {
		svc, m := newIngestionService(t)
		b := pendingBatch("MAY 2026")

		m.batches.On("GetByID", ctx, b.ID).Return(b, nil)
		m.files.On("Get", ctx, b.FileKey).Return([]byte("staff_id,amount\nA100,500.00\n"), nil)
		m.settings.On("Rate", ctx, settings.KeyPenaltyRate).Return(0.05, nil)
		m.preCreator.On("PreCreate", ctx, mock.Anything).Return(1, nil)
		m.batches.On("MarkRunning", ctx, b.ID, 1).Return(nil)
		m.rows.On("ProcessRow", ctx, mock.Anything, mock.Anything, 0.05).
			Return(&allocation.Result{Received: 500_00, Allocated: 500_00, Loans: 1}, nil)
		m.batches.On("UpdateProgress", ctx, b.ID, 1, 50).Return(nil)
		m.sweeper.On("Sweep", ctx, mock.Anything, 0.05).Return(&SweepResult{}, nil)
		m.settings.On("Set", ctx, settings.KeyLastProcessedPeriod, "MAY 2026").Return(nil)
		m.batches.On("MarkCompleted", ctx, b.ID).Return(nil)
		m.reports.On("Publish", ctx, b, mock.Anything).Return(errors.New("mongo down"))

		err := svc.ProcessBatch(ctx, batchRequest(b))

		require.NoError(t, err)
		m.assertExpectations(t)
	})
}
