package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/domain/batch"
	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/liquidation"
	"github.com/deducta-loan-ledger/internal/domain/loan"
	"github.com/deducta-loan-ledger/internal/domain/repayment"
	"github.com/deducta-loan-ledger/internal/domain/report"
	"github.com/deducta-loan-ledger/internal/domain/settings"
	"github.com/deducta-loan-ledger/internal/domain/shared"
	"github.com/deducta-loan-ledger/internal/platform/messaging/producers"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByStaffID(ctx context.Context, staffID string) (*customer.Customer, error) {
	args := m.Called(ctx, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) UpdatePayrollAttributes(ctx context.Context, id uuid.UUID, attrs customer.PayrollAttributes) error {
	args := m.Called(ctx, id, attrs)
	return args.Error(0)
}

func (m *MockCustomerRepository) UpdateRepaymentRate(ctx context.Context, id uuid.UUID, rate int) error {
	args := m.Called(ctx, id, rate)
	return args.Error(0)
}

func (m *MockCustomerRepository) WithTx(tx pgx.Tx) customer.Repository {
	m.Called(tx)
	return m
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, l *loan.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoanRepository) ListOutstandingByCustomer(ctx context.Context, customerID uuid.UUID) ([]*loan.Loan, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListDisbursed(ctx context.Context) ([]*loan.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Loan), args.Error(1)
}

func (m *MockLoanRepository) WithTx(tx pgx.Tx) loan.Repository {
	m.Called(tx)
	return m
}

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
	m.Called(tx)
	return m
}

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

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, r *report.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReportRepository) GetByPeriod(ctx context.Context, period string) (*report.Report, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *MockReportRepository) GetPending(ctx context.Context, limit int) ([]*report.Report, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.Report), args.Error(1)
}

func (m *MockReportRepository) UpdateStatus(ctx context.Context, period string, status shared.ReportStatus) error {
	args := m.Called(ctx, period, status)
	return args.Error(0)
}

func (m *MockReportRepository) IncrementAttempts(ctx context.Context, period string) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

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

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockRepaymentRepository struct {
	mock.Mock
}

func (m *MockRepaymentRepository) Create(ctx context.Context, e *repayment.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockRepaymentRepository) CreateAwaitingIfAbsent(ctx context.Context, e *repayment.Entry) (bool, error) {
	args := m.Called(ctx, e)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*repayment.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repayment.Entry), args.Error(1)
}

func (m *MockRepaymentRepository) GetByLoanAndPeriod(ctx context.Context, loanID uuid.UUID, period string) (*repayment.Entry, error) {
	args := m.Called(ctx, loanID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repayment.Entry), args.Error(1)
}

func (m *MockRepaymentRepository) Update(ctx context.Context, e *repayment.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockRepaymentRepository) ListAwaitingByPeriod(ctx context.Context, period string, limit int) ([]*repayment.Entry, error) {
	args := m.Called(ctx, period, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repayment.Entry), args.Error(1)
}

func (m *MockRepaymentRepository) ListByStatus(ctx context.Context, status shared.RepaymentStatus, limit, offset int) ([]*repayment.Entry, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repayment.Entry), args.Error(1)
}

func (m *MockRepaymentRepository) CountByStatus(ctx context.Context, status shared.RepaymentStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepaymentRepository) WithTx(tx pgx.Tx) repayment.Repository {
	m.Called(tx)
	return m
}

type MockLiquidationRepository struct {
	mock.Mock
}

func (m *MockLiquidationRepository) Create(ctx context.Context, r *liquidation.Request) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockLiquidationRepository) GetByID(ctx context.Context, id uuid.UUID) (*liquidation.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*liquidation.Request), args.Error(1)
}

func (m *MockLiquidationRepository) Update(ctx context.Context, r *liquidation.Request) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockLiquidationRepository) ListByStatus(ctx context.Context, status shared.LiquidationStatus, limit, offset int) ([]*liquidation.Request, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*liquidation.Request), args.Error(1)
}

func (m *MockLiquidationRepository) WithTx(tx pgx.Tx) liquidation.Repository {
	m.Called(tx)
	return m
}

type MockOverflowAllocator struct {
	mock.Mock
}

func (m *MockOverflowAllocator) AllocateOverflow(ctx context.Context, entryID, loanID uuid.UUID, note string) (*allocation.Result, error) {
	args := m.Called(ctx, entryID, loanID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocation.Result), args.Error(1)
}

var (
	_ customer.Repository        = (*MockCustomerRepository)(nil)
	_ loan.Repository            = (*MockLoanRepository)(nil)
	_ settings.Store             = (*MockSettingsStore)(nil)
	_ batch.Repository           = (*MockBatchRepository)(nil)
	_ report.Repository          = (*MockReportRepository)(nil)
	_ batch.FileStore            = (*MockFileStore)(nil)
	_ producers.MessagePublisher = (*MockMessagePublisher)(nil)
	_ repayment.Repository       = (*MockRepaymentRepository)(nil)
	_ liquidation.Repository     = (*MockLiquidationRepository)(nil)
	_ OverflowAllocator          = (*MockOverflowAllocator)(nil)
)
