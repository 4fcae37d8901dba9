package components

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/domain/customer"
	"github.com/deducta-loan-ledger/internal/domain/loan"
	"github.com/deducta-loan-ledger/internal/domain/repayment"
	"github.com/deducta-loan-ledger/internal/domain/report"
	"github.com/deducta-loan-ledger/internal/domain/settings"
	"github.com/deducta-loan-ledger/internal/domain/shared"
)

// MockLoanRepository mocks loan.Repository
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
	return m
}

// MockCustomerRepository mocks customer.Repository
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
	return m
}

// MockRepaymentRepository mocks repayment.Repository
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
	return m
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

// MockReportRepository mocks report.Repository
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

// MockPaymentAllocator mocks the allocator slice the row processor consumes
type MockPaymentAllocator struct {
	mock.Mock
}

func (m *MockPaymentAllocator) AllocatePayment(ctx context.Context, customerID uuid.UUID, amount int64, period shared.Period, penaltyRate float64) (*allocation.Result, error) {
	args := m.Called(ctx, customerID, amount, period, penaltyRate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocation.Result), args.Error(1)
}

// MockTx implements pgx.Tx for exercising transactional code paths
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return m, nil }
func (m *MockTx) Commit(ctx context.Context) error          { return nil }
func (m *MockTx) Rollback(ctx context.Context) error        { return nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return &pgconn.StatementDescription{}, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                                { return pgx.LargeObjects{} }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
