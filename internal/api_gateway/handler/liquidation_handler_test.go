package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/deducta-loan-ledger/internal/allocation"
	"github.com/deducta-loan-ledger/internal/api_gateway/service"
	"github.com/deducta-loan-ledger/internal/domain/liquidation"
	"github.com/deducta-loan-ledger/internal/domain/shared"
)

type MockLiquidationService struct {
	mock.Mock
}

func (m *MockLiquidationService) CreateRequest(ctx context.Context, customerID uuid.UUID, amount int64) (*liquidation.Request, error) {
	args := m.Called(ctx, customerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*liquidation.Request), args.Error(1)
}

func (m *MockLiquidationService) GetRequestByID(ctx context.Context, id uuid.UUID) (*liquidation.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*liquidation.Request), args.Error(1)
}

func (m *MockLiquidationService) ListPending(ctx context.Context, page, perPage int) ([]*liquidation.Request, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*liquidation.Request), args.Error(1)
}

func (m *MockLiquidationService) ApproveRequest(ctx context.Context, requestID uuid.UUID) (*liquidation.Request, *allocation.Result, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*liquidation.Request), args.Get(1).(*allocation.Result), args.Error(2)
}

func (m *MockLiquidationService) RejectRequest(ctx context.Context, requestID uuid.UUID) (*liquidation.Request, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*liquidation.Request), args.Error(1)
}

func TestLiquidationHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLiquidationService)
		handler := NewLiquidationHandler(logger, mockService)

		customerID := uuid.New()
		pending := &liquidation.Request{
			ID:         uuid.New(),
			CustomerID: customerID,
			Amount:     2_000_00,
			Status:     shared.LiquidationStatusPending,
			CreatedAt:  time.Now(),
		}
		mockService.On("CreateRequest", mock.Anything, customerID, int64(2_000_00)).Return(pending, nil)

		router := setupTestRouter()
		router.POST("/liquidations", handler.Create)

		jsonBody, _ := json.Marshal(CreateLiquidationRequest{CustomerID: customerID.String(), Amount: 2_000_00})
		req, _ := http.NewRequest(http.MethodPost, "/liquidations", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var responseBody LiquidationResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, pending.ID.String(), responseBody.ID)
		assert.Equal(t, string(shared.LiquidationStatusPending), responseBody.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		mockService := new(MockLiquidationService)
		handler := NewLiquidationHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/liquidations", handler.Create)

		jsonBody, _ := json.Marshal(map[string]interface{}{"customer_id": uuid.New().String(), "amount": -50})
		req, _ := http.NewRequest(http.MethodPost, "/liquidations", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestLiquidationHandler_Approve(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLiquidationService)
		handler := NewLiquidationHandler(logger, mockService)

		requestID := uuid.New()
		resolvedAt := time.Now()
		approved := &liquidation.Request{
			ID:         requestID,
			CustomerID: uuid.New(),
			Amount:     2_000_00,
			Status:     shared.LiquidationStatusApproved,
			CreatedAt:  time.Now(),
			ResolvedAt: &resolvedAt,
		}
		result := &allocation.Result{Received: 2_000_00, Allocated: 1_800_00, Leftover: 200_00, Loans: 2}
		mockService.On("ApproveRequest", mock.Anything, requestID).Return(approved, result, nil)

		router := setupTestRouter()
		router.POST("/liquidations/:id/approve", handler.Approve)

		req, _ := http.NewRequest(http.MethodPost, "/liquidations/"+requestID.String()+"/approve", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody struct {
			Request    LiquidationResponse      `json:"request"`
			Allocation AllocationResultResponse `json:"allocation"`
		}
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, string(shared.LiquidationStatusApproved), responseBody.Request.Status)
		assert.Equal(t, int64(1_800_00), responseBody.Allocation.Allocated)
		assert.Equal(t, int64(200_00), responseBody.Allocation.Leftover)

		mockService.AssertExpectations(t)
	})

	t.Run("AlreadyResolved", func(t *testing.T) {
		mockService := new(MockLiquidationService)
		handler := NewLiquidationHandler(logger, mockService)

		requestID := uuid.New()
		mockService.On("ApproveRequest", mock.Anything, requestID).Return(nil, nil, liquidation.ErrNotPending)

		router := setupTestRouter()
		router.POST("/liquidations/:id/approve", handler.Approve)

		req, _ := http.NewRequest(http.MethodPost, "/liquidations/"+requestID.String()+"/approve", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockLiquidationService)
		handler := NewLiquidationHandler(logger, mockService)

		requestID := uuid.New()
		mockService.On("ApproveRequest", mock.Anything, requestID).
			Return(nil, nil, liquidation.ErrRequestNotFound{RequestID: requestID})

		router := setupTestRouter()
		router.POST("/liquidations/:id/approve", handler.Approve)

		req, _ := http.NewRequest(http.MethodPost, "/liquidations/"+requestID.String()+"/approve", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

var _ service.LiquidationService = (*MockLiquidationService)(nil)
