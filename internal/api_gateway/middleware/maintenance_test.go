package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/deducta-loan-ledger/internal/domain/settings"
)

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

func maintenanceTestRouter(store settings.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	r := gin.New()
	r.Use(Maintenance(store, logger))
	r.GET("/resource", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestMaintenance(t *testing.T) {
	t.Run("FlagOff", func(t *testing.T) {
		store := new(MockSettingsStore)
		store.On("Bool", mock.Anything, settings.KeyMaintenanceMode).Return(false, nil)

		router := maintenanceTestRouter(store)

		req, _ := http.NewRequest(http.MethodGet, "/resource", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("FlagOn", func(t *testing.T) {
		store := new(MockSettingsStore)
		store.On("Bool", mock.Anything, settings.KeyMaintenanceMode).Return(true, nil)

		router := maintenanceTestRouter(store)

		req, _ := http.NewRequest(http.MethodGet, "/resource", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Contains(t, rr.Body.String(), "MAINTENANCE")
	})

	t.Run("StoreUnreachable", func(t *testing.T) {
		store := new(MockSettingsStore)
		store.On("Bool", mock.Anything, settings.KeyMaintenanceMode).Return(false, errors.New("connection refused"))

		router := maintenanceTestRouter(store)

		req, _ := http.NewRequest(http.MethodGet, "/resource", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		// A broken settings store must not take the API down with it.
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

var _ settings.Store = (*MockSettingsStore)(nil)
