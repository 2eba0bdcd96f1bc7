package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/McBride-Ryan/websocket-hss/internal/domain/transaction"
	"github.com/McBride-Ryan/websocket-hss/internal/server/service"
)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Create(ctx context.Context, txn *transaction.Transaction, excludeSocket string) (*transaction.Transaction, error) {
	args := m.Called(ctx, txn, excludeSocket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) ListRecent(ctx context.Context) ([]transaction.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) ListAfter(ctx context.Context, lastID int64) ([]transaction.Transaction, error) {
	args := m.Called(ctx, lastID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transaction.Transaction), args.Error(1)
}

var _ service.TransactionService = (*MockTransactionService)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func sampleTransaction(id int64, amount string) transaction.Transaction {
	amt, _ := decimal.NewFromString(amount)
	now := time.Now().UTC()
	return transaction.Transaction{
		ID:          id,
		Amount:      amt,
		Description: "Online Purchase",
		AccountType: "checking",
		Timestamp:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestTransactionHandler_List(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService, time.Second)

		expected := []transaction.Transaction{
			sampleTransaction(2, "125.50"),
			sampleTransaction(1, "10.00"),
		}
		mockService.On("ListRecent", mock.Anything).Return(expected, nil)

		router := setupTestRouter()
		router.GET("/transactions", handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/transactions", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		err := json.Unmarshal(rr.Body.Bytes(), &topLevelResponse)
		assert.NoError(t, err)
		require.NotNil(t, topLevelResponse.Data)

		var txns []transaction.Transaction
		dataBytes, marshalErr := json.Marshal(topLevelResponse.Data)
		require.NoError(t, marshalErr)
		require.NoError(t, json.Unmarshal(dataBytes, &txns))

		require.Len(t, txns, 2)
		assert.Equal(t, int64(2), txns[0].ID)
		assert.True(t, txns[0].Amount.Equal(decimal.RequireFromString("125.50")))

		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService, time.Second)

		mockService.On("ListRecent", mock.Anything).Return(nil, errors.New("database connection lost"))

		router := setupTestRouter()
		router.GET("/transactions", handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/transactions", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestTransactionHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService, time.Second)

		created := sampleTransaction(42, "99.99")
		mockService.On("Create", mock.Anything, mock.MatchedBy(func(txn *transaction.Transaction) bool {
			return txn.Description == "Coffee" &&
				txn.AccountType == "credit" &&
				txn.Amount.Equal(decimal.RequireFromString("99.99"))
		}), "").Return(&created, nil)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		jsonBody := []byte(`{"amount": 99.99, "description": "Coffee", "accountType": "credit"}`)
		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var topLevelResponse Response
		err := json.Unmarshal(rr.Body.Bytes(), &topLevelResponse)
		assert.NoError(t, err)
		require.NotNil(t, topLevelResponse.Data)

		var responseBody transaction.Transaction
		dataBytes, marshalErr := json.Marshal(topLevelResponse.Data)
		require.NoError(t, marshalErr)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))
		assert.Equal(t, int64(42), responseBody.ID)

		mockService.AssertExpectations(t)
	})

	t.Run("SocketIDHeaderForwarded", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService, time.Second)

		created := sampleTransaction(7, "15.00")
		mockService.On("Create", mock.Anything, mock.Anything, "socket-abc").Return(&created, nil)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		jsonBody := []byte(`{"amount": 15, "description": "Lunch"}`)
		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SocketIDHeader, "socket-abc")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingDescription", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService, time.Second)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		jsonBody := []byte(`{"amount": 10.00}`)
		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NegativeAmount", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService, time.Second)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		jsonBody := []byte(`{"amount": -5.00, "description": "Refund gone wrong"}`)
		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotNil(t, response.Error)
		assert.Equal(t, "BAD_REQUEST", response.Error.Code)

		mockService.AssertExpectations(t)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService, time.Second)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(`{"invalid`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService, time.Second)

		mockService.On("Create", mock.Anything, mock.Anything, "").Return(nil, errors.New("service unavailable"))

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		jsonBody := []byte(`{"amount": 10, "description": "Groceries"}`)
		req, _ := http.NewRequest(http.MethodPost, "/transactions", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}
