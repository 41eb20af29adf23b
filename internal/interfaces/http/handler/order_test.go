package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	orderapp "github.com/dropship/backend/internal/application/order"
	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/shared"
)

// MockOrderRepository implements order.Repository for testing
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, status order.Status, limit, offset int) ([]*order.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAwaitingFulfillment(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ order.Repository = (*MockOrderRepository)(nil)

// Test helpers

func setupOrderTestRouter() (*gin.Engine, *MockOrderRepository, *OrderHandler) {
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockOrderRepository)
	service := orderapp.NewService(mockRepo)
	handler := NewOrderHandler(service)

	router := gin.New()
	return router, mockRepo, handler
}

func createTestOrder(t *testing.T, orderNumber string) *order.Order {
	t.Helper()

	o, err := order.New(orderNumber, nil, "ada@example.com", "USD", order.Address{
		Name:        "Ada Lovelace",
		CountryCode: "NG",
		City:        "Lagos",
		Street:      "12 Marina Rd",
	})
	assert.NoError(t, err)

	_, err = o.AddItem("VAR-1", "Desk Lamp", "CJ-VAR-1", 2, decimal.NewFromInt(40))
	assert.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func checkoutRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"customer_email": "ada@example.com",
		"currency":       "USD",
		"address": map[string]interface{}{
			"name":         "Ada Lovelace",
			"country_code": "NG",
			"city":         "Lagos",
			"street":       "12 Marina Rd",
		},
		"items": []map[string]interface{}{
			{
				"variant_id":   "VAR-1",
				"product_name": "Desk Lamp",
				"quantity":     2,
				"unit_price":   "40",
			},
		},
	}
}

// Tests

func TestOrderHandler_Checkout(t *testing.T) {
	t.Run("should create order successfully", func(t *testing.T) {
		router, mockRepo, handler := setupOrderTestRouter()
		router.POST("/orders", handler.Checkout)

		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).
			Return(nil)

		body, _ := json.Marshal(checkoutRequestBody())
		req, _ := http.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.True(t, response["success"].(bool))

		data := response["data"].(map[string]interface{})
		assert.Equal(t, "RECEIVED", data["status"])
		assert.Equal(t, "PENDING", data["payment_status"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should return error for missing email", func(t *testing.T) {
		router, mockRepo, handler := setupOrderTestRouter()
		router.POST("/orders", handler.Checkout)

		reqBody := checkoutRequestBody()
		delete(reqBody, "customer_email")
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("should return error for empty items", func(t *testing.T) {
		router, _, handler := setupOrderTestRouter()
		router.POST("/orders", handler.Checkout)

		reqBody := checkoutRequestBody()
		reqBody["items"] = []map[string]interface{}{}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Get(t *testing.T) {
	t.Run("should get order by ID", func(t *testing.T) {
		router, mockRepo, handler := setupOrderTestRouter()
		router.GET("/orders/:id", handler.Get)

		testOrder := createTestOrder(t, "DS-2026-0042")

		mockRepo.On("FindByID", mock.Anything, testOrder.ID.String()).
			Return(testOrder, nil)

		req, _ := http.NewRequest(http.MethodGet, "/orders/"+testOrder.ID.String(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "DS-2026-0042", data["order_number"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should return 404 for unknown order", func(t *testing.T) {
		router, mockRepo, handler := setupOrderTestRouter()
		router.GET("/orders/:id", handler.Get)

		id := createTestOrder(t, "DS-2026-0042").ID
		mockRepo.On("FindByID", mock.Anything, id.String()).
			Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodGet, "/orders/"+id.String(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should return 400 for malformed ID", func(t *testing.T) {
		router, _, handler := setupOrderTestRouter()
		router.GET("/orders/:id", handler.Get)

		req, _ := http.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Refund(t *testing.T) {
	t.Run("should refund paid order", func(t *testing.T) {
		router, mockRepo, handler := setupOrderTestRouter()
		router.POST("/orders/:id/refund", handler.Refund)

		testOrder := createTestOrder(t, "DS-2026-0042")
		assert.NoError(t, testOrder.MarkPaid(decimal.NewFromInt(80), "ref_7"))
		testOrder.ClearDomainEvents()

		mockRepo.On("FindByID", mock.Anything, testOrder.ID.String()).
			Return(testOrder, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).
			Return(nil)

		body, _ := json.Marshal(map[string]interface{}{
			"amount": "80",
			"reason": "damaged in transit",
		})
		req, _ := http.NewRequest(http.MethodPost, "/orders/"+testOrder.ID.String()+"/refund", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "REFUNDED", data["status"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should reject refund of unpaid order", func(t *testing.T) {
		router, mockRepo, handler := setupOrderTestRouter()
		router.POST("/orders/:id/refund", handler.Refund)

		testOrder := createTestOrder(t, "DS-2026-0042")

		mockRepo.On("FindByID", mock.Anything, testOrder.ID.String()).
			Return(testOrder, nil)

		body, _ := json.Marshal(map[string]interface{}{
			"amount": "80",
			"reason": "damaged in transit",
		})
		req, _ := http.NewRequest(http.MethodPost, "/orders/"+testOrder.ID.String()+"/refund", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_List(t *testing.T) {
	t.Run("should list orders by status", func(t *testing.T) {
		router, mockRepo, handler := setupOrderTestRouter()
		router.GET("/orders", handler.List)

		orders := []*order.Order{createTestOrder(t, "DS-2026-0042")}
		mockRepo.On("FindByStatus", mock.Anything, order.StatusReceived, 20, 0).
			Return(orders, nil)

		req, _ := http.NewRequest(http.MethodGet, "/orders?status=RECEIVED", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("should require status filter", func(t *testing.T) {
		router, _, handler := setupOrderTestRouter()
		router.GET("/orders", handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/orders", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
