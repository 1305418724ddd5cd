package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/db"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/logger"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

const testToken = "test-token"

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e models.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type testAPI struct {
	router    *gin.Engine
	orders    *db.MemoryOrderRepository
	products  *db.MemoryProductRepository
	publisher *recordingPublisher
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &testAPI{
		orders:    db.NewMemoryOrderRepository(),
		products:  db.NewMemoryProductRepository(),
		publisher: &recordingPublisher{},
	}
	for _, p := range []models.CreateProductRequest{
		{Name: "Lamp", Price: decimal.RequireFromString("1000"), Quantity: 10},
		{Name: "Chair", Price: decimal.RequireFromString("500"), Quantity: 5},
	} {
		_, err := api.products.Create(context.Background(), p)
		require.NoError(t, err)
	}

	api.router = NewRouter(RouterDeps{
		Orders:      api.orders,
		Products:    api.products,
		Publisher:   api.publisher,
		Credentials: Credentials{Username: "demo", Password: "secret", Token: testToken},
		Log:         logger.Nop(),
	})
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestOrdersRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/orders/orders/", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/orders/orders/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateOrder(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/orders/orders/", models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	order := decode[models.Order](t, w)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("2500").Equal(order.TotalPrice))
	assert.Equal(t, 3, order.ItemCount())
	assert.False(t, order.ID.IsLocal())

	require.Len(t, api.publisher.events, 1)
	assert.Equal(t, models.OrderCreated, api.publisher.events[0].Type)
	assert.Equal(t, order.ID, api.publisher.events[0].OrderID)
}

func TestCreateOrder_Invalid(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/orders/orders/", models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{{ProductID: 99, Quantity: 1}},
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/orders/orders/", models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{{ProductID: 1, Quantity: 0}},
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/orders/orders/", models.CreateOrderRequest{}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, api.publisher.events)
}

func TestListOrders_Pagination(t *testing.T) {
	api := newTestAPI(t)
	for i := 0; i < 3; i++ {
		w := api.do(t, http.MethodPost, "/orders/orders/", models.CreateOrderRequest{
			Items: []models.CreateOrderItemRequest{{ProductID: 1, Quantity: 1}},
		}, true)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := api.do(t, http.MethodGet, "/orders/orders/?page_size=2", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.OrderPage](t, w)
	assert.Equal(t, 3, page.Count)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/orders/orders/?page=2&page_size=2", *page.Next)
	assert.Nil(t, page.Previous)

	w = api.do(t, http.MethodGet, "/orders/orders/?page=2&page_size=2", nil, true)
	page = decode[models.OrderPage](t, w)
	assert.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)

	w = api.do(t, http.MethodGet, "/orders/orders/?page=0", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodPost, "/orders/orders/", models.CreateOrderRequest{
		Items: []models.CreateOrderItemRequest{{ProductID: 1, Quantity: 1}},
	}, true)
	order := decode[models.Order](t, w)

	w = api.do(t, http.MethodPatch, "/orders/orders/"+order.ID.String()+"/",
		models.UpdateOrderStatusRequest{Status: models.StatusCompleted}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusCompleted, decode[models.Order](t, w).Status)

	w = api.do(t, http.MethodPatch, "/orders/orders/"+order.ID.String()+"/",
		models.UpdateOrderStatusRequest{Status: "shipped"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPatch, "/orders/orders/404/",
		models.UpdateOrderStatusRequest{Status: models.StatusCancelled}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Len(t, api.publisher.events, 2)
	assert.Equal(t, models.OrderStatusChanged, api.publisher.events[1].Type)
}

func TestDeleteOrders(t *testing.T) {
	api := newTestAPI(t)
	var ids []models.OrderID
	for i := 0; i < 3; i++ {
		w := api.do(t, http.MethodPost, "/orders/orders/", models.CreateOrderRequest{
			Items: []models.CreateOrderItemRequest{{ProductID: 2, Quantity: 1}},
		}, true)
		ids = append(ids, decode[models.Order](t, w).ID)
	}

	w := api.do(t, http.MethodDelete, "/orders/orders/"+ids[0].String()+"/", nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(t, http.MethodGet, "/orders/orders/"+ids[0].String()+"/", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodDelete, "/orders/orders/", models.DeleteOrdersRequest{IDs: ids[1:]}, true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodDelete, "/orders/orders/", models.DeleteOrdersRequest{IDs: ids}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, total, err := api.orders.List(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestProducts(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/products/products/?search=lam", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.ProductPage](t, w)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "Lamp", page.Results[0].Name)

	w = api.do(t, http.MethodGet, "/products/products/2/", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Chair", decode[models.Product](t, w).Name)

	w = api.do(t, http.MethodGet, "/products/products/42/", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = api.do(t, http.MethodGet, "/products/products/abc/", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	create := models.CreateProductRequest{Name: "Desk", Price: decimal.RequireFromString("250")}
	w = api.do(t, http.MethodPost, "/products/products/", create, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = api.do(t, http.MethodPost, "/products/products/", create, true)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = api.do(t, http.MethodDelete, "/products/products/3/", nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(t, http.MethodDelete, "/products/products/3/", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsers(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/users/login/", models.LoginRequest{Username: "demo", Password: "nope"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/users/login/", models.LoginRequest{Username: "demo", Password: "secret"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testToken, decode[models.TokenResponse](t, w).Token)

	email := "demo@example.com"
	w = api.do(t, http.MethodPatch, "/users/profile/", models.ProfileUpdate{Email: &email}, true)
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(t, http.MethodGet, "/users/profile/", nil, true)
	profile := decode[models.Profile](t, w)
	assert.Equal(t, "demo", profile.Username)
	assert.Equal(t, email, profile.Email)

	on := true
	w = api.do(t, http.MethodPatch, "/users/notifications/", models.NotificationPreferencesUpdate{Promotions: &on}, true)
	require.Equal(t, http.StatusOK, w.Code)
	prefs := decode[models.NotificationPreferences](t, w)
	assert.True(t, prefs.Promotions)
	assert.True(t, prefs.OrderUpdates)

	w = api.do(t, http.MethodGet, "/users/notifications/", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
