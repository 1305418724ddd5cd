package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/storage"
)

func newStore(t *testing.T) storage.Store {
	t.Helper()
	st, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newServer(t *testing.T, setup func(r *gin.Engine)) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setup(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func loggedIn(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := New(baseURL, newStore(t))
	require.NoError(t, c.SetToken(context.Background(), "tok"))
	return c
}

func TestListOrders_FollowsPages(t *testing.T) {
	var srv *httptest.Server
	srv = newServer(t, func(r *gin.Engine) {
		r.GET("/orders/orders/", func(c *gin.Context) {
			assert.Equal(t, "Bearer tok", c.GetHeader("Authorization"))
			if c.Query("page") == "2" {
				c.String(http.StatusOK, `{"count":3,"next":null,"previous":null,"results":[{"id":"local_x","status":"pending","total_price":"1","items":[]}]}`)
				return
			}
			next := srv.URL + "/orders/orders/?page=2"
			c.JSON(http.StatusOK, gin.H{
				"count": 3, "next": next, "previous": nil,
				"results": []gin.H{
					{"id": 7, "status": "pending", "total_price": "10.00", "items": []gin.H{}},
					{"id": 6, "status": "completed", "total_price": "5.00", "items": []gin.H{}},
				},
			})
		})
	})

	orders, err := loggedIn(t, srv.URL).ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, models.OrderID("7"), orders[0].ID)
	assert.Equal(t, models.OrderID("local_x"), orders[2].ID)
}

func TestListOrders_NextLoopStops(t *testing.T) {
	var srv *httptest.Server
	srv = newServer(t, func(r *gin.Engine) {
		r.GET("/orders/orders/", func(c *gin.Context) {
			self := srv.URL + "/orders/orders/?page=1"
			c.JSON(http.StatusOK, gin.H{"count": 1, "next": self, "results": []gin.H{}})
		})
	})

	_, err := loggedIn(t, srv.URL).ListOrders(context.Background())
	assert.NoError(t, err)
}

func TestListOrders_ForeignNextNotFollowed(t *testing.T) {
	var foreignHits atomic.Int32
	foreign := newServer(t, func(r *gin.Engine) {
		r.GET("/orders/orders/", func(c *gin.Context) {
			foreignHits.Add(1)
			c.JSON(http.StatusOK, gin.H{"count": 0, "results": []gin.H{}})
		})
	})
	srv := newServer(t, func(r *gin.Engine) {
		r.GET("/orders/orders/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"count": 2, "next": foreign.URL + "/orders/orders/?page=2",
				"results": []gin.H{{"id": 1, "status": "pending", "total_price": "1", "items": []gin.H{}}},
			})
		})
	})

	_, err := loggedIn(t, srv.URL).ListOrders(context.Background())
	assert.ErrorIs(t, err, ErrForeignLink)
	assert.Zero(t, foreignHits.Load())
}

func TestDo_NoTokenSkipsRequest(t *testing.T) {
	calls := 0
	srv := newServer(t, func(r *gin.Engine) {
		r.GET("/orders/orders/", func(c *gin.Context) { calls++ })
	})

	_, err := New(srv.URL, newStore(t)).ListOrders(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.True(t, IsAuthError(err))
	assert.Zero(t, calls)
}

func TestDo_UnauthorizedClearsToken(t *testing.T) {
	srv := newServer(t, func(r *gin.Engine) {
		r.GET("/users/profile/", func(c *gin.Context) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		})
	})

	c := loggedIn(t, srv.URL)
	_, err := c.GetProfile(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = c.Token(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestDo_HTTPError(t *testing.T) {
	srv := newServer(t, func(r *gin.Engine) {
		r.GET("/products/products/:id/", func(c *gin.Context) {
			if c.Param("id") == "1" {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "down"})
		})
	})
	c := New(srv.URL, newStore(t))

	_, err := c.GetProduct(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetProduct(context.Background(), 2)
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusServiceUnavailable, he.StatusCode)
	assert.True(t, he.Retryable())
	assert.Contains(t, he.Body, "down")
}

func TestDeleteOrders_SendsIDs(t *testing.T) {
	var got models.DeleteOrdersRequest
	srv := newServer(t, func(r *gin.Engine) {
		r.DELETE("/orders/orders/", func(c *gin.Context) {
			body, _ := io.ReadAll(c.Request.Body)
			assert.NoError(t, json.Unmarshal(body, &got))
			c.Status(http.StatusNoContent)
		})
		r.DELETE("/orders/orders/:id/", func(c *gin.Context) {
			got = models.DeleteOrdersRequest{IDs: []models.OrderID{models.OrderID(c.Param("id"))}}
			c.Status(http.StatusNoContent)
		})
	})
	c := loggedIn(t, srv.URL)

	require.NoError(t, c.DeleteOrders(context.Background(), []models.OrderID{"1", "2"}))
	assert.Equal(t, []models.OrderID{"1", "2"}, got.IDs)

	require.NoError(t, c.DeleteOrder(context.Background(), "9"))
	assert.Equal(t, []models.OrderID{"9"}, got.IDs)
}

func TestUpdateOrderStatus_Patch(t *testing.T) {
	srv := newServer(t, func(r *gin.Engine) {
		r.PATCH("/orders/orders/:id/", func(c *gin.Context) {
			var req models.UpdateOrderStatusRequest
			assert.NoError(t, c.ShouldBindJSON(&req))
			c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status, "total_price": "1", "items": []gin.H{}})
		})
	})

	order, err := loggedIn(t, srv.URL).UpdateOrderStatus(context.Background(), "5", models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderID("5"), order.ID)
	assert.Equal(t, models.StatusCancelled, order.Status)
}

func TestListProducts_WithoutToken(t *testing.T) {
	srv := newServer(t, func(r *gin.Engine) {
		r.GET("/products/products/", func(c *gin.Context) {
			assert.Empty(t, c.GetHeader("Authorization"))
			assert.Equal(t, "lamp", c.Query("search"))
			assert.Equal(t, "2", c.Query("page"))
			c.JSON(http.StatusOK, gin.H{"count": 1, "results": []gin.H{{"id": 1, "name": "Lamp", "price": "1000.00"}}})
		})
	})

	page, err := New(srv.URL, newStore(t)).ListProducts(context.Background(), ProductQuery{Search: "lamp", Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "1000", page.Results[0].Price.String())
}

func TestLoginAndLogout(t *testing.T) {
	srv := newServer(t, func(r *gin.Engine) {
		r.POST("/users/login/", func(c *gin.Context) {
			var req models.LoginRequest
			assert.NoError(t, c.ShouldBindJSON(&req))
			if req.Password != "pw" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
				return
			}
			c.JSON(http.StatusOK, models.TokenResponse{Token: "abc"})
		})
	})
	ctx := context.Background()
	c := New(srv.URL, newStore(t))

	var he *HTTPError
	require.ErrorAs(t, c.Login(ctx, "demo", "bad"), &he)
	assert.Equal(t, http.StatusBadRequest, he.StatusCode)

	require.NoError(t, c.Login(ctx, "demo", "pw"))
	tok, err := c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Token(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
