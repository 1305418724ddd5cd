package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/db"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/publisher"
)

// EventPublisher is satisfied by publisher.OrderPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, event models.OrderEvent) error
}

type OrderHandler struct {
	repo      db.OrderRepository
	products  db.ProductRepository
	publisher EventPublisher
	log       zerolog.Logger
}

// NewOrderHandler builds the handler. pub may be nil when no broker is
// configured.
func NewOrderHandler(repo db.OrderRepository, products db.ProductRepository, pub EventPublisher, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		repo:      repo,
		products:  products,
		publisher: pub,
		log:       log,
	}
}

// HealthCheck returns server status
func (h *OrderHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "orders-api"})
}

// ListOrders returns one page of orders, newest first
func (h *OrderHandler) ListOrders(c *gin.Context) {
	p, err := parsePage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orders, total, err := h.repo.List(c.Request.Context(), p.Offset(), p.Size)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	next, prev := pageLinks(c, p, total)
	c.JSON(http.StatusOK, models.OrderPage{
		Count:    total,
		Next:     next,
		Previous: prev,
		Results:  orders,
	})
}

// GetOrder returns a single order with items
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.repo.GetByID(c.Request.Context(), models.OrderID(c.Param("id")))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to get order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
		return
	}

	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// CreateOrder creates a pending order priced from the current catalog
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	order := models.Order{
		Status:     models.StatusPending,
		TotalPrice: decimal.Zero,
	}

	for _, item := range req.Items {
		product, err := h.products.GetByID(ctx, item.ProductID)
		if err != nil {
			h.log.Error().Err(err).Int("product_id", item.ProductID).Msg("failed to load product")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
			return
		}
		if product == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("product %d not found", item.ProductID)})
			return
		}

		order.TotalPrice = order.TotalPrice.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		order.Items = append(order.Items, models.OrderItem{
			Product:  *product,
			Quantity: item.Quantity,
		})
	}

	if err := h.repo.Create(ctx, &order); err != nil {
		h.log.Error().Err(err).Msg("failed to create order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		return
	}

	h.publish(ctx, publisher.NewOrderEvent(models.OrderCreated, order))

	h.log.Info().
		Str("order_id", order.ID.String()).
		Str("total_price", order.TotalPrice.StringFixed(2)).
		Msg("order created")
	c.JSON(http.StatusCreated, order)
}

// UpdateOrderStatus updates the order status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	ctx := c.Request.Context()
	order, err := h.repo.UpdateStatus(ctx, models.OrderID(c.Param("id")), req.Status)
	if errors.Is(err, db.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("failed to update order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
		return
	}

	h.publish(ctx, publisher.NewOrderEvent(models.OrderStatusChanged, *order))
	c.JSON(http.StatusOK, order)
}

// DeleteOrder removes a single order
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	h.deleteOrders(c, []models.OrderID{models.OrderID(c.Param("id"))})
}

// DeleteOrders removes every order named in the request body
func (h *OrderHandler) DeleteOrders(c *gin.Context) {
	var req models.DeleteOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.deleteOrders(c, req.IDs)
}

func (h *OrderHandler) deleteOrders(c *gin.Context, ids []models.OrderID) {
	ctx := c.Request.Context()
	deleted, err := h.repo.Delete(ctx, ids...)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to delete orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete orders"})
		return
	}
	if len(deleted) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	for _, id := range deleted {
		h.publish(ctx, models.OrderEvent{Type: models.OrderDeleted, OrderID: id})
	}
	c.Status(http.StatusNoContent)
}

// publish never fails the request, the order change is already stored.
func (h *OrderHandler) publish(ctx context.Context, event models.OrderEvent) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.log.Warn().Err(err).Str("order_id", event.OrderID.String()).Msg("failed to publish event")
		return
	}
	h.log.Debug().Str("order_id", event.OrderID.String()).Str("type", string(event.Type)).Msg("published order event")
}
