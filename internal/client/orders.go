package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

const ordersPath = "/orders/orders/"

func orderPath(id models.OrderID) string {
	return fmt.Sprintf("%s%s/", ordersPath, url.PathEscape(string(id)))
}

// ListOrders fetches every page of the user's orders.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var (
		orders []models.Order
		seen   = map[string]bool{}
		next   = ordersPath
	)
	for next != "" && !seen[next] {
		seen[next] = true

		var page models.OrderPage
		if err := c.do(ctx, http.MethodGet, next, authRequired, nil, &page); err != nil {
			return nil, err
		}
		orders = append(orders, page.Results...)

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}
	return orders, nil
}

func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPost, ordersPath, authRequired, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id models.OrderID) error {
	return c.do(ctx, http.MethodDelete, orderPath(id), authRequired, nil, nil)
}

// DeleteOrders removes several orders in one call.
func (c *Client) DeleteOrders(ctx context.Context, ids []models.OrderID) error {
	return c.do(ctx, http.MethodDelete, ordersPath, authRequired, models.DeleteOrdersRequest{IDs: ids}, nil)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id models.OrderID, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	req := models.UpdateOrderStatusRequest{Status: status}
	if err := c.do(ctx, http.MethodPatch, orderPath(id), authRequired, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
