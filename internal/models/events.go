package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderEventType string

const (
	OrderCreated       OrderEventType = "order.created"
	OrderStatusChanged OrderEventType = "order.status_changed"
	OrderDeleted       OrderEventType = "order.deleted"
)

// OrderEvent is published by the orders API after every order mutation.
type OrderEvent struct {
	Type       OrderEventType   `json:"type"`
	OrderID    OrderID          `json:"order_id"`
	Status     OrderStatus      `json:"status,omitempty"`
	TotalPrice decimal.Decimal  `json:"total_price"`
	Items      []OrderItemEvent `json:"items,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type OrderItemEvent struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}
