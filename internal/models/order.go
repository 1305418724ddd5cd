package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocalIDPrefix marks orders created on the device that the backend has
// not confirmed yet. Server ids never carry it.
const LocalIDPrefix = "local_"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

var validStatuses = map[OrderStatus]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

func (s OrderStatus) Valid() bool { return validStatuses[s] }

// OrderID is either a server id (sent as a JSON number or string) or a
// locally generated id carrying LocalIDPrefix.
type OrderID string

func NewLocalOrderID() OrderID {
	return OrderID(LocalIDPrefix + uuid.NewString())
}

func (id OrderID) IsLocal() bool { return strings.HasPrefix(string(id), LocalIDPrefix) }

func (id OrderID) String() string { return string(id) }

func (id *OrderID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("order id: %w", err)
		}
		*id = OrderID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	*id = OrderID(n.String())
	return nil
}

type Order struct {
	ID         OrderID         `json:"id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     OrderStatus     `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []OrderItem     `json:"items"`
}

type OrderItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// ItemCount sums item quantities of one order.
func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// ItemIndex returns the position of the item holding productID, or -1.
func (o Order) ItemIndex(productID int) int {
	for i, item := range o.Items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Clone copies the order including its items and their image lists.
func (o Order) Clone() Order {
	c := o
	if o.Items != nil {
		c.Items = make([]OrderItem, len(o.Items))
		for i, item := range o.Items {
			c.Items[i] = item
			c.Items[i].Product = item.Product.Clone()
		}
	}
	return c
}

type OrderPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Order `json:"results"`
}

type CreateOrderRequest struct {
	Items []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateOrderItemRequest struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,gt=0"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

type DeleteOrdersRequest struct {
	IDs []OrderID `json:"ids" binding:"required,min=1"`
}
