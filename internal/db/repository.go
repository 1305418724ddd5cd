package db

import (
	"context"
	"errors"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
)

// OrderRepository stores server-side orders. Lookups of unknown ids
// return (nil, nil) like the product repository.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	List(ctx context.Context, offset, limit int) ([]models.Order, int, error)
	GetByID(ctx context.Context, id models.OrderID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id models.OrderID, status models.OrderStatus) (*models.Order, error)
	// Delete returns the ids that existed and were removed.
	Delete(ctx context.Context, ids ...models.OrderID) ([]models.OrderID, error)
}

type ProductRepository interface {
	List(ctx context.Context, search string, offset, limit int) ([]models.Product, int, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id int) error
	// AdjustQuantity adds delta to the stock level, never below zero.
	AdjustQuantity(ctx context.Context, id int, delta int) error
}
