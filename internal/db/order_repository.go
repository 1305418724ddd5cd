package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

type PostgresOrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: database.Conn}
}

var _ OrderRepository = (*PostgresOrderRepository)(nil)

// serverID converts an order id to its integer key. Ids that are not
// integers (local ids included) cannot exist server side.
func serverID(id models.OrderID) (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// Create inserts a new order with items
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (total_price, status)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		order.TotalPrice, order.Status,
	).Scan(&id, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	order.ID = models.OrderID(strconv.FormatInt(id, 10))

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, product_images, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, item := range order.Items {
		images, err := json.Marshal(item.Product.Images)
		if err != nil {
			return fmt.Errorf("failed to encode images: %w", err)
		}
		_, err = tx.ExecContext(ctx, itemQuery,
			id,
			item.Product.ID,
			item.Product.Name,
			string(images),
			item.Product.Price,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// List returns one page of orders, newest first, and the total count.
func (r *PostgresOrderRepository) List(ctx context.Context, offset, limit int) ([]models.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, total_price, status, created_at FROM orders
		ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []models.Order
		ids    []int64
	)
	for rows.Next() {
		var (
			o  models.Order
			id int64
		)
		if err := rows.Scan(&id, &o.TotalPrice, &o.Status, &o.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		o.ID = models.OrderID(strconv.FormatInt(id, 10))
		orders = append(orders, o)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, total, nil
}

func (r *PostgresOrderRepository) itemsFor(ctx context.Context, ids []int64) (map[models.OrderID][]models.OrderItem, error) {
	out := make(map[models.OrderID][]models.OrderItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, product_name, product_images, price, quantity
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID int64
			images  string
			item    models.OrderItem
		)
		err := rows.Scan(&orderID, &item.Product.ID, &item.Product.Name, &images, &item.Product.Price, &item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if err := json.Unmarshal([]byte(images), &item.Product.Images); err != nil {
			return nil, fmt.Errorf("failed to decode images: %w", err)
		}
		key := models.OrderID(strconv.FormatInt(orderID, 10))
		out[key] = append(out[key], item)
	}
	return out, rows.Err()
}

// GetByID returns a single order with items
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id models.OrderID) (*models.Order, error) {
	n, ok := serverID(id)
	if !ok {
		return nil, nil
	}

	var order models.Order
	err := r.db.QueryRowContext(ctx, `SELECT total_price, status, created_at FROM orders WHERE id = $1`, n).
		Scan(&order.TotalPrice, &order.Status, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	order.ID = id

	items, err := r.itemsFor(ctx, []int64{n})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	return &order, nil
}

// UpdateStatus updates order status
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id models.OrderID, status models.OrderStatus) (*models.Order, error) {
	n, ok := serverID(id)
	if !ok {
		return nil, ErrOrderNotFound
	}

	result, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, n)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, ErrOrderNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresOrderRepository) Delete(ctx context.Context, ids ...models.OrderID) ([]models.OrderID, error) {
	var keys []int64
	for _, id := range ids {
		if n, ok := serverID(id); ok {
			keys = append(keys, n)
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `DELETE FROM orders WHERE id = ANY($1) RETURNING id`, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("failed to delete orders: %w", err)
	}
	defer rows.Close()

	var deleted []models.OrderID
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan deleted id: %w", err)
		}
		deleted = append(deleted, models.OrderID(strconv.FormatInt(n, 10)))
	}
	return deleted, rows.Err()
}
