package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

type PostgresProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *PostgresProductRepository {
	return &PostgresProductRepository{db: database.Conn}
}

var _ ProductRepository = (*PostgresProductRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p      models.Product
		images string
	)
	if err := row.Scan(&p.ID, &p.Name, &images, &p.Price, &p.Description, &p.Quantity, &p.CreatedAt); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		return p, fmt.Errorf("failed to decode images: %w", err)
	}
	return p, nil
}

// List returns one page of products whose name contains search.
func (r *PostgresProductRepository) List(ctx context.Context, search string, offset, limit int) ([]models.Product, int, error) {
	pattern := "%" + search + "%"

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, images, price, description, quantity, created_at
		FROM products WHERE name ILIKE $1 ORDER BY id LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// GetByID returns a single product, nil when it does not exist.
func (r *PostgresProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, images, price, description, quantity, created_at
		FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *PostgresProductRepository) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	images, err := json.Marshal(req.Images)
	if err != nil {
		return nil, fmt.Errorf("failed to encode images: %w", err)
	}
	if req.Images == nil {
		images = []byte("[]")
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, images, price, description, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, images, price, description, quantity, created_at`,
		req.Name, string(images), req.Price, req.Description, req.Quantity)

	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &p, nil
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresProductRepository) AdjustQuantity(ctx context.Context, id int, delta int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET quantity = GREATEST(quantity + $1, 0) WHERE id = $2`, delta, id)
	if err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
