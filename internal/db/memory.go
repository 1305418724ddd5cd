package db

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

// MemoryOrderRepository backs the orders API when no PostgreSQL host is
// configured.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	nextID int64
	orders map[models.OrderID]models.Order
	now    func() time.Time
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[models.OrderID]models.Order),
		now:    time.Now,
	}
}

var _ OrderRepository = (*MemoryOrderRepository)(nil)

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	order.ID = models.OrderID(strconv.FormatInt(r.nextID, 10))
	order.CreatedAt = r.now().UTC()
	r.orders[order.ID] = order.Clone()
	return nil
}

// List pages newest first, matching the PostgreSQL ordering.
func (r *MemoryOrderRepository) List(_ context.Context, offset, limit int) ([]models.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		all = append(all, o.Clone())
	}
	sort.Slice(all, func(i, j int) bool {
		a, _ := serverID(all[i].ID)
		b, _ := serverID(all[j].ID)
		return a > b
	})
	return window(all, offset, limit), len(all), nil
}

func (r *MemoryOrderRepository) GetByID(_ context.Context, id models.OrderID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	c := o.Clone()
	return &c, nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id models.OrderID, status models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o.Status = status
	r.orders[id] = o
	c := o.Clone()
	return &c, nil
}

func (r *MemoryOrderRepository) Delete(_ context.Context, ids ...models.OrderID) ([]models.OrderID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted []models.OrderID
	for _, id := range ids {
		if _, ok := r.orders[id]; ok {
			delete(r.orders, id)
			deleted = append(deleted, id)
		}
	}
	return deleted, nil
}

type MemoryProductRepository struct {
	mu       sync.RWMutex
	nextID   int
	products map[int]models.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[int]models.Product)}
}

var _ ProductRepository = (*MemoryProductRepository)(nil)

func (r *MemoryProductRepository) List(_ context.Context, search string, offset, limit int) ([]models.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(search)
	var matched []models.Product
	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matched = append(matched, p.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return window(matched, offset, limit), len(matched), nil
}

func (r *MemoryProductRepository) GetByID(_ context.Context, id int) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	c := p.Clone()
	return &c, nil
}

func (r *MemoryProductRepository) Create(_ context.Context, req models.CreateProductRequest) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p := models.Product{
		ID:          r.nextID,
		Name:        req.Name,
		Images:      append([]string{}, req.Images...),
		Price:       req.Price,
		Description: req.Description,
		Quantity:    req.Quantity,
		CreatedAt:   time.Now().UTC(),
	}
	r.products[p.ID] = p
	c := p.Clone()
	return &c, nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) AdjustQuantity(_ context.Context, id int, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Quantity += delta
	if p.Quantity < 0 {
		p.Quantity = 0
	}
	r.products[id] = p
	return nil
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
