package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/storage"
)

// ProductCache is the slice of storage.RedisStore the product cache needs.
type ProductCache interface {
	storage.Store
	DeleteByPattern(ctx context.Context, pattern string) error
}

type CachedProductRepository struct {
	repo  ProductRepository
	cache ProductCache
	log   zerolog.Logger
}

func NewCachedProductRepository(repo ProductRepository, cache ProductCache, log zerolog.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		repo:  repo,
		cache: cache,
		log:   log.With().Str("component", "product_cache").Logger(),
	}
}

var _ ProductRepository = (*CachedProductRepository)(nil)

// Cache key helpers
func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

func productListKey(search string, offset, limit int) string {
	return fmt.Sprintf("products:list:%s:%d:%d", search, offset, limit)
}

const productListPattern = "products:list:*"

type cachedPage struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
}

// List returns one page of products (with caching)
func (r *CachedProductRepository) List(ctx context.Context, search string, offset, limit int) ([]models.Product, int, error) {
	cacheKey := productListKey(search, offset, limit)

	var page cachedPage
	err := storage.GetJSON(ctx, r.cache, cacheKey, &page)
	if err == nil {
		r.log.Debug().Str("key", cacheKey).Msg("cache HIT")
		return page.Products, page.Total, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		r.log.Warn().Err(err).Str("key", cacheKey).Msg("cache error")
	}

	r.log.Debug().Str("key", cacheKey).Msg("cache MISS, fetching from DB")
	products, total, err := r.repo.List(ctx, search, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	page = cachedPage{Products: products, Total: total}
	if err := storage.SetJSON(ctx, r.cache, cacheKey, page); err != nil {
		r.log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache products")
	}
	return products, total, nil
}

// GetByID returns a single product (with caching)
func (r *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	cacheKey := productKey(id)

	var product models.Product
	err := storage.GetJSON(ctx, r.cache, cacheKey, &product)
	if err == nil {
		r.log.Debug().Int("product_id", id).Msg("cache HIT")
		return &product, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		r.log.Warn().Err(err).Int("product_id", id).Msg("cache error")
	}

	r.log.Debug().Int("product_id", id).Msg("cache MISS, fetching from DB")
	p, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	if err := storage.SetJSON(ctx, r.cache, cacheKey, p); err != nil {
		r.log.Warn().Err(err).Int("product_id", id).Msg("failed to cache product")
	}
	return p, nil
}

// Create inserts a new product and invalidates cached listings.
func (r *CachedProductRepository) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	product, err := r.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	r.invalidateLists(ctx)
	return product, nil
}

// Delete removes a product and invalidates caches
func (r *CachedProductRepository) Delete(ctx context.Context, id int) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, productKey(id)); err != nil {
		r.log.Warn().Err(err).Int("product_id", id).Msg("failed to invalidate product")
	}
	r.invalidateLists(ctx)
	return nil
}

// AdjustQuantity changes stock and drops every cached copy of the product.
func (r *CachedProductRepository) AdjustQuantity(ctx context.Context, id int, delta int) error {
	if err := r.repo.AdjustQuantity(ctx, id, delta); err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, productKey(id)); err != nil {
		r.log.Warn().Err(err).Int("product_id", id).Msg("failed to invalidate product")
	}
	r.invalidateLists(ctx)
	return nil
}

func (r *CachedProductRepository) invalidateLists(ctx context.Context) {
	if err := r.cache.DeleteByPattern(ctx, productListPattern); err != nil {
		r.log.Warn().Err(err).Msg("failed to invalidate product listings")
		return
	}
	r.log.Debug().Msg("cache invalidated: product listings")
}
