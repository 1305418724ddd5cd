package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/storage"
)

// CachedCatalog serves product listings from the network and keeps the
// last good response in the device store, so browsing still works when
// the backend is unreachable.
type CachedCatalog struct {
	client *Client
	store  storage.Store
	log    zerolog.Logger
}

func NewCachedCatalog(c *Client, store storage.Store) *CachedCatalog {
	return &CachedCatalog{client: c, store: store, log: c.log}
}

func listKey(q ProductQuery) string {
	return fmt.Sprintf("%slist:%s:%d:%d", storage.KeyCatalogPrefix, q.Search, q.Page, q.PageSize)
}

func productKey(id int) string {
	return fmt.Sprintf("%sproduct:%d", storage.KeyCatalogPrefix, id)
}

// ListProducts returns the page and whether it came from the cache.
func (cc *CachedCatalog) ListProducts(ctx context.Context, q ProductQuery) (*models.ProductPage, bool, error) {
	key := listKey(q)

	page, err := cc.client.ListProducts(ctx, q)
	if err == nil {
		if err := storage.SetJSON(ctx, cc.store, key, page); err != nil {
			cc.log.Warn().Err(err).Msg("failed to cache product list")
		}
		return page, false, nil
	}
	if !canServeStale(ctx, err) {
		return nil, false, err
	}

	var cached models.ProductPage
	if !cc.fromCache(ctx, key, &cached) {
		return nil, false, err
	}
	cc.log.Info().Err(err).Str("key", key).Msg("serving product list from cache")
	return &cached, true, nil
}

// GetProduct returns the product and whether it came from the cache.
func (cc *CachedCatalog) GetProduct(ctx context.Context, productID int) (*models.Product, bool, error) {
	key := productKey(productID)

	product, err := cc.client.GetProduct(ctx, productID)
	if err == nil {
		if err := storage.SetJSON(ctx, cc.store, key, product); err != nil {
			cc.log.Warn().Err(err).Msg("failed to cache product")
		}
		return product, false, nil
	}
	if !canServeStale(ctx, err) {
		return nil, false, err
	}

	var cached models.Product
	if !cc.fromCache(ctx, key, &cached) {
		return nil, false, err
	}
	cc.log.Info().Err(err).Int("product_id", productID).Msg("serving product from cache")
	return &cached, true, nil
}

func (cc *CachedCatalog) fromCache(ctx context.Context, key string, dest any) bool {
	err := storage.GetJSON(ctx, cc.store, key, dest)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		cc.log.Warn().Err(err).Str("key", key).Msg("failed to read catalog cache")
	}
	return err == nil
}

// canServeStale is true for transport failures and retryable server
// errors. Auth failures, 404s and other client errors are surfaced.
func canServeStale(ctx context.Context, err error) bool {
	if ctx.Err() != nil || IsAuthError(err) {
		return false
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Retryable()
	}
	return true
}

// ShareURL is the public link for a product.
func ShareURL(p models.Product, webBaseURL string) string {
	return fmt.Sprintf("%s/products/%d/", strings.TrimRight(webBaseURL, "/"), p.ID)
}

// ShareText is the payload handed to the OS share sheet.
func ShareText(p models.Product, webBaseURL string) string {
	return fmt.Sprintf("%s - %s\n%s", p.Name, p.Price.StringFixed(2), ShareURL(p, webBaseURL))
}
