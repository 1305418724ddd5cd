package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

const productsPath = "/products/products/"

type ProductQuery struct {
	Search   string
	Page     int
	PageSize int
}

func (q ProductQuery) encode() string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v.Encode()
}

// ListProducts returns one page of the catalog. A token is sent when one
// is stored but browsing works without it.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*models.ProductPage, error) {
	target := productsPath
	if qs := q.encode(); qs != "" {
		target += "?" + qs
	}

	var page models.ProductPage
	if err := c.do(ctx, http.MethodGet, target, authOptional, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProduct fetches the product detail.
func (c *Client) GetProduct(ctx context.Context, productID int) (*models.Product, error) {
	var product models.Product
	target := fmt.Sprintf("%s%d/", productsPath, productID)
	if err := c.do(ctx, http.MethodGet, target, authOptional, nil, &product); err != nil {
		return nil, fmt.Errorf("product %d: %w", productID, err)
	}
	return &product, nil
}
