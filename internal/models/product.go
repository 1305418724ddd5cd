package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Images      []string        `json:"images"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (p Product) Clone() Product {
	c := p
	if p.Images != nil {
		c.Images = append([]string(nil), p.Images...)
	}
	return c
}

type ProductPage struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []Product `json:"results"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Images      []string        `json:"images"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
}
