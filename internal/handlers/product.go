package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/db"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

type ProductHandler struct {
	repo db.ProductRepository
	log  zerolog.Logger
}

func NewProductHandler(repo db.ProductRepository, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{repo: repo, log: log}
}

// ListProducts returns one page of products matching ?search=
func (h *ProductHandler) ListProducts(c *gin.Context) {
	p, err := parsePage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, total, err := h.repo.List(c.Request.Context(), c.Query("search"), p.Offset(), p.Size)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	next, prev := pageLinks(c, p, total)
	c.JSON(http.StatusOK, models.ProductPage{
		Count:    total,
		Next:     next,
		Previous: prev,
		Results:  products,
	})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	product, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Int("product_id", id).Msg("failed to get product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}

	product, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	h.log.Info().Int("product_id", product.ID).Str("name", product.Name).Msg("product created")
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	err = h.repo.Delete(c.Request.Context(), id)
	if errors.Is(err, db.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int("product_id", id).Msg("failed to delete product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	c.Status(http.StatusNoContent)
}
