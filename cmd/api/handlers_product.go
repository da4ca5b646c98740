package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/quickmart/quickmart/internal/auth"
	"github.com/quickmart/quickmart/internal/httpx"
	"github.com/quickmart/quickmart/internal/product"
	"github.com/quickmart/quickmart/internal/shop"
)

// ownShop resolves the caller's shop. Writes require one; reads that can
// answer "empty" without it should not use this helper.
func ownShop(c *gin.Context, shops shop.Repository) (*shop.Shop, bool) {
	id, _ := auth.FromContext(c)
	s, err := shops.GetByOwner(c.Request.Context(), id.ID)
	if err != nil {
		httpx.Fail(c, http.StatusNotFound, "Shop not found. Please create a shop first.")
		return nil, false
	}
	return s, true
}

// @Summary List own products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /products [get]
func listProductsHandler(shops shop.Repository, products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		s, err := shops.GetByOwner(c.Request.Context(), id.ID)
		if err != nil {
			// No shop: an empty catalog, not an error.
			httpx.OK(c, gin.H{"products": []product.Product{}, "count": 0})
			return
		}
		list, err := products.ListByShop(c.Request.Context(), s.ID)
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error fetching products")
			return
		}
		if list == nil {
			list = []product.Product{}
		}
		httpx.OK(c, gin.H{"products": list, "count": len(list)})
	}
}

func validPrice(raw string) bool {
	d, err := decimal.NewFromString(raw)
	return err == nil && !d.IsNegative()
}

// createProductHandler persists a product under the caller's own shop; any
// client-supplied shop id is ignored.
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body product.CreateRequest true "product"
// @Success 201 {object} httpx.Envelope
// @Router /products [post]
func createProductHandler(shops shop.Repository, products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := ownShop(c, shops)
		if !ok {
			return
		}
		var req product.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Name == "" || req.Price == "" || req.Unit == "" || req.Category == "" {
			httpx.Fail(c, http.StatusBadRequest, "name, price, unit and category are required")
			return
		}
		if !validPrice(req.Price) {
			httpx.Fail(c, http.StatusBadRequest, "Price cannot be negative")
			return
		}
		if !lo.Contains(product.ValidUnits, req.Unit) {
			httpx.Fail(c, http.StatusBadRequest, "invalid unit")
			return
		}
		if req.Stock < 0 {
			httpx.Fail(c, http.StatusBadRequest, "Stock cannot be negative")
			return
		}
		if req.Discount < 0 || req.Discount > 100 {
			httpx.Fail(c, http.StatusBadRequest, "Discount must be between 0 and 100")
			return
		}

		images := req.Images
		if images == nil {
			images = []string{}
		}
		p := &product.Product{
			ID:          uuid.NewString(),
			ShopID:      s.ID,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Unit:        req.Unit,
			Stock:       req.Stock,
			Category:    req.Category,
			Images:      images,
			IsAvailable: true,
			Discount:    req.Discount,
		}
		if err := products.Create(c.Request.Context(), p); err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error creating product")
			return
		}
		httpx.Created(c, "Product created successfully!", gin.H{"product": p})
	}
}

// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "product id"
// @Param payload body product.UpdateRequest true "fields"
// @Success 200 {object} httpx.Envelope
// @Router /products/{id} [put]
func updateProductHandler(shops shop.Repository, products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := ownShop(c, shops)
		if !ok {
			return
		}
		var req product.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Price != "" && !validPrice(req.Price) {
			httpx.Fail(c, http.StatusBadRequest, "Price cannot be negative")
			return
		}
		if req.Unit != "" && !lo.Contains(product.ValidUnits, req.Unit) {
			httpx.Fail(c, http.StatusBadRequest, "invalid unit")
			return
		}
		if req.Stock != nil && *req.Stock < 0 {
			httpx.Fail(c, http.StatusBadRequest, "Stock cannot be negative")
			return
		}
		if req.Discount != nil && (*req.Discount < 0 || *req.Discount > 100) {
			httpx.Fail(c, http.StatusBadRequest, "Discount must be between 0 and 100")
			return
		}

		p, err := products.Update(c.Request.Context(), s.ID, c.Param("id"), req)
		if err != nil {
			// Cross-tenant ids land here too; a foreign product is
			// indistinguishable from a missing one.
			httpx.Fail(c, http.StatusNotFound, "Product not found")
			return
		}
		httpx.OKMsg(c, "Product updated successfully!", gin.H{"product": p})
	}
}

// @Summary Delete product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "product id"
// @Success 200 {object} httpx.Envelope
// @Router /products/{id} [delete]
func deleteProductHandler(shops shop.Repository, products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := ownShop(c, shops)
		if !ok {
			return
		}
		deleted, err := products.Delete(c.Request.Context(), s.ID, c.Param("id"))
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error deleting product")
			return
		}
		if !deleted {
			httpx.Fail(c, http.StatusNotFound, "Product not found")
			return
		}
		httpx.OKMsg(c, "Product deleted successfully!", nil)
	}
}

// @Summary Set product stock
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "product id"
// @Success 200 {object} httpx.Envelope
// @Router /products/{id}/stock [put]
func setStockHandler(shops shop.Repository, products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := ownShop(c, shops)
		if !ok {
			return
		}
		var req struct {
			Stock *int `json:"stock"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Stock == nil {
			httpx.Fail(c, http.StatusBadRequest, "stock is required")
			return
		}
		if *req.Stock < 0 {
			httpx.Fail(c, http.StatusBadRequest, "Stock cannot be negative")
			return
		}
		if err := products.SetStock(c.Request.Context(), s.ID, c.Param("id"), *req.Stock); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				httpx.Fail(c, http.StatusNotFound, "Product not found")
				return
			}
			httpx.Fail(c, http.StatusInternalServerError, "Error updating product")
			return
		}
		httpx.OKMsg(c, "Stock updated successfully!", nil)
	}
}
