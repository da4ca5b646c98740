package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/quickmart/quickmart/internal/auth"
	"github.com/quickmart/quickmart/internal/httpx"
	"github.com/quickmart/quickmart/internal/notify"
	"github.com/quickmart/quickmart/internal/order"
	"github.com/quickmart/quickmart/internal/product"
	"github.com/quickmart/quickmart/internal/shop"
)

// @Summary List shops open for ordering
// @Tags customer
// @Produce json
// @Success 200 {object} httpx.Envelope
// @Router /customer/shops [get]
func listShopsHandler(shops shop.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := shops.ListOpen(c.Request.Context())
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error fetching shops")
			return
		}
		if list == nil {
			list = []shop.Shop{}
		}
		httpx.OK(c, gin.H{"shops": list, "count": len(list)})
	}
}

// @Summary List a shop's available products
// @Tags customer
// @Produce json
// @Param shopId path string true "shop id"
// @Success 200 {object} httpx.Envelope
// @Failure 400 {object} httpx.Envelope "malformed shop id"
// @Router /customer/shops/{shopId}/products [get]
func listShopProductsHandler(products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		shopID := c.Param("shopId")
		if _, err := uuid.Parse(shopID); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "Invalid shop id")
			return
		}
		list, err := products.ListAvailable(c.Request.Context(), shopID)
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

// effectivePrice applies the product discount to its list price.
func effectivePrice(p *product.Product) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return decimal.Zero, err
	}
	if p.Discount == 0 {
		return price, nil
	}
	factor := decimal.NewFromInt(int64(100 - p.Discount))
	return price.Mul(factor).Div(decimal.NewFromInt(100)).Round(2), nil
}

// placeOrderHandler checks out a cart. The client's items are treated as
// intent only: prices come from the catalog and the total is recomputed
// here, so a tampered payload cannot change what the customer owes.
// @Summary Place an order
// @Tags customer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body order.PlaceRequest true "order"
// @Success 201 {object} httpx.Envelope
// @Failure 409 {object} httpx.Envelope "insufficient stock"
// @Router /customer/orders [post]
func placeOrderHandler(shops shop.Repository, products product.Repository, orders order.Repository, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.FromContext(c)
		if !ok {
			httpx.Fail(c, http.StatusUnauthorized, "Not authorized")
			return
		}
		var req order.PlaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if len(req.Items) == 0 {
			httpx.Fail(c, http.StatusBadRequest, "Order must contain at least one item")
			return
		}
		if _, err := uuid.Parse(req.ShopID); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "Invalid shop id")
			return
		}
		s, err := shops.GetByID(c.Request.Context(), req.ShopID)
		if err != nil {
			httpx.Fail(c, http.StatusNotFound, "Shop not found")
			return
		}

		method := req.PaymentMethod
		if method == "" {
			method = "cash"
		}
		if !lo.Contains(order.ValidPaymentMethods, method) {
			httpx.Fail(c, http.StatusBadRequest, "invalid payment method")
			return
		}
		address := req.DeliveryAddress
		if address == "" {
			address = id.Addr
		}
		if address == "" {
			httpx.Fail(c, http.StatusBadRequest, "delivery address is required")
			return
		}

		total := decimal.Zero
		items := make([]order.Item, 0, len(req.Items))
		for _, line := range req.Items {
			if line.Quantity < 1 {
				httpx.Fail(c, http.StatusBadRequest, "item quantity must be at least 1")
				return
			}
			p, err := products.GetByID(c.Request.Context(), line.ProductID)
			if err != nil || p.ShopID != s.ID {
				httpx.Fail(c, http.StatusNotFound, "Product not found")
				return
			}
			if !p.IsAvailable {
				httpx.Fail(c, http.StatusBadRequest, fmt.Sprintf("Product %s is not available", p.Name))
				return
			}
			price, err := effectivePrice(p)
			if err != nil {
				httpx.Fail(c, http.StatusInternalServerError, "Error creating order")
				return
			}
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			image := ""
			if len(p.Images) > 0 {
				image = p.Images[0]
			}
			items = append(items, order.Item{
				ID:        uuid.NewString(),
				ProductID: p.ID,
				Name:      p.Name,
				Price:     price.StringFixed(2),
				Quantity:  line.Quantity,
				Unit:      p.Unit,
				Image:     image,
			})
		}

		o := &order.Order{
			ID:                   uuid.NewString(),
			CustomerID:           id.ID,
			CustomerName:         id.Name,
			CustomerPhone:        id.Phone,
			CustomerEmail:        id.Email,
			ShopID:               s.ID,
			TotalAmount:          total.StringFixed(2),
			DeliveryAddress:      address,
			DeliveryInstructions: req.DeliveryInstructions,
			Status:               order.StatusPending,
			PaymentStatus:        order.PaymentPending,
			PaymentMethod:        method,
		}
		if err := orders.Create(c.Request.Context(), o, items); err != nil {
			if errors.Is(err, order.ErrInsufficientStock) {
				httpx.Fail(c, http.StatusConflict, "Insufficient stock for one or more items")
				return
			}
			httpx.Fail(c, http.StatusInternalServerError, "Error creating order")
			return
		}
		o.Items = items

		fireNotify(c.Request.Context(), notifier.OrderPlaced, eventFor(o))
		httpx.Created(c, "Order placed successfully!", gin.H{"order": o})
	}
}

// @Summary List own orders
// @Tags customer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /customer/orders [get]
func listMyOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		list, err := orders.ListByCustomer(c.Request.Context(), id.ID)
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error fetching orders")
			return
		}
		if list == nil {
			list = []order.Order{}
		}
		httpx.OK(c, gin.H{"orders": list, "count": len(list)})
	}
}

// @Summary Get one of own orders
// @Tags customer
// @Produce json
// @Security BearerAuth
// @Param id path string true "order id"
// @Success 200 {object} httpx.Envelope
// @Router /customer/orders/{id} [get]
func getMyOrderHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		o, err := orders.GetForCustomer(c.Request.Context(), c.Param("id"), id.ID)
		if err != nil {
			httpx.Fail(c, http.StatusNotFound, "Order not found")
			return
		}
		httpx.OK(c, gin.H{"order": o})
	}
}

// @Summary Cancel own order
// @Tags customer
// @Produce json
// @Security BearerAuth
// @Param id path string true "order id"
// @Success 200 {object} httpx.Envelope
// @Router /customer/orders/{id}/cancel [put]
func cancelMyOrderHandler(orders order.Repository, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		err := orders.CancelByCustomer(c.Request.Context(), c.Param("id"), id.ID)
		if errors.Is(err, order.ErrNotFound) {
			httpx.Fail(c, http.StatusNotFound, "Order not found")
			return
		}
		if errors.Is(err, order.ErrBadTransition) {
			httpx.Fail(c, http.StatusConflict, "Order can no longer be cancelled")
			return
		}
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error updating order status")
			return
		}
		o, err := orders.GetForCustomer(c.Request.Context(), c.Param("id"), id.ID)
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error fetching orders")
			return
		}
		fireNotify(c.Request.Context(), notifier.OrderStatusChanged, eventFor(o))
		httpx.OKMsg(c, "Order cancelled", gin.H{"order": o})
	}
}
