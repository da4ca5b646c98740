package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quickmart/quickmart/internal/auth"
	"github.com/quickmart/quickmart/internal/httpx"
	"github.com/quickmart/quickmart/internal/notify"
	"github.com/quickmart/quickmart/internal/order"
	"github.com/quickmart/quickmart/internal/shop"
)

// @Summary List shop orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "filter by status"
// @Success 200 {object} httpx.Envelope
// @Router /orders [get]
func listShopOrdersHandler(shops shop.Repository, orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		s, err := shops.GetByOwner(c.Request.Context(), id.ID)
		if err != nil {
			// No shop means no orders; empty, not 404.
			httpx.OK(c, gin.H{"orders": []order.Order{}, "count": 0})
			return
		}

		var filter order.Status
		if raw := c.Query("status"); raw != "" && raw != "all" {
			filter, err = order.ParseStatus(raw)
			if err != nil {
				httpx.Fail(c, http.StatusBadRequest, "unknown status filter")
				return
			}
		}
		list, err := orders.ListByShop(c.Request.Context(), s.ID, filter)
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

// updateOrderStatusHandler moves an order through the shop-side lifecycle.
// The transition table is the gate: an authorized caller still cannot jump
// an order to an arbitrary state.
// @Summary Update order status
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "order id"
// @Param payload body order.StatusRequest true "new status"
// @Success 200 {object} httpx.Envelope
// @Failure 409 {object} httpx.Envelope "transition not allowed"
// @Router /orders/{id}/status [put]
func updateOrderStatusHandler(shops shop.Repository, orders order.Repository, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		s, err := shops.GetByOwner(c.Request.Context(), id.ID)
		if err != nil {
			httpx.Fail(c, http.StatusNotFound, "Shop not found")
			return
		}
		var req order.StatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		to, err := order.ParseStatus(req.Status)
		if err != nil {
			httpx.Fail(c, http.StatusBadRequest, "Invalid status: "+req.Status)
			return
		}

		err = orders.UpdateStatusByShop(c.Request.Context(), c.Param("id"), s.ID, to)
		if errors.Is(err, order.ErrNotFound) {
			httpx.Fail(c, http.StatusNotFound, "Order not found")
			return
		}
		if errors.Is(err, order.ErrBadTransition) {
			httpx.Fail(c, http.StatusConflict, "Status transition not allowed")
			return
		}
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error updating order status")
			return
		}

		o, err := orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error fetching orders")
			return
		}
		fireNotify(c.Request.Context(), notifier.OrderStatusChanged, eventFor(o))
		httpx.OKMsg(c, "Order status updated to "+string(to), gin.H{"order": o})
	}
}

// @Summary Shop order statistics
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /orders/stats [get]
func orderStatsHandler(shops shop.Repository, orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		s, err := shops.GetByOwner(c.Request.Context(), id.ID)
		if err != nil {
			httpx.OK(c, gin.H{"stats": []order.StatusCount{}, "totalOrders": 0, "pendingOrders": 0})
			return
		}
		st, err := orders.StatsByShop(c.Request.Context(), s.ID)
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error fetching order statistics")
			return
		}
		httpx.OK(c, gin.H{
			"stats":         st.Stats,
			"totalOrders":   st.TotalOrders,
			"pendingOrders": st.PendingOrders,
		})
	}
}
