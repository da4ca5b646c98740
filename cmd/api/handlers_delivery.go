package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/quickmart/quickmart/internal/auth"
	"github.com/quickmart/quickmart/internal/delivery"
	"github.com/quickmart/quickmart/internal/httpx"
	"github.com/quickmart/quickmart/internal/notify"
	"github.com/quickmart/quickmart/internal/order"
)

// @Summary Register delivery agency profile
// @Tags delivery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body delivery.CreateRequest true "profile"
// @Success 201 {object} httpx.Envelope
// @Router /delivery/create-account [post]
func createDeliveryAccountHandler(agents delivery.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		var req delivery.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if req.AgencyName == "" || req.Address == "" || req.LicenseNumber == "" ||
			req.MobileNumber == "" || req.VehicleType == "" || req.VehicleNumber == "" {
			httpx.Fail(c, http.StatusBadRequest, "all fields are required")
			return
		}
		if !lo.Contains(delivery.ValidVehicleTypes, req.VehicleType) {
			httpx.Fail(c, http.StatusBadRequest, "invalid vehicle type")
			return
		}

		a := &delivery.Agent{
			ID:            uuid.NewString(),
			UserID:        id.ID,
			AgencyName:    req.AgencyName,
			Address:       req.Address,
			LicenseNumber: req.LicenseNumber,
			Phone:         req.MobileNumber,
			Email:         id.Email,
			VehicleType:   req.VehicleType,
			VehicleNumber: req.VehicleNumber,
		}
		err := agents.Create(c.Request.Context(), a)
		if errors.Is(err, delivery.ErrAlreadyExists) {
			httpx.Fail(c, http.StatusBadRequest, "Delivery account already exists")
			return
		}
		if errors.Is(err, delivery.ErrDuplicate) {
			httpx.Fail(c, http.StatusBadRequest, "License or vehicle number already registered")
			return
		}
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error creating delivery account")
			return
		}
		httpx.Created(c, "Delivery account created successfully!", gin.H{"agent": a})
	}
}

// @Summary Delivery agent profile
// @Tags delivery
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /delivery/profile [get]
func deliveryProfileHandler(agents delivery.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		a, err := agents.GetByUser(c.Request.Context(), id.ID)
		if err != nil {
			httpx.Fail(c, http.StatusNotFound, "Delivery agent not found")
			return
		}
		httpx.OK(c, gin.H{"agent": a})
	}
}

// @Summary Update availability
// @Tags delivery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /delivery/availability [put]
func availabilityHandler(agents delivery.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		var req struct {
			IsAvailable *bool `json:"isAvailable"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.IsAvailable == nil {
			httpx.Fail(c, http.StatusBadRequest, "isAvailable is required")
			return
		}
		if err := agents.SetOnline(c.Request.Context(), id.ID, *req.IsAvailable); err != nil {
			if errors.Is(err, delivery.ErrNotFound) {
				httpx.Fail(c, http.StatusNotFound, "Delivery agent not found")
				return
			}
			httpx.Fail(c, http.StatusInternalServerError, "Error updating availability")
			return
		}
		msg := "Availability updated to offline"
		if *req.IsAvailable {
			msg = "Availability updated to online"
		}
		httpx.OKMsg(c, msg, nil)
	}
}

// availableOrdersHandler is how an agent discovers work: dispatched orders
// nobody has claimed. Accepting one moves it to assigned-orders.
// @Summary Unclaimed orders ready for delivery
// @Tags delivery
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /delivery/available-orders [get]
func availableOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListAvailable(c.Request.Context())
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

// @Summary Orders assigned to the agent
// @Tags delivery
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /delivery/assigned-orders [get]
func assignedOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		list, err := orders.ListAssigned(c.Request.Context(), id.ID)
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

// @Summary Orders the agent has delivered
// @Tags delivery
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /delivery/completed-orders [get]
func completedOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		list, err := orders.ListCompleted(c.Request.Context(), id.ID)
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

// acceptOrderHandler claims a dispatched order for the caller. The claim is
// a single conditional write in the repo, so a second agent racing for the
// same order loses cleanly with AlreadyAssigned.
// @Summary Accept a dispatched order
// @Tags delivery
// @Produce json
// @Security BearerAuth
// @Param id path string true "order id"
// @Success 200 {object} httpx.Envelope
// @Router /delivery/orders/{id}/accept [put]
func acceptOrderHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		err := orders.Accept(c.Request.Context(), c.Param("id"), id.ID)
		switch {
		case errors.Is(err, order.ErrNotFound):
			httpx.Fail(c, http.StatusNotFound, "Order not found")
			return
		case errors.Is(err, order.ErrAlreadyAssigned):
			httpx.Fail(c, http.StatusBadRequest, "Order already assigned to another delivery agent")
			return
		case errors.Is(err, order.ErrNotReady):
			httpx.Fail(c, http.StatusBadRequest, "Order is not ready for delivery")
			return
		case err != nil:
			httpx.Fail(c, http.StatusInternalServerError, "Error accepting order")
			return
		}
		o, err := orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error fetching orders")
			return
		}
		httpx.OKMsg(c, "Order accepted for delivery successfully", gin.H{"order": o})
	}
}

// @Summary Mark an order delivered
// @Tags delivery
// @Produce json
// @Security BearerAuth
// @Param id path string true "order id"
// @Success 200 {object} httpx.Envelope
// @Router /delivery/orders/{id}/deliver [put]
func deliverOrderHandler(orders order.Repository, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		err := orders.MarkDelivered(c.Request.Context(), c.Param("id"), id.ID)
		switch {
		case errors.Is(err, order.ErrNotFound):
			httpx.Fail(c, http.StatusNotFound, "Order not found")
			return
		case errors.Is(err, order.ErrNotAssigned):
			httpx.Fail(c, http.StatusForbidden, "You are not assigned to this order")
			return
		case errors.Is(err, order.ErrBadTransition):
			httpx.Fail(c, http.StatusConflict, "Order is not out for delivery")
			return
		case err != nil:
			httpx.Fail(c, http.StatusInternalServerError, "Error updating order status")
			return
		}
		o, err := orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error fetching orders")
			return
		}
		fireNotify(c.Request.Context(), notifier.OrderStatusChanged, eventFor(o))
		httpx.OKMsg(c, "Order status updated to delivered", gin.H{"order": o})
	}
}

// @Summary Delivery statistics
// @Tags delivery
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /delivery/stats [get]
func deliveryStatsHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		st, err := orders.AgentStats(c.Request.Context(), id.ID)
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error fetching delivery stats")
			return
		}
		httpx.OK(c, st)
	}
}
