package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quickmart/quickmart/internal/auth"
	"github.com/quickmart/quickmart/internal/httpx"
	"github.com/quickmart/quickmart/internal/shop"
)

// getShopHandler returns the caller's shop, or null when none exists yet.
// "No shop" is a normal first-run state, not an error.
// @Summary Get own shop
// @Tags shops
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /shops [get]
func getShopHandler(shops shop.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		s, err := shops.GetByOwner(c.Request.Context(), id.ID)
		if err != nil {
			if errors.Is(err, shop.ErrNotFound) {
				httpx.OK(c, gin.H{"shop": nil})
				return
			}
			httpx.Fail(c, http.StatusInternalServerError, "Error fetching shop details")
			return
		}
		httpx.OK(c, gin.H{"shop": s})
	}
}

// upsertShopHandler updates the caller's shop if one exists, creates it
// otherwise. The unique owner index backstops the find-or-create race.
// @Summary Create or update own shop
// @Tags shops
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body shop.UpsertRequest true "shop"
// @Success 200 {object} httpx.Envelope
// @Router /shops [post]
func upsertShopHandler(shops shop.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		var req shop.UpsertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}

		err := shops.UpdateByOwner(c.Request.Context(), id.ID, req)
		created := false
		if errors.Is(err, shop.ErrNotFound) {
			if req.Name == "" || req.Address == "" || req.Phone == "" || req.Email == "" {
				httpx.Fail(c, http.StatusBadRequest, "name, address, phone and email are required")
				return
			}
			// Only creation fills in defaults; updates leave omitted
			// fields alone.
			isOpen := true
			if req.IsOpen != nil {
				isOpen = *req.IsOpen
			}
			categories := req.Categories
			if categories == nil {
				categories = []string{}
			}
			s := &shop.Shop{
				ID:           uuid.NewString(),
				OwnerID:      id.ID,
				Name:         req.Name,
				Description:  req.Description,
				Address:      req.Address,
				Phone:        req.Phone,
				Email:        req.Email,
				IsOpen:       isOpen,
				OpeningHours: req.OpeningHours,
				Categories:   categories,
			}
			if s.OpeningHours == "" {
				s.OpeningHours = "9:00 AM - 9:00 PM"
			}
			err = shops.Create(c.Request.Context(), s)
			created = true
		}
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error saving shop details")
			return
		}

		out, err := shops.GetByOwner(c.Request.Context(), id.ID)
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error saving shop details")
			return
		}
		msg := "Shop updated successfully!"
		if created {
			msg = "Shop created successfully!"
		}
		httpx.OKMsg(c, msg, gin.H{"shop": out})
	}
}

// @Summary Shop statistics
// @Tags shops
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /shops/stats [get]
func shopStatsHandler(shops shop.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		s, err := shops.GetByOwner(c.Request.Context(), id.ID)
		if err != nil {
			// No shop yet: all zeroes, not an error.
			httpx.OK(c, gin.H{"stats": shop.Stats{TotalRevenue: "0"}})
			return
		}
		st, err := shops.Stats(c.Request.Context(), s.ID)
		if err != nil {
			httpx.Fail(c, http.StatusInternalServerError, "Error fetching shop statistics")
			return
		}
		httpx.OK(c, gin.H{"stats": st})
	}
}

// @Summary Toggle shop open/closed
// @Tags shops
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Envelope
// @Router /shops/status [put]
func shopStatusHandler(shops shop.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		var req struct {
			IsOpen *bool `json:"isOpen"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.IsOpen == nil {
			httpx.Fail(c, http.StatusBadRequest, "isOpen is required")
			return
		}
		if err := shops.SetOpen(c.Request.Context(), id.ID, *req.IsOpen); err != nil {
			if errors.Is(err, shop.ErrNotFound) {
				httpx.Fail(c, http.StatusNotFound, "Shop not found")
				return
			}
			httpx.Fail(c, http.StatusInternalServerError, "Error saving shop details")
			return
		}
		msg := "Shop is now closed"
		if *req.IsOpen {
			msg = "Shop is now open"
		}
		httpx.OKMsg(c, msg, nil)
	}
}
