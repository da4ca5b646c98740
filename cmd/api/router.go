package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/quickmart/quickmart/internal/auth"
	"github.com/quickmart/quickmart/internal/delivery"
	"github.com/quickmart/quickmart/internal/httpx"
	"github.com/quickmart/quickmart/internal/notify"
	"github.com/quickmart/quickmart/internal/order"
	"github.com/quickmart/quickmart/internal/product"
	"github.com/quickmart/quickmart/internal/shop"
	"github.com/quickmart/quickmart/internal/user"
)

type deps struct {
	users     user.Repository
	shops     shop.Repository
	products  product.Repository
	orders    order.Repository
	agents    delivery.Repository
	notifier  notify.Notifier
	jwtSecret string
	tokenTTL  time.Duration
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	authed := auth.Authenticate(d.users, d.jwtSecret)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"message":   "Server is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	ag := api.Group("/auth")
	ag.POST("/register", registerHandler(d.users, d.jwtSecret, d.tokenTTL))
	ag.POST("/login", loginHandler(d.users, d.jwtSecret, d.tokenTTL))
	ag.GET("/me", authed, meHandler())

	// Shop-owner surface.
	sg := api.Group("/shops", authed, auth.RequireRoles(user.RoleShopOwner))
	sg.GET("", getShopHandler(d.shops))
	sg.POST("", upsertShopHandler(d.shops))
	sg.PUT("", upsertShopHandler(d.shops))
	sg.GET("/stats", shopStatsHandler(d.shops))
	sg.PUT("/status", shopStatusHandler(d.shops))

	pg := api.Group("/products", authed, auth.RequireRoles(user.RoleShopOwner))
	pg.GET("", listProductsHandler(d.shops, d.products))
	pg.POST("", createProductHandler(d.shops, d.products))
	pg.PUT("/:id", updateProductHandler(d.shops, d.products))
	pg.DELETE("/:id", deleteProductHandler(d.shops, d.products))
	pg.PUT("/:id/stock", setStockHandler(d.shops, d.products))

	og := api.Group("/orders", authed, auth.RequireRoles(user.RoleShopOwner))
	og.GET("", listShopOrdersHandler(d.shops, d.orders))
	og.GET("/stats", orderStatsHandler(d.shops, d.orders))
	og.PUT("/:id/status", updateOrderStatusHandler(d.shops, d.orders, d.notifier))

	// Customer surface. Catalog browsing is public; ordering is not.
	cg := api.Group("/customer")
	cg.GET("/shops", listShopsHandler(d.shops))
	cg.GET("/shops/:shopId/products", listShopProductsHandler(d.products))
	co := cg.Group("/orders", authed, auth.RequireRoles(user.RoleCustomer))
	co.POST("", placeOrderHandler(d.shops, d.products, d.orders, d.notifier))
	co.GET("", listMyOrdersHandler(d.orders))
	co.GET("/:id", getMyOrderHandler(d.orders))
	co.PUT("/:id/cancel", cancelMyOrderHandler(d.orders, d.notifier))

	dg := api.Group("/delivery", authed, auth.RequireRoles(user.RoleDeliveryAgent))
	dg.POST("/create-account", createDeliveryAccountHandler(d.agents))
	dg.GET("/profile", deliveryProfileHandler(d.agents))
	dg.PUT("/availability", availabilityHandler(d.agents))
	dg.GET("/available-orders", availableOrdersHandler(d.orders))
	dg.GET("/assigned-orders", assignedOrdersHandler(d.orders))
	dg.GET("/completed-orders", completedOrdersHandler(d.orders))
	dg.GET("/stats", deliveryStatsHandler(d.orders))
	dg.PUT("/orders/:id/accept", acceptOrderHandler(d.orders))
	dg.PUT("/orders/:id/deliver", deliverOrderHandler(d.orders, d.notifier))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.NoRoute(func(c *gin.Context) {
		httpx.Fail(c, http.StatusNotFound, "Route not found")
	})

	return r
}
