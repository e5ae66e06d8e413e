package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/MikeMC777/yummigo-orders/docs"
	"github.com/MikeMC777/yummigo-orders/internal/auth"
	"github.com/MikeMC777/yummigo-orders/internal/catalog"
	"github.com/MikeMC777/yummigo-orders/internal/httpx"
	"github.com/MikeMC777/yummigo-orders/internal/metrics"
	"github.com/MikeMC777/yummigo-orders/internal/order"
)

type deps struct {
	orders   *order.Service
	catalog  catalog.Repository
	verifier *auth.Verifier
	log      *zap.Logger
	timeout  time.Duration
}

func newRouter(d deps) *gin.Engine {
	if d.log == nil {
		d.log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(d.log), metrics.Middleware())
	if d.timeout > 0 {
		r.Use(deadline(d.timeout))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", metrics.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api", httpx.Auth(d.verifier))

	orders := api.Group("/orders")
	orders.POST("", httpx.RequireRole(auth.RoleBuyer), placeOrderHandler(d.orders))
	orders.GET("/mine", httpx.RequireRole(auth.RoleBuyer), listMyOrdersHandler(d.orders))
	orders.GET("/vendor", httpx.RequireRole(auth.RoleVendor), listVendorOrdersHandler(d.orders))
	orders.GET("/stats", httpx.RequireRole(auth.RoleVendor, auth.RoleAdmin), statsHandler(d.orders))
	orders.GET("/:id", getOrderHandler(d.orders))
	orders.PUT("/:id/status", updateStatusHandler(d.orders))
	orders.PATCH("/:id/status", updateStatusHandler(d.orders))

	api.GET("/restaurants", listRestaurantsHandler(d.catalog))
	api.POST("/restaurants", httpx.RequireRole(auth.RoleVendor, auth.RoleAdmin), createRestaurantHandler(d.catalog))
	api.GET("/restaurants/:id", getRestaurantHandler(d.catalog))
	api.PUT("/restaurants/:id", updateRestaurantHandler(d.catalog))
	api.DELETE("/restaurants/:id", deleteRestaurantHandler(d.catalog))
	api.GET("/restaurants/:id/recipes", listRecipesHandler(d.catalog))

	api.GET("/recipes", allRecipesHandler(d.catalog))
	api.GET("/recipes/my-recipes", httpx.RequireRole(auth.RoleVendor, auth.RoleAdmin), myRecipesHandler(d.catalog))
	api.POST("/recipes", httpx.RequireRole(auth.RoleVendor, auth.RoleAdmin), createRecipeHandler(d.catalog))
	api.PUT("/recipes/:id", updateRecipeHandler(d.catalog))
	api.PATCH("/recipes/:id/availability", toggleAvailabilityHandler(d.catalog))
	api.DELETE("/recipes/:id", deleteRecipeHandler(d.catalog))
	return r
}

func deadline(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// caller returns the identity set by httpx.Auth; routes under /api always have one.
func caller(c *gin.Context) auth.Identity {
	id, _ := httpx.IdentityFrom(c)
	return id
}
