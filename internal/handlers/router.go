package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/db"
)

type RouterDeps struct {
	Orders      db.OrderRepository
	Products    db.ProductRepository
	Publisher   EventPublisher
	Credentials Credentials
	Log         zerolog.Logger
}

// NewRouter wires every route of the orders API.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(deps.Log))

	orderHandler := NewOrderHandler(deps.Orders, deps.Products, deps.Publisher, deps.Log)
	productHandler := NewProductHandler(deps.Products, deps.Log)
	userHandler := NewUserHandler(deps.Credentials, deps.Log)
	auth := BearerAuth(deps.Credentials.Token)

	r.GET("/health", orderHandler.HealthCheck)

	orders := r.Group("/orders/orders", auth)
	{
		orders.GET("/", orderHandler.ListOrders)
		orders.POST("/", orderHandler.CreateOrder)
		orders.DELETE("/", orderHandler.DeleteOrders)
		orders.GET("/:id/", orderHandler.GetOrder)
		orders.PATCH("/:id/", orderHandler.UpdateOrderStatus)
		orders.DELETE("/:id/", orderHandler.DeleteOrder)
	}

	products := r.Group("/products/products")
	{
		products.GET("/", productHandler.ListProducts)
		products.GET("/:id/", productHandler.GetProduct)
		products.POST("/", auth, productHandler.CreateProduct)
		products.DELETE("/:id/", auth, productHandler.DeleteProduct)
	}

	users := r.Group("/users")
	{
		users.POST("/login/", userHandler.Login)
		users.GET("/profile/", auth, userHandler.GetProfile)
		users.PATCH("/profile/", auth, userHandler.UpdateProfile)
		users.GET("/notifications/", auth, userHandler.GetNotifications)
		users.PATCH("/notifications/", auth, userHandler.UpdateNotifications)
	}

	return r
}
