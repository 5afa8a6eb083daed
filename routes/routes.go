package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jayansh1208/marketly/controllers"
	"github.com/jayansh1208/marketly/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth     *controllers.AuthController
	Products *controllers.ProductController
	Cart     *controllers.CartController
	Orders   *controllers.OrderController
	Payment  *controllers.PaymentController
}

func RegisterRoutes(r *gin.Engine, h Handlers, auth middleware.Authenticator, logger *zap.Logger) {
	r.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Recovery(logger))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "ok"})
		})

		protected := middleware.AuthMiddleware(auth)
		admin := middleware.AdminMiddleware()

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/logout", protected, h.Auth.Logout)
			authGroup.GET("/me", protected, h.Auth.Me)
		}

		products := api.Group("/products")
		{
			products.GET("", h.Products.List)
			products.GET("/:id", h.Products.Get)
			products.POST("", protected, admin, h.Products.Create)
			products.PUT("/:id", protected, admin, h.Products.Update)
			products.DELETE("/:id", protected, admin, h.Products.Delete)
		}

		cart := api.Group("/cart")
		cart.Use(protected)
		{
			cart.GET("", h.Cart.Get)
			cart.POST("/add", h.Cart.Add)
			cart.PUT("/update", h.Cart.Update)
			cart.DELETE("/remove/:productId", h.Cart.Remove)
			cart.DELETE("/clear", h.Cart.Clear)
		}

		orders := api.Group("/orders")
		orders.Use(protected)
		{
			orders.POST("", h.Orders.Create)
			orders.GET("/myorders", h.Orders.MyOrders)
			orders.GET("/:id", h.Orders.Get)
			orders.PUT("/:id/cancel", h.Orders.Cancel)
			orders.GET("", admin, h.Orders.List)
			orders.PUT("/:id/status", admin, h.Orders.UpdateStatus)
			orders.GET("/:id/history", admin, h.Orders.History)
		}

		payment := api.Group("/payment")
		{
			payment.POST("/create-payment-intent", protected, h.Payment.CreateIntent)
			payment.POST("/webhook", h.Payment.Webhook)
		}
	}
}
