package routes

import (
	"net/http"

	"github.com/Johnny2306/plawimadd-group-api/internal/config"
	"github.com/Johnny2306/plawimadd-group-api/internal/handlers"
	"github.com/Johnny2306/plawimadd-group-api/internal/middleware"
	"github.com/Johnny2306/plawimadd-group-api/internal/models"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured storefront origin to call the API,
// including the Authorization header used for Bearer tokens.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Reply to the browser's preflight probe with 204 No Content.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// CORS must run before everything else.
	router.Use(CORSMiddleware(cfg.CORSOrigin))

	// Locally stored uploads are served as static files.
	router.Static("/uploads", "./uploads")

	adminOnly := []gin.HandlerFunc{middleware.RequireAuth(), middleware.RequireRole(models.RoleAdmin)}

	api := router.Group("/api")
	{
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Account Lifecycle (Public) ---
		api.POST("/users/register", h.Register)
		api.POST("/users/login", h.Login)
		api.POST("/users/mot-de-passe-oublie", h.ForgotPassword)
		api.POST("/users/reinitialiser-mot-de-passe", h.ResetPassword)

		// --- Catalog Read Path (Public) ---
		api.GET("/categories", h.GetAllCategories)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)

		// --- Contact Form (Public) ---
		api.POST("/contact", h.Contact)

		// --- Category Writes (Admin) ---
		api.POST("/categories", append(adminOnly, h.CreateCategory)...)
		api.PUT("/categories/:id", append(adminOnly, h.UpdateCategory)...)
		api.DELETE("/categories/:id", append(adminOnly, h.DeleteCategory)...)

		// --- Protected Routes (Login Required) ---
		auth := api.Group("/")
		auth.Use(middleware.RequireAuth())
		{
			auth.GET("/users/me", h.GetMe)

			// Cart
			auth.GET("/cart", h.GetCart)
			auth.POST("/cart/add", h.AddToCart)
			auth.POST("/cart/remove-one", h.RemoveOneFromCart)
			auth.PUT("/cart/items/:product_id", h.UpdateCartItem)
			auth.DELETE("/cart/items/:product_id", h.DeleteCartItem)
			auth.DELETE("/cart", h.ClearCart)

			// Addresses
			auth.GET("/user/addresses", h.GetMyAddresses)
			auth.POST("/user/addresses", h.CreateAddress)
			auth.PUT("/user/addresses/:id", h.UpdateAddress)
			auth.DELETE("/user/addresses/:id", h.DeleteAddress)

			// Orders & Payment Reconciliation
			auth.POST("/order/create", h.CreateOrder)
			auth.POST("/orders/create-after-payment", h.CreateOrderAfterPayment)
			auth.POST("/order/confirm-payment", h.ConfirmPayment)
			auth.GET("/order/user-orders", h.GetMyOrders)
			auth.GET("/user/orders", h.GetMyOrders)
			auth.GET("/orders/:userId", h.GetOrdersForUser) // admin-or-self

			// Image Upload
			auth.POST("/upload-image", h.UploadImage)
		}

		// --- Admin Back-Office ---
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth())
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", h.ListUsers)
			admin.PUT("/users", h.UpdateUserRole)
			admin.DELETE("/users", h.DeleteUser)

			admin.GET("/orders", h.GetAllOrders)
			admin.POST("/order-status", h.SetOrderStatus)
			admin.DELETE("/orders/:orderId", h.DeleteOrder)

			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.GET("/stats", h.GetAdminStats)
		}
	}

	return router
}
