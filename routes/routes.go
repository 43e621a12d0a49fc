package routes

import (
	"mjolnir/auth"
	"mjolnir/cart"
	"mjolnir/categories"
	"mjolnir/invoices"
	"mjolnir/middleware"
	"mjolnir/models"
	"mjolnir/orders"
	"mjolnir/products"
	"mjolnir/ratelim"
	"mjolnir/reports"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/productpic/*filepath", http.Dir("static/productpic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.RateLimit(auth.Register))
	router.POST("/api/auth/login", rl.RateLimit(auth.Login))
	router.POST("/api/auth/token/refresh", rl.RateLimit(auth.RefreshToken))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
}

func AddProductRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/products", middleware.OptionalAuth(products.SearchProducts))
	router.GET("/api/products/:id", middleware.OptionalAuth(products.GetProduct))
	router.POST("/api/products",
		middleware.Authenticate(middleware.RequireRoles(products.CreateProduct, models.RoleProductManager)))
	router.PUT("/api/products/:id",
		middleware.Authenticate(middleware.RequireRoles(products.UpdateProduct, models.RoleProductManager)))
	router.DELETE("/api/products/:id",
		middleware.Authenticate(middleware.RequireRoles(products.DeleteProduct, models.RoleProductManager)))
	router.POST("/api/products/:id/image",
		middleware.Authenticate(middleware.RequireRoles(products.UploadProductImage, models.RoleProductManager)))
	router.PATCH("/api/products/:id/price",
		middleware.Authenticate(middleware.RequireRoles(products.SetPrice, models.RoleSalesManager)))
}

func AddCategoryRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/categories", categories.ListCategories)
	router.POST("/api/categories",
		middleware.Authenticate(middleware.RequireRoles(categories.CreateCategory, models.RoleProductManager)))
	router.DELETE("/api/categories/:id",
		middleware.Authenticate(middleware.RequireRoles(categories.DeleteCategory, models.RoleProductManager)))
}

func AddCartRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/cart", middleware.OptionalAuth(cart.GetCart))
	router.POST("/api/cart", middleware.OptionalAuth(cart.AddToCart))
	router.DELETE("/api/cart/:productId", middleware.OptionalAuth(cart.RemoveFromCart))
}

func AddOrderRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/orders", rl.RateLimit(middleware.Authenticate(orders.PlaceOrder)))
	router.GET("/api/orders", middleware.Authenticate(orders.OrderHistory))
	router.GET("/api/orders/:id", middleware.Authenticate(orders.GetOrder))
	router.PATCH("/api/orders/:id/status",
		middleware.Authenticate(middleware.RequireRoles(orders.UpdateStatus, models.RoleProductManager)))
	router.PATCH("/api/orders/:id/cancel", middleware.Authenticate(orders.CancelOrder))
	router.GET("/api/orders/:id/invoice", middleware.Authenticate(invoices.DownloadInvoice))
}

func AddReportRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/sales/orders",
		middleware.Authenticate(middleware.RequireRoles(orders.AllOrders,
			models.RoleProductManager, models.RoleSalesManager)))
	router.GET("/api/sales/invoices",
		middleware.Authenticate(middleware.RequireRoles(reports.InvoicesByDate, models.RoleSalesManager)))
	router.GET("/api/sales/revenue",
		middleware.Authenticate(middleware.RequireRoles(reports.RevenueChart, models.RoleSalesManager)))
	router.GET("/api/sales/refunds",
		middleware.Authenticate(middleware.RequireRoles(reports.PendingRefunds, models.RoleSalesManager)))
	router.POST("/api/sales/refunds/:id/approve",
		middleware.Authenticate(middleware.RequireRoles(reports.ApproveRefund, models.RoleSalesManager)))
	router.POST("/api/sales/refunds/:id/reject",
		middleware.Authenticate(middleware.RequireRoles(reports.RejectRefund, models.RoleSalesManager)))
	router.POST("/api/refunds", middleware.Authenticate(reports.RequestRefund))
}
