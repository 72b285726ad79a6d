package handlers

import (
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Router wires every handler onto an echo instance
type Router struct {
	Health     *HealthHandlers
	Products   *ProductHandlers
	Categories *CategoryHandlers
	Reviews    *ReviewHandlers
	Cart       *CartHandlers
	Checkout   *CheckoutHandlers
	Orders     *OrderHandlers
	Wishlist   *WishlistHandlers

	// Authenticate must put the caller's id on the request context
	Authenticate echo.MiddlewareFunc
	RequireAdmin echo.MiddlewareFunc
	// CheckoutLimit is optional
	CheckoutLimit echo.MiddlewareFunc
}

func (r *Router) Register(e *echo.Echo) {
	e.GET("/health", r.Health.LivenessCheck)
	e.GET("/health/ready", r.Health.ReadinessCheck)

	v1 := middleware.VersionRoute(e, middleware.APIVersion{Version: "v1", Status: "active"})

	// Catalog
	v1.GET("/products", r.Products.ListProducts)
	v1.GET("/products/:id", r.Products.GetProduct)
	v1.GET("/products/:id/reviews", r.Reviews.ListReviews)
	v1.POST("/products/:id/reviews", r.Reviews.SubmitReview, r.Authenticate)
	v1.GET("/categories", r.Categories.ListCategories)

	cart := v1.Group("/cart", r.Authenticate)
	cart.GET("", r.Cart.GetCart)
	cart.POST("/items", r.Cart.AddItem)
	cart.PUT("/items/:product_id", r.Cart.UpdateItem)
	cart.DELETE("/items/:product_id", r.Cart.RemoveItem)

	checkoutChain := []echo.MiddlewareFunc{r.Authenticate}
	if r.CheckoutLimit != nil {
		checkoutChain = append(checkoutChain, r.CheckoutLimit)
	}
	v1.POST("/checkout", r.Checkout.PlaceOrder, checkoutChain...)

	orders := v1.Group("/orders", r.Authenticate)
	orders.GET("", r.Orders.ListOrders)
	orders.GET("/:id", r.Orders.GetOrder)

	wishlist := v1.Group("/wishlist", r.Authenticate)
	wishlist.GET("", r.Wishlist.ListWishlist)
	wishlist.POST("", r.Wishlist.AddToWishlist)
	wishlist.DELETE("/:product_id", r.Wishlist.RemoveFromWishlist)

	admin := v1.Group("/admin", r.Authenticate, r.RequireAdmin)
	admin.POST("/products", r.Products.CreateProduct)
	admin.PUT("/products/:id", r.Products.UpdateProduct)
	admin.DELETE("/products/:id", r.Products.DeleteProduct)
	admin.POST("/products/:id/images", r.Products.UploadImage)
	admin.DELETE("/images/:id", r.Products.DeleteImage)
	admin.POST("/categories", r.Categories.CreateCategory)
	admin.DELETE("/categories/:id", r.Categories.DeleteCategory)
	admin.PUT("/orders/:id/status", r.Orders.UpdateOrderStatus)
}
