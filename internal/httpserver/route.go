package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	ContactHandler *ContactHTTP
	AdminHandler   *AdminHTTP
	JWTSecret      []byte
	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := d.Ready(c.Request().Context()); err != nil {
			logging.FromContext(c.Request().Context()).Warn("readiness_error", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := auth.New(d.JWTSecret)
	renew := authMW.AutoRefresh(d.AuthHandler.renewSession)
	private := []echo.MiddlewareFunc{renew, authMW.RequireAuth()}
	optional := authMW.Optional()

	api := e.Group("/api/v1")

	a := api.Group("/auth")
	a.POST("/register", d.AuthHandler.Register)
	a.POST("/login", d.AuthHandler.Login)
	a.POST("/refresh", d.AuthHandler.Refresh)
	a.POST("/logout", d.AuthHandler.Logout)
	a.GET("/me", d.AuthHandler.Me, private...)
	a.PATCH("/me", d.AuthHandler.UpdateMe, private...)
	a.POST("/password", d.AuthHandler.ChangePassword, private...)

	products := api.Group("/products", optional)
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	api.GET("/categories", d.CatalogHandler.Categories)

	cart := api.Group("/cart", private...)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.Clear)
	cart.PATCH("/items/:id", d.CartHandler.UpdateItem)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)

	orders := api.Group("/orders", private...)
	orders.POST("", d.OrderHandler.Checkout)
	orders.GET("", d.OrderHandler.ListMine)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/cancel", d.OrderHandler.Cancel)

	api.POST("/inquiries", d.ContactHandler.CreateInquiry, optional)
	api.GET("/inquiries/mine", d.ContactHandler.MyInquiries, private...)
	api.POST("/design-requests", d.ContactHandler.CreateDesignRequest, optional)
	api.GET("/design-requests/mine", d.ContactHandler.MyDesignRequests, private...)

	admin := api.Group("/admin", append(private, auth.RequireAdmin)...)
	admin.GET("/dashboard", d.AdminHandler.Dashboard)

	admin.GET("/products", d.CatalogHandler.GetProducts)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.PATCH("/products/:id", d.CatalogHandler.PatchProduct)
	admin.DELETE("/products/:id", d.CatalogHandler.DeleteProduct)
	admin.POST("/products/reindex", d.CatalogHandler.Reindex)

	admin.GET("/orders", d.OrderHandler.ListAll)
	admin.GET("/orders/:id", d.OrderHandler.GetOrder)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
	admin.PATCH("/orders/:id/payment", d.OrderHandler.UpdatePayment)
	admin.PUT("/orders/:id/delivery", d.OrderHandler.UpsertDelivery)

	admin.GET("/customers", d.AdminHandler.ListCustomers)
	admin.GET("/customers/:id", d.AdminHandler.GetCustomer)

	admin.GET("/inventory", d.AdminHandler.ListInventory)
	admin.GET("/inventory/:product_id", d.AdminHandler.GetInventory)
	admin.PUT("/inventory/:product_id", d.AdminHandler.SetInventory)
	admin.POST("/inventory/:product_id/adjust", d.AdminHandler.AdjustInventory)

	admin.GET("/inquiries", d.ContactHandler.ListInquiries)
	admin.GET("/inquiries/:id", d.ContactHandler.GetInquiry)
	admin.PATCH("/inquiries/:id", d.ContactHandler.UpdateInquiry)

	admin.GET("/design-requests", d.ContactHandler.ListDesignRequests)
	admin.GET("/design-requests/:id", d.ContactHandler.GetDesignRequest)
	admin.PATCH("/design-requests/:id", d.ContactHandler.UpdateDesignRequest)
}
