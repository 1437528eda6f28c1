package router

import (
	"net/http"

	"github.com/delivery/storefront/internal/application/navigation"
	"github.com/delivery/storefront/internal/interfaces/http/handler"
	"github.com/delivery/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the storefront's HTTP handlers
type Handlers struct {
	Auth    *handler.AuthHandler
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Profile *handler.ProfileHandler
	Admin   *handler.AdminHandler
}

// Storefront returns the route groups of every view and action. authLimit,
// when set, guards the credential endpoints.
func Storefront(h Handlers, authLimit gin.HandlerFunc) []RouteRegistrar {
	limited := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if authLimit == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{authLimit, next}
	}

	auth := NewDomainGroup("").Use(middleware.RouteGuard(navigation.Public))
	auth.GET(navigation.LoginPath, h.Auth.View)
	auth.POST(navigation.LoginPath, limited(h.Auth.Login)...)
	auth.GET(navigation.RegisterPath, h.Auth.View)
	auth.POST(navigation.RegisterPath, limited(h.Auth.Register)...)
	auth.POST("/logout", h.Auth.Logout)

	// Cart and checkout enforce login themselves so the menu and the picked
	// dish survive the login round trip.
	restaurants := NewDomainGroup("/restaurants").Use(middleware.RouteGuard(navigation.Public))
	restaurants.GET("", h.Catalog.List)
	restaurants.GET("/:id", h.Catalog.Menu)
	restaurants.GET("/:id/cart", h.Cart.View)
	restaurants.POST("/:id/cart/items", h.Cart.AddItem)
	restaurants.Handle(http.MethodPut, "/:id/cart/items/:dishId", h.Cart.SetQuantity)
	restaurants.Handle(http.MethodDelete, "/:id/cart/items/:dishId", h.Cart.RemoveItem)
	restaurants.POST("/:id/checkout", h.Cart.Checkout)

	customer := NewDomainGroup("").Use(middleware.RouteGuard(navigation.Authenticated))
	customer.GET(navigation.HomePath, h.Profile.Home)
	customer.GET("/profile", h.Profile.Profile)
	customer.Handle(http.MethodPut, "/profile", h.Profile.UpdateProfile)
	customer.GET("/orders", h.Profile.Orders)

	admin := NewDomainGroup("/admin").Use(middleware.RouteGuard(navigation.AuthenticatedAdmin))
	users := admin.Group("/users")
	users.GET("", h.Admin.ListUsers)
	users.Handle(http.MethodDelete, "/:id", h.Admin.DeleteUser)
	users.GET("/:id/orders", h.Admin.UserOrders)
	admin.Group("/orders").Handle(http.MethodPatch, "/:id/status", h.Admin.UpdateOrderStatus)
	catalog := admin.Group("/restaurants")
	catalog.POST("", h.Admin.CreateRestaurant)
	catalog.Handle(http.MethodPut, "/:id", h.Admin.UpdateRestaurant)
	catalog.Handle(http.MethodDelete, "/:id", h.Admin.DeleteRestaurant)
	catalog.GET("/:id/dishes", h.Admin.Dishes)
	catalog.POST("/:id/dishes", h.Admin.CreateDish)
	catalog.Handle(http.MethodPut, "/:id/dishes/:dishId", h.Admin.UpdateDish)
	catalog.Handle(http.MethodDelete, "/:id/dishes/:dishId", h.Admin.DeleteDish)

	return []RouteRegistrar{auth, restaurants, customer, admin}
}
