package router

import (
	"github.com/shopfront/backend/internal/interfaces/http/handler"
)

// Handlers are the handlers mounted under the API prefix
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Contact *handler.ContactHandler
	Partner *handler.PartnerHandler
	Catalog *handler.CatalogHandler
	Basket  *handler.BasketHandler
	Order   *handler.OrderHandler
}

// APIGroups returns the route groups of the API. Paths listed in
// middleware.PublicPaths are reachable without a token.
func APIGroups(h Handlers) []*DomainGroup {
	user := NewDomainGroup("user", "/user").
		POST("/register", h.Auth.Register).
		POST("/register/confirm", h.Auth.ConfirmEmail).
		POST("/register/confirm/resend", h.Auth.ResendConfirmation).
		POST("/login", h.Auth.Login).
		POST("/token/refresh", h.Auth.RefreshToken).
		POST("/logout", h.Auth.Logout).
		GET("/details", h.User.GetDetails).
		PATCH("/details", h.User.UpdateDetails)
	user.Group("contact", "/contact").
		GET("", h.Contact.ListContacts).
		POST("", h.Contact.CreateContact).
		PUT("/:id", h.Contact.UpdateContact).
		DELETE("", h.Contact.DeleteContacts)

	passwordReset := NewDomainGroup("password_reset", "/password_reset").
		POST("", h.Auth.RequestPasswordReset).
		POST("/confirm", h.Auth.ConfirmPasswordReset)

	shops := NewDomainGroup("shops", "/shops").
		GET("", h.Partner.ListShops)

	partner := NewDomainGroup("partner", "/partner").
		GET("/state", h.Partner.GetState).
		POST("/state", h.Partner.SetState).
		POST("/update", h.Partner.RequestUpdate).
		GET("/update/:id", h.Partner.GetUpdateStatus).
		GET("/orders", h.Partner.ListOrders)

	catalog := NewDomainGroup("catalog", "").
		GET("/categories", h.Catalog.ListCategories).
		GET("/products", h.Catalog.ListProducts).
		GET("/products/:id", h.Catalog.GetProduct)

	basket := NewDomainGroup("basket", "/basket").
		GET("", h.Basket.GetBasket).
		POST("", h.Basket.AddToBasket).
		PUT("", h.Basket.UpdateBasket).
		DELETE("", h.Basket.RemoveFromBasket)

	orders := NewDomainGroup("orders", "/orders").
		POST("", h.Order.PlaceOrder).
		GET("", h.Order.ListOrders).
		GET("/:id", h.Order.GetOrder).
		PATCH("/:id/status", h.Order.ChangeStatus)

	return []*DomainGroup{user, passwordReset, shops, partner, catalog, basket, orders}
}
