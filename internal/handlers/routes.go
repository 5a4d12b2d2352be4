package handlers

import (
	"net/http"

	"github.com/Beerzinss/DatKomp/internal/notify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Limiters throttles the form posts that are worth abusing. A nil limiter lets everything through.
type Limiters struct {
	Auth     *RateLimiter
	Checkout *RateLimiter
	Contact  *RateLimiter
}

// RouterConfig is everything NewRouter wires together.
type RouterConfig struct {
	Base
	Notifier  notify.Notifier
	BaseURL   string // origin for links in customer notices
	UploadDir string
	StaticDir string
	Limiters  Limiters
}

func limited(rl *RateLimiter, h http.HandlerFunc) http.HandlerFunc {
	if rl == nil {
		return h
	}
	return rl.Middleware(h)
}

// NewRouter builds the application routes. CSRF protection is applied by the caller around the result.
func NewRouter(cfg RouterConfig) http.Handler {
	home := &HomeHandler{Base: cfg.Base}
	shop := &CartHandler{Base: cfg.Base, Notifier: cfg.Notifier, BaseURL: cfg.BaseURL}
	account := &AccountHandler{Base: cfg.Base}
	admin := &AdminHandler{Base: cfg.Base, UploadDir: cfg.UploadDir}
	b := &cfg.Base

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeadersMiddleware)
	r.Use(b.LoadUser)

	if cfg.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.Dir(cfg.StaticDir))))
	}
	if cfg.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	r.Get("/", home.Index)
	r.Get("/products/{id}", home.Details)
	r.Get("/about", home.About)
	r.Get("/service", home.Service)
	r.Get("/contacts", home.Contacts)
	r.Post("/contacts", limited(cfg.Limiters.Contact, home.SendMessage))

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", shop.Index)
		r.Post("/add", shop.Add)
		r.Post("/increment", shop.Increment)
		r.Post("/decrement", shop.Decrement)
		r.Post("/remove", shop.Remove)
		r.Get("/checkout", shop.Checkout)
		r.Post("/checkout", limited(cfg.Limiters.Checkout, shop.PlaceOrder))
		r.Get("/confirmation/{id}", shop.Confirmation)
	})

	r.Route("/account", func(r chi.Router) {
		r.Get("/register", account.RegisterForm)
		r.Post("/register", limited(cfg.Limiters.Auth, account.Register))
		r.Get("/login", account.LoginForm)
		r.Post("/login", limited(cfg.Limiters.Auth, account.Login))
		r.Post("/logout", account.Logout)
		r.With(b.RequireLogin).Get("/orders", account.Orders)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(b.RequireAdmin)
		r.Get("/", admin.Dashboard)

		r.Get("/products", admin.ListProducts)
		r.Get("/products/new", admin.NewProduct)
		r.Post("/products", admin.SaveProduct)
		r.Get("/products/{id}/edit", admin.EditProduct)
		r.Post("/products/{id}/delete", admin.DeleteProduct)

		r.Get("/categories", admin.ListCategories)
		r.Post("/categories", admin.CreateCategory)
		r.Post("/categories/{id}/delete", admin.DeleteCategory)

		r.Get("/orders", admin.ListOrders)
		r.Get("/orders/{id}", admin.OrderDetails)
		r.Post("/orders/{id}/status", admin.UpdateOrderStatus)

		r.Get("/delivery-types", admin.ListDeliveryTypes)
		r.Get("/delivery-types/new", admin.NewDeliveryType)
		r.Post("/delivery-types", admin.SaveDeliveryType)
		r.Get("/delivery-types/{id}/edit", admin.EditDeliveryType)
		r.Post("/delivery-types/{id}/delete", admin.DeleteDeliveryType)

		r.Get("/users", admin.ListUsers)
		r.Get("/users/{id}/edit", admin.EditUser)
		r.Post("/users/{id}", admin.UpdateUser)
		r.Post("/users/{id}/delete", admin.DeleteUser)

		r.Get("/messages", admin.ListMessages)
		r.Post("/messages/{id}/read", admin.MarkMessageRead)
	})

	r.NotFound(b.notFound)
	return r
}
