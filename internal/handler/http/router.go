package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/pkg/health"
	"github.com/dungpham-npc/storefront/pkg/middleware"
)

// PublicRoutes are reachable without a bearer token. Preflight OPTIONS
// requests are always public.
var PublicRoutes = []middleware.PublicRoute{
	{Method: http.MethodPost, Prefix: "/api/v1/users/login"},
	{Method: http.MethodPost, Prefix: "/api/v1/users/register"},
	{Method: http.MethodGet, Prefix: "/api/v1/products"},
	{Method: http.MethodGet, Prefix: "/api/v1/categories"},
	{Method: http.MethodGet, Prefix: "/health/"},
	{Method: http.MethodGet, Prefix: "/metrics"},
}

// Services groups the business services behind the routes.
type Services struct {
	Auth       AuthService
	Users      UserService
	Recipients RecipientService
	Categories CategoryService
	Products   ProductService
	Cart       CartService
}

// RouterConfig carries the cross-cutting pieces of the router. Nil optional
// fields are skipped.
type RouterConfig struct {
	Validate       middleware.TokenValidator
	Health         *health.Handler
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	CORS           middleware.CORSConfig
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with every storefront route registered
// under /api/v1.
func NewRouter(svc Services, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Handler)
	}
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Handler)
	}
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Auth(cfg.Validate, PublicRoutes, logger))

	// Health check endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Live)
		r.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	authHandler := NewAuthHandler(svc.Auth, logger)
	userHandler := NewUserHandler(svc.Users, svc.Recipients, logger)
	productHandler := NewProductHandler(svc.Products, logger)
	categoryHandler := NewCategoryHandler(svc.Categories, logger)
	cartHandler := NewCartHandler(svc.Cart, logger)
	adminHandler := NewAdminHandler(svc.Users, svc.Products, svc.Categories, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)

			r.Get("/me", userHandler.GetProfile)
			r.Put("/me", userHandler.UpdateProfile)
			r.Put("/me/password", authHandler.ChangePassword)

			r.Get("/me/recipients", userHandler.ListRecipients)
			r.Post("/me/recipients", userHandler.AddRecipient)
			r.Put("/me/recipients/{id}", userHandler.UpdateRecipient)
			r.Delete("/me/recipients/{id}", userHandler.DeleteRecipient)
			r.Put("/me/recipients/{id}/default", userHandler.SetDefaultRecipient)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/featured", productHandler.FeaturedProducts)
			r.Get("/search", productHandler.SearchProducts)
			r.Get("/{id}", productHandler.GetProduct)
			r.Post("/{id}/ratings", productHandler.RateProduct)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.ListCategories)
			r.Get("/{id}", categoryHandler.GetCategory)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{itemId}", cartHandler.UpdateItem)
			r.Delete("/items/{itemId}", cartHandler.RemoveItem)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logger, domain.Authority(domain.RoleAdmin)))

			r.Get("/roles", adminHandler.ListRoles)

			r.Get("/users", adminHandler.ListUsers)
			r.Post("/users", adminHandler.CreateUser)
			r.Get("/users/{id}", adminHandler.GetUser)
			r.Put("/users/{id}", adminHandler.UpdateUser)
			r.Delete("/users/{id}", adminHandler.DeactivateUser)

			r.Get("/products", adminHandler.ListProducts)
			r.Post("/products", adminHandler.CreateProduct)
			r.Get("/products/export", adminHandler.ExportProducts)
			r.Post("/products/reindex", adminHandler.ReindexProducts)
			r.Put("/products/{id}", adminHandler.UpdateProduct)
			r.Delete("/products/{id}", adminHandler.DeleteProduct)
			r.Post("/products/{id}/images", adminHandler.UploadImage)
			r.Delete("/products/{id}/images/{imageId}", adminHandler.DeleteImage)
			r.Put("/products/{id}/images/{imageId}/thumbnail", adminHandler.SetThumbnail)

			r.Get("/categories", adminHandler.ListCategories)
			r.Post("/categories", adminHandler.CreateCategory)
			r.Put("/categories/{id}", adminHandler.UpdateCategory)
			r.Delete("/categories/{id}", adminHandler.DeleteCategory)
		})
	})

	return r
}
