package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/czy882/sanitary-pads-shop/internal/backend"
	"github.com/czy882/sanitary-pads-shop/internal/service"
	"github.com/czy882/sanitary-pads-shop/internal/token"
	"github.com/czy882/sanitary-pads-shop/pkg/health"
	"github.com/czy882/sanitary-pads-shop/pkg/middleware"
)

// NewRouter creates a chi router with all storefront session routes registered.
func NewRouter(
	store *service.SessionStore,
	catalog backend.CatalogAPI,
	tokens *token.Store,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(store, logger)
	catalogHandler := NewCatalogHandler(catalog, logger)
	sessionHandler := NewSessionHandler(tokens, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/cart", cartHandler.GetCart)
		r.Post("/cart/refresh", cartHandler.Refresh)
		r.Post("/cart/items", cartHandler.AddItem)
		r.Put("/cart/items/{key}", cartHandler.UpdateItem)
		r.Delete("/cart/items/{key}", cartHandler.RemoveItem)
		r.Delete("/cart", cartHandler.Clear)

		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/{ref}", catalogHandler.GetProduct)

		r.Put("/session/token", sessionHandler.SetToken)
		r.Delete("/session/token", sessionHandler.ClearToken)
	})

	return r
}
