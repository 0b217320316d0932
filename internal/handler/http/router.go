package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modacart/backend/internal/service"
	"github.com/modacart/backend/pkg/health"
	"github.com/modacart/backend/pkg/middleware"
)

// NewRouter creates a chi router with all cart routes registered. Customer
// identity comes from the gateway-injected headers; admin routes require
// the admin role on top of that.
func NewRouter(
	cartService *service.CartService,
	adminService *service.AdminService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("cart"))
	r.Use(middleware.Tracing("cart"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	cartHandler := NewCartHandler(cartService, adminService, logger)
	removedHandler := NewRemovedCartHandler(adminService, logger)

	r.Route("/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Identity)

		r.Get("/", cartHandler.GetCart)
		r.Post("/add", cartHandler.AddLine)
		r.Put("/update/{id}", cartHandler.UpdateQuantity)
		r.Delete("/remove/{id}", cartHandler.RemoveLine)
		r.Delete("/clear", cartHandler.ClearCart)
		r.Post("/sync", cartHandler.SyncCart)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RoleAdmin))
			r.Get("/all", cartHandler.ListAllCarts)
		})
	})

	r.Route("/removed-cart/admin", func(r chi.Router) {
		r.Use(middleware.Identity)
		r.Use(middleware.RequireRole(middleware.RoleAdmin))

		r.Get("/removed", removedHandler.ListRemovedItems)
	})

	return r
}
