package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wardstockhq/wardstock-backend/api/controllers"
	"github.com/wardstockhq/wardstock-backend/api/middleware"
	"github.com/wardstockhq/wardstock-backend/internal/identity"
	"github.com/wardstockhq/wardstock-backend/internal/policy"
	"github.com/wardstockhq/wardstock-backend/internal/store"
	"github.com/wardstockhq/wardstock-backend/pkg/config"
	"github.com/wardstockhq/wardstock-backend/pkg/logger"
	"github.com/wardstockhq/wardstock-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface over the resolved dependencies.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	resolver *identity.Resolver,
	guard *policy.Guard,
	syncStore *store.Store,
	metricsRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Get("/readyz", controllers.HealthReady(cfg, redisClient, logg))
	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/manual", controllers.ManualLogin(resolver, cfg.JWT, logg))
			r.Post("/platform", controllers.PlatformLogin(resolver, cfg.Platform, cfg.JWT, logg))
			r.Post("/logout", controllers.Logout(resolver, cfg.Platform, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Get("/me", controllers.Me(logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/products", controllers.ListProducts(syncStore, logg))
			r.Post("/products/refresh", controllers.RefreshProducts(syncStore, logg))
			r.Get("/transactions", controllers.ListTransactions(syncStore, logg))
			r.Get("/dashboard", controllers.Dashboard(syncStore, logg))

			r.Post("/stock/withdraw", controllers.Withdraw(syncStore, logg))
			r.Post("/stock/withdraw/batch", controllers.BatchWithdraw(syncStore, logg))
			r.Post("/stock/receive", controllers.Receive(syncStore, logg))
			r.Post("/stock/return", controllers.Return(syncStore, logg))

			// Catalog management sits behind the allow-list policy.
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminGuard(guard, logg))
				r.Post("/products", controllers.CreateProduct(syncStore, logg))
				r.Put("/products/{code}", controllers.UpdateProduct(syncStore, logg))
				r.Delete("/products/{code}", controllers.DeleteProduct(syncStore, logg))
			})
		})
	})

	return r
}
