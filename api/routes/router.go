package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/rocketshoes-cart/api/controllers"
	cartcontrollers "github.com/angelmondragon/rocketshoes-cart/api/controllers/cart"
	"github.com/angelmondragon/rocketshoes-cart/api/middleware"
	"github.com/angelmondragon/rocketshoes-cart/pkg/config"
	"github.com/angelmondragon/rocketshoes-cart/pkg/logger"
)

// NewRouter mounts the health, metrics and cart endpoints. storage may be nil
// when the cart is kept in memory.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	cartStore cartcontrollers.Store,
	storage controllers.Pinger,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, storage))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", cartcontrollers.CartFetch(cartStore, logg))
		r.Get("/amounts", cartcontrollers.CartAmounts(cartStore, logg))
		r.Post("/items", cartcontrollers.CartAddItem(cartStore, logg))
		r.Put("/items/{productID}", cartcontrollers.CartUpdateItem(cartStore, logg))
		r.Delete("/items/{productID}", cartcontrollers.CartRemoveItem(cartStore, logg))
	})

	return r
}
