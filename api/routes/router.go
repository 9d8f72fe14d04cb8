package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swiftbasket/swiftbasket-backend/api/controllers"
	"github.com/swiftbasket/swiftbasket-backend/api/middleware"
	"github.com/swiftbasket/swiftbasket-backend/internal/dispatch"
	"github.com/swiftbasket/swiftbasket-backend/internal/fulfillment"
	"github.com/swiftbasket/swiftbasket-backend/internal/wallet"
	"github.com/swiftbasket/swiftbasket-backend/pkg/config"
	"github.com/swiftbasket/swiftbasket-backend/pkg/db"
	"github.com/swiftbasket/swiftbasket-backend/pkg/logger"
	pkgredis "github.com/swiftbasket/swiftbasket-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	registry *prometheus.Registry,
	fulfillmentService fulfillment.Service,
	walletService wallet.Service,
	notifier *dispatch.Notifier,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.PlaceOrder(fulfillmentService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(fulfillmentService, logg))
		})

		r.Route("/dispatch/orders/{orderId}", func(r chi.Router) {
			r.Post("/accept", controllers.DispatchAccept(notifier, logg))
			r.Post("/reject", controllers.DispatchReject(notifier, logg))
		})

		r.Route("/wallet/{customerId}", func(r chi.Router) {
			r.Get("/balance", controllers.WalletBalance(walletService, logg))
			r.Post("/topup", controllers.WalletTopUp(walletService, logg))
		})
	})

	return r
}
