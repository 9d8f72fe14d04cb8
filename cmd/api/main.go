package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/swiftbasket/swiftbasket-backend/api/routes"
	"github.com/swiftbasket/swiftbasket-backend/internal/catalog"
	"github.com/swiftbasket/swiftbasket-backend/internal/couriers"
	"github.com/swiftbasket/swiftbasket-backend/internal/customers"
	"github.com/swiftbasket/swiftbasket-backend/internal/dispatch"
	"github.com/swiftbasket/swiftbasket-backend/internal/fulfillment"
	"github.com/swiftbasket/swiftbasket-backend/internal/inventory"
	"github.com/swiftbasket/swiftbasket-backend/internal/orders"
	"github.com/swiftbasket/swiftbasket-backend/internal/wallet"
	"github.com/swiftbasket/swiftbasket-backend/pkg/config"
	"github.com/swiftbasket/swiftbasket-backend/pkg/db"
	"github.com/swiftbasket/swiftbasket-backend/pkg/logger"
	"github.com/swiftbasket/swiftbasket-backend/pkg/metrics"
	"github.com/swiftbasket/swiftbasket-backend/pkg/migrate"
	"github.com/swiftbasket/swiftbasket-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	fulfillmentMetrics := metrics.NewFulfillmentMetrics(registry)

	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	walletService, err := wallet.NewService(dbClient, wallet.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	publisher, err := dispatch.NewRedisPublisher(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch publisher", err)
		os.Exit(1)
	}

	notifier, err := dispatch.NewNotifier(publisher, ordersService, cfg.Dispatch, logg, fulfillmentMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch notifier", err)
		os.Exit(1)
	}

	scope, err := fulfillment.NewGormScope(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create transaction scope", err)
		os.Exit(1)
	}

	fulfillmentService, err := fulfillment.NewService(
		scope,
		customers.NewRepository(dbClient.DB()),
		catalog.NewRepository(dbClient.DB()),
		inventoryService,
		walletService,
		ordersService,
		couriers.NewRepository(dbClient.DB()),
		notifier,
		cfg.Fees,
		logg,
		fulfillmentMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			fulfillmentService,
			walletService,
			notifier,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
