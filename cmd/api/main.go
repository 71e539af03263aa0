package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sajikita/foodcourt-backend/api/routes"
	"github.com/sajikita/foodcourt-backend/internal/events"
	"github.com/sajikita/foodcourt-backend/internal/orders"
	"github.com/sajikita/foodcourt-backend/internal/payments"
	"github.com/sajikita/foodcourt-backend/internal/qrcodes"
	"github.com/sajikita/foodcourt-backend/internal/revenue"
	"github.com/sajikita/foodcourt-backend/internal/settings"
	"github.com/sajikita/foodcourt-backend/internal/settlements"
	"github.com/sajikita/foodcourt-backend/internal/tenants"
	"github.com/sajikita/foodcourt-backend/internal/users"
	"github.com/sajikita/foodcourt-backend/pkg/config"
	"github.com/sajikita/foodcourt-backend/pkg/db"
	"github.com/sajikita/foodcourt-backend/pkg/logger"
	"github.com/sajikita/foodcourt-backend/pkg/metrics"
	"github.com/sajikita/foodcourt-backend/pkg/migrate"
	"github.com/sajikita/foodcourt-backend/pkg/outbox"
	"github.com/sajikita/foodcourt-backend/pkg/redis"
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
	posMetrics := metrics.NewPOSMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	emitter, err := events.NewEmitter(outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create event emitter", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settings.NewRepository(dbClient.DB()), dbClient, settings.NewMemoryCache())
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	revenueService, err := revenue.NewService(settingsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create revenue service", err)
		os.Exit(1)
	}

	tenantsService, err := tenants.NewService(tenants.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create tenants service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.NewRepository(dbClient.DB()), dbClient, emitter, posMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, emitter, tenantsService, paymentsService, posMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	qrService, err := qrcodes.NewService(qrcodes.NewRepository(dbClient.DB()), dbClient, emitter, settingsService, cfg.QR.BaseURL, settings.KeyQRExpiryMinutes, posMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create qr code service", err)
		os.Exit(1)
	}

	settlementsService, err := settlements.NewService(settlements.NewRepository(dbClient.DB()), dbClient, emitter, settingsService, posMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlements service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.NewRepository(dbClient.DB()), cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient.DB(), redisClient, registry, routes.Services{
			Users:       usersService,
			Tenants:     tenantsService,
			Orders:      ordersService,
			Payments:    paymentsService,
			QRCodes:     qrService,
			Settlements: settlementsService,
			Settings:    settingsService,
			Revenue:     revenueService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
