package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"pethotel/internal/app"
	"pethotel/internal/catalog"
	"pethotel/internal/config"
	"pethotel/internal/handler"
	"pethotel/internal/kafka"
	"pethotel/internal/metrics"
	"pethotel/internal/notify"
	internalRedis "pethotel/internal/redis"
	"pethotel/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	var stores app.Stores
	switch cfg.Store.Driver {
	case "memory":
		stores = app.NewMemoryStores()
		log.Println("Using in-memory stores")
	default:
		db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		stores = app.NewPostgresStores(db)
		log.Println("Connected to PostgreSQL")
	}

	// Redis is optional: without it carts stay in memory and checkouts are
	// only guarded within this process.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		stores = stores.WithRedisCarts(redisClient, cfg.Cart.TTL)
		log.Println("Connected to Redis")
	}

	if cfg.Catalog.Path != "" {
		file, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			log.Fatalf("failed to load catalog: %v", err)
		}
		if err := catalog.Seed(ctx, file, stores.Catalog, stores.Schedules); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
		log.Printf("Catalog loaded from %s", cfg.Catalog.Path)
	}

	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			log.Printf("kafka not reachable yet: %v", err)
		}
		publisher = kafka.RetryingProducer{Producer: producer, MaxRetries: 3}
		log.Printf("Publishing notifications to %s", cfg.Kafka.NotificationsTopic)
	} else {
		publisher = notify.NewDirectPublisher(app.NewDispatcher(cfg.Integration, logger))
		log.Println("Delivering notifications in-process")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	// Wire dependencies.
	server := wireServer(stores, redisClient, publisher, nrApp, registry, recorder, logger, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	stores app.Stores,
	redisClient *redis.Client,
	publisher service.EventPublisher,
	nrApp *newrelic.Application,
	registry *prometheus.Registry,
	recorder *metrics.Recorder,
	logger *slog.Logger,
	cfg *config.Config,
) *http.Server {
	ledgerOpts := []service.LedgerOption{service.WithLedgerMetrics(recorder)}
	var locks internalRedis.LockStoreInterface
	if redisClient != nil {
		ledgerOpts = append(ledgerOpts, service.WithScheduleCache(internalRedis.NewCacheStore(redisClient)))
		locks = internalRedis.NewLockStore(redisClient)
	}

	pricing := service.DefaultPricingConfig()
	pricing.SameCityDistanceKm = cfg.Pricing.SameCityDistanceKm
	if cfg.Pricing.FallbackDistanceKm > 0 {
		pricing.Estimator = service.FixedDistanceEstimator{Km: cfg.Pricing.FallbackDistanceKm}
	}

	// Initialize services.
	ledger := service.NewAvailabilityLedger(stores.Schedules, logger, ledgerOpts...)
	cartService := service.NewCartService(stores.Catalog, ledger, stores.Carts, pricing, recorder, logger)
	notificationService := service.NewNotificationService(publisher, cfg.Kafka.NotificationsTopic, cfg.Integration, recorder, logger)
	gateway := service.NewSimulatedGateway(cfg.Integration.PaymentLatency)
	payments := service.NewPaymentOrchestrator(stores.Payments, gateway, cfg.Integration.PaymentTimeout, recorder, logger)
	finalizer := service.NewOrderFinalizer(ledger, stores.Orders, notificationService, cfg.Integration.MerchantName, logger)
	checkoutService := service.NewCheckoutService(service.NewCheckoutStore(), stores.Carts, payments, finalizer, locks, recorder, logger)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		CatalogHandler:  handler.NewCatalogHandler(stores.Catalog, ledger),
		CartHandler:     handler.NewCartHandler(cartService),
		CheckoutHandler: handler.NewCheckoutHandler(checkoutService, cartService, service.ContextAuthProvider{}),
		OrderHandler:    handler.NewOrderHandler(finalizer),
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
		MetricsGatherer: registry,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
