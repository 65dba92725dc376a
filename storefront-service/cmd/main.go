package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_storefront/pkg/circuitbreaker"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/fjod/go_storefront/storefront-service/internal/cache"
	"github.com/fjod/go_storefront/storefront-service/internal/checkout"
	"github.com/fjod/go_storefront/storefront-service/internal/config"
	h "github.com/fjod/go_storefront/storefront-service/internal/http"
	"github.com/fjod/go_storefront/storefront-service/internal/payment"
	"github.com/fjod/go_storefront/storefront-service/internal/publisher"
	"github.com/fjod/go_storefront/storefront-service/internal/remote"
	"github.com/fjod/go_storefront/storefront-service/internal/repository"
	"github.com/fjod/go_storefront/storefront-service/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	lg := logger.New(os.Stdout, logger.Options{Service: "storefront-service", Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(lg)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	lg.Info("redis ping succeeded", slog.String("addr", cfg.Redis.Addr))

	// Backend client: otel spans inside a circuit breaker.
	breaker := circuitbreaker.NewTransport(otelhttp.NewTransport(http.DefaultTransport), circuitbreaker.Options{
		Name:              "storefront-backend",
		CountServerErrors: true,
		OnStateChange: func(name string, from, to gobreaker.State) {
			lg.Warn("circuit state changed", slog.String("name", name),
				slog.String("from", from.String()), slog.String("to", to.String()))
		},
	})
	backendClient := &http.Client{Transport: breaker, Timeout: cfg.Backend.Timeout}

	transport, err := remote.NewTransport(cfg.Backend.Mode, cfg.Backend.URL, backendClient)
	if err != nil {
		log.Fatalf("Failed to create backend transport: %v", err)
	}
	public := remote.NewClient(transport, nil, nil)
	sessions := remote.NewRedisSessionClients(transport, redisClient, cfg.Redis.SessionTTL)

	carts := service.NewCartService(cache.NewRedisCache(redisClient, cfg.Redis.CartTTL), lg)
	go carts.RunJanitor(ctx, time.Minute, cfg.Redis.IdleEviction)

	var gate payment.Gate
	switch cfg.Payment.Provider {
	case "reference":
		lg.Warn("payment references are not verified")
		gate = payment.ReferenceGate{}
	default:
		paystackClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport), Timeout: cfg.Backend.Timeout}
		gate = payment.NewPaystackGate(cfg.Payment.BaseURL, cfg.Payment.SecretKey, paystackClient, lg)
	}

	var ledger checkout.Ledger
	if cfg.Ledger.Driver != "" {
		repo, err := repository.NewRepository(cfg.Ledger.Driver, cfg.Ledger.DSN)
		if err != nil {
			log.Fatalf("Failed to open ledger: %v", err)
		}
		defer repo.Close()
		if err := repo.RunMigrations(); err != nil {
			log.Fatalf("Failed to migrate ledger: %v", err)
		}
		ledger = repo
		lg.Info("checkout ledger ready", slog.String("driver", cfg.Ledger.Driver))

		if len(cfg.Kafka.Brokers) > 0 {
			poller := publisher.NewOutboxPoller(repo, publisher.NewKafkaWriter(cfg.Kafka.Topic, cfg.Kafka.Brokers...), lg)
			defer poller.Close()
			go poller.Run(ctx)
			lg.Info("outbox poller started", slog.Any("brokers", cfg.Kafka.Brokers))
		}
	}

	co := checkout.NewService(public, gate, ledger, cfg.Payment.Currency, lg)

	timeout := cfg.HTTP.RequestTimeout
	router := h.NewRouter(h.Handlers{
		Cart:     h.NewCartHandler(carts, timeout, lg),
		Products: h.NewProductHandler(public, timeout),
		Checkout: h.NewCheckoutHandler(carts, co, timeout, lg),
		Vendor:   h.NewVendorHandler(sessions, timeout),
		Admin:    h.NewAdminHandler(sessions, timeout),
	}, h.RouterOptions{
		RequestTimeout:     timeout,
		MaxRequestBodySize: cfg.HTTP.MaxRequestBodySize,
		SessionTTL:         cfg.Redis.SessionTTL,
		SecureCookies:      cfg.HTTP.SecureCookies,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("storefront starting", slog.String("port", cfg.HTTP.Port), slog.String("backend_mode", cfg.Backend.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down storefront")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	lg.Info("storefront exited")
}
