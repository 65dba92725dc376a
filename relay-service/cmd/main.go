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
	h "github.com/fjod/go_storefront/relay-service/internal/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type Config struct {
	HTTPPort           string
	UpstreamURL        string
	UpstreamTimeout    time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	LogLevel           string
}

func loadConfig() *Config {
	timeout, err := time.ParseDuration(getEnv("RELAY_TIMEOUT", "30s"))
	if err != nil {
		log.Fatalf("Invalid RELAY_TIMEOUT: %v", err)
	}
	return &Config{
		HTTPPort:           getEnv("RELAY_PORT", "8081"),
		UpstreamURL:        getEnv("RELAY_UPSTREAM_URL", ""),
		UpstreamTimeout:    timeout,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 1 << 20, // 1MB
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	if cfg.UpstreamURL == "" {
		log.Fatal("RELAY_UPSTREAM_URL is required")
	}

	lg := logger.New(os.Stdout, logger.Options{Service: "relay-service", Level: cfg.LogLevel})
	slog.SetDefault(lg)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	breaker := circuitbreaker.NewTransport(otelhttp.NewTransport(http.DefaultTransport), circuitbreaker.Options{
		Name: "relay-upstream",
		OnStateChange: func(name string, from, to gobreaker.State) {
			lg.Warn("circuit state changed", slog.String("name", name),
				slog.String("from", from.String()), slog.String("to", to.String()))
		},
	})
	client := &http.Client{Transport: breaker}

	proxy := h.NewProxyHandler(cfg.UpstreamURL, client, cfg.UpstreamTimeout, cfg.MaxRequestBodySize, lg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.RequestIDMiddleware)
	r.Use(h.CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	h.Mount(r, proxy)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "relay"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("relay starting", slog.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down relay")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	lg.Info("relay exited")
}
