// Package config loads storefront settings from an optional YAML file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const ConfigPathEnv = "STOREFRONT_CONFIG"

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Redis   RedisConfig   `yaml:"redis"`
	Backend BackendConfig `yaml:"backend"`
	Payment PaymentConfig `yaml:"payment"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Log     LogConfig     `yaml:"log"`
}

type HTTPConfig struct {
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`
	SecureCookies      bool          `yaml:"secure_cookies"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// CartTTL is the base lifetime of a cart snapshot.
	CartTTL time.Duration `yaml:"cart_ttl"`
	// SessionTTL is the lifetime of stored tokens and vendor profiles.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// IdleEviction drops in-memory carts unused for this long.
	IdleEviction time.Duration `yaml:"idle_eviction"`
}

type BackendConfig struct {
	// Mode is "action" (envelope through the relay) or "rest".
	Mode    string        `yaml:"mode"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type PaymentConfig struct {
	// Provider is "paystack" or "reference" (trust any reference; dev only).
	Provider  string `yaml:"provider"`
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"`
	Currency  string `yaml:"currency"`
}

type LedgerConfig struct {
	// Driver is empty (no ledger), "postgres" or "sqlite".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:               "8080",
			RequestTimeout:     30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			MaxRequestBodySize: 1 << 20, // 1MB
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			CartTTL:      24 * time.Hour,
			SessionTTL:   7 * 24 * time.Hour,
			IdleEviction: 30 * time.Minute,
		},
		Backend: BackendConfig{
			Mode:    "action",
			Timeout: 15 * time.Second,
		},
		Payment: PaymentConfig{
			Provider: "paystack",
			Currency: "NGN",
		},
		Kafka: KafkaConfig{
			Topic: "storefront-checkouts",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load starts from Default, applies the YAML file named by STOREFRONT_CONFIG
// when set, then environment overrides, and validates the result.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := loadFile(filepath.Clean(path), &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTP.Port = getEnv("HTTP_PORT", cfg.HTTP.Port)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Backend.Mode = getEnv("BACKEND_MODE", cfg.Backend.Mode)
	cfg.Backend.URL = getEnv("BACKEND_URL", cfg.Backend.URL)
	cfg.Backend.Timeout = getEnvDuration("BACKEND_TIMEOUT", cfg.Backend.Timeout)
	cfg.Payment.Provider = getEnv("PAYMENT_PROVIDER", cfg.Payment.Provider)
	cfg.Payment.SecretKey = getEnv("PAYSTACK_SECRET_KEY", cfg.Payment.SecretKey)
	cfg.Payment.BaseURL = getEnv("PAYSTACK_BASE_URL", cfg.Payment.BaseURL)
	cfg.Payment.Currency = getEnv("CURRENCY", cfg.Payment.Currency)
	cfg.Ledger.Driver = getEnv("LEDGER_DRIVER", cfg.Ledger.Driver)
	cfg.Ledger.DSN = getEnv("LEDGER_DSN", cfg.Ledger.DSN)
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", cfg.Kafka.Topic)
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
}

var (
	ErrMissingBackendURL = errors.New("backend url is required")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

func (c Config) Validate() error {
	var errs []error

	if c.Backend.URL == "" {
		errs = append(errs, ErrMissingBackendURL)
	}
	switch strings.ToLower(c.Backend.Mode) {
	case "action", "rest":
	default:
		errs = append(errs, fmt.Errorf("%w: backend mode %q", ErrInvalidConfig, c.Backend.Mode))
	}

	switch c.Payment.Provider {
	case "paystack":
		if c.Payment.SecretKey == "" {
			errs = append(errs, fmt.Errorf("%w: paystack requires a secret key", ErrInvalidConfig))
		}
	case "reference":
	default:
		errs = append(errs, fmt.Errorf("%w: payment provider %q", ErrInvalidConfig, c.Payment.Provider))
	}

	switch c.Ledger.Driver {
	case "":
	case "postgres", "sqlite":
		if c.Ledger.DSN == "" {
			errs = append(errs, fmt.Errorf("%w: ledger %s requires a dsn", ErrInvalidConfig, c.Ledger.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: ledger driver %q", ErrInvalidConfig, c.Ledger.Driver))
	}

	if len(c.Kafka.Brokers) > 0 && c.Ledger.Driver == "" {
		errs = append(errs, fmt.Errorf("%w: kafka publishing requires a ledger", ErrInvalidConfig))
	}
	if c.HTTP.MaxRequestBodySize <= 0 {
		errs = append(errs, fmt.Errorf("%w: max request body size must be positive", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
