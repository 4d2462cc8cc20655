package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	MetricsAddr     string
	PostgresDSN     string
	RedisAddr       string
	KafkaBrokers    []string
	EventsTopic     string
	EventsGroupID   string
	WebhookURL      string
	JWTSecret       string
	TokenTTL        time.Duration
	AccountCacheTTL time.Duration
	OTLPEndpoint    string
	ServiceName     string
	Migrate         bool
	AdminEmail      string
	AdminPassword   string
	LogLevel        slog.Level
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using default values", "error", err)
	}

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		PostgresDSN:     getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=bank sslmode=disable"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		EventsTopic:     getEnv("EVENTS_TOPIC", "ledger-events"),
		EventsGroupID:   getEnv("EVENTS_GROUP_ID", "bank-backoffice-webhook"),
		WebhookURL:      os.Getenv("WEBHOOK_URL"),
		JWTSecret:       getEnv("JWT_SECRET", "supersecret"),
		TokenTTL:        getDuration("TOKEN_TTL", time.Hour),
		AccountCacheTTL: getDuration("ACCOUNT_CACHE_TTL", 30*time.Second),
		OTLPEndpoint:    os.Getenv("OTLP_ENDPOINT"),
		ServiceName:     getEnv("SERVICE_NAME", "bank-backoffice"),
		Migrate:         getEnv("MIGRATE", "true") == "true",
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		LogLevel:        slog.LevelInfo,
	}
	if _, ok := os.LookupEnv("METRICS_ADDR"); !ok {
		cfg.MetricsAddr = ":9090"
	}
	if getEnv("LOG_LEVEL", "info") == "debug" {
		cfg.LogLevel = slog.LevelDebug
	}

	slog.Info("config loaded",
		"http_addr", cfg.HTTPAddr,
		"redis_addr", cfg.RedisAddr,
		"kafka_brokers", cfg.KafkaBrokers,
		"events_topic", cfg.EventsTopic,
		"webhook_enabled", cfg.WebhookURL != "")
	return cfg
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
