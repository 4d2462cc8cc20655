package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "KAFKA_BROKERS", "TOKEN_TTL", "ACCOUNT_CACHE_TTL", "WEBHOOK_URL", "MIGRATE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.AccountCacheTTL)
	assert.Empty(t, cfg.WebhookURL)
	assert.True(t, cfg.Migrate)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("ACCOUNT_CACHE_TTL", "not-a-duration")
	t.Setenv("MIGRATE", "false")
	t.Setenv("METRICS_ADDR", "")
	t.Setenv("ADMIN_EMAIL", "root@bank.test")
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.AccountCacheTTL)
	assert.False(t, cfg.Migrate)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "root@bank.test", cfg.AdminEmail)
	assert.Equal(t, "s3cret", cfg.AdminPassword)
}
