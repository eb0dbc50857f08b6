package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "emarket_", cfg.Store.Prefix)
	assert.Equal(t, "memory", cfg.Identity.Provider)
	assert.Equal(t, "auto", cfg.Business.PurchaseVerification)
	assert.Equal(t, 4*time.Second, cfg.Business.NotificationDismiss)
	assert.Zero(t, cfg.Business.UploadDelay)
	assert.Equal(t, int64(150)<<20, cfg.Storage.MaxUploadBytes)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PURCHASE_VERIFICATION", "manual")
	t.Setenv("UPLOAD_DELAY", "1500ms")
	t.Setenv("AUTH_RATE_LIMIT", "0.5")

	cfg := Load()

	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "manual", cfg.Business.PurchaseVerification)
	assert.Equal(t, 1500*time.Millisecond, cfg.Business.UploadDelay)
	assert.Equal(t, 0.5, cfg.Identity.AuthRateLimit)
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	t.Setenv("SESSION_TOKEN_TTL", "forever")

	cfg := Load()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Identity.TokenTTL)
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	cfg := Load()
	assert.Equal(t, DefaultTokenSecret, cfg.Identity.TokenSecret)
	assert.Error(t, cfg.Validate())

	t.Setenv("SESSION_TOKEN_SECRET", "a-real-secret")
	assert.NoError(t, Load().Validate())

	t.Setenv("ENV", "development")
	t.Setenv("SESSION_TOKEN_SECRET", "")
	assert.NoError(t, Load().Validate())
}
