package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "modacart", cfg.MongoDatabase)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, 300, cfg.CatalogCacheTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidSampleRate(t *testing.T) {
	t.Setenv("TRACE_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "trace sample rate")
}

func TestLoad_NegativeCacheTTL(t *testing.T) {
	t.Setenv("CATALOG_CACHE_TTL_SECONDS", "-1")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "catalog cache TTL")
}

func TestLoad_CustomMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://mongo.prod:27017")
	t.Setenv("MONGO_DATABASE", "modacart_prod")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "mongodb://mongo.prod:27017", cfg.MongoURI)
	assert.Equal(t, "modacart_prod", cfg.MongoDatabase)
}

func TestLoad_MultipleKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}
