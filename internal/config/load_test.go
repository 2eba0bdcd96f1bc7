package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("does_not_exist")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, "transaction-feed", cfg.Application.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Duration(0), cfg.Server.WriteTimeout)
	assert.Equal(t, TransportMemory, cfg.Notifier.Transport)
	assert.Equal(t, "transactions", cfg.Notifier.Topic)
	assert.Equal(t, 30*time.Second, cfg.Producer.Interval)
	assert.Equal(t, int64(1000), cfg.Producer.MinAmountCents)
	assert.Equal(t, int64(50000), cfg.Producer.MaxAmountCents)
	assert.Equal(t, 5*time.Second, cfg.Stream.PollInterval)
	assert.Equal(t, 50, cfg.Feed.Limit)
	assert.Equal(t, 16, cfg.Fanout.Workers)
	assert.Equal(t, "migrations/postgres", cfg.Postgres.MigrationsPath)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configsDir := filepath.Join(tempDir, "configs")
	require.NoError(t, os.Mkdir(configsDir, 0755))

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nPRODUCER_INTERVAL=%s\nFEED_LIMIT=%d\n",
		"feed-test", 9090, "debug", "10s", 25,
	)
	require.NoError(t, os.WriteFile(filepath.Join(configsDir, "test_server.env"), []byte(envContent), 0644))

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWD) }()
	require.NoError(t, os.Chdir(tempDir))

	cfg, err := LoadConfig("test_server")
	require.NoError(t, err)

	assert.Equal(t, "feed-test", cfg.Application.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10*time.Second, cfg.Producer.Interval)
	assert.Equal(t, 25, cfg.Feed.Limit)

	// Untouched keys keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.Stream.PollInterval)
	assert.Equal(t, TransportMemory, cfg.Notifier.Transport)
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig("does_not_exist")
		require.NoError(t, err)
		return cfg
	}

	t.Run("DefaultsAreValid", func(t *testing.T) {
		cfg := base()
		assert.NoError(t, cfg.validate())
	})

	t.Run("RejectsUnknownTransport", func(t *testing.T) {
		cfg := base()
		cfg.Notifier.Transport = "carrier-pigeon"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NOTIFIER_TRANSPORT")
	})

	t.Run("KafkaTransportRequiresBrokers", func(t *testing.T) {
		cfg := base()
		cfg.Notifier.Transport = TransportKafka
		cfg.Kafka.Brokers = ""
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "KAFKA_BROKERS")
	})

	t.Run("RejectsInvertedAmountRange", func(t *testing.T) {
		cfg := base()
		cfg.Producer.MinAmountCents = 50000
		cfg.Producer.MaxAmountCents = 1000
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PRODUCER_MAX_AMOUNT_CENTS")
	})

	t.Run("RejectsZeroFeedLimit", func(t *testing.T) {
		cfg := base()
		cfg.Feed.Limit = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FEED_LIMIT")
	})

	t.Run("RejectsNegativeWriteTimeout", func(t *testing.T) {
		cfg := base()
		cfg.Server.WriteTimeout = -time.Second
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SERVER_WRITE_TIMEOUT")
	})
}
