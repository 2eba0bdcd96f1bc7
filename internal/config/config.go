// Package config provides configuration structures and validation for the
// application. Settings are environment-based and cover the HTTP server, the
// transaction store, the notifier transport, and the background loops.
package config

import (
	"errors"
	"strings"
	"time"
)

// Notifier transports.
const (
	TransportMemory = "memory"
	TransportKafka  = "kafka"
)

// Config holds the complete application configuration. Each field represents
// one subsystem and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Postgres    PostgresConfig
	Notifier    NotifierConfig
	Kafka       KafkaConfig
	Producer    ProducerConfig
	Stream      StreamConfig
	Feed        FeedConfig
	Fanout      FanoutConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Zero disables the limit; the event stream holds connections open indefinitely
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Minimum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// NotifierConfig selects the fan-out transport and its topic
type NotifierConfig struct {
	Transport string // "memory" or "kafka"
	Topic     string
}

// KafkaConfig contains Kafka configuration, used when the notifier transport
// is "kafka"
type KafkaConfig struct {
	Brokers           string
	NumPartitions     int
	ReplicationFactor int
	GroupPrefix       string // Per-subscription consumer groups are derived from this
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
}

// ProducerConfig contains the periodic transaction generator configuration
type ProducerConfig struct {
	Interval       time.Duration
	MinAmountCents int64 // Inclusive lower bound of the generated amount
	MaxAmountCents int64 // Inclusive upper bound of the generated amount
}

// StreamConfig contains the long-lived pull endpoint configuration
type StreamConfig struct {
	PollInterval time.Duration
}

// FeedConfig bounds the server-held feed of recent transactions
type FeedConfig struct {
	Limit int
}

// FanoutConfig sizes the in-memory broker
type FanoutConfig struct {
	Workers int // Delivery worker pool size
	Buffer  int // Per-subscriber event buffer
}

// validate checks all configuration values against their minimum
// requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout < 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must not be negative")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	switch c.Notifier.Transport {
	case TransportMemory:
	case TransportKafka:
		if len(c.Kafka.Brokers) == 0 {
			validationErrors = append(validationErrors, "KAFKA_BROKERS is required for the kafka transport")
		}
		if c.Kafka.GroupPrefix == "" {
			validationErrors = append(validationErrors, "KAFKA_GROUP_PREFIX is required for the kafka transport")
		}
		if c.Kafka.MinBytes <= 0 {
			validationErrors = append(validationErrors, "KAFKA_MIN_BYTES must be greater than 0")
		}
		if c.Kafka.MaxBytes <= 0 {
			validationErrors = append(validationErrors, "KAFKA_MAX_BYTES must be greater than 0")
		}
		if c.Kafka.MaxWait <= 0 {
			validationErrors = append(validationErrors, "KAFKA_MAX_WAIT must be greater than 0")
		}
	default:
		validationErrors = append(validationErrors, "NOTIFIER_TRANSPORT must be \"memory\" or \"kafka\"")
	}
	if c.Notifier.Topic == "" {
		validationErrors = append(validationErrors, "NOTIFIER_TOPIC is required")
	}

	if c.Producer.Interval <= 0 {
		validationErrors = append(validationErrors, "PRODUCER_INTERVAL must be greater than 0")
	}
	if c.Producer.MinAmountCents <= 0 {
		validationErrors = append(validationErrors, "PRODUCER_MIN_AMOUNT_CENTS must be greater than 0")
	}
	if c.Producer.MaxAmountCents < c.Producer.MinAmountCents {
		validationErrors = append(validationErrors, "PRODUCER_MAX_AMOUNT_CENTS must not be less than PRODUCER_MIN_AMOUNT_CENTS")
	}

	if c.Stream.PollInterval <= 0 {
		validationErrors = append(validationErrors, "STREAM_POLL_INTERVAL must be greater than 0")
	}

	if c.Feed.Limit <= 0 {
		validationErrors = append(validationErrors, "FEED_LIMIT must be greater than 0")
	}

	if c.Fanout.Workers <= 0 {
		validationErrors = append(validationErrors, "FANOUT_WORKERS must be greater than 0")
	}
	if c.Fanout.Buffer <= 0 {
		validationErrors = append(validationErrors, "FANOUT_BUFFER must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
