// Package config loads process configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the gateway needs at startup.
type Config struct {
	Addr string

	// PolicyPath points at the YAML role definitions. Empty means the
	// compiled-in default personas are used.
	PolicyPath string

	// AuditBackend selects the durable audit store: memory, postgres, redis.
	AuditBackend string
	// AuditBacklog bounds each live subscriber's queue; a subscriber that
	// falls further behind is disconnected rather than blocking producers.
	AuditBacklog int
	// AuditRetention bounds the in-memory store's ring.
	AuditRetention int

	PostgresDSN string
	Redis       RedisConfig
	Kafka       KafkaConfig

	// JWTSigningKey enables bearer-token role extraction when set. The
	// default trust model takes the role from the X-IAM-Role header, already
	// authenticated upstream.
	JWTSigningKey string

	// SearchURL, GenerateURL, and IntegrationsURL locate the external
	// collaborators. Unset collaborators reject calls with a clear error
	// rather than failing startup, so the policy and audit surfaces stay
	// usable in isolation.
	SearchURL       string
	GenerateURL     string
	IntegrationsURL string

	// SearchTimeout and GenerateTimeout bound the external collaborators.
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration
}

// RedisConfig carries connection settings for the optional Redis audit store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig carries settings for the optional Kafka audit sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables with development
// defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("KBGATE_ADDR", ":8080"),
		PolicyPath:      os.Getenv("KBGATE_POLICY_PATH"),
		AuditBackend:    envOr("KBGATE_AUDIT_BACKEND", "memory"),
		AuditBacklog:    envInt("KBGATE_AUDIT_BACKLOG", 256),
		AuditRetention:  envInt("KBGATE_AUDIT_RETENTION", 4096),
		PostgresDSN:     os.Getenv("KBGATE_POSTGRES_DSN"),
		JWTSigningKey:   os.Getenv("KBGATE_JWT_SIGNING_KEY"),
		SearchURL:       os.Getenv("KBGATE_SEARCH_URL"),
		GenerateURL:     os.Getenv("KBGATE_GENERATE_URL"),
		IntegrationsURL: os.Getenv("KBGATE_INTEGRATIONS_URL"),
		SearchTimeout:   envDuration("KBGATE_SEARCH_TIMEOUT", 5*time.Second),
		GenerateTimeout: envDuration("KBGATE_GENERATE_TIMEOUT", 30*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("KBGATE_REDIS_URL"),
			PoolSize:     envInt("KBGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("KBGATE_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("KBGATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("KBGATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("KBGATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}

	if brokers := os.Getenv("KBGATE_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka = KafkaConfig{
			Brokers: splitAndTrim(brokers),
			Topic:   envOr("KBGATE_KAFKA_AUDIT_TOPIC", "kbgate.audit"),
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
