package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	SignerAccount string
	NodeAddr      string
	PostgresDSN   string
	RedisURL      string
	KafkaBrokers  string
	AuditTopic    string
	JWTSigningKey string
	LogLevel      string
}

// ChainCacheTTL bounds how long side-effect-free chain reads may be served
// from cache.
var ChainCacheTTL = 30 * time.Second

// AnchorMaxBytes is the registered-data payload bound enforced by the chain.
var AnchorMaxBytes = 256

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:          envOr("ANCHORID_ADDR", ":8080"),
		SignerAccount: envOr("ANCHORID_SIGNER_ACCOUNT", ""),
		NodeAddr:      envOr("ANCHORID_NODE_ADDR", "localhost:20000"),
		PostgresDSN:   envOr("ANCHORID_POSTGRES_DSN", ""),
		RedisURL:      envOr("ANCHORID_REDIS_URL", ""),
		KafkaBrokers:  envOr("ANCHORID_KAFKA_BROKERS", ""),
		AuditTopic:    envOr("ANCHORID_AUDIT_TOPIC", "anchorid.audit"),
		JWTSigningKey: envOr("ANCHORID_JWT_SIGNING_KEY", ""),
		LogLevel:      envOr("ANCHORID_LOG_LEVEL", "info"),
	}
}

// RedisConfig holds connection tuning for the chain read cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisFromEnv derives cache settings; zero values defer to client defaults.
func RedisFromEnv(url string) RedisConfig {
	return RedisConfig{
		URL:          url,
		PoolSize:     envIntOr("ANCHORID_REDIS_POOL_SIZE", 10),
		MinIdleConns: envIntOr("ANCHORID_REDIS_MIN_IDLE", 2),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
