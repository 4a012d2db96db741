// Package config builds process configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Postgres captures the registry / ledger database configuration.
type Postgres struct {
	URL string
}

// Redis captures the optional API key cache configuration.
// An empty URL disables the cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	KeyCacheTTL  time.Duration
}

// Kafka captures the optional audit event publisher configuration.
// Empty brokers disable publishing; the postgres ledger stays authoritative.
type Kafka struct {
	Brokers []string
	Topic   string
}

// AI captures embedding provider and arbitration model configuration.
type AI struct {
	BaseURL        string
	Token          string
	EmbeddingModel string
	ChatModel      string
	CallTimeout    time.Duration
}

// Resolution captures the tunables of the resolution pipeline.
type Resolution struct {
	SimilarityThreshold float64
	CandidateLimit      int
	RateLimitWindow     time.Duration
	RateLimitTimeout    time.Duration
}

// Config aggregates all process configuration.
type Config struct {
	Server     Server
	Postgres   Postgres
	Redis      Redis
	Kafka      Kafka
	AI         AI
	Resolution Resolution
}

// FromEnv builds a Config from STEEPLE_* environment variables with
// development defaults.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: envOr("STEEPLE_ADDR", ":8080"),
		},
		Postgres: Postgres{
			URL: envOr("STEEPLE_POSTGRES_URL", "postgres://localhost:5432/steeple?sslmode=disable"),
		},
		Redis: Redis{
			URL:          os.Getenv("STEEPLE_REDIS_URL"),
			PoolSize:     envInt("STEEPLE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("STEEPLE_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("STEEPLE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("STEEPLE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("STEEPLE_REDIS_WRITE_TIMEOUT", 3*time.Second),
			KeyCacheTTL:  envDuration("STEEPLE_KEY_CACHE_TTL", time.Minute),
		},
		Kafka: Kafka{
			Brokers: splitNonEmpty(os.Getenv("STEEPLE_KAFKA_BROKERS")),
			Topic:   envOr("STEEPLE_KAFKA_AUDIT_TOPIC", "steeple.resolutions"),
		},
		AI: AI{
			BaseURL:        os.Getenv("STEEPLE_OPENAI_BASE_URL"),
			Token:          os.Getenv("STEEPLE_OPENAI_API_KEY"),
			EmbeddingModel: envOr("STEEPLE_EMBEDDING_MODEL", "text-embedding-3-small"),
			ChatModel:      envOr("STEEPLE_CHAT_MODEL", "gpt-4o-mini"),
			CallTimeout:    envDuration("STEEPLE_AI_TIMEOUT", 15*time.Second),
		},
		Resolution: Resolution{
			SimilarityThreshold: envFloat("STEEPLE_SIMILARITY_THRESHOLD", 0.5),
			CandidateLimit:      envInt("STEEPLE_CANDIDATE_LIMIT", 5),
			RateLimitWindow:     envDuration("STEEPLE_RATELIMIT_WINDOW", time.Minute),
			RateLimitTimeout:    envDuration("STEEPLE_RATELIMIT_TIMEOUT", 2*time.Second),
		},
	}
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
