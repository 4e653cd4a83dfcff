package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	PostgresDSN     string // empty selects the in-memory stores
	RedisURL        string // empty selects the in-process dispatcher only
	ShutdownTimeout time.Duration
	ConversationMax int // recency window for a single conversation fetch
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("SKILLSWAP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("SKILLSWAP_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development fallback; override in any real deployment.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	shutdown := 10 * time.Second
	if v := os.Getenv("SKILLSWAP_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			shutdown = d
		}
	}

	conversationMax := 50
	if v := os.Getenv("SKILLSWAP_CONVERSATION_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			conversationMax = n
		}
	}

	return Server{
		Addr:            addr,
		JWTSigningKey:   jwtSigningKey,
		PostgresDSN:     os.Getenv("SKILLSWAP_POSTGRES_DSN"),
		RedisURL:        os.Getenv("SKILLSWAP_REDIS_URL"),
		ShutdownTimeout: shutdown,
		ConversationMax: conversationMax,
	}
}
