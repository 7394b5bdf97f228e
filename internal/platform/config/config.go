package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. All values come from the
// environment so main stays lean.
type Server struct {
	Addr string

	// BootstrapAdmin is the principal installed as administrator on first
	// start. Ignored once an administrator exists.
	BootstrapAdmin string

	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	// PostgresDSN switches persistence from in-memory to Postgres when set.
	PostgresDSN string

	// RedisURL enables the credential verification cache when set.
	RedisURL string
	CacheTTL time.Duration

	// KafkaBrokers enables the event publisher when non-empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("ACADREG_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("ACADREG_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("ACADREG_KAFKA_TOPIC")
	if topic == "" {
		topic = "acadreg.registry.events"
	}

	var brokers []string
	if raw := os.Getenv("ACADREG_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	cacheTTL := 5 * time.Minute
	if raw := os.Getenv("ACADREG_CACHE_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cacheTTL = d
		}
	}

	return Server{
		Addr:           addr,
		BootstrapAdmin: os.Getenv("ACADREG_ADMIN"),
		JWTSigningKey:  jwtSigningKey,
		JWTIssuer:      "acadreg",
		JWTAudience:    "acadreg-api",
		PostgresDSN:    os.Getenv("ACADREG_POSTGRES_DSN"),
		RedisURL:       os.Getenv("ACADREG_REDIS_URL"),
		CacheTTL:       cacheTTL,
		KafkaBrokers:   brokers,
		KafkaTopic:     topic,
	}
}
