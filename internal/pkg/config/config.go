package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string        `env:"PORT,        default=8080"`
	Env        string        `env:"ENV,         default=development"`
	JWTSecret  string        `env:"JWT_SECRET"`
	LogLevel   string        `env:"LOG_LEVEL,   default=info"`
	SessionTTL time.Duration `env:"SESSION_TTL, default=24h"`

	QR         QRConfig
	Enrollment EnrollmentConfig
	Mongo      MongoConfig
	Redis      RedisConfig
}

// QRConfig tunes attendance token issuance.
type QRConfig struct {
	TTL       time.Duration `env:"QR_TTL,        default=30s"`
	Methods   []string      `env:"QR_METHODS,    default=fingerprint,otp"`
	RateLimit int           `env:"QR_RATE_LIMIT, default=30"`
}

// EnrollmentConfig carries the enrollment allowlist: only students whose
// institutional id appears here may register.
type EnrollmentConfig struct {
	IDs []string `env:"ENROLLED_IDS, default=42558,39977,39862"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=hostel_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
