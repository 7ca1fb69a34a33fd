package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Log         Log
	HTTP        HTTPServer
	GRPC        GRPCServer

	Catalog Catalog `envPrefix:"CATALOG_"`
	Geo     Geo     `envPrefix:"GEO_"`
	Auth    Auth    `envPrefix:"AUTH_"`
	Payment Payment `envPrefix:"PAYMENT_"`
	Session Session `envPrefix:"SESSION_"`
	Ledger  Ledger  `envPrefix:"LEDGER_"`
	Kafka   Kafka   `envPrefix:"KAFKA_"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host            string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"HTTP_MAX_BODY_BYTES" envDefault:"1048576"`
}

type GRPCServer struct {
	Port string `env:"GRPC_PORT" envDefault:"50051"`
}

type Catalog struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://fakestoreapi.in/api"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Geo struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	BaseURL string        `env:"BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

type Auth struct {
	// JWTSecret signs the HS256 bearer tokens that identify users.
	JWTSecret string `env:"JWT_SECRET"`
	Issuer    string `env:"ISSUER"`

	// TokenTTL is the lifetime of tokens minted by "storefront token".
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

type Payment struct {
	Latency time.Duration `env:"LATENCY" envDefault:"3s"`
}

type Session struct {
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"30m"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1m"`
}

type Ledger struct {
	Backend string `env:"BACKEND" envDefault:"sqlite"`

	SQLitePath     string `env:"SQLITE_PATH" envDefault:"storefront.db"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"internal/storage/migrations"`

	Postgres Postgres `envPrefix:"POSTGRES_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Mongo    Mongo    `envPrefix:"MONGO_"`
}

type Postgres struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"storefront"`
	Password string `env:"PASSWORD"`
	DBName   string `env:"DB" envDefault:"storefront"`
}

type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"PREFIX" envDefault:"storefront:"`
}

type Mongo struct {
	URI      string `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"DATABASE" envDefault:"storefront"`
}

type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"storefront-orders"`
}

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse(env.Options{})
}

func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case BackendMemory, BackendSQLite, BackendPostgres, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend)
	}
	if c.Payment.Latency < 0 {
		return fmt.Errorf("payment latency must not be negative")
	}
	return nil
}

// KafkaEnabled reports whether order events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
