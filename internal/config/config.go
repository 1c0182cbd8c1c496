package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Postgres  PostgresConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Host           string        `env:"SERVER_HOST" envDefault:"127.0.0.1"`
	Port           int           `env:"SERVER_PORT" envDefault:"5000"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	GinMode        string        `env:"GIN_MODE" envDefault:"release"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownGrace  time.Duration `env:"SERVER_SHUTDOWN_GRACE" envDefault:"10s"`
}

type AuthConfig struct {
	JWTSecret   string `env:"JWT_SECRET"`
	BcryptCost  int    `env:"BCRYPT_COST" envDefault:"12"`
	HashWorkers int    `env:"HASH_WORKERS"`
}

type PostgresConfig struct {
	Driver          string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	Host            string        `env:"PGHOST" envDefault:"localhost"`
	Port            string        `env:"PGPORT" envDefault:"5432"`
	User            string        `env:"PGUSER"`
	Password        string        `env:"PGPASSWORD"`
	Database        string        `env:"PGDATABASE"`
	SSLMode         string        `env:"PGSSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"5"`
	AcquireTimeout  time.Duration `env:"DB_ACQUIRE_TIMEOUT" envDefault:"10s"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type TelemetryConfig struct {
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"incognito-auth"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
}

// Load reads an optional .env file from the working directory and then the
// process environment. Values already present in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Server.AllowedOrigins = trimOrigins(cfg.Server.AllowedOrigins)
	cfg.Postgres.Driver = strings.ToLower(strings.TrimSpace(cfg.Postgres.Driver))
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}
	if c.Auth.HashWorkers < 0 {
		errs = append(errs, errors.New("HASH_WORKERS must not be negative"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port))
	}

	switch c.Postgres.Driver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if c.Postgres.DatabaseURL == "" && (c.Postgres.User == "" || c.Postgres.Database == "") {
			errs = append(errs, errors.New("DATABASE_URL or PGUSER/PGDATABASE is required"))
		}
		if c.Postgres.MaxConns <= 0 || c.Postgres.MinConns < 0 || c.Postgres.MinConns > c.Postgres.MaxConns {
			errs = append(errs, errors.New("DB_MIN_CONNS/DB_MAX_CONNS are inconsistent"))
		}
		if c.Postgres.AcquireTimeout <= 0 {
			errs = append(errs, errors.New("DB_ACQUIRE_TIMEOUT must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Postgres.Driver))
	}

	return errors.Join(errs...)
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func trimOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
