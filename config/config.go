package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	PgDriverPgx = "pgx"
	PgDriverPq  = "pq"

	// DefaultLowStockThreshold is the quantity below which a product is reported as low stock.
	DefaultLowStockThreshold = 5
)

// Config holds the runtime settings of the service and the CLI.
type Config struct {
	Env               string
	HTTPAddr          string
	DBDriver          string
	SQLitePath        string
	PostgresDSN       string
	PgDriver          string
	LowStockThreshold int
	ShutdownTimeout   time.Duration
}

// Load reads an optional env file (existing variables win) and builds a Config
// from the environment. An empty path means ".env" in the working directory.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		Env:               getenv("STOCKROOM_ENV", "development"),
		HTTPAddr:          getenv("STOCKROOM_HTTP_ADDR", ":8080"),
		DBDriver:          strings.ToLower(getenv("STOCKROOM_DB_DRIVER", DriverSQLite)),
		SQLitePath:        getenv("STOCKROOM_SQLITE_PATH", "stockroom.db"),
		PostgresDSN:       getenv("STOCKROOM_POSTGRES_DSN", ""),
		PgDriver:          strings.ToLower(getenv("STOCKROOM_PG_DRIVER", PgDriverPgx)),
		LowStockThreshold: getint("STOCKROOM_LOW_STOCK_THRESHOLD", DefaultLowStockThreshold),
		ShutdownTimeout:   getduration("STOCKROOM_SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the combination of settings is usable.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("STOCKROOM_SQLITE_PATH must not be empty")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("STOCKROOM_POSTGRES_DSN is required for the postgres driver")
		}
		if c.PgDriver != PgDriverPgx && c.PgDriver != PgDriverPq {
			return fmt.Errorf("unknown STOCKROOM_PG_DRIVER %q", c.PgDriver)
		}
	default:
		return fmt.Errorf("unknown STOCKROOM_DB_DRIVER %q", c.DBDriver)
	}
	if c.LowStockThreshold < 0 {
		return errors.New("STOCKROOM_LOW_STOCK_THRESHOLD must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("STOCKROOM_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getduration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
