package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"schemabrowser/internal/classification"
	"schemabrowser/internal/database"
	"schemabrowser/internal/utils"
)

// Config holds the application configuration.
type Config struct {
	Port               string
	Database           database.Options
	Schema             string
	QueryTimeout       time.Duration
	CountConcurrency   int
	ClassificationFile string
	CORSOrigins        []string
	SeedDemo           bool
}

// Load reads configuration from a .env file and the environment.
func Load() (*Config, error) {
	return LoadWith(os.Getenv)
}

// LoadWith loads the .env file and then reads variables through getenv.
func LoadWith(getenv func(string) string) (*Config, error) {
	// Load .env file if it exists (silently ignore if missing)
	_ = godotenv.Load()
	return FromEnv(getenv)
}

// FromEnv builds the configuration from a variable lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:               get("PORT", "8080"),
		Schema:             get("DB_SCHEMA", "public"),
		ClassificationFile: getenv("CLASSIFICATION_FILE"),
		CORSOrigins:        utils.SplitList(get("CORS_ORIGINS", "*")),
	}

	driver := get("DB_DRIVER", database.DriverPostgres)
	switch driver {
	case database.DriverPostgres:
		url := getenv("DATABASE_URL")
		if url == "" {
			host := getenv("DB_HOST")
			if host == "" {
				return nil, fmt.Errorf("DATABASE_URL or DB_HOST environment variable is required")
			}
			url = database.PostgresURL(
				host,
				get("DB_PORT", "5432"),
				getenv("DB_USERNAME"),
				getenv("DB_PASSWORD"),
				get("DB_DATABASE", "postgres"),
				getenv("DB_SSLMODE"),
			)
		}
		cfg.Database = database.Options{Driver: driver, URL: url}
	case database.DriverSQLite:
		cfg.Database = database.Options{Driver: driver, SQLitePath: get("SQLITE_PATH", "browser.db")}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	if v := getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid DB_MAX_CONNS %q", v)
		}
		cfg.Database.MaxConns = int32(n)
	}

	timeout, err := time.ParseDuration(get("QUERY_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUERY_TIMEOUT: %w", err)
	}
	cfg.QueryTimeout = timeout

	concurrency, err := strconv.Atoi(get("COUNT_CONCURRENCY", "8"))
	if err != nil || concurrency <= 0 {
		return nil, fmt.Errorf("invalid COUNT_CONCURRENCY %q", getenv("COUNT_CONCURRENCY"))
	}
	cfg.CountConcurrency = concurrency

	if v := getenv("SEED_DEMO"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_DEMO: %w", err)
		}
		cfg.SeedDemo = seed
	}

	return cfg, nil
}

// Policy loads the classification file, or returns an empty policy when
// none is configured.
func (c *Config) Policy() (*classification.Policy, error) {
	if c.ClassificationFile == "" {
		return classification.Empty(), nil
	}
	return classification.LoadFile(c.ClassificationFile)
}
