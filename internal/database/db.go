package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options describes how to reach the browsed database.
type Options struct {
	Driver          string
	URL             string
	SQLitePath      string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// PostgresURL builds a postgres:// URL, encoding the credentials.
func PostgresURL(host, port, user, password, database, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	userInfo := url.UserPassword(user, password)
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=%s",
		userInfo.String(),
		host,
		port,
		url.PathEscape(database),
		sslmode,
	)
}

// Open connects according to opts and returns a ready Querier.
func Open(ctx context.Context, opts Options) (Querier, error) {
	switch opts.Driver {
	case DriverPostgres, "":
		pool, err := ConnectPostgres(ctx, opts)
		if err != nil {
			return nil, err
		}
		return NewPgxQuerier(pool), nil
	case DriverSQLite:
		db, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		q := NewSQLQuerier(db, DriverSQLite)
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(opts))
		defer cancel()
		if err := q.Ping(pingCtx); err != nil {
			q.Close()
			return nil, fmt.Errorf("failed to open sqlite database %s: %w", opts.SQLitePath, err)
		}
		log.Printf("Opened sqlite database %s (%s driver)", opts.SQLitePath, sqliteDriverType)
		return q, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// ConnectPostgres creates a pgx pool and verifies it with a ping.
func ConnectPostgres(ctx context.Context, opts Options) (*pgxpool.Pool, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("database URL is required for the postgres driver")
	}

	config, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string (check your .env file): %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 0
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		config.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	log.Printf("Connecting to database: postgres://%s:***@%s:%d/%s",
		config.ConnConfig.User, config.ConnConfig.Host, config.ConnConfig.Port, config.ConnConfig.Database)

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(opts))
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection pool established successfully")
	return pool, nil
}

// OpenSQLite opens a SQLite database file with foreign keys enforced.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required for the sqlite driver")
	}
	db, err := sql.Open(sqliteDriverName, sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

func connectTimeout(opts Options) time.Duration {
	if opts.ConnectTimeout > 0 {
		return opts.ConnectTimeout
	}
	return 5 * time.Second
}
