package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"schemabrowser/internal/models"
)

// ResultSet is a fully read, normalized query result.
type ResultSet struct {
	Columns []string
	Rows    []models.Row
}

// Querier runs SQL against a pooled connection source. Every call acquires
// a connection for its own duration and releases it before returning,
// including on error paths.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*ResultSet, error)
	// Exec runs one statement in its own transaction and returns the affected row count.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Ping(ctx context.Context) error
	Driver() string
	Close()
}

// PgxQuerier reads rows as name-keyed maps through pgx.
type PgxQuerier struct {
	pool *pgxpool.Pool
}

func NewPgxQuerier(pool *pgxpool.Pool) *PgxQuerier {
	return &PgxQuerier{pool: pool}
}

func (q *PgxQuerier) Query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Row, error) {
		m, err := pgx.RowToMap(row)
		if err != nil {
			return nil, err
		}
		return NormalizeRow(fieldNames(row.FieldDescriptions()), m)
	})
	if err != nil {
		return nil, err
	}

	return &ResultSet{Columns: fieldNames(rows.FieldDescriptions()), Rows: out}, nil
}

func (q *PgxQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (q *PgxQuerier) Ping(ctx context.Context) error {
	return q.pool.Ping(ctx)
}

func (q *PgxQuerier) Driver() string {
	return DriverPostgres
}

func (q *PgxQuerier) Close() {
	q.pool.Close()
}

func fieldNames(fds []pgconn.FieldDescription) []string {
	names := make([]string, len(fds))
	for i, fd := range fds {
		names[i] = fd.Name
	}
	return names
}

// SQLQuerier reads rows positionally through database/sql.
type SQLQuerier struct {
	db     *sql.DB
	driver string
}

func NewSQLQuerier(db *sql.DB, driver string) *SQLQuerier {
	return &SQLQuerier{db: db, driver: driver}
}

func (q *SQLQuerier) Query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row, err := NormalizeRow(columns, values)
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (q *SQLQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result.RowsAffected()
}

func (q *SQLQuerier) Ping(ctx context.Context) error {
	return q.db.PingContext(ctx)
}

func (q *SQLQuerier) Driver() string {
	return q.driver
}

func (q *SQLQuerier) Close() {
	q.db.Close()
}
