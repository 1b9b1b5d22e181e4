package repositories

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"schemabrowser/internal/database"
)

// Dialect supplies the metadata queries and identifier syntax of one
// database engine. Every metadata query returns the same column aliases so
// the catalog can read them without knowing the engine:
//
//	tables:       table_name
//	columns:      column_name, data_type, position, is_nullable,
//	              column_default, is_primary, is_auto
//	primary key:  column_name
//	foreign keys: column_name, referenced_table, referenced_column
type Dialect interface {
	Name() string
	Placeholder(n int) string
	QuoteIdent(name string) string
	Table(name string) string
	TablesQuery() (string, []any)
	ColumnsQuery(table string) (string, []any)
	PrimaryKeyQuery(table string) (string, []any)
	ForeignKeysQuery(table string) (string, []any)
}

// DialectFor returns the dialect matching a database driver name.
func DialectFor(driver, schema string) (Dialect, error) {
	switch driver {
	case database.DriverPostgres:
		return NewPostgresDialect(schema), nil
	case database.DriverSQLite:
		return SQLiteDialect{}, nil
	default:
		return nil, fmt.Errorf("no dialect for driver %q", driver)
	}
}

type PostgresDialect struct {
	schema string
}

func NewPostgresDialect(schema string) PostgresDialect {
	if schema == "" {
		schema = "public"
	}
	return PostgresDialect{schema: schema}
}

func (d PostgresDialect) Name() string { return database.DriverPostgres }

func (d PostgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (d PostgresDialect) QuoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// Table qualifies name with the catalog schema so statements never resolve
// through search_path.
func (d PostgresDialect) Table(name string) string {
	return pgx.Identifier{d.schema, name}.Sanitize()
}

func (d PostgresDialect) TablesQuery() (string, []any) {
	return `
		SELECT table_name::text AS table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, []any{d.schema}
}

func (d PostgresDialect) ColumnsQuery(table string) (string, []any) {
	return `
		SELECT
			c.column_name::text AS column_name,
			c.data_type::text AS data_type,
			c.ordinal_position::int AS position,
			(c.is_nullable = 'YES') AS is_nullable,
			c.column_default::text AS column_default,
			COALESCE(pk.is_pk, false) AS is_primary,
			(c.is_identity = 'YES'
			 OR c.is_generated = 'ALWAYS'
			 OR COALESCE(c.column_default, '') LIKE 'nextval(%') AS is_auto
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT DISTINCT kcu.column_name, true AS is_pk
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name
			 AND tc.table_schema = kcu.table_schema
			 AND tc.table_name = kcu.table_name
			WHERE tc.constraint_type = 'PRIMARY KEY'
			  AND tc.table_schema = $1
			  AND tc.table_name = $2
		) pk ON pk.column_name = c.column_name
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`, []any{d.schema, table}
}

func (d PostgresDialect) PrimaryKeyQuery(table string) (string, []any) {
	return `
		SELECT kcu.column_name::text AS column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`, []any{d.schema, table}
}

// ForeignKeysQuery pairs each referencing column with the referenced column
// at the same position of the unique constraint, so composite keys do not
// produce a cross product.
func (d PostgresDialect) ForeignKeysQuery(table string) (string, []any) {
	return `
		SELECT
			kcu.column_name::text AS column_name,
			rk.table_name::text AS referenced_table,
			rk.column_name::text AS referenced_column
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_schema = rc.constraint_schema
			AND kcu.constraint_name = rc.constraint_name
		JOIN information_schema.key_column_usage rk
			ON rk.constraint_schema = rc.unique_constraint_schema
			AND rk.constraint_name = rc.unique_constraint_name
			AND rk.ordinal_position = kcu.position_in_unique_constraint
		WHERE kcu.table_schema = $1
			AND kcu.table_name = $2
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`, []any{d.schema, table}
}

type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return database.DriverSQLite }

func (SQLiteDialect) Placeholder(int) string { return "?" }

func (SQLiteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d SQLiteDialect) Table(name string) string { return d.QuoteIdent(name) }

func (SQLiteDialect) TablesQuery() (string, []any) {
	return `
		SELECT name AS table_name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`, nil
}

// ColumnsQuery reads table_xinfo so generated columns are listed; hidden
// columns of virtual tables (hidden = 1) are skipped. Generated columns
// (hidden 2 or 3) and a lone INTEGER PRIMARY KEY, which aliases the rowid,
// are auto-generated.
func (SQLiteDialect) ColumnsQuery(table string) (string, []any) {
	return `
		SELECT
			name AS column_name,
			type AS data_type,
			cid + 1 AS position,
			CASE WHEN "notnull" = 0 AND pk = 0 THEN 1 ELSE 0 END AS is_nullable,
			dflt_value AS column_default,
			CASE WHEN pk > 0 THEN 1 ELSE 0 END AS is_primary,
			CASE WHEN hidden IN (2, 3) THEN 1
			     WHEN pk = 1
			      AND upper(type) = 'INTEGER'
			      AND (SELECT COUNT(*) FROM pragma_table_xinfo(?1) WHERE pk > 0) = 1
			     THEN 1 ELSE 0 END AS is_auto
		FROM pragma_table_xinfo(?1)
		WHERE hidden != 1
		ORDER BY cid
	`, []any{table}
}

func (SQLiteDialect) PrimaryKeyQuery(table string) (string, []any) {
	return `
		SELECT name AS column_name
		FROM pragma_table_info(?)
		WHERE pk > 0
		ORDER BY pk
	`, []any{table}
}

func (SQLiteDialect) ForeignKeysQuery(table string) (string, []any) {
	return `
		SELECT "from" AS column_name, "table" AS referenced_table, "to" AS referenced_column
		FROM pragma_foreign_key_list(?)
		ORDER BY id, seq
	`, []any{table}
}
