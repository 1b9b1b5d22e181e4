package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"schemabrowser/internal/classification"
	"schemabrowser/internal/database"
	"schemabrowser/internal/repositories"
)

var testSchema = []string{
	`CREATE TABLE "Role" (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
	`CREATE TABLE "Worker" (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		role_id INTEGER REFERENCES "Role"(id),
		note TEXT
	)`,
	`CREATE TABLE "Employee" (id INTEGER PRIMARY KEY, name TEXT, manager_id INTEGER REFERENCES "Employee"(id))`,
	`CREATE TABLE "Membership" (
		worker_id INTEGER NOT NULL REFERENCES "Worker"(id),
		role_id INTEGER NOT NULL REFERENCES "Role"(id),
		PRIMARY KEY (worker_id, role_id)
	)`,
	`CREATE TABLE "AuditLog" (message TEXT)`,
	`CREATE TABLE "Counter" (id INTEGER PRIMARY KEY)`,
}

type testEnv struct {
	db       database.Querier
	catalog  *repositories.SchemaRepository
	executor *repositories.QueryRepository
	builder  *StatementBuilder
	analyzer *DependencyAnalyzer
	tables   *TableService
}

func newTestEnv(t *testing.T, policy *classification.Policy) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Options{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "browser.db"),
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	for _, stmt := range testSchema {
		_, err := db.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	dialect := repositories.SQLiteDialect{}
	catalog := repositories.NewSchemaRepository(db, dialect, 5*time.Second)
	executor := repositories.NewQueryRepository(db, 5*time.Second)
	builder := NewStatementBuilder(catalog, dialect)
	analyzer := NewDependencyAnalyzer(catalog, 4)

	return &testEnv{
		db:       db,
		catalog:  catalog,
		executor: executor,
		builder:  builder,
		analyzer: analyzer,
		tables:   NewTableService(catalog, builder, analyzer, executor, policy, 4),
	}
}

func (e *testEnv) exec(t *testing.T, query string, args ...any) {
	t.Helper()
	_, err := e.db.Exec(context.Background(), query, args...)
	require.NoError(t, err)
}
