package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"schemabrowser/internal/database"
)

var testSchema = []string{
	`CREATE TABLE "Role" (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
	`CREATE TABLE "Worker" (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		role_id INTEGER REFERENCES "Role"(id),
		hired TEXT DEFAULT 'today'
	)`,
	`CREATE TABLE "Employee" (id INTEGER PRIMARY KEY, name TEXT, manager_id INTEGER REFERENCES "Employee")`,
	`CREATE TABLE "Membership" (
		worker_id INTEGER NOT NULL REFERENCES "Worker"(id),
		role_id INTEGER NOT NULL REFERENCES "Role"(id),
		PRIMARY KEY (worker_id, role_id)
	)`,
	`CREATE TABLE "AuditLog" (message TEXT, logged_at TEXT)`,
	`CREATE TABLE "Tag" (code TEXT PRIMARY KEY, label TEXT)`,
}

func openTestDB(t *testing.T) database.Querier {
	t.Helper()
	ctx := context.Background()

	q, err := database.Open(ctx, database.Options{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "catalog.db"),
	})
	require.NoError(t, err)
	t.Cleanup(q.Close)

	for _, stmt := range testSchema {
		_, err := q.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return q
}

func newTestCatalog(t *testing.T) (*SchemaRepository, database.Querier) {
	t.Helper()
	q := openTestDB(t)
	return NewSchemaRepository(q, SQLiteDialect{}, 5*time.Second), q
}
