package services

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemabrowser/internal/apperrors"
	"schemabrowser/internal/models"
)

func TestAnalyzeDependenciesEmptyPrerequisite(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	info, err := env.analyzer.AnalyzeDependencies(ctx, "Worker")
	require.NoError(t, err)
	assert.Equal(t, []string{"Role"}, info.Referenced)
	assert.Equal(t, []string{"Role"}, info.Unsatisfied)
	assert.Equal(t, int64(0), info.RowCounts["Role"])
	assert.False(t, info.Satisfied())
	assert.Equal(t, []models.DependencyEdge{{Column: "role_id", ReferencedTable: "Role", ReferencedColumn: "id"}}, info.Edges)
}

func TestAnalyzeDependenciesIsNotCached(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	env.exec(t, `INSERT INTO "Role" (name) VALUES ('Operator')`)
	info, err := env.analyzer.AnalyzeDependencies(ctx, "Worker")
	require.NoError(t, err)
	assert.Empty(t, info.Unsatisfied)
	assert.Equal(t, int64(1), info.RowCounts["Role"])

	env.exec(t, `DELETE FROM "Role"`)
	info, err = env.analyzer.AnalyzeDependencies(ctx, "Worker")
	require.NoError(t, err)
	assert.Equal(t, []string{"Role"}, info.Unsatisfied)
}

func TestAnalyzeDependenciesSelfReference(t *testing.T) {
	env := newTestEnv(t, nil)

	info, err := env.analyzer.AnalyzeDependencies(context.Background(), "Employee")
	require.NoError(t, err)
	assert.True(t, info.SelfReferencing)
	assert.Equal(t, []string{"Employee"}, info.Unsatisfied)
	assert.Empty(t, info.Blocking())
	assert.True(t, info.Satisfied())
}

func TestAnalyzeDependenciesMultipleReferences(t *testing.T) {
	env := newTestEnv(t, nil)
	env.exec(t, `INSERT INTO "Role" (name) VALUES ('Operator')`)

	info, err := env.analyzer.AnalyzeDependencies(context.Background(), "Membership")
	require.NoError(t, err)
	assert.Equal(t, []string{"Role", "Worker"}, info.Referenced)
	assert.Equal(t, []string{"Worker"}, info.Unsatisfied)
	assert.Len(t, info.Edges, 2)
}

func TestAnalyzeDependenciesNoForeignKeys(t *testing.T) {
	env := newTestEnv(t, nil)

	info, err := env.analyzer.AnalyzeDependencies(context.Background(), "Role")
	require.NoError(t, err)
	assert.Empty(t, info.Referenced)
	assert.Empty(t, info.Unsatisfied)
	assert.NotNil(t, info.Unsatisfied)
}

func TestAnalyzeDependenciesUnknownTable(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.analyzer.AnalyzeDependencies(context.Background(), "NoSuchTable")
	assert.ErrorIs(t, err, apperrors.ErrUnknownTable)
}

// countingCatalog reports every referenced table as unreachable.
type countingCatalog struct {
	Catalog
	calls atomic.Int32
}

func (c *countingCatalog) CountRows(context.Context, string) int64 {
	c.calls.Add(1)
	return 0
}

func TestAnalyzeDependenciesFailsClosed(t *testing.T) {
	env := newTestEnv(t, nil)
	env.exec(t, `INSERT INTO "Role" (name) VALUES ('Operator')`)

	catalog := &countingCatalog{Catalog: env.catalog}
	analyzer := NewDependencyAnalyzer(catalog, 0)

	info, err := analyzer.AnalyzeDependencies(context.Background(), "Membership")
	require.NoError(t, err)
	assert.Equal(t, []string{"Role", "Worker"}, info.Unsatisfied)
	assert.Equal(t, int32(2), catalog.calls.Load(), "one count per distinct referenced table")
}

func TestBuildDependencyInfo(t *testing.T) {
	fks := []models.ForeignKeyDescriptor{
		{Table: "Log", Column: "worker_id", ReferencedTable: "Worker", ReferencedColumn: "id"},
		{Table: "Log", Column: "reviewer_id", ReferencedTable: "Worker", ReferencedColumn: "id"},
		{Table: "Log", Column: "plant_id", ReferencedTable: "Plant", ReferencedColumn: "id"},
	}

	info := BuildDependencyInfo("Log", fks, map[string]int64{"Worker": 3})
	assert.Equal(t, []string{"Plant", "Worker"}, info.Referenced)
	assert.Equal(t, []string{"Plant"}, info.Unsatisfied)
	assert.Equal(t, map[string]int64{"Plant": 0, "Worker": 3}, info.RowCounts)
	assert.Len(t, info.Edges, 3)
	assert.False(t, info.SelfReferencing)
}
