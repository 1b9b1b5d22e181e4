package classification

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemabrowser/internal/models"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "classification.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCategory(t *testing.T) {
	p := New([]string{"WorkerRole"}, []string{"Worker"}, []string{"WorkerLog"})

	assert.Equal(t, models.CategoryReference, p.Category("WorkerRole"))
	assert.Equal(t, models.CategoryParent, p.Category("Worker"))
	assert.Equal(t, models.CategoryChild, p.Category("WorkerLog"))
	assert.Equal(t, models.CategoryGeneral, p.Category("Unlisted"))
	assert.Equal(t, models.CategoryGeneral, p.Category("worker"), "names are case-sensitive")
}

func TestNilAndEmptyPolicy(t *testing.T) {
	var p *Policy
	assert.Equal(t, models.CategoryGeneral, p.Category("Worker"))
	assert.Equal(t, models.CategoryGeneral, p.CategoryFor("Worker", nil, 3))
	assert.Equal(t, models.CategoryGeneral, Empty().Category("Worker"))
}

func TestLoadFile(t *testing.T) {
	path := writePolicy(t, `
reference: [WorkerRole, ChemicalType]
parent:
  - Worker
child:
  - WorkerLog
infer_unlisted: true
`)

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, p.InferUnlisted)
	assert.Equal(t, models.CategoryReference, p.Category("ChemicalType"))
	assert.Equal(t, models.CategoryParent, p.Category("Worker"))
	assert.Equal(t, models.CategoryChild, p.Category("WorkerLog"))
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writePolicy(t, "reference: [unterminated"))
	assert.Error(t, err)

	_, err = LoadFile(writePolicy(t, "reference: [Worker]\nchild: [Worker]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Worker"`)
}

func TestCategoryForInference(t *testing.T) {
	p := New([]string{"Listed"}, nil, nil)
	p.InferUnlisted = true

	fk := func(table, ref string) models.ForeignKeyDescriptor {
		return models.ForeignKeyDescriptor{Table: table, Column: "ref_id", ReferencedTable: ref, ReferencedColumn: "id"}
	}

	tests := []struct {
		name         string
		table        string
		fks          []models.ForeignKeyDescriptor
		referencedBy int
		want         models.Category
	}{
		{"listed wins", "Listed", []models.ForeignKeyDescriptor{fk("Listed", "Other")}, 0, models.CategoryReference},
		{"lookup", "Role", nil, 2, models.CategoryReference},
		{"middle", "Worker", []models.ForeignKeyDescriptor{fk("Worker", "Role")}, 1, models.CategoryParent},
		{"leaf", "WorkerLog", []models.ForeignKeyDescriptor{fk("WorkerLog", "Worker")}, 0, models.CategoryChild},
		{"isolated", "Audit", nil, 0, models.CategoryGeneral},
		{"self only", "Employee", []models.ForeignKeyDescriptor{fk("Employee", "Employee")}, 0, models.CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CategoryFor(tt.table, tt.fks, tt.referencedBy))
		})
	}

	p.InferUnlisted = false
	assert.Equal(t, models.CategoryGeneral, p.CategoryFor("Role", nil, 2))
}
