package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantBase error
	}{
		{
			name:     "table",
			err:      UnknownTable("NoSuchTable"),
			wantMsg:  `unknown table "NoSuchTable"`,
			wantBase: ErrUnknownTable,
		},
		{
			name:     "column",
			err:      UnknownColumn("Worker", "salary"),
			wantMsg:  `unknown column "salary" in table "Worker"`,
			wantBase: ErrUnknownColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.wantBase)
		})
	}
}

func TestQueryFailedError(t *testing.T) {
	cause := fmt.Errorf("%w: %w", ErrTimeout, context.DeadlineExceeded)
	err := fmt.Errorf("execute: %w", &QueryFailedError{SQL: "SELECT 1", Cause: cause})

	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var qf *QueryFailedError
	if assert.True(t, errors.As(err, &qf)) {
		assert.Equal(t, "SELECT 1", qf.SQL)
	}
}

func TestCatalogError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &CatalogError{Op: "list tables", Err: cause}

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "catalog list tables: connection refused", err.Error())
}

func TestUnsatisfiedDependenciesError(t *testing.T) {
	err := &UnsatisfiedDependenciesError{Table: "Worker", Missing: []string{"WorkerRole", "Shift"}}

	assert.ErrorIs(t, err, ErrUnsatisfiedDependencies)
	assert.Contains(t, err.Error(), "WorkerRole, Shift")
}

func TestNoPrimaryKey(t *testing.T) {
	err := NoPrimaryKey("audit_log")
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
	assert.Contains(t, err.Error(), "audit_log")
}
