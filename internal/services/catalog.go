package services

import (
	"context"

	"schemabrowser/internal/models"
)

// Catalog is the metadata source the services read from. Every call is
// expected to observe the live schema.
type Catalog interface {
	ListTables(ctx context.Context) ([]string, error)
	HasTable(ctx context.Context, table string) (bool, error)
	DescribeColumns(ctx context.Context, table string) ([]models.ColumnDescriptor, error)
	GetPrimaryKey(ctx context.Context, table string) (string, bool, error)
	ListForeignKeys(ctx context.Context, table string) ([]models.ForeignKeyDescriptor, error)
	CountRows(ctx context.Context, table string) int64
	DescribeTable(ctx context.Context, table string) (*models.TableDescriptor, error)
}

// Executor runs built statements.
type Executor interface {
	Execute(ctx context.Context, stmt models.Statement) (*models.ExecutionResult, error)
}

// SQLSyntax supplies identifier quoting and bind placeholders for the
// connected engine. Table returns the statement target for a catalog table,
// qualified with the catalog's schema where the engine has one.
type SQLSyntax interface {
	Placeholder(n int) string
	QuoteIdent(name string) string
	Table(name string) string
}
