package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"schemabrowser/internal/apperrors"
	"schemabrowser/internal/database"
	"schemabrowser/internal/models"
)

// SchemaRepository is the metadata catalog. Nothing is cached: every call
// reads the engine's introspection views afresh.
type SchemaRepository struct {
	db      database.Querier
	dialect Dialect
	timeout time.Duration
}

func NewSchemaRepository(db database.Querier, dialect Dialect, timeout time.Duration) *SchemaRepository {
	return &SchemaRepository{db: db, dialect: dialect, timeout: timeout}
}

func (r *SchemaRepository) Dialect() Dialect {
	return r.dialect
}

func (r *SchemaRepository) query(ctx context.Context, op string, query string, args []any) (*database.ResultSet, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	rs, err := r.db.Query(ctx, query, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, apperrors.ErrTimeout) {
			err = fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
		}
		return nil, &apperrors.CatalogError{Op: op, Err: err}
	}
	return rs, nil
}

// ListTables returns the base tables of the schema ordered by name.
func (r *SchemaRepository) ListTables(ctx context.Context) ([]string, error) {
	query, args := r.dialect.TablesQuery()
	rs, err := r.query(ctx, "list tables", query, args)
	if err != nil {
		return nil, err
	}

	tables := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		tables = append(tables, textValue(row, "table_name"))
	}
	return tables, nil
}

// HasTable reports whether table is among ListTables.
func (r *SchemaRepository) HasTable(ctx context.Context, table string) (bool, error) {
	tables, err := r.ListTables(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range tables {
		if t == table {
			return true, nil
		}
	}
	return false, nil
}

// DescribeColumns returns the table's columns in ordinal order. An unknown
// table yields an empty slice, not an error.
func (r *SchemaRepository) DescribeColumns(ctx context.Context, table string) ([]models.ColumnDescriptor, error) {
	query, args := r.dialect.ColumnsQuery(table)
	rs, err := r.query(ctx, "describe columns", query, args)
	if err != nil {
		return nil, err
	}

	columns := make([]models.ColumnDescriptor, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		columns = append(columns, models.ColumnDescriptor{
			Name:            textValue(row, "column_name"),
			DataType:        textValue(row, "data_type"),
			Position:        int(intValue(row, "position")),
			IsPrimaryKey:    flagValue(row, "is_primary"),
			IsAutoGenerated: flagValue(row, "is_auto"),
			IsNullable:      flagValue(row, "is_nullable"),
			Default:         optionalText(row, "column_default"),
		})
	}
	return columns, nil
}

// GetPrimaryKey returns the primary key column, or ok=false when the table
// has none or its key spans several columns.
func (r *SchemaRepository) GetPrimaryKey(ctx context.Context, table string) (string, bool, error) {
	query, args := r.dialect.PrimaryKeyQuery(table)
	rs, err := r.query(ctx, "get primary key", query, args)
	if err != nil {
		return "", false, err
	}
	if len(rs.Rows) != 1 {
		return "", false, nil
	}
	return textValue(rs.Rows[0], "column_name"), true, nil
}

// ListForeignKeys returns the outward foreign keys declared on table.
func (r *SchemaRepository) ListForeignKeys(ctx context.Context, table string) ([]models.ForeignKeyDescriptor, error) {
	query, args := r.dialect.ForeignKeysQuery(table)
	rs, err := r.query(ctx, "list foreign keys", query, args)
	if err != nil {
		return nil, err
	}

	fks := make([]models.ForeignKeyDescriptor, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		fk := models.ForeignKeyDescriptor{
			Table:            table,
			Column:           textValue(row, "column_name"),
			ReferencedTable:  textValue(row, "referenced_table"),
			ReferencedColumn: textValue(row, "referenced_column"),
		}
		// SQLite leaves the target column empty when the key references the
		// parent's primary key implicitly.
		if fk.ReferencedColumn == "" {
			pk, ok, err := r.GetPrimaryKey(ctx, fk.ReferencedTable)
			if err != nil {
				return nil, err
			}
			if ok {
				fk.ReferencedColumn = pk
			}
		}
		fks = append(fks, fk)
	}
	return fks, nil
}

// CountRows returns the number of rows in table. It fails closed: any error,
// including an unknown table, is logged and reported as zero rows.
func (r *SchemaRepository) CountRows(ctx context.Context, table string) int64 {
	ok, err := r.HasTable(ctx, table)
	if err != nil {
		log.Printf("count rows for %q: %v (treating as 0)", table, err)
		return 0
	}
	if !ok {
		log.Printf("count rows for %q: table not found (treating as 0)", table)
		return 0
	}

	query := fmt.Sprintf("SELECT COUNT(*) AS row_count FROM %s", r.dialect.Table(table))
	rs, err := r.query(ctx, "count rows", query, nil)
	if err != nil {
		log.Printf("count rows for %q: %v (treating as 0)", table, err)
		return 0
	}
	if len(rs.Rows) == 0 {
		return 0
	}
	return intValue(rs.Rows[0], "row_count")
}

// DescribeTable assembles the full descriptor for a table known to the
// catalog. The category is left for the caller's classification policy.
func (r *SchemaRepository) DescribeTable(ctx context.Context, table string) (*models.TableDescriptor, error) {
	ok, err := r.HasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.UnknownTable(table)
	}

	columns, err := r.DescribeColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	pk, _, err := r.GetPrimaryKey(ctx, table)
	if err != nil {
		return nil, err
	}
	fks, err := r.ListForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}

	return &models.TableDescriptor{
		Name:             table,
		Columns:          columns,
		PrimaryKeyColumn: pk,
		ForeignKeys:      fks,
		Category:         models.CategoryGeneral,
	}, nil
}

func textValue(row models.Row, col string) string {
	v, _ := row.Get(col)
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func optionalText(row models.Row, col string) *string {
	v, _ := row.Get(col)
	if v == nil {
		return nil
	}
	s := textValue(row, col)
	return &s
}

func intValue(row models.Row, col string) int64 {
	v, _ := row.Get(col)
	switch val := v.(type) {
	case int64:
		return val
	case float64:
		return int64(val)
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	default:
		return 0
	}
}

func flagValue(row models.Row, col string) bool {
	v, _ := row.Get(col)
	switch val := v.(type) {
	case int64:
		return val != 0
	case float64:
		return val != 0
	case string:
		switch strings.ToUpper(val) {
		case "YES", "TRUE", "T", "1":
			return true
		}
	}
	return false
}
