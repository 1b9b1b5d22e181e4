package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"schemabrowser/internal/apperrors"
	"schemabrowser/internal/models"
)

// StatementBuilder turns catalog metadata and submitted values into
// parameterized statements. Identifiers are checked against a fresh
// catalog snapshot before they reach the SQL text; values are always bound.
type StatementBuilder struct {
	catalog Catalog
	syntax  SQLSyntax
}

func NewStatementBuilder(catalog Catalog, syntax SQLSyntax) *StatementBuilder {
	return &StatementBuilder{catalog: catalog, syntax: syntax}
}

// snapshot returns the live columns of table, failing with UnknownTable
// when the table is not listed.
func (b *StatementBuilder) snapshot(ctx context.Context, table string) ([]models.ColumnDescriptor, error) {
	ok, err := b.catalog.HasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.UnknownTable(table)
	}
	return b.catalog.DescribeColumns(ctx, table)
}

func findColumn(columns []models.ColumnDescriptor, name string) (models.ColumnDescriptor, bool) {
	for _, c := range columns {
		if c.Name == name {
			return c, true
		}
	}
	return models.ColumnDescriptor{}, false
}

// settable resolves the requested column names against the snapshot and
// drops auto-generated ones. A nil request means every column.
func settable(table string, snapshot []models.ColumnDescriptor, requested []string, skip string) ([]string, error) {
	if requested == nil {
		requested = make([]string, 0, len(snapshot))
		for _, c := range snapshot {
			requested = append(requested, c.Name)
		}
	}

	out := make([]string, 0, len(requested))
	for _, name := range requested {
		col, ok := findColumn(snapshot, name)
		if !ok {
			return nil, apperrors.UnknownColumn(table, name)
		}
		if col.IsAutoGenerated || col.Name == skip {
			continue
		}
		out = append(out, col.Name)
	}
	return out, nil
}

// checkFieldNames rejects submitted values for columns the table does not have.
func checkFieldNames(table string, snapshot []models.ColumnDescriptor, values models.FieldValues) error {
	for name := range values {
		if _, ok := findColumn(snapshot, name); !ok {
			return apperrors.UnknownColumn(table, name)
		}
	}
	return nil
}

// bindValue maps an absent or empty-string entry to NULL. Boolean columns
// accept the 1/0 form rows are read back in.
func bindValue(values models.FieldValues, col models.ColumnDescriptor) any {
	v, ok := values[col.Name]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	if isBoolType(col.DataType) {
		return toBool(v)
	}
	return v
}

func isBoolType(dataType string) bool {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "boolean", "bool":
		return true
	}
	return false
}

// toBool converts numeric and textual truth values; anything else is bound
// unchanged and left for the engine to reject.
func toBool(v any) any {
	switch val := v.(type) {
	case int64:
		return val != 0
	case int:
		return val != 0
	case float64:
		return val != 0
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}
	}
	return v
}

func (b *StatementBuilder) columnList(columns []models.ColumnDescriptor) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.syntax.QuoteIdent(c.Name)
	}
	return strings.Join(quoted, ", ")
}

// BuildSelectAll selects every column of table in ordinal order, ordered
// by the primary key when there is one.
func (b *StatementBuilder) BuildSelectAll(ctx context.Context, table string) (models.Statement, error) {
	columns, err := b.snapshot(ctx, table)
	if err != nil {
		return models.Statement{}, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", b.columnList(columns), b.syntax.Table(table))
	pk, ok, err := b.catalog.GetPrimaryKey(ctx, table)
	if err != nil {
		return models.Statement{}, err
	}
	if ok {
		query += " ORDER BY " + b.syntax.QuoteIdent(pk)
	}

	return models.Statement{Kind: models.StatementRead, Table: table, SQL: query}, nil
}

// BuildSelectByKey selects the rows of table whose pkColumn equals pkValue.
func (b *StatementBuilder) BuildSelectByKey(ctx context.Context, table, pkColumn string, pkValue any) (models.Statement, error) {
	if pkColumn == "" {
		return models.Statement{}, apperrors.NoPrimaryKey(table)
	}
	columns, err := b.snapshot(ctx, table)
	if err != nil {
		return models.Statement{}, err
	}
	if _, ok := findColumn(columns, pkColumn); !ok {
		return models.Statement{}, apperrors.UnknownColumn(table, pkColumn)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		b.columnList(columns),
		b.syntax.Table(table),
		b.syntax.QuoteIdent(pkColumn),
		b.syntax.Placeholder(1),
	)
	return models.Statement{Kind: models.StatementRead, Table: table, SQL: query, Args: []any{pkValue}}, nil
}

// BuildInsert binds one parameter per settable column, in column order.
// Values supplied for auto-generated columns are dropped. A nil columns
// slice inserts into every settable column.
func (b *StatementBuilder) BuildInsert(ctx context.Context, table string, columns []string, values models.FieldValues) (models.Statement, error) {
	snapshot, err := b.snapshot(ctx, table)
	if err != nil {
		return models.Statement{}, err
	}
	if err := checkFieldNames(table, snapshot, values); err != nil {
		return models.Statement{}, err
	}
	names, err := settable(table, snapshot, columns, "")
	if err != nil {
		return models.Statement{}, err
	}

	if len(names) == 0 {
		return models.Statement{
			Kind:  models.StatementWrite,
			Table: table,
			SQL:   fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", b.syntax.Table(table)),
		}, nil
	}

	quoted := make([]string, len(names))
	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		quoted[i] = b.syntax.QuoteIdent(name)
		placeholders[i] = b.syntax.Placeholder(i + 1)
		col, _ := findColumn(snapshot, name)
		args[i] = bindValue(values, col)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		b.syntax.Table(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)
	return models.Statement{Kind: models.StatementWrite, Table: table, SQL: query, Args: args}, nil
}

// BuildUpdate sets the given columns of the row identified by pkValue. The
// key column and auto-generated columns are never part of the SET list.
func (b *StatementBuilder) BuildUpdate(ctx context.Context, table, pkColumn string, pkValue any, columns []string, values models.FieldValues) (models.Statement, error) {
	if pkColumn == "" {
		return models.Statement{}, apperrors.NoPrimaryKey(table)
	}
	snapshot, err := b.snapshot(ctx, table)
	if err != nil {
		return models.Statement{}, err
	}
	if _, ok := findColumn(snapshot, pkColumn); !ok {
		return models.Statement{}, apperrors.UnknownColumn(table, pkColumn)
	}
	if err := checkFieldNames(table, snapshot, values); err != nil {
		return models.Statement{}, err
	}
	names, err := settable(table, snapshot, columns, pkColumn)
	if err != nil {
		return models.Statement{}, err
	}
	if len(names) == 0 {
		return models.Statement{}, fmt.Errorf("%w: table %q", apperrors.ErrNoColumns, table)
	}

	assignments := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		assignments[i] = fmt.Sprintf("%s = %s", b.syntax.QuoteIdent(name), b.syntax.Placeholder(i+1))
		col, _ := findColumn(snapshot, name)
		args = append(args, bindValue(values, col))
	}
	args = append(args, pkValue)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		b.syntax.Table(table),
		strings.Join(assignments, ", "),
		b.syntax.QuoteIdent(pkColumn),
		b.syntax.Placeholder(len(names)+1),
	)
	return models.Statement{Kind: models.StatementWrite, Table: table, SQL: query, Args: args}, nil
}

// BuildDelete removes the single row identified by pkValue. Tables without
// a primary key are refused rather than deleted from wholesale.
func (b *StatementBuilder) BuildDelete(ctx context.Context, table, pkColumn string, pkValue any) (models.Statement, error) {
	if pkColumn == "" {
		return models.Statement{}, apperrors.NoPrimaryKey(table)
	}
	snapshot, err := b.snapshot(ctx, table)
	if err != nil {
		return models.Statement{}, err
	}
	if _, ok := findColumn(snapshot, pkColumn); !ok {
		return models.Statement{}, apperrors.UnknownColumn(table, pkColumn)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		b.syntax.Table(table),
		b.syntax.QuoteIdent(pkColumn),
		b.syntax.Placeholder(1),
	)
	return models.Statement{Kind: models.StatementWrite, Table: table, SQL: query, Args: []any{pkValue}}, nil
}

// BuildSelectColumn lists the distinct non-null values of one column.
func (b *StatementBuilder) BuildSelectColumn(ctx context.Context, table, column string) (models.Statement, error) {
	snapshot, err := b.snapshot(ctx, table)
	if err != nil {
		return models.Statement{}, err
	}
	if _, ok := findColumn(snapshot, column); !ok {
		return models.Statement{}, apperrors.UnknownColumn(table, column)
	}

	col := b.syntax.QuoteIdent(column)
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s",
		col, b.syntax.Table(table), col, col)
	return models.Statement{Kind: models.StatementRead, Table: table, SQL: query}, nil
}

// isLabelType reports whether a declared type holds text a reader can use
// in place of a key.
func isLabelType(dataType string) bool {
	t := strings.ToLower(dataType)
	for _, marker := range []string{"char", "text", "clob", "string"} {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return t == "name"
}

// labelColumn picks the first text column of table that is neither part of
// its primary key nor a foreign key.
func (b *StatementBuilder) labelColumn(ctx context.Context, table string) (string, error) {
	columns, err := b.catalog.DescribeColumns(ctx, table)
	if err != nil {
		return "", err
	}
	fks, err := b.catalog.ListForeignKeys(ctx, table)
	if err != nil {
		return "", err
	}
	isFK := make(map[string]bool, len(fks))
	for _, fk := range fks {
		isFK[fk.Column] = true
	}
	for _, c := range columns {
		if c.IsPrimaryKey || isFK[c.Name] || !isLabelType(c.DataType) {
			continue
		}
		return c.Name, nil
	}
	return "", nil
}

// BuildSelectResolved selects every row of table and, next to each foreign
// key column, the label of the row it points to. Only keys referencing the
// single-column primary key of their target are joined, so the join never
// multiplies rows; keys whose target has no text column stay unresolved.
// A label is aliased <column>_<label column>.
func (b *StatementBuilder) BuildSelectResolved(ctx context.Context, table string) (models.Statement, error) {
	columns, err := b.snapshot(ctx, table)
	if err != nil {
		return models.Statement{}, err
	}
	fks, err := b.catalog.ListForeignKeys(ctx, table)
	if err != nil {
		return models.Statement{}, err
	}

	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c.Name] = true
	}

	labels := make(map[string]string, len(fks))
	var joins []string
	for _, fk := range fks {
		if _, done := labels[fk.Column]; done {
			continue
		}
		pk, ok, err := b.catalog.GetPrimaryKey(ctx, fk.ReferencedTable)
		if err != nil {
			return models.Statement{}, err
		}
		if !ok || pk != fk.ReferencedColumn {
			continue
		}
		label, err := b.labelColumn(ctx, fk.ReferencedTable)
		if err != nil {
			return models.Statement{}, err
		}
		alias := fk.Column + "_" + label
		if label == "" || taken[alias] {
			continue
		}
		taken[alias] = true

		ref := "r" + strconv.Itoa(len(joins)+1)
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = t.%s",
			b.syntax.Table(fk.ReferencedTable), ref,
			ref, b.syntax.QuoteIdent(fk.ReferencedColumn),
			b.syntax.QuoteIdent(fk.Column),
		))
		labels[fk.Column] = fmt.Sprintf("%s.%s AS %s", ref, b.syntax.QuoteIdent(label), b.syntax.QuoteIdent(alias))
	}

	selected := make([]string, 0, len(columns)+len(labels))
	for _, c := range columns {
		selected = append(selected, "t."+b.syntax.QuoteIdent(c.Name))
		if l, ok := labels[c.Name]; ok {
			selected = append(selected, l)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s t", strings.Join(selected, ", "), b.syntax.Table(table))
	if len(joins) > 0 {
		query += " " + strings.Join(joins, " ")
	}
	pk, ok, err := b.catalog.GetPrimaryKey(ctx, table)
	if err != nil {
		return models.Statement{}, err
	}
	if ok {
		query += " ORDER BY t." + b.syntax.QuoteIdent(pk)
	}
	return models.Statement{Kind: models.StatementRead, Table: table, SQL: query}, nil
}
