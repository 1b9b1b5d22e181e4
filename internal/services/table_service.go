package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"schemabrowser/internal/apperrors"
	"schemabrowser/internal/classification"
	"schemabrowser/internal/models"
)

// TableService composes the catalog, builder, analyzer and executor into
// the list, view, add, edit and delete flows of the browser.
type TableService struct {
	catalog     Catalog
	builder     *StatementBuilder
	analyzer    *DependencyAnalyzer
	executor    Executor
	policy      *classification.Policy
	concurrency int
}

func NewTableService(
	catalog Catalog,
	builder *StatementBuilder,
	analyzer *DependencyAnalyzer,
	executor Executor,
	policy *classification.Policy,
	concurrency int,
) *TableService {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if policy == nil {
		policy = classification.Empty()
	}
	return &TableService{
		catalog:     catalog,
		builder:     builder,
		analyzer:    analyzer,
		executor:    executor,
		policy:      policy,
		concurrency: concurrency,
	}
}

// Overview summarizes every table: row count, category and dependency
// information. Foreign keys and counts are fetched concurrently; each table
// is counted once and the counts are shared by all dependency checks.
func (s *TableService) Overview(ctx context.Context) ([]models.TableSummary, error) {
	tables, err := s.catalog.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	fks, err := s.foreignKeysOf(ctx, tables)
	if err != nil {
		return nil, err
	}
	counts := s.analyzer.countAll(ctx, tables)
	refs := referencedBy(fks)

	summaries := make([]models.TableSummary, 0, len(tables))
	for _, t := range tables {
		summaries = append(summaries, models.TableSummary{
			Name:         t,
			Category:     s.policy.CategoryFor(t, fks[t], refs[t]),
			RowCount:     counts[t],
			Dependencies: *BuildDependencyInfo(t, fks[t], counts),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

func (s *TableService) foreignKeysOf(ctx context.Context, tables []string) (map[string][]models.ForeignKeyDescriptor, error) {
	var mu sync.Mutex
	out := make(map[string][]models.ForeignKeyDescriptor, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, t := range tables {
		g.Go(func() error {
			fks, err := s.catalog.ListForeignKeys(gctx, t)
			if err != nil {
				return err
			}
			mu.Lock()
			out[t] = fks
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// referencedBy counts, per table, the other tables holding a foreign key to it.
func referencedBy(fks map[string][]models.ForeignKeyDescriptor) map[string]int {
	refs := make(map[string]int)
	for owner, list := range fks {
		seen := make(map[string]bool)
		for _, fk := range list {
			if fk.ReferencedTable == owner || seen[fk.ReferencedTable] {
				continue
			}
			seen[fk.ReferencedTable] = true
			refs[fk.ReferencedTable]++
		}
	}
	return refs
}

// DescribeTable returns the table descriptor with its category applied.
func (s *TableService) DescribeTable(ctx context.Context, table string) (*models.TableDescriptor, error) {
	desc, err := s.catalog.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}

	refs := 0
	if s.policy.InferUnlisted && s.policy.Category(table) == models.CategoryGeneral {
		tables, err := s.catalog.ListTables(ctx)
		if err != nil {
			return nil, err
		}
		all, err := s.foreignKeysOf(ctx, tables)
		if err != nil {
			return nil, err
		}
		refs = referencedBy(all)[table]
	}
	desc.Category = s.policy.CategoryFor(table, desc.ForeignKeys, refs)
	return desc, nil
}

// AnalyzeDependencies exposes the analyzer's advisory check.
func (s *TableService) AnalyzeDependencies(ctx context.Context, table string) (*models.DependencyInfo, error) {
	return s.analyzer.AnalyzeDependencies(ctx, table)
}

// ListRows returns the descriptor and every row of table.
func (s *TableService) ListRows(ctx context.Context, table string) (*models.TableView, error) {
	desc, err := s.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	stmt, err := s.builder.BuildSelectAll(ctx, table)
	if err != nil {
		return nil, err
	}
	res, err := s.executor.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return &models.TableView{Table: *desc, Rows: res.Rows}, nil
}

// ResolvedRows returns every row of table with foreign keys accompanied by
// the label of the referenced row.
func (s *TableService) ResolvedRows(ctx context.Context, table string) (*models.TableView, error) {
	desc, err := s.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	stmt, err := s.builder.BuildSelectResolved(ctx, table)
	if err != nil {
		return nil, err
	}
	res, err := s.executor.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return &models.TableView{Table: *desc, Columns: res.Columns, Rows: res.Rows}, nil
}

func (s *TableService) primaryKey(ctx context.Context, table string) (string, error) {
	ok, err := s.catalog.HasTable(ctx, table)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.UnknownTable(table)
	}
	pk, ok, err := s.catalog.GetPrimaryKey(ctx, table)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.NoPrimaryKey(table)
	}
	return pk, nil
}

// GetRow returns the row whose primary key equals key.
func (s *TableService) GetRow(ctx context.Context, table string, key any) (models.Row, error) {
	pk, err := s.primaryKey(ctx, table)
	if err != nil {
		return nil, err
	}
	stmt, err := s.builder.BuildSelectByKey(ctx, table, pk, key)
	if err != nil {
		return nil, err
	}
	res, err := s.executor.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s.%s = %v", apperrors.ErrRowNotFound, table, pk, key)
	}
	return res.Rows[0], nil
}

// AddRow inserts a row after checking that every table it references holds
// data. A table never blocks inserts into itself.
func (s *TableService) AddRow(ctx context.Context, table string, values models.FieldValues) (*models.ExecutionResult, error) {
	deps, err := s.analyzer.AnalyzeDependencies(ctx, table)
	if err != nil {
		return nil, err
	}
	if blocking := deps.Blocking(); len(blocking) > 0 {
		return nil, &apperrors.UnsatisfiedDependenciesError{Table: table, Missing: blocking}
	}

	stmt, err := s.builder.BuildInsert(ctx, table, nil, values)
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, stmt)
}

// UpdateRow sets the submitted columns of the row identified by key.
// Columns absent from values are left untouched.
func (s *TableService) UpdateRow(ctx context.Context, table string, key any, values models.FieldValues) (*models.ExecutionResult, error) {
	pk, err := s.primaryKey(ctx, table)
	if err != nil {
		return nil, err
	}
	columns, err := s.submittedColumns(ctx, table, values)
	if err != nil {
		return nil, err
	}

	stmt, err := s.builder.BuildUpdate(ctx, table, pk, key, columns, values)
	if err != nil {
		return nil, err
	}
	res, err := s.executor.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if res.Affected == 0 {
		return nil, fmt.Errorf("%w: %s.%s = %v", apperrors.ErrRowNotFound, table, pk, key)
	}
	return res, nil
}

// submittedColumns orders the keys of values by column position so the
// bound parameters follow the table's column order.
func (s *TableService) submittedColumns(ctx context.Context, table string, values models.FieldValues) ([]string, error) {
	cols, err := s.catalog.DescribeColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, c := range cols {
		if _, ok := values[c.Name]; ok {
			out = append(out, c.Name)
		}
	}
	for name := range values {
		if _, ok := findColumn(cols, name); !ok {
			return nil, apperrors.UnknownColumn(table, name)
		}
	}
	return out, nil
}

// DeleteRow removes the row identified by key.
func (s *TableService) DeleteRow(ctx context.Context, table string, key any) (*models.ExecutionResult, error) {
	pk, err := s.primaryKey(ctx, table)
	if err != nil {
		return nil, err
	}
	stmt, err := s.builder.BuildDelete(ctx, table, pk, key)
	if err != nil {
		return nil, err
	}
	res, err := s.executor.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if res.Affected == 0 {
		return nil, fmt.Errorf("%w: %s.%s = %v", apperrors.ErrRowNotFound, table, pk, key)
	}
	return res, nil
}

// ForeignKeyOptions lists, for each foreign-key column of table, the values
// currently present in the referenced column.
func (s *TableService) ForeignKeyOptions(ctx context.Context, table string) (map[string][]any, error) {
	ok, err := s.catalog.HasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.UnknownTable(table)
	}
	fks, err := s.catalog.ListForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}

	options := make(map[string][]any, len(fks))
	for _, fk := range fks {
		stmt, err := s.builder.BuildSelectColumn(ctx, fk.ReferencedTable, fk.ReferencedColumn)
		if err != nil {
			return nil, err
		}
		res, err := s.executor.Execute(ctx, stmt)
		if err != nil {
			return nil, err
		}
		values := make([]any, 0, len(res.Rows))
		for _, row := range res.Rows {
			if len(row) > 0 {
				values = append(values, row[0].Value)
			}
		}
		options[fk.Column] = values
	}
	return options, nil
}
