package services

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"schemabrowser/internal/apperrors"
	"schemabrowser/internal/models"
)

const defaultConcurrency = 8

// DependencyAnalyzer reports which tables referenced by a table's foreign
// keys are empty. It only informs; refusing an insert is up to the caller.
type DependencyAnalyzer struct {
	catalog     Catalog
	concurrency int
}

func NewDependencyAnalyzer(catalog Catalog, concurrency int) *DependencyAnalyzer {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &DependencyAnalyzer{catalog: catalog, concurrency: concurrency}
}

// AnalyzeDependencies counts the rows of every table that table references.
// Counts are issued concurrently and never cached.
func (a *DependencyAnalyzer) AnalyzeDependencies(ctx context.Context, table string) (*models.DependencyInfo, error) {
	ok, err := a.catalog.HasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.UnknownTable(table)
	}

	fks, err := a.catalog.ListForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}

	referenced := referencedTables(fks)
	counts := a.countAll(ctx, referenced)
	return BuildDependencyInfo(table, fks, counts), nil
}

// countAll runs CountRows for each table with bounded concurrency. CountRows
// fails closed, so the group never reports an error.
func (a *DependencyAnalyzer) countAll(ctx context.Context, tables []string) map[string]int64 {
	results := make([]int64, len(tables))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, t := range tables {
		g.Go(func() error {
			results[i] = a.catalog.CountRows(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	counts := make(map[string]int64, len(tables))
	for i, t := range tables {
		counts[t] = results[i]
	}
	return counts
}

func referencedTables(fks []models.ForeignKeyDescriptor) []string {
	seen := make(map[string]bool, len(fks))
	out := make([]string, 0, len(fks))
	for _, fk := range fks {
		if !seen[fk.ReferencedTable] {
			seen[fk.ReferencedTable] = true
			out = append(out, fk.ReferencedTable)
		}
	}
	sort.Strings(out)
	return out
}

// BuildDependencyInfo derives dependency information from foreign keys and
// row counts already taken. A referenced table missing from counts is
// treated as empty.
func BuildDependencyInfo(table string, fks []models.ForeignKeyDescriptor, counts map[string]int64) *models.DependencyInfo {
	info := &models.DependencyInfo{
		Table:       table,
		Edges:       make([]models.DependencyEdge, 0, len(fks)),
		Referenced:  referencedTables(fks),
		Unsatisfied: []string{},
		RowCounts:   make(map[string]int64),
	}

	for _, fk := range fks {
		info.Edges = append(info.Edges, models.DependencyEdge{
			Column:           fk.Column,
			ReferencedTable:  fk.ReferencedTable,
			ReferencedColumn: fk.ReferencedColumn,
		})
		if fk.ReferencedTable == table {
			info.SelfReferencing = true
		}
	}

	for _, ref := range info.Referenced {
		n := counts[ref]
		info.RowCounts[ref] = n
		if n == 0 {
			info.Unsatisfied = append(info.Unsatisfied, ref)
		}
	}
	return info
}
