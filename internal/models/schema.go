package models

import "sort"

// Category groups tables for presentation. It is derived from the
// classification policy and never stored.
type Category string

const (
	CategoryReference Category = "reference"
	CategoryParent    Category = "parent"
	CategoryChild     Category = "child"
	CategoryGeneral   Category = "general"
)

type ColumnDescriptor struct {
	Name            string  `json:"name"`
	DataType        string  `json:"data_type"`
	Position        int     `json:"position"`
	IsPrimaryKey    bool    `json:"is_primary_key"`
	IsAutoGenerated bool    `json:"is_auto_generated"`
	IsNullable      bool    `json:"is_nullable"`
	Default         *string `json:"default,omitempty"`
}

type ForeignKeyDescriptor struct {
	Table            string `json:"table"`
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

type TableDescriptor struct {
	Name             string                 `json:"name"`
	Columns          []ColumnDescriptor     `json:"columns"`
	PrimaryKeyColumn string                 `json:"primary_key,omitempty"`
	ForeignKeys      []ForeignKeyDescriptor `json:"foreign_keys"`
	Category         Category               `json:"category"`
}

// HasPrimaryKey reports whether the table has a single-column primary key.
func (t *TableDescriptor) HasPrimaryKey() bool {
	return t.PrimaryKeyColumn != ""
}

// Column returns the named column descriptor.
func (t *TableDescriptor) Column(name string) (ColumnDescriptor, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// ColumnNames returns column names in ordinal order.
func (t *TableDescriptor) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// DependencyEdge is one foreign-key column of the target table and the table it points to.
type DependencyEdge struct {
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

type DependencyInfo struct {
	Table           string           `json:"table"`
	Edges           []DependencyEdge `json:"edges"`
	Referenced      []string         `json:"referenced"`
	Unsatisfied     []string         `json:"unsatisfied"`
	RowCounts       map[string]int64 `json:"row_counts"`
	SelfReferencing bool             `json:"self_referencing"`
}

// Blocking returns the unsatisfied prerequisites that should stop an insert.
// A table never blocks itself: a new self-referencing table starts empty.
func (d DependencyInfo) Blocking() []string {
	blocking := make([]string, 0, len(d.Unsatisfied))
	for _, name := range d.Unsatisfied {
		if name != d.Table {
			blocking = append(blocking, name)
		}
	}
	return blocking
}

// Satisfied reports whether no prerequisite blocks an insert.
func (d DependencyInfo) Satisfied() bool {
	return len(d.Blocking()) == 0
}

type TableSummary struct {
	Name         string         `json:"name"`
	Category     Category       `json:"category"`
	RowCount     int64          `json:"row_count"`
	Dependencies DependencyInfo `json:"dependencies"`
}

// GroupByCategory buckets summaries by category, keeping name order inside each bucket.
func GroupByCategory(summaries []TableSummary) map[Category][]TableSummary {
	groups := make(map[Category][]TableSummary)
	for _, s := range summaries {
		groups[s.Category] = append(groups[s.Category], s)
	}
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool { return g[i].Name < g[j].Name })
	}
	return groups
}
