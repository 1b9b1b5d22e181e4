package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"schemabrowser/internal/models"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func renderOverview(w io.Writer, summaries []models.TableSummary) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Table", "Category", "Rows", "Depends on", "Unsatisfied"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})

	var empty int
	for _, s := range summaries {
		blocking := s.Dependencies.Blocking()
		if len(blocking) > 0 {
			empty++
		}
		t.AppendRow(table.Row{
			s.Name,
			string(s.Category),
			s.RowCount,
			strings.Join(s.Dependencies.Referenced, ", "),
			strings.Join(blocking, ", "),
		})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d tables", len(summaries)), "", "", "", fmt.Sprintf("%d blocked", empty)})
	t.Render()
}

func renderDescriptor(w io.Writer, desc *models.TableDescriptor) {
	fmt.Fprintf(w, "%s (%s)\n", desc.Name, desc.Category)

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Column", "Type", "Key", "Nullable", "Default", "References"})
	for _, c := range desc.Columns {
		key := ""
		switch {
		case c.IsPrimaryKey && c.IsAutoGenerated:
			key = "PK (auto)"
		case c.IsPrimaryKey:
			key = "PK"
		case c.IsAutoGenerated:
			key = "auto"
		}
		def := ""
		if c.Default != nil {
			def = *c.Default
		}
		refs := ""
		for _, fk := range desc.ForeignKeys {
			if fk.Column == c.Name {
				refs = fk.ReferencedTable + "." + fk.ReferencedColumn
			}
		}
		t.AppendRow(table.Row{c.Position, c.Name, c.DataType, key, yesNo(c.IsNullable), def, refs})
	}
	t.Render()

	if !desc.HasPrimaryKey() {
		fmt.Fprintln(w, "No single-column primary key: rows cannot be edited or deleted.")
	}
}

func renderDependencies(w io.Writer, info *models.DependencyInfo) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Column", "References", "Rows", "Status"})
	for _, e := range info.Edges {
		n := info.RowCounts[e.ReferencedTable]
		status := "ok"
		if n == 0 {
			status = "empty"
			if e.ReferencedTable == info.Table {
				status = "empty (self)"
			}
		}
		t.AppendRow(table.Row{e.Column, e.ReferencedTable + "." + e.ReferencedColumn, n, status})
	}
	t.Render()

	if blocking := info.Blocking(); len(blocking) > 0 {
		fmt.Fprintf(w, "Inserts into %s are blocked until these tables have rows: %s\n",
			info.Table, strings.Join(blocking, ", "))
	} else {
		fmt.Fprintf(w, "All prerequisites of %s are satisfied.\n", info.Table)
	}
}

func renderRows(w io.Writer, view *models.TableView) {
	t := newTable(w)
	columns := view.Columns
	if len(columns) == 0 {
		columns = view.Table.ColumnNames()
	}

	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, row := range view.Rows {
		out := make(table.Row, len(columns))
		for i, c := range columns {
			v, _ := row.Get(c)
			if v == nil {
				out[i] = "NULL"
			} else {
				out[i] = v
			}
		}
		t.AppendRow(out)
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d rows", len(view.Rows))})
	t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
