package services

import (
	"context"
	"fmt"
	"strings"

	"schemabrowser/internal/models"
	"schemabrowser/internal/utils"
)

const (
	maxJunctionTableColumns = 6
	minJunctionTableFKs     = 2
)

type relationship struct {
	fromTable string
	toTable   string
	kind      string
}

type diagramTable struct {
	name        string
	columns     []models.ColumnDescriptor
	primaryKeys []string
	foreignKeys []models.ForeignKeyDescriptor
}

// DiagramService renders the live schema as a Mermaid ER diagram.
type DiagramService struct {
	catalog Catalog
}

func NewDiagramService(catalog Catalog) *DiagramService {
	return &DiagramService{catalog: catalog}
}

// Render reads every table from the catalog and returns the diagram source.
func (s *DiagramService) Render(ctx context.Context) (string, error) {
	tables, err := s.readTables(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read tables: %w", err)
	}
	return generateMermaid(tables, buildRelationships(tables)), nil
}

func (s *DiagramService) readTables(ctx context.Context) ([]diagramTable, error) {
	names, err := s.catalog.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]diagramTable, 0, len(names))
	for _, name := range names {
		columns, err := s.catalog.DescribeColumns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get columns for %s: %w", name, err)
		}
		fks, err := s.catalog.ListForeignKeys(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get foreign keys for %s: %w", name, err)
		}

		t := diagramTable{name: name, columns: columns, foreignKeys: fks}
		for _, c := range columns {
			if c.IsPrimaryKey {
				t.primaryKeys = append(t.primaryKeys, c.Name)
			}
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func buildRelationships(tables []diagramTable) []relationship {
	var rels []relationship
	junctions := detectJunctionTables(tables)

	for _, t := range tables {
		// Junction tables collapse into many-to-many edges between the tables they join.
		if junctions[t.name] {
			for i := 0; i < len(t.foreignKeys); i++ {
				for j := i + 1; j < len(t.foreignKeys); j++ {
					rels = append(rels, relationship{
						fromTable: t.foreignKeys[i].ReferencedTable,
						toTable:   t.foreignKeys[j].ReferencedTable,
						kind:      "}o--o{",
					})
				}
			}
			continue
		}

		for _, fk := range t.foreignKeys {
			kind := "||--o{"
			if len(t.primaryKeys) == 1 && t.primaryKeys[0] == fk.Column {
				kind = "||--||"
			}
			rels = append(rels, relationship{fromTable: t.name, toTable: fk.ReferencedTable, kind: kind})
		}
	}
	return rels
}

// detectJunctionTables finds narrow tables whose primary key is made of at
// least two foreign-key columns.
func detectJunctionTables(tables []diagramTable) map[string]bool {
	junctions := make(map[string]bool)
	for _, t := range tables {
		if len(t.foreignKeys) < minJunctionTableFKs ||
			len(t.primaryKeys) < minJunctionTableFKs ||
			len(t.columns) > maxJunctionTableColumns {
			continue
		}

		allInPK := true
		for _, fk := range t.foreignKeys {
			if !utils.Contains(t.primaryKeys, fk.Column) {
				allInPK = false
				break
			}
		}
		if allInPK {
			junctions[t.name] = true
		}
	}
	return junctions
}

func generateMermaid(tables []diagramTable, rels []relationship) string {
	var sb strings.Builder
	sb.WriteString("erDiagram\n")

	if len(rels) > 0 {
		seen := make(map[string]bool)
		for _, rel := range rels {
			key := rel.fromTable + ":" + rel.kind + ":" + rel.toTable
			if seen[key] {
				continue
			}
			seen[key] = true
			// Mermaid requires a label, even an empty one.
			fmt.Fprintf(&sb, "    %s %s %s : \"\"\n", mermaidName(rel.fromTable), rel.kind, mermaidName(rel.toTable))
		}
		sb.WriteString("\n")
	}

	for _, t := range tables {
		fmt.Fprintf(&sb, "    %s {\n", mermaidName(t.name))
		for _, col := range t.columns {
			annotations := ""
			if utils.Contains(t.primaryKeys, col.Name) {
				annotations = " PK"
			}
			if isForeignKey(t.foreignKeys, col.Name) {
				annotations += " FK"
			}
			fmt.Fprintf(&sb, "        %s %s%s\n", simplifyDataType(col.DataType), mermaidName(col.Name), annotations)
		}
		sb.WriteString("    }\n\n")
	}
	return sb.String()
}

// mermaidName keeps the case of name and replaces every character Mermaid
// does not accept in an identifier with an underscore.
func mermaidName(name string) string {
	if name == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}

func simplifyDataType(dataType string) string {
	dt := strings.ToLower(dataType)

	switch {
	case dt == "":
		return "any"
	case dt == "integer" || dt == "int":
		return "int"
	case strings.HasPrefix(dt, "character varying") || strings.HasPrefix(dt, "varchar"):
		return "varchar"
	case strings.HasPrefix(dt, "character"):
		return "char"
	case strings.HasPrefix(dt, "timestamp without time zone"):
		return "timestamp"
	case strings.HasPrefix(dt, "timestamp with time zone"):
		return "timestamptz"
	case strings.HasPrefix(dt, "time without time zone"):
		return "time"
	case strings.HasPrefix(dt, "numeric"):
		return "numeric"
	case strings.HasPrefix(dt, "decimal"):
		return "decimal"
	case dt == "double precision":
		return "double"
	case strings.HasPrefix(dt, "array"):
		return "array"
	default:
		// Mermaid attribute types cannot contain spaces or parentheses.
		return strings.NewReplacer(" ", "_", "(", "", ")", "", ",", "_").Replace(dt)
	}
}

func isForeignKey(fks []models.ForeignKeyDescriptor, column string) bool {
	for _, fk := range fks {
		if fk.Column == column {
			return true
		}
	}
	return false
}
