package database

import (
	"context"
	"fmt"
	"log"
	"strings"
)

type demoColumnKind int

const (
	demoKey demoColumnKind = iota
	demoText
	demoInt
	demoNumber
	demoDate
)

type demoColumn struct {
	name    string
	kind    demoColumnKind
	notNull bool
	refs    string // referenced table; the reference targets its key column
}

type demoTable struct {
	name    string
	columns []demoColumn
	rows    []string // reference data for the first non-key column
}

// demoSchema is the waste-management schema the browser was first built
// against. Tables are listed parents first so foreign keys resolve.
var demoSchema = []demoTable{
	{name: "WorkerRole", columns: []demoColumn{
		{name: "RoleID", kind: demoKey},
		{name: "RoleName", kind: demoText, notNull: true},
		{name: "Description", kind: demoText},
	}, rows: []string{"Operator", "Supervisor", "Technician"}},
	{name: "Worker", columns: []demoColumn{
		{name: "WorkerID", kind: demoKey},
		{name: "Name", kind: demoText, notNull: true},
		{name: "RoleID", kind: demoInt, refs: "WorkerRole"},
		{name: "Contact", kind: demoText},
		{name: "HireDate", kind: demoDate},
	}},
	{name: "TreatmentPlant", columns: []demoColumn{
		{name: "PlantID", kind: demoKey},
		{name: "Name", kind: demoText, notNull: true},
		{name: "Location", kind: demoText},
		{name: "Type", kind: demoText},
		{name: "Capacity", kind: demoNumber},
		{name: "Manager", kind: demoText},
	}},
	{name: "ProcessBatch", columns: []demoColumn{
		{name: "BatchID", kind: demoKey},
		{name: "PlantID", kind: demoInt, refs: "TreatmentPlant"},
		{name: "StartDate", kind: demoDate},
		{name: "EndDate", kind: demoDate},
		{name: "BatchType", kind: demoText},
		{name: "OutputQuantity", kind: demoNumber},
	}},
	{name: "ChemicalType", columns: []demoColumn{
		{name: "ChemicalTypeID", kind: demoKey},
		{name: "TypeName", kind: demoText, notNull: true},
	}, rows: []string{"Chlorine", "Alum", "Lime"}},
	{name: "ChemicalUsage", columns: []demoColumn{
		{name: "UsageID", kind: demoKey},
		{name: "BatchID", kind: demoInt, refs: "ProcessBatch"},
		{name: "ChemicalTypeID", kind: demoInt, refs: "ChemicalType"},
		{name: "QuantityUsed", kind: demoNumber},
		{name: "DateApplied", kind: demoDate},
	}},
	{name: "WorkerLog", columns: []demoColumn{
		{name: "LogID", kind: demoKey},
		{name: "WorkerID", kind: demoInt, refs: "Worker"},
		{name: "BatchID", kind: demoInt, refs: "ProcessBatch"},
		{name: "HoursWorked", kind: demoNumber},
		{name: "TaskDescription", kind: demoText},
	}},
	{name: "ProductType", columns: []demoColumn{
		{name: "ProductTypeID", kind: demoKey},
		{name: "TypeName", kind: demoText, notNull: true},
	}, rows: []string{"Compost", "Biogas", "Recycled Water"}},
	{name: "QualityGrade", columns: []demoColumn{
		{name: "GradeID", kind: demoKey},
		{name: "GradeName", kind: demoText, notNull: true},
	}, rows: []string{"A", "B", "C"}},
	{name: "OutputProduct", columns: []demoColumn{
		{name: "ProductID", kind: demoKey},
		{name: "BatchID", kind: demoInt, refs: "ProcessBatch"},
		{name: "ProductTypeID", kind: demoInt, refs: "ProductType"},
		{name: "GradeID", kind: demoInt, refs: "QualityGrade"},
		{name: "Quantity", kind: demoNumber},
		{name: "DispatchDate", kind: demoDate},
	}},
}

// SeedDemoSchema creates the demo schema if absent and fills its lookup
// tables when they are empty. It is idempotent.
func SeedDemoSchema(ctx context.Context, q Querier) error {
	statements, err := demoStatements(q.Driver())
	if err != nil {
		return err
	}

	for i, stmt := range statements {
		log.Printf("Running seed statement %d/%d", i+1, len(statements))
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed statement %d failed: %w", i+1, err)
		}
	}

	log.Println("Demo schema ready")
	return nil
}

func demoStatements(driver string) ([]string, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	keys := make(map[string]string, len(demoSchema))
	for _, t := range demoSchema {
		keys[t.name] = t.columns[0].name
	}

	var statements []string
	for _, t := range demoSchema {
		defs := make([]string, 0, len(t.columns))
		for _, c := range t.columns {
			def := quote(c.name) + " " + demoType(driver, c.kind)
			if c.notNull {
				def += " NOT NULL"
			}
			if c.refs != "" {
				def += fmt.Sprintf(" REFERENCES %s(%s)", quote(c.refs), quote(keys[c.refs]))
			}
			defs = append(defs, def)
		}
		statements = append(statements, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
			quote(t.name), strings.Join(defs, ",\n  ")))

		if len(t.rows) > 0 {
			statements = append(statements, demoRowsInsert(t))
		}
	}
	return statements, nil
}

func demoType(driver string, kind demoColumnKind) string {
	if driver == DriverSQLite {
		switch kind {
		case demoKey:
			return "INTEGER PRIMARY KEY AUTOINCREMENT"
		case demoInt:
			return "INTEGER"
		case demoNumber:
			return "REAL"
		default:
			return "TEXT"
		}
	}
	switch kind {
	case demoKey:
		return "SERIAL PRIMARY KEY"
	case demoInt:
		return "INTEGER"
	case demoNumber:
		return "NUMERIC(12,2)"
	case demoDate:
		return "DATE"
	default:
		return "VARCHAR(255)"
	}
}

// demoRowsInsert inserts lookup rows only when the table is still empty.
func demoRowsInsert(t demoTable) string {
	selects := make([]string, len(t.rows))
	for i, v := range t.rows {
		selects[i] = "SELECT '" + strings.ReplaceAll(v, "'", "''") + "' AS v"
	}
	col := quote(t.columns[1].name)
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT v FROM (%s) AS seed WHERE NOT EXISTS (SELECT 1 FROM %s)",
		quote(t.name), col, strings.Join(selects, " UNION ALL "), quote(t.name))
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
