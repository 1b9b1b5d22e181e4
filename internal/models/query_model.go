package models

type StatementKind int

const (
	StatementRead StatementKind = iota
	StatementWrite
)

func (k StatementKind) String() string {
	if k == StatementWrite {
		return "write"
	}
	return "read"
}

// Statement is parameterized SQL plus its bound arguments.
type Statement struct {
	Kind  StatementKind
	Table string
	SQL   string
	Args  []any
}

// ExecutionResult holds Rows for reads and Affected for writes.
type ExecutionResult struct {
	Columns  []string `json:"columns,omitempty"`
	Rows     []Row    `json:"rows,omitempty"`
	Affected int64    `json:"affected"`
}

// TableView is a table descriptor together with its current rows. Columns
// is set when the rows carry more than the table's own columns.
type TableView struct {
	Table   TableDescriptor `json:"table"`
	Columns []string        `json:"columns,omitempty"`
	Rows    []Row           `json:"rows"`
}

// FieldValues maps column names to submitted values.
type FieldValues map[string]any
