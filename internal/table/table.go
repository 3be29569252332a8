package table

import "fmt"

// Value is the raw content of one table cell as decoded by a provider.
//
// The wrapped value is nil (the table's null marker), a string, a number
// (json.Number, float64, int, int64), a bool, or a []any of those.
type Value struct {
	v any
}

// ValueOf wraps a decoded cell value. A []string is stored as []any.
func ValueOf(v any) Value {
	if ss, ok := v.([]string); ok {
		items := make([]any, len(ss))
		for i, s := range ss {
			items[i] = s
		}
		return Value{v: items}
	}
	return Value{v: v}
}

// Null is the undefined cell.
func Null() Value {
	return Value{}
}

// Raw returns the wrapped value.
func (v Value) Raw() any {
	return v.v
}

type key struct {
	row, column string
}

// Table is an ordered set of rows and columns with a cell lookup.
// It is built once by a provider and read-only afterwards.
type Table struct {
	Name    string
	Rows    []string
	Columns []string

	cells map[key]Value
}

// New creates an empty table with the given row and column order.
func New(name string, rows, columns []string) *Table {
	return &Table{
		Name:    name,
		Rows:    rows,
		Columns: columns,
		cells:   make(map[key]Value),
	}
}

// Set stores the value of a cell. Providers call this while building.
func (t *Table) Set(row, column string, v Value) {
	t.cells[key{row, column}] = v
}

// Cell returns the value at (row, column), or Null if unset.
func (t *Table) Cell(row, column string) Value {
	return t.cells[key{row, column}]
}

// String returns a short description used in log output.
func (t *Table) String() string {
	return fmt.Sprintf("table %q: %d rows x %d columns", t.Name, len(t.Rows), len(t.Columns))
}
