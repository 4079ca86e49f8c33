package feed

import (
	"fmt"
	"strconv"
)

// Table is an in-memory product feed: named columns in header order over
// ordered rows. Every row holds exactly one cell per column; a missing value
// is the empty string.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable creates an empty table with the given header.
// Duplicate names are renamed "name.1", "name.2", ... in order of appearance.
func NewTable(columns []string) *Table {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		t.addColumn(dedupeName(c, t.index))
	}
	return t
}

// dedupeName returns name, or the first "name.N" not already taken.
func dedupeName(name string, taken map[string]int) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for n := 1; ; n++ {
		candidate := name + "." + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

func (t *Table) addColumn(name string) {
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
}

// Columns returns a copy of the column names in header order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// AppendRow adds a row. It fails if the field count does not match the header.
func (t *Table) AppendRow(values []string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d fields, expected %d", len(values), len(t.columns))
	}
	row := make([]string, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// Value returns the cell at row i for the named column.
// The second result is false when the column does not exist.
func (t *Table) Value(i int, column string) (string, bool) {
	pos, ok := t.index[column]
	if !ok {
		return "", false
	}
	return t.rows[i][pos], true
}

// Values returns a copy of the named column, or nil if it does not exist.
func (t *Table) Values(column string) []string {
	pos, ok := t.index[column]
	if !ok {
		return nil
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[pos]
	}
	return out
}

// SetColumn appends the named column, or overwrites it in place when it
// already exists. values must have one entry per row.
func (t *Table) SetColumn(name string, values []string) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.rows))
	}

	if pos, ok := t.index[name]; ok {
		for i, row := range t.rows {
			row[pos] = values[i]
		}
		return nil
	}

	t.addColumn(name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], values[i])
	}
	return nil
}

// Filter returns a new table holding the rows whose mask entry is true.
// The mask must have one entry per row.
func (t *Table) Filter(mask []bool) (*Table, error) {
	if len(mask) != len(t.rows) {
		return nil, fmt.Errorf("mask has %d entries, table has %d rows", len(mask), len(t.rows))
	}

	out := &Table{
		columns: t.Columns(),
		index:   make(map[string]int, len(t.columns)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	for i, keep := range mask {
		if keep {
			out.rows = append(out.rows, t.Row(i))
		}
	}
	return out, nil
}
