// Package frame provides the column-ordered table the enrichment pipeline
// and the metrics aggregators operate on. Tables carry no fixed schema:
// rows are maps from column name to value, and columns a batch never
// provided are simply absent. Absence is represented by a missing key or a
// nil value, never by a zero value.
package frame

import (
	"errors"
	"slices"
)

// ErrNotTabular is returned when input rows reference no declared columns.
var ErrNotTabular = errors.New("input is not tabular")

// Row is a single record. Values are one of string, bool, int, float64 or
// time.Time; anything else is treated as opaque passthrough data.
type Row map[string]any

// Table is an ordered set of column names plus the rows that populate
// them. All pipeline stages and aggregators treat tables as immutable:
// they clone before writing, so a caller's input is never mutated.
type Table struct {
	columns []string
	rows    []Row
}

// New returns an empty table with the given column order.
func New(columns ...string) *Table {
	return &Table{columns: slices.Clone(columns)}
}

// FromRows builds a table from pre-existing rows. Columns declare the
// order; a row key outside the declared columns is an error so that
// structurally broken input fails fast instead of silently dropping data.
func FromRows(columns []string, rows []Row) (*Table, error) {
	for _, row := range rows {
		for key := range row {
			if !slices.Contains(columns, key) {
				return nil, ErrNotTabular
			}
		}
	}
	return &Table{columns: slices.Clone(columns), rows: rows}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the column names in order. The returned slice is a copy.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Has reports whether the table declares the named column.
func (t *Table) Has(column string) bool {
	return slices.Contains(t.columns, column)
}

// Row returns the i-th row. The row is shared, not copied; callers that
// hold a cloned table may mutate it freely.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Rows returns the backing row slice. Shared like Row.
func (t *Table) Rows() []Row {
	return t.rows
}

// Append adds a row to the table.
func (t *Table) Append(row Row) {
	t.rows = append(t.rows, row)
}

// AddColumns declares columns that are not yet present, preserving the
// order in which they are added. Existing columns are left alone, which
// keeps repeated pipeline runs idempotent.
func (t *Table) AddColumns(names ...string) {
	for _, name := range names {
		if !slices.Contains(t.columns, name) {
			t.columns = append(t.columns, name)
		}
	}
}

// Rename renames a column in place, moving cell values along with it. A
// missing source column is a no-op; if the target already exists its
// values are overwritten.
func (t *Table) Rename(from, to string) {
	idx := slices.Index(t.columns, from)
	if idx < 0 {
		return
	}
	if slices.Contains(t.columns, to) {
		t.columns = slices.Delete(t.columns, idx, idx+1)
	} else {
		t.columns[idx] = to
	}
	for _, row := range t.rows {
		if v, ok := row[from]; ok {
			row[to] = v
			delete(row, from)
		}
	}
}

// Clone returns a deep copy: new column slice, new row maps. Cell values
// are copied by assignment, which is sufficient for the value types rows
// hold.
func (t *Table) Clone() *Table {
	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		cloned := make(Row, len(row))
		for k, v := range row {
			cloned[k] = v
		}
		rows[i] = cloned
	}
	return &Table{columns: slices.Clone(t.columns), rows: rows}
}

// Filter returns a new table holding clones of the rows the predicate
// accepts, preserving insertion order.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.columns...)
	for _, row := range t.rows {
		if keep(row) {
			cloned := make(Row, len(row))
			for k, v := range row {
				cloned[k] = v
			}
			out.Append(cloned)
		}
	}
	return out
}

// Slice returns a shallow table over rows [from, to). Used to partition
// work; the partitions share row maps with the parent.
func (t *Table) Slice(from, to int) *Table {
	return &Table{columns: slices.Clone(t.columns), rows: t.rows[from:to]}
}

// Concat appends all rows of other to a clone of t. Column sets are
// merged in order of first appearance.
func Concat(tables ...*Table) *Table {
	out := New()
	for _, t := range tables {
		out.AddColumns(t.columns...)
		out.rows = append(out.rows, t.rows...)
	}
	return out
}
