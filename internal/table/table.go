// Package table holds the in-memory tabular model shared by the loader,
// cleaning, selection and export steps.
//
// A Table is an ordered set of uniquely named columns of equal length. Each
// column carries a ColumnType tag that is inferred once when the table is
// built and travels with the column afterwards.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// Cell is a single value. Null marks a missing entry; Text is then empty.
type Cell struct {
	Text string
	Null bool
}

// Value returns a non-null cell holding s.
func Value(s string) Cell { return Cell{Text: s} }

// NullCell returns a missing cell.
func NullCell() Cell { return Cell{Null: true} }

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Type  ColumnType
	Cells []Cell
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	cells := make([]Cell, len(c.Cells))
	copy(cells, c.Cells)
	return &Column{Name: c.Name, Type: c.Type, Cells: cells}
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Cells) }

// Missing counts null cells.
func (c *Column) Missing() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.Null {
			n++
		}
	}
	return n
}

// Float parses cell i as a number. ok is false for null or non-numeric cells.
func (c *Column) Float(i int) (float64, bool) {
	if i < 0 || i >= len(c.Cells) || c.Cells[i].Null {
		return 0, false
	}
	return parseNumber(c.Cells[i].Text)
}

// Floats returns every non-null numeric value in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Cells))
	for i := range c.Cells {
		if v, ok := c.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// Key returns a canonical form of cell i used for equality of rows:
// numbers compare by value, booleans case-insensitively, everything else
// by text.
func (c *Column) Key(i int) string {
	cell := c.Cells[i]
	if cell.Null {
		return "\x00"
	}
	switch c.Type {
	case Numeric:
		if v, ok := parseNumber(cell.Text); ok {
			return formatNumber(v)
		}
	case Boolean:
		if b, ok := parseBool(cell.Text); ok {
			if b {
				return "true"
			}
			return "false"
		}
	}
	return cell.Text
}

// Table is an ordered collection of uniquely named columns with a uniform
// row count.
type Table struct {
	cols []*Column
	rows int
}

// ErrDuplicateColumn is returned when two columns share a name.
var ErrDuplicateColumn = errors.New("duplicate column name")

// ErrRaggedColumns is returned when columns differ in length.
var ErrRaggedColumns = errors.New("columns have different lengths")

// New builds a table from a raw header and string records. Header names are
// normalised (see NormalizeHeader), short records are padded with nulls,
// null tokens become null cells and each column's type is inferred.
// Records longer than the header are truncated; loaders reject them first
// when that matters.
func New(header []string, records [][]string) *Table {
	names := NormalizeHeader(header)
	cols := make([]*Column, len(names))
	for j, name := range names {
		cells := make([]Cell, len(records))
		for i, rec := range records {
			if j >= len(rec) || IsNullToken(rec[j]) {
				cells[i] = NullCell()
				continue
			}
			cells[i] = Value(rec[j])
		}
		cols[j] = &Column{Name: name, Type: InferType(cells), Cells: cells}
	}
	return &Table{cols: cols, rows: len(records)}
}

// FromColumns assembles a table from already typed columns. Names must be
// unique and every column must have the same length.
func FromColumns(cols []*Column) (*Table, error) {
	seen := make(map[string]struct{}, len(cols))
	rows := 0
	for i, c := range cols {
		if _, ok := seen[c.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		seen[c.Name] = struct{}{}
		if i == 0 {
			rows = c.Len()
		} else if c.Len() != rows {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrRaggedColumns, c.Name, c.Len(), rows)
		}
	}
	return &Table{cols: cols, rows: rows}, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in order. Callers must not mutate them; use
// Clone for a private copy.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// NumericColumns returns the columns tagged Numeric, in order.
func (t *Table) NumericColumns() []*Column {
	var out []*Column
	for _, c := range t.cols {
		if c.Type == Numeric {
			out = append(out, c)
		}
	}
	return out
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.cols))
	for j, c := range t.cols {
		row[j] = c.Cells[i]
	}
	return row
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Clone()
	}
	return &Table{cols: cols, rows: t.rows}
}

// Take returns a new table holding only the given rows, in the given order.
// Column types are kept as they are.
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.cols))
	for j, c := range t.cols {
		cells := make([]Cell, len(rows))
		for k, i := range rows {
			cells[k] = c.Cells[i]
		}
		cols[j] = &Column{Name: c.Name, Type: c.Type, Cells: cells}
	}
	return &Table{cols: cols, rows: len(rows)}
}

// Head returns the first n rows (or fewer).
func (t *Table) Head(n int) *Table {
	if n < 0 || n > t.rows {
		n = t.rows
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.Take(idx)
}

// Equal reports whether both tables have the same column names, types and
// values. Numeric cells compare with a small relative tolerance so values
// that went through a spreadsheet's 15-digit formatting still match.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.rows != o.rows || len(t.cols) != len(o.cols) {
		return false
	}
	for j, a := range t.cols {
		b := o.cols[j]
		if a.Name != b.Name || a.Type != b.Type {
			return false
		}
		for i := 0; i < t.rows; i++ {
			if !cellsEqual(a, b, i) {
				return false
			}
		}
	}
	return true
}

func cellsEqual(a, b *Column, i int) bool {
	ca, cb := a.Cells[i], b.Cells[i]
	if ca.Null || cb.Null {
		return ca.Null == cb.Null
	}
	if a.Type == Numeric {
		x, okx := parseNumber(ca.Text)
		y, oky := parseNumber(cb.Text)
		if okx && oky {
			return nearlyEqual(x, y)
		}
	}
	return a.Key(i) == b.Key(i)
}

// String renders the table as a small pipe-separated grid for debugging and
// test failure messages.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.ColumnNames(), " | "))
	b.WriteString("\n")
	for i := 0; i < t.rows; i++ {
		for j, c := range t.cols {
			if j > 0 {
				b.WriteString(" | ")
			}
			if c.Cells[i].Null {
				b.WriteString("<null>")
			} else {
				b.WriteString(c.Cells[i].Text)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
