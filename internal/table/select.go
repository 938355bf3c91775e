package table

import (
	"errors"
	"fmt"
	"strings"
)

// UnknownColumnError is returned when a selection names a column the table
// does not have.
type UnknownColumnError struct {
	Name      string
	Available []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// ErrDuplicateSelection is returned when a selection names a column twice.
var ErrDuplicateSelection = errors.New("column selected more than once")

// Select returns a table restricted to exactly the named columns, in the
// given order. An empty selection keeps every column in its original order.
// On error the receiver is left untouched and no table is returned.
func (t *Table) Select(names []string) (*Table, error) {
	if len(names) == 0 {
		return t.Clone(), nil
	}
	if err := t.ValidateSelection(names); err != nil {
		return nil, err
	}
	picked := make([]*Column, len(names))
	for i, name := range names {
		c, _ := t.Column(name)
		picked[i] = c.Clone()
	}
	return &Table{cols: picked, rows: t.rows}, nil
}

// ValidateSelection checks names against the table without building a new
// one.
func (t *Table) ValidateSelection(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateSelection, name)
		}
		seen[name] = struct{}{}
		if _, ok := t.Column(name); !ok {
			return &UnknownColumnError{Name: name, Available: t.ColumnNames()}
		}
	}
	return nil
}
