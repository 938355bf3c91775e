// Package clean implements the cleaning operations offered on a loaded
// table: duplicate-row removal and mean imputation of missing numbers.
//
// Each operation returns a new table and leaves its input untouched.
// Applying an operation twice gives the same table as applying it once.
package clean

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/datasweeper/internal/table"
	"github.com/montanaflynn/stats"
)

// Op names a cleaning operation.
type Op int

const (
	RemoveDuplicatesOp Op = iota
	FillMissingNumericOp
)

func (o Op) String() string {
	switch o {
	case RemoveDuplicatesOp:
		return "remove-duplicates"
	case FillMissingNumericOp:
		return "fill-missing"
	default:
		return "unknown"
	}
}

// Stats describes what an operation changed.
type Stats struct {
	Op          Op
	RowsDropped int
	CellsFilled int
	// Filled maps each imputed column to the mean written into it.
	Filled map[string]float64
}

// Message is the short confirmation shown to the user after an operation.
func (s Stats) Message() string {
	switch s.Op {
	case RemoveDuplicatesOp:
		return "Duplicates Removed Successfully (" + strconv.Itoa(s.RowsDropped) + " dropped)"
	case FillMissingNumericOp:
		return "Missing Values Filled Successfully (" + strconv.Itoa(s.CellsFilled) + " filled)"
	default:
		return ""
	}
}

// RemoveDuplicates drops every row whose cells all equal those of an
// earlier row, keeping the first occurrence and the original order.
func RemoveDuplicates(t *table.Table) (*table.Table, Stats) {
	cols := t.Columns()
	seen := make(map[string]struct{}, t.NumRows())
	keep := make([]int, 0, t.NumRows())
	var b strings.Builder
	for i := 0; i < t.NumRows(); i++ {
		b.Reset()
		for _, c := range cols {
			k := c.Key(i)
			// length-prefixed so "a,b"+"c" never collides with "a"+"b,c"
			b.WriteString(strconv.Itoa(len(k)))
			b.WriteByte(':')
			b.WriteString(k)
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	return t.Take(keep), Stats{Op: RemoveDuplicatesOp, RowsDropped: t.NumRows() - len(keep)}
}

// FillMissingNumeric replaces null cells of every numeric column with the
// mean of that column's non-null values. Columns without any value are
// left as they are since their mean is undefined.
func FillMissingNumeric(t *table.Table) (*table.Table, Stats) {
	out := t.Clone()
	st := Stats{Op: FillMissingNumericOp, Filled: map[string]float64{}}
	for _, c := range out.Columns() {
		if c.Type != table.Numeric || c.Missing() == 0 {
			continue
		}
		vals := c.Floats()
		if len(vals) == 0 {
			continue
		}
		mean, err := stats.Mean(vals)
		if err != nil {
			continue
		}
		text := table.FormatNumber(mean)
		for i := range c.Cells {
			if c.Cells[i].Null {
				c.Cells[i] = table.Value(text)
				st.CellsFilled++
			}
		}
		st.Filled[c.Name] = mean
	}
	return out, st
}
