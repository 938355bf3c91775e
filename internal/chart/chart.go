// Package chart draws a minimal text bar display of a table's first two
// numeric columns.
package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datasweeper/internal/table"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
)

// ErrNoNumericColumns is returned when the table has nothing to plot.
var ErrNoNumericColumns = errors.New("no numeric columns to chart")

const (
	// MaxSeries is how many numeric columns are plotted.
	MaxSeries = 2
	// DefaultWidth is the bar length used for the largest magnitude.
	DefaultWidth = 40
	// DefaultMaxRows caps the rows drawn; the rest are summarised.
	DefaultMaxRows = 25
)

var (
	seriesColors = []lipgloss.Color{lipgloss.Color("39"), lipgloss.Color("214")}
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Options controls rendering.
type Options struct {
	Width   int
	MaxRows int
}

// Bars renders t with the default row cap.
func Bars(t *table.Table, width int) (string, error) {
	return Render(t, Options{Width: width, MaxRows: DefaultMaxRows})
}

// Render plots the first two Numeric columns of t. A table with a single
// numeric column is drawn alone.
func Render(t *table.Table, opt Options) (string, error) {
	series := pick(t)
	if len(series) == 0 {
		return "", ErrNoNumericColumns
	}
	if opt.Width <= 0 {
		opt.Width = DefaultWidth
	}
	if opt.MaxRows <= 0 || opt.MaxRows > t.NumRows() {
		opt.MaxRows = t.NumRows()
	}

	lines := layout(series, opt)
	nameW := 0
	for _, c := range series {
		if len(c.Name) > nameW {
			nameW = len(c.Name)
		}
	}
	rowW := len(strconv.Itoa(opt.MaxRows))

	var b strings.Builder
	for i, c := range series {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(styleFor(i).Render("█ " + c.Name))
	}
	b.WriteString("\n")
	for _, ln := range lines {
		label := ""
		if ln.Series == 0 {
			label = strconv.Itoa(ln.Row)
		}
		bar := strings.Repeat("█", ln.Bar)
		if ln.Negative {
			bar = strings.Repeat("░", ln.Bar)
		}
		fmt.Fprintf(&b, "%*s %-*s %s%s %s\n",
			rowW, label,
			nameW, series[ln.Series].Name,
			styleFor(ln.Series).Render(bar),
			strings.Repeat(" ", opt.Width-ln.Bar),
			ln.Value,
		)
	}
	if rest := t.NumRows() - opt.MaxRows; rest > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more rows", rest)))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func styleFor(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(seriesColors[i%len(seriesColors)])
}

func pick(t *table.Table) []*table.Column {
	cols := t.NumericColumns()
	if len(cols) > MaxSeries {
		cols = cols[:MaxSeries]
	}
	return cols
}

// line is one bar: row index, series index, bar length in cells.
type line struct {
	Row      int
	Series   int
	Bar      int
	Negative bool
	Value    string
}

func layout(series []*table.Column, opt Options) []line {
	var mags []float64
	for _, c := range series {
		for i := 0; i < opt.MaxRows; i++ {
			if v, ok := c.Float(i); ok {
				mags = append(mags, math.Abs(v))
			}
		}
	}
	peak := 0.0
	if len(mags) > 0 {
		peak = floats.Max(mags)
	}

	var out []line
	for i := 0; i < opt.MaxRows; i++ {
		for s, c := range series {
			ln := line{Row: i, Series: s}
			if v, ok := c.Float(i); ok {
				ln.Bar = barLen(v, peak, opt.Width)
				ln.Negative = v < 0
				ln.Value = c.Cells[i].Text
			}
			out = append(out, ln)
		}
	}
	return out
}

// barLen scales |v| against peak into [0, width]. Dividing first keeps
// subnormal peaks from overflowing the scale factor.
func barLen(v, peak float64, width int) int {
	if peak <= 0 || math.IsInf(peak, 0) {
		return 0
	}
	n := int(math.Round(math.Abs(v) / peak * float64(width)))
	switch {
	case n < 0:
		return 0
	case n > width:
		return width
	}
	return n
}
