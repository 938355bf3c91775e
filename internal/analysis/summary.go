package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/datasweeper/internal/clean"
	"github.com/KaramelBytes/datasweeper/internal/table"
	"github.com/montanaflynn/stats"
)

// Options controls what a summary includes.
type Options struct {
	// SampleRows is how many leading rows the report shows. Defaults to 5.
	SampleRows int
	// Correlations computes Pearson r between numeric columns.
	Correlations bool
	// Outliers counts values with a robust z-score (MAD based) above
	// OutlierThreshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns the options used by the preview command.
func DefaultOptions() Options {
	return Options{SampleRows: 5, OutlierThreshold: 3.5}
}

// Report is a markdown-friendly summary of a loaded table.
type Report struct {
	Name       string          `json:"name"`
	SizeBytes  int64           `json:"size_bytes"`
	Rows       int             `json:"rows"`
	Cols       []ColumnSummary `json:"columns"`
	Samples    [][]string      `json:"samples,omitempty"`
	Duplicates int             `json:"duplicate_rows"`
	Corr       []PairCorr      `json:"correlations,omitempty"`
	Warnings   []string        `json:"notes,omitempty"`
}

// ColumnSummary captures the type tag and statistics of one column.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"type"`
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique,omitempty"`

	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`

	OutliersCount    int     `json:"outliers,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty"`

	TopValues []CategoryCount `json:"top_values,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// PairCorr is the Pearson correlation of two numeric columns over the rows
// where both are present.
type PairCorr struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
	N int     `json:"n"`
}

// SizeKB reports the file size in kilobytes.
func (r *Report) SizeKB() float64 { return float64(r.SizeBytes) / 1024 }

// Summarize builds a Report for t. name and size describe the source file.
func Summarize(t *table.Table, name string, size int64, opt Options) *Report {
	if opt.SampleRows <= 0 {
		opt.SampleRows = 5
	}
	rep := &Report{Name: name, SizeBytes: size, Rows: t.NumRows()}

	for _, c := range t.Columns() {
		rep.Cols = append(rep.Cols, summarizeColumn(c, opt))
	}

	head := t.Head(opt.SampleRows)
	for i := 0; i < head.NumRows(); i++ {
		row := head.Row(i)
		vals := make([]string, len(row))
		for j, cell := range row {
			vals[j] = cell.Text
		}
		rep.Samples = append(rep.Samples, vals)
	}

	if t.NumCols() > 0 {
		_, st := clean.RemoveDuplicates(t)
		rep.Duplicates = st.RowsDropped
	}
	if opt.Correlations {
		rep.Corr = correlations(t.NumericColumns())
	}

	if rep.Duplicates > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d duplicate rows; use --dedupe to drop them", rep.Duplicates))
	}
	for _, c := range rep.Cols {
		if c.Kind == table.Unknown.String() && rep.Rows > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s has no values", safeName(c.Name)))
		}
	}
	if len(t.NumericColumns()) == 0 && t.NumCols() > 0 {
		rep.Warnings = append(rep.Warnings, "no numeric columns; chart and mean fill have nothing to work on")
	}
	return rep
}

func summarizeColumn(c *table.Column, opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.Name, Kind: c.Type.String(), Missing: c.Missing()}
	s.NonNull = c.Len() - s.Missing

	switch c.Type {
	case table.Numeric:
		vals := c.Floats()
		if len(vals) == 0 {
			return s
		}
		s.Min, _ = stats.Min(vals)
		s.Max, _ = stats.Max(vals)
		s.Mean, _ = stats.Mean(vals)
		if len(vals) > 1 {
			s.Std, _ = stats.StandardDeviationSample(vals)
		}
		if opt.Outliers && len(vals) >= 8 {
			thr := opt.OutlierThreshold
			if thr <= 0 {
				thr = 3.5
			}
			s.OutlierThreshold = thr
			s.OutliersCount = countOutliers(vals, thr)
		}
	case table.Text, table.Boolean, table.Date:
		counts := map[string]int{}
		for i := range c.Cells {
			if c.Cells[i].Null {
				continue
			}
			counts[c.Key(i)]++
		}
		s.Unique = len(counts)
		tops := make([]CategoryCount, 0, len(counts))
		for k, v := range counts {
			tops = append(tops, CategoryCount{Value: k, Count: v})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		if len(tops) > 8 {
			tops = tops[:8]
		}
		s.TopValues = tops
	}
	return s
}

// countOutliers uses the modified z-score 0.6745*(x-median)/MAD.
func countOutliers(vals []float64, thr float64) int {
	median, err := stats.Median(vals)
	if err != nil {
		return 0
	}
	mad, err := stats.MedianAbsoluteDeviation(vals)
	if err != nil || mad == 0 {
		return 0
	}
	n := 0
	for _, v := range vals {
		if math.Abs(0.6745*(v-median)/mad) > thr {
			n++
		}
	}
	return n
}

func correlations(cols []*table.Column) []PairCorr {
	var out []PairCorr
	for a := 0; a < len(cols); a++ {
		for b := a + 1; b < len(cols); b++ {
			var xs, ys []float64
			for i := 0; i < cols[a].Len(); i++ {
				x, okx := cols[a].Float(i)
				y, oky := cols[b].Float(i)
				if okx && oky {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			if len(xs) < 2 {
				continue
			}
			r, err := stats.Pearson(xs, ys)
			if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
				continue
			}
			out = append(out, PairCorr{A: cols[a].Name, B: cols[b].Name, R: r, N: len(xs)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return math.Abs(out[i].R) > math.Abs(out[j].R) })
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

// Markdown renders the report as plain sections suitable for a terminal or
// a standalone document.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", r.Name)
	}
	fmt.Fprintf(&b, "Size: %.2f KB\n", r.SizeKB())
	fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
	fmt.Fprintf(&b, "Columns: %d\n\n", len(r.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct)
		switch {
		case c.Kind == table.Numeric.String() && c.NonNull > 0:
			fmt.Fprintf(&b, ": min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std)
			if c.OutlierThreshold > 0 {
				fmt.Fprintf(&b, "; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold)
			}
		case len(c.TopValues) > 0:
			b.WriteString(": top ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s(%d)", safeVal(kv.Value), kv.Count)
			}
			if c.Unique > len(c.TopValues) {
				fmt.Fprintf(&b, "; unique=%d", c.Unique)
			}
		}
		b.WriteString("\n")
	}

	if len(r.Corr) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range r.Corr {
			fmt.Fprintf(&b, "- %s ~ %s: r=%.3f (n=%d)\n", p.A, p.B, p.R, p.N)
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(safeName(c.Name)))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i, val := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(safeVal(truncate(val, 80)))
			}
			b.WriteString(" |\n")
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
