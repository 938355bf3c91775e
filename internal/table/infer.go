package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ColumnType tags the kind of values a column holds.
type ColumnType int

const (
	Unknown ColumnType = iota
	Numeric
	Text
	Boolean
	Date
)

func (t ColumnType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	case Boolean:
		return "boolean"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// nullTokens mirrors the markers spreadsheet tools commonly write for a
// missing value.
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
}

// IsNullToken reports whether raw denotes a missing value.
func IsNullToken(raw string) bool {
	_, ok := nullTokens[strings.TrimSpace(raw)]
	return ok
}

// InferType picks the narrowest type that fits every non-null cell:
// numeric, then boolean, then date, falling back to text. A column with
// no values at all is Unknown.
func InferType(cells []Cell) ColumnType {
	var seen, num, boolean, date int
	for _, c := range cells {
		if c.Null {
			continue
		}
		seen++
		if _, ok := parseNumber(c.Text); ok {
			num++
			continue
		}
		if _, ok := parseBool(c.Text); ok {
			boolean++
			continue
		}
		if _, ok := parseDate(c.Text); ok {
			date++
		}
	}
	switch {
	case seen == 0:
		return Unknown
	case num == seen:
		return Numeric
	case boolean == seen:
		return Boolean
	case date == seen:
		return Date
	default:
		return Text
	}
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"1/2/06", "01-02-06",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBool reads a boolean cell value ("true"/"false", any case).
func ParseBool(s string) (bool, bool) { return parseBool(s) }

// ParseNumber reads a finite float from a cell value.
func ParseNumber(s string) (float64, bool) { return parseNumber(s) }

// FormatNumber renders v with the fewest digits that parse back to v.
func FormatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func formatNumber(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func nearlyEqual(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= 1e-12 || diff <= scale*1e-12
}

// NormalizeHeader trims header names, replaces blanks with "Unnamed: i" and
// suffixes repeats with ".1", ".2", ... so every name is unique.
func NormalizeHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for {
			if _, dup := seen[name]; !dup {
				break
			}
			seen[base]++
			name = base + "." + strconv.Itoa(seen[base])
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}
