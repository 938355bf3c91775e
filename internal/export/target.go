package export

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Target is the output format of a conversion.
type Target int

const (
	CSV Target = iota
	Spreadsheet
)

const (
	csvContentType  = "text/csv"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseTarget accepts csv, xlsx, excel or spreadsheet (any case).
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "xlsx", "excel", "spreadsheet":
		return Spreadsheet, nil
	default:
		return CSV, fmt.Errorf("unsupported target: %s (use csv or xlsx)", s)
	}
}

func (t Target) String() string {
	if t == Spreadsheet {
		return "Excel"
	}
	return "CSV"
}

// Ext returns the file extension including the dot.
func (t Target) Ext() string {
	if t == Spreadsheet {
		return ".xlsx"
	}
	return ".csv"
}

// ContentType returns the MIME type of the serialized output.
func (t Target) ContentType() string {
	if t == Spreadsheet {
		return xlsxContentType
	}
	return csvContentType
}

// OutputName derives the download name from the uploaded file name: the
// basename is cut at its first '.' and the target's extension appended.
// "report.v2.csv" therefore becomes "report.xlsx", not "report.v2.xlsx".
// The truncation is likely unintended but kept; callers and tests depend on
// it.
func OutputName(name string, t Target) string {
	base := filepath.Base(name)
	stem, _, _ := strings.Cut(base, ".")
	return stem + t.Ext()
}
