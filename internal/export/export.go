// Package export serializes a table.Table to CSV or XLSX bytes for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/KaramelBytes/datasweeper/internal/table"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written for spreadsheet output.
const SheetName = "Sheet1"

// Result is a serialized table ready to hand to a download mechanism.
type Result struct {
	Data        []byte
	FileName    string
	ContentType string
	Target      Target
}

// ExportError reports a serialization failure.
type ExportError struct {
	File   string
	Target Target
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s: export to %s: %v", e.File, e.Target, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Export serializes t for the given target. originalName is the uploaded
// file's name and determines Result.FileName.
func Export(t *table.Table, target Target, originalName string) (*Result, error) {
	var buf bytes.Buffer
	var err error
	switch target {
	case Spreadsheet:
		err = WriteXLSX(&buf, t)
	default:
		err = WriteCSV(&buf, t)
	}
	if err != nil {
		return nil, &ExportError{File: originalName, Target: target, Err: err}
	}
	return &Result{
		Data:        buf.Bytes(),
		FileName:    OutputName(originalName, target),
		ContentType: target.ContentType(),
		Target:      target,
	}, nil
}

// WriteCSV writes a header row and one record per row, without an index
// column. Null cells become empty fields; a row that would otherwise be a
// blank line is written as "".
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	cols := t.Columns()
	rec := make([]string, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			rec[j] = c.Cells[i].Text
		}
		if len(rec) == 1 && rec[0] == "" {
			// a blank line would be skipped by readers, so quote the field
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
			continue
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook, header first, no index column.
// Numeric and boolean columns are stored as native cell values so
// spreadsheet tools see numbers and booleans rather than text.
func WriteXLSX(w io.Writer, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, t.NumCols())
	for j, name := range t.ColumnNames() {
		header[j] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cols := t.Columns()
	for i := 0; i < t.NumRows(); i++ {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			row[j] = cellValue(c, i)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cellValue(c *table.Column, i int) interface{} {
	cell := c.Cells[i]
	if cell.Null {
		return nil
	}
	switch c.Type {
	case table.Numeric:
		if v, ok := c.Float(i); ok {
			return v
		}
	case table.Boolean:
		if b, ok := table.ParseBool(cell.Text); ok {
			return b
		}
	}
	return cell.Text
}
