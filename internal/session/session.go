// Package session holds the per-file state of a sweep: the uploaded bytes,
// the loaded table and the controls chosen for that file. Each file gets
// its own FileSession; nothing is shared between files.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/datasweeper/internal/analysis"
	"github.com/KaramelBytes/datasweeper/internal/chart"
	"github.com/KaramelBytes/datasweeper/internal/clean"
	"github.com/KaramelBytes/datasweeper/internal/export"
	"github.com/KaramelBytes/datasweeper/internal/loader"
	"github.com/KaramelBytes/datasweeper/internal/table"
	"github.com/google/uuid"
)

// UploadedFile is one input file as received from the user.
type UploadedFile struct {
	Name string
	Size int64
	Data []byte
}

// NewUploadedFile wraps in-memory content.
func NewUploadedFile(name string, data []byte) UploadedFile {
	return UploadedFile{Name: name, Size: int64(len(data)), Data: data}
}

// ReadFile reads path from disk. Name is the base name of path.
func ReadFile(path string) (UploadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return NewUploadedFile(filepath.Base(path), data), nil
}

// Controls are the per-file toggles and choices.
type Controls struct {
	// Clean gates the cleaning operations; RemoveDuplicates and
	// FillMissing only run when it is set.
	Clean            bool
	RemoveDuplicates bool
	FillMissing      bool

	// Columns is the requested selection; empty means every column.
	Columns []string

	ShowChart bool
	// ChartWidth is the bar length of the largest value; 0 uses the
	// chart default.
	ChartWidth int

	Target export.Target
}

// FileSession is the state of one file.
type FileSession struct {
	ID       uuid.UUID
	File     UploadedFile
	Table    *table.Table
	Controls Controls
	// Applied records each cleaning operation run on Table, in order.
	Applied []clean.Stats

	selection []string
	// chosen is set once SelectColumns succeeds, so an explicit empty
	// selection is told apart from no selection at all.
	chosen bool
}

// ErrNoColumnsSelected is returned when every column has been deselected.
var ErrNoColumnsSelected = errors.New("no columns selected")

// Open loads file into a new session. The returned error is the loader's
// UnsupportedFormatError or ParseError.
func Open(file UploadedFile, opts loader.Options) (*FileSession, error) {
	t, err := loader.Load(file.Name, file.Data, opts)
	if err != nil {
		return nil, err
	}
	return &FileSession{ID: uuid.New(), File: file, Table: t}, nil
}

// RemoveDuplicates drops repeated rows from the session table.
func (s *FileSession) RemoveDuplicates() clean.Stats {
	var st clean.Stats
	s.Table, st = clean.RemoveDuplicates(s.Table)
	s.Applied = append(s.Applied, st)
	return st
}

// FillMissing replaces missing numeric cells with their column mean.
func (s *FileSession) FillMissing() clean.Stats {
	var st clean.Stats
	s.Table, st = clean.FillMissingNumeric(s.Table)
	s.Applied = append(s.Applied, st)
	return st
}

// ApplyCleaning runs the toggled operations, duplicates first. Nothing
// happens unless Controls.Clean is set.
func (s *FileSession) ApplyCleaning() []clean.Stats {
	if !s.Controls.Clean {
		return nil
	}
	var out []clean.Stats
	if s.Controls.RemoveDuplicates {
		out = append(out, s.RemoveDuplicates())
	}
	if s.Controls.FillMissing {
		out = append(out, s.FillMissing())
	}
	return out
}

// SelectColumns sets the column selection. An invalid request returns the
// table's error and keeps the previous selection.
func (s *FileSession) SelectColumns(names []string) error {
	if err := s.Table.ValidateSelection(names); err != nil {
		return err
	}
	s.selection = append([]string{}, names...)
	s.Controls.Columns = append([]string{}, names...)
	s.chosen = true
	return nil
}

// Selection returns the active column names in output order. Before any
// selection is made that is every column.
func (s *FileSession) Selection() []string {
	if !s.chosen {
		return s.Table.ColumnNames()
	}
	return append([]string{}, s.selection...)
}

// Selected returns the table restricted to the active selection. An
// explicit empty selection yields ErrNoColumnsSelected.
func (s *FileSession) Selected() (*table.Table, error) {
	if s.chosen && len(s.selection) == 0 {
		return nil, ErrNoColumnsSelected
	}
	return s.Table.Select(s.selection)
}

// Chart renders the bar display of the selected columns when ShowChart is
// set. It returns "" otherwise.
func (s *FileSession) Chart(width int) (string, error) {
	if !s.Controls.ShowChart {
		return "", nil
	}
	t, err := s.Selected()
	if err != nil {
		return "", err
	}
	return chart.Bars(t, width)
}

// Summary describes the current (cleaned, unselected) table.
func (s *FileSession) Summary(opt analysis.Options) *analysis.Report {
	return analysis.Summarize(s.Table, s.File.Name, s.File.Size, opt)
}

// Convert exports the selected table to Controls.Target.
func (s *FileSession) Convert() (*export.Result, error) {
	t, err := s.Selected()
	if err != nil {
		return nil, err
	}
	return export.Export(t, s.Controls.Target, s.File.Name)
}
