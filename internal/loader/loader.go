// Package loader turns an uploaded file's bytes into a table.Table, picking
// the parser from the file extension.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datasweeper/internal/table"
)

// Options tunes parsing.
type Options struct {
	// Sheet selects an XLSX worksheet by name. Empty means the first sheet.
	Sheet string
}

// Parser turns file content into a table.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte, opts Options) (*table.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

// UnsupportedFormatError is returned for a file whose extension no parser
// accepts. It matches ErrUnsupported with errors.Is.
type UnsupportedFormatError struct {
	File string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("%s: unsupported file format %s, upload a .csv or .xlsx file", e.File, ext)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupported }

// ParseError wraps a failure to read a file's content.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: parse: %v", e.File, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// Load selects a parser by the file name's extension (case-insensitive)
// and parses data. Unknown extensions yield *UnsupportedFormatError and
// malformed content yields *ParseError.
func Load(name string, data []byte, opts Options) (*table.Table, error) {
	for _, p := range registry {
		if !p.CanParse(name) {
			continue
		}
		t, err := p.Parse(data, opts)
		if err != nil {
			return nil, &ParseError{File: name, Err: err}
		}
		return t, nil
	}
	return nil, &UnsupportedFormatError{File: name, Ext: strings.ToLower(filepath.Ext(name))}
}

// Supported reports whether some parser accepts name.
func Supported(name string) bool {
	for _, p := range registry {
		if p.CanParse(name) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}
