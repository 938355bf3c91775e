package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datasweeper/internal/table"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".csv"
}

var utf8BOM = []byte("\ufeff")

func (csvParser) Parse(content []byte, _ Options) (*table.Table, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return table.New(nil, nil), nil
	}
	header, rows := records[0], records[1:]
	for i, rec := range rows {
		if len(rec) > len(header) {
			// line numbers are 1-based and the header is line 1
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+2, len(header), len(rec))
		}
	}
	return table.New(header, rows), nil
}
