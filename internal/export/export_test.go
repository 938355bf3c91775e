package export_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/KaramelBytes/datasweeper/internal/export"
	"github.com/KaramelBytes/datasweeper/internal/loader"
	"github.com/KaramelBytes/datasweeper/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *table.Table {
	return table.New(
		[]string{"id", "note", "amt", "ok", "day"},
		[][]string{
			{"1", "plain", "10", "true", "2024-08-10"},
			{"2", "has, comma", "", "false", "2024-08-11"},
			{"3", "line\nbreak", "0.30000000000000004", "", "2024-08-12"},
			{"4", `say "hi"`, "-2.5", "TRUE", ""},
		},
	)
}

func TestOutputName(t *testing.T) {
	cases := []struct {
		name   string
		target export.Target
		want   string
	}{
		{"sales.csv", export.Spreadsheet, "sales.xlsx"},
		{"sales.xlsx", export.CSV, "sales.csv"},
		{"report.v2.csv", export.Spreadsheet, "report.xlsx"},
		{"dir/archive.tar.xlsx", export.CSV, "archive.csv"},
		{"noext", export.CSV, "noext.csv"},
		{"SALES.CSV", export.CSV, "SALES.csv"},
	}
	for _, tc := range cases {
		if got := export.OutputName(tc.name, tc.target); got != tc.want {
			t.Errorf("OutputName(%q, %s) = %q, want %q", tc.name, tc.target, got, tc.want)
		}
	}
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]export.Target{
		"csv": export.CSV, "CSV": export.CSV,
		"xlsx": export.Spreadsheet, "Excel": export.Spreadsheet, "spreadsheet": export.Spreadsheet,
	} {
		got, err := export.ParseTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := export.ParseTarget("pdf")
	assert.Error(t, err)
}

func TestTargetContentType(t *testing.T) {
	assert.Equal(t, "text/csv", export.CSV.ContentType())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.Spreadsheet.ContentType())
}

func TestExportCSVLayout(t *testing.T) {
	res, err := export.Export(sample(), export.CSV, "notes.csv")
	require.NoError(t, err)
	assert.Equal(t, "notes.csv", res.FileName)
	assert.Equal(t, "text/csv", res.ContentType)

	want := strings.Join([]string{
		"id,note,amt,ok,day",
		"1,plain,10,true,2024-08-10",
		`2,"has, comma",,false,2024-08-11`,
		"3,\"line\nbreak\",0.30000000000000004,,2024-08-12",
		`4,"say ""hi""",-2.5,TRUE,`,
		"",
	}, "\n")
	assert.Equal(t, want, string(res.Data))
}

func TestCSVRoundTrip(t *testing.T) {
	in := sample()
	res, err := export.Export(in, export.CSV, "notes.csv")
	require.NoError(t, err)

	back, err := loader.Load(res.FileName, res.Data, loader.Options{})
	require.NoError(t, err)
	assert.True(t, back.Equal(in), "round trip mismatch:\n%s\nvs\n%s", back, in)
}

func TestCSVRoundTripSingleColumnWithNull(t *testing.T) {
	in := table.New([]string{"x"}, [][]string{{"1"}, {""}, {"3"}})
	res, err := export.Export(in, export.CSV, "x.csv")
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n\"\"\n3\n", string(res.Data))

	back, err := loader.Load(res.FileName, res.Data, loader.Options{})
	require.NoError(t, err)
	require.Equal(t, 3, back.NumRows())
	assert.True(t, back.Equal(in), "round trip mismatch:\n%s\nvs\n%s", back, in)
}

func TestSpreadsheetRoundTrip(t *testing.T) {
	in := sample()
	res, err := export.Export(in, export.Spreadsheet, "notes.csv")
	require.NoError(t, err)
	assert.Equal(t, "notes.xlsx", res.FileName)
	assert.Equal(t, export.Spreadsheet.ContentType(), res.ContentType)

	back, err := loader.Load(res.FileName, res.Data, loader.Options{})
	require.NoError(t, err)
	assert.True(t, back.Equal(in), "round trip mismatch:\n%s\nvs\n%s", back, in)
}

func TestExportEmptyTable(t *testing.T) {
	in := table.New([]string{"a", "b"}, nil)
	res, err := export.Export(in, export.CSV, "empty.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(res.Data))

	res, err = export.Export(in, export.Spreadsheet, "empty.csv")
	require.NoError(t, err)
	back, err := loader.Load(res.FileName, res.Data, loader.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, back.ColumnNames())
	assert.Zero(t, back.NumRows())
}

func TestExportErrorWhenSheetTooWide(t *testing.T) {
	// a worksheet holds at most 16384 columns
	header := make([]string, 16385)
	for i := range header {
		header[i] = "c" + strconv.Itoa(i)
	}
	in := table.New(header, nil)
	_, err := export.Export(in, export.Spreadsheet, "wide.csv")
	require.Error(t, err)
	var ee *export.ExportError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "wide.csv", ee.File)
	assert.Equal(t, export.Spreadsheet, ee.Target)
}
