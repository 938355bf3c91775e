package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/datasweeper/internal/analysis"
	"github.com/KaramelBytes/datasweeper/internal/export"
	"github.com/KaramelBytes/datasweeper/internal/loader"
	"github.com/KaramelBytes/datasweeper/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = "id,amt\n1,10\n1,10\n2,\n"

func cleaningControls(target export.Target) Controls {
	return Controls{Clean: true, RemoveDuplicates: true, FillMissing: true, Target: target}
}

func TestSalesScenario(t *testing.T) {
	out := Process(context.Background(),
		[]UploadedFile{NewUploadedFile("sales.csv", []byte(salesCSV))},
		cleaningControls(export.Spreadsheet), loader.Options{})
	require.Len(t, out, 1)
	o := out[0]
	require.NoError(t, o.Err)
	require.True(t, o.OK())

	tb := o.Session.Table
	require.Equal(t, 2, tb.NumRows(), "\n%s", tb)
	amt, _ := tb.Column("amt")
	assert.Equal(t, "10", amt.Cells[1].Text)
	assert.Zero(t, amt.Missing())

	require.Len(t, o.Cleaning, 2)
	assert.Equal(t, 1, o.Cleaning[0].RowsDropped)
	assert.Equal(t, 1, o.Cleaning[1].CellsFilled)

	assert.Equal(t, "sales.xlsx", o.Result.FileName)
	back, err := loader.Load(o.Result.FileName, o.Result.Data, loader.Options{})
	require.NoError(t, err)
	assert.True(t, back.Equal(tb), "round trip mismatch:\n%s\nvs\n%s", back, tb)
}

func TestUnsupportedFileAlongsideCSV(t *testing.T) {
	files := []UploadedFile{
		NewUploadedFile("notes.txt", []byte("just text")),
		NewUploadedFile("sales.csv", []byte(salesCSV)),
	}
	out := Process(context.Background(), files, Controls{Target: export.CSV}, loader.Options{})
	require.Len(t, out, 2)

	var ufe *loader.UnsupportedFormatError
	require.True(t, errors.As(out[0].Err, &ufe), "got %v", out[0].Err)
	assert.Equal(t, "notes.txt", ufe.File)
	assert.Nil(t, out[0].Result)
	assert.False(t, out[0].OK())

	require.NoError(t, out[1].Err)
	assert.Equal(t, "sales.csv", out[1].Result.FileName)
	assert.Equal(t, salesCSV, string(out[1].Result.Data))
}

func TestReportNameTruncatedAtFirstPeriod(t *testing.T) {
	s, err := Open(NewUploadedFile("report.v2.csv", []byte("a\n1\n")), loader.Options{})
	require.NoError(t, err)
	s.Controls.Target = export.Spreadsheet
	res, err := s.Convert()
	require.NoError(t, err)
	assert.Equal(t, "report.xlsx", res.FileName)
}

func TestCleaningRequiresCleanToggle(t *testing.T) {
	s, err := Open(NewUploadedFile("sales.csv", []byte(salesCSV)), loader.Options{})
	require.NoError(t, err)
	s.Controls = Controls{RemoveDuplicates: true, FillMissing: true}
	assert.Nil(t, s.ApplyCleaning())
	assert.Equal(t, 3, s.Table.NumRows())
	assert.Empty(t, s.Applied)

	s.Controls.Clean = true
	applied := s.ApplyCleaning()
	require.Len(t, applied, 2)
	assert.Equal(t, 2, s.Table.NumRows())
	assert.Len(t, s.Applied, 2)
}

func TestSelectColumnsKeepsPriorSelectionOnError(t *testing.T) {
	s, err := Open(NewUploadedFile("sales.csv", []byte(salesCSV)), loader.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "amt"}, s.Selection())

	require.NoError(t, s.SelectColumns([]string{"amt"}))
	err = s.SelectColumns([]string{"amt", "nope"})
	var uce *table.UnknownColumnError
	require.True(t, errors.As(err, &uce))
	assert.Equal(t, []string{"amt"}, s.Selection())
	assert.Equal(t, []string{"amt"}, s.Controls.Columns)

	sel, err := s.Selected()
	require.NoError(t, err)
	assert.Equal(t, []string{"amt"}, sel.ColumnNames())
	assert.Equal(t, 2, s.Table.NumCols(), "session table keeps every column")
}

func TestProcessUnknownColumnWarns(t *testing.T) {
	c := Controls{Columns: []string{"amt", "missing"}, Target: export.CSV}
	out := Process(context.Background(), []UploadedFile{NewUploadedFile("sales.csv", []byte(salesCSV))}, c, loader.Options{})
	require.NoError(t, out[0].Err)
	require.Len(t, out[0].Warnings, 1)
	assert.Contains(t, out[0].Warnings[0], `unknown column "missing"`)
	assert.True(t, strings.HasPrefix(string(out[0].Result.Data), "id,amt\n"))
}

func TestProcessSelectsAndCharts(t *testing.T) {
	c := Controls{Columns: []string{"amt", "id"}, ShowChart: true, ChartWidth: 10, Target: export.CSV}
	out := Process(context.Background(), []UploadedFile{NewUploadedFile("sales.csv", []byte(salesCSV))}, c, loader.Options{})
	require.NoError(t, out[0].Err)
	assert.Empty(t, out[0].Warnings)
	assert.Equal(t, "amt,id\n10,1\n10,1\n,2\n", string(out[0].Result.Data))
	assert.Contains(t, out[0].Chart, "amt")
	assert.Contains(t, out[0].Chart, "██████████")
}

func TestProcessChartWithoutNumericColumns(t *testing.T) {
	c := Controls{ShowChart: true, Target: export.CSV}
	out := Process(context.Background(), []UploadedFile{NewUploadedFile("names.csv", []byte("name\nann\nbo\n"))}, c, loader.Options{})
	require.NoError(t, out[0].Err)
	assert.Equal(t, []string{"chart skipped: no numeric columns"}, out[0].Warnings)
	assert.Empty(t, out[0].Chart)
}

func TestChartOffByDefault(t *testing.T) {
	s, err := Open(NewUploadedFile("sales.csv", []byte(salesCSV)), loader.Options{})
	require.NoError(t, err)
	got, err := s.Chart(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProcessHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	files := []UploadedFile{
		NewUploadedFile("a.csv", []byte("x\n1\n")),
		NewUploadedFile("b.csv", []byte("x\n2\n")),
	}
	out := Process(ctx, files, Controls{}, loader.Options{})
	require.Len(t, out, 2)
	for _, o := range out {
		assert.ErrorIs(t, o.Err, context.Canceled)
		assert.Nil(t, o.Session)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	files := []UploadedFile{
		NewUploadedFile("sales.csv", []byte(salesCSV)),
		NewUploadedFile("sales.csv", []byte(salesCSV)),
	}
	out := Process(context.Background(), files, Controls{Target: export.CSV}, loader.Options{})
	require.NoError(t, out[0].Err)
	require.NoError(t, out[1].Err)
	assert.NotEqual(t, out[0].Session.ID, out[1].Session.ID)
	assert.NotSame(t, out[0].Session.Table, out[1].Session.Table)
}

func TestReadFileAndSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(salesCSV), 0o644))

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", f.Name)
	assert.EqualValues(t, len(salesCSV), f.Size)

	s, err := Open(f, loader.Options{})
	require.NoError(t, err)
	rep := s.Summary(analysis.DefaultOptions())
	assert.Equal(t, 3, rep.Rows)
	assert.Equal(t, 1, rep.Duplicates)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestProcessChartOnTinyValuesKeepsBatchGoing(t *testing.T) {
	files := []UploadedFile{
		NewUploadedFile("tiny.csv", []byte("x\n1e-310\n0\n")),
		NewUploadedFile("sales.csv", []byte(salesCSV)),
	}
	c := Controls{ShowChart: true, ChartWidth: 8, Target: export.CSV}
	out := Process(context.Background(), files, c, loader.Options{})
	require.Len(t, out, 2)
	for _, o := range out {
		require.NoError(t, o.Err, o.File)
		assert.True(t, o.OK(), o.File)
		assert.Contains(t, o.Chart, "████████", o.File)
	}
}

func TestExplicitEmptySelectionIsNotAllColumns(t *testing.T) {
	s, err := Open(NewUploadedFile("sales.csv", []byte(salesCSV)), loader.Options{})
	require.NoError(t, err)
	_, err = s.Selected()
	require.NoError(t, err, "no selection means every column")

	require.NoError(t, s.SelectColumns(nil))
	assert.Empty(t, s.Selection())
	_, err = s.Selected()
	assert.ErrorIs(t, err, ErrNoColumnsSelected)
	_, err = s.Convert()
	assert.ErrorIs(t, err, ErrNoColumnsSelected)

	require.NoError(t, s.SelectColumns([]string{"id"}))
	res, err := s.Convert()
	require.NoError(t, err)
	assert.Equal(t, "id\n1\n1\n2\n", string(res.Data))
}
