package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/KaramelBytes/datasweeper/internal/chart"
	"github.com/KaramelBytes/datasweeper/internal/clean"
	"github.com/KaramelBytes/datasweeper/internal/export"
	"github.com/KaramelBytes/datasweeper/internal/loader"
	"github.com/KaramelBytes/datasweeper/internal/logging"
)

// Outcome is the result of processing one file of a batch. Err is set when
// the file produced no output.
type Outcome struct {
	File     string
	Session  *FileSession
	Cleaning []clean.Stats
	Chart    string
	Result   *export.Result
	Warnings []string
	Err      error
}

// OK reports whether the file was converted.
func (o Outcome) OK() bool { return o.Err == nil && o.Result != nil }

// Process runs every file through load, cleaning, column selection,
// optional chart and export, in order. A failing file never stops the
// batch. Cancellation is checked between files; files not started get
// ctx.Err().
//
// A panic while handling one file is recovered and recorded as that file's
// error.
//
// Controls are copied into each session. A column selection that does not
// match a file is reported as a warning and that file keeps all columns.
func Process(ctx context.Context, files []UploadedFile, c Controls, opts loader.Options) []Outcome {
	out := make([]Outcome, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			out = append(out, Outcome{File: f.Name, Err: err})
			continue
		}
		out = append(out, processOne(ctx, f, c, opts))
	}
	return out
}

func processOne(ctx context.Context, f UploadedFile, c Controls, opts loader.Options) (o Outcome) {
	log := logging.WithFields(ctx, "file", f.Name)
	o = Outcome{File: f.Name}
	defer func() {
		if r := recover(); r != nil {
			log.Error("file processing panicked", "panic", r)
			o.Result = nil
			o.Err = fmt.Errorf("%s: internal error: %v", f.Name, r)
		}
	}()

	s, err := Open(f, opts)
	if err != nil {
		log.Warn("load failed", "err", err)
		o.Err = err
		return o
	}
	o.Session = s
	s.Controls = c
	s.Controls.Columns = nil
	log.Debug("loaded", "rows", s.Table.NumRows(), "cols", s.Table.NumCols())

	o.Cleaning = s.ApplyCleaning()
	for _, st := range o.Cleaning {
		log.Info(st.Message(), "rows", s.Table.NumRows())
	}

	if len(c.Columns) > 0 {
		if err := s.SelectColumns(c.Columns); err != nil {
			log.Warn("column selection ignored", "err", err)
			o.Warnings = append(o.Warnings, fmt.Sprintf("column selection ignored: %v", err))
		}
	}

	if c.ShowChart {
		o.Chart, err = s.Chart(c.ChartWidth)
		if errors.Is(err, chart.ErrNoNumericColumns) {
			o.Warnings = append(o.Warnings, "chart skipped: no numeric columns")
		} else if err != nil {
			o.Warnings = append(o.Warnings, fmt.Sprintf("chart skipped: %v", err))
		}
	}

	res, err := s.Convert()
	if err != nil {
		log.Error("export failed", "err", err)
		o.Err = err
		return o
	}
	o.Result = res
	log.Info("converted", "output", res.FileName, "target", res.Target.String(), "bytes", len(res.Data))
	return o
}
