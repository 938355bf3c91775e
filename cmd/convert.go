package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/datasweeper/internal/export"
	"github.com/KaramelBytes/datasweeper/internal/loader"
	"github.com/KaramelBytes/datasweeper/internal/session"
	"github.com/KaramelBytes/datasweeper/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cvTo          string
	cvClean       bool
	cvDedupe      bool
	cvFillMissing bool
	cvColumns     []string
	cvChart       bool
	cvSheet       string
	cvOutDir      string
	cvReport      string
	cvQuiet       bool
)

// batchReport is the YAML document written by --report.
type batchReport struct {
	Generated time.Time    `yaml:"generated"`
	Target    string       `yaml:"target"`
	Files     []fileReport `yaml:"files"`
}

type fileReport struct {
	File     string   `yaml:"file"`
	Output   string   `yaml:"output,omitempty"`
	Rows     int      `yaml:"rows,omitempty"`
	Columns  []string `yaml:"columns,omitempty"`
	Cleaning []string `yaml:"cleaning,omitempty"`
	Warnings []string `yaml:"warnings,omitempty"`
	Error    string   `yaml:"error,omitempty"`
}

var convertCmd = &cobra.Command{
	Use:   "convert <files...>",
	Short: "Clean and convert CSV/XLSX files to CSV or Excel",
	Long: `Convert each input file independently. A file that cannot be read,
parsed or exported is reported and skipped; the command fails only when no
file could be converted.

--clean enables cleaning; with neither --dedupe nor --fill-missing it runs
both. --dedupe and --fill-missing imply --clean.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		files := utils.ExpandGlobs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		c, err := convertControls(cmd)
		if err != nil {
			return err
		}
		opts := loader.Options{Sheet: cvSheet}
		if !cmd.Flags().Changed("sheet") && cfg != nil {
			opts.Sheet = cfg.Sheet
		}
		outDir := cvOutDir
		if !cmd.Flags().Changed("out-dir") && cfg != nil && cfg.OutDir != "" {
			outDir = cfg.OutDir
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		outcomes := make([]session.Outcome, len(files))
		var batch []session.UploadedFile
		var batchIdx []int
		for i, path := range files {
			f, err := session.ReadFile(path)
			if err != nil {
				outcomes[i] = session.Outcome{File: filepath.Base(path), Err: err}
				continue
			}
			batch = append(batch, f)
			batchIdx = append(batchIdx, i)
		}
		if !cvQuiet {
			fmt.Fprintf(out, "Processing %d file(s) → %s\n", len(files), c.Target)
		}
		for k, o := range session.Process(cmd.Context(), batch, c, opts) {
			outcomes[batchIdx[k]] = o
		}

		rep := batchReport{Generated: time.Now().UTC(), Target: strings.TrimPrefix(c.Target.Ext(), ".")}
		claimed := map[string]struct{}{}
		converted := 0
		for i, o := range outcomes {
			fr := fileReport{File: o.File}
			if !cvQuiet {
				fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(outcomes), o.File)
			}
			for _, st := range o.Cleaning {
				fr.Cleaning = append(fr.Cleaning, st.Message())
				if !cvQuiet {
					fmt.Fprintf(out, "  %s\n", st.Message())
				}
			}
			for _, w := range o.Warnings {
				fr.Warnings = append(fr.Warnings, w)
				fmt.Fprintf(out, "⚠ %s: %s\n", o.File, w)
			}
			if o.Chart != "" && !cvQuiet {
				fmt.Fprintln(out, o.Chart)
			}
			if o.Err == nil {
				path := utils.UniquePath(outDir, o.Result.FileName, claimed)
				if err := utils.SafeWriteFile(path, o.Result.Data); err != nil {
					o.Err = fmt.Errorf("write %s: %w", path, err)
				} else {
					converted++
					fr.Output = path
					if sel, err := o.Session.Selected(); err == nil {
						fr.Rows = sel.NumRows()
						fr.Columns = sel.ColumnNames()
					}
					fmt.Fprintf(out, "✓ %s → %s\n", o.File, path)
				}
			}
			if o.Err != nil {
				fr.Error = o.Err.Error()
				fmt.Fprintf(out, "✗ %s: %v\n", o.File, o.Err)
			}
			rep.Files = append(rep.Files, fr)
		}

		if cvReport != "" {
			b, err := yaml.Marshal(rep)
			if err != nil {
				return fmt.Errorf("marshal report: %w", err)
			}
			if err := utils.SafeWriteFile(cvReport, b); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if !cvQuiet {
				fmt.Fprintf(out, "✓ Report written to %s\n", cvReport)
			}
		}

		if converted == 0 {
			return fmt.Errorf("no files converted (%d failed)", len(outcomes))
		}
		if !cvQuiet {
			fmt.Fprintf(out, "Converted %d/%d file(s)\n", converted, len(outcomes))
		}
		return nil
	},
}

func convertControls(cmd *cobra.Command) (session.Controls, error) {
	var c session.Controls
	to := cvTo
	if !cmd.Flags().Changed("to") && cfg != nil && cfg.DefaultTarget != "" {
		to = cfg.DefaultTarget
	}
	t, err := export.ParseTarget(to)
	if err != nil {
		return c, err
	}
	c.Target = t
	c.Clean = cvClean || cvDedupe || cvFillMissing
	c.RemoveDuplicates = cvDedupe
	c.FillMissing = cvFillMissing
	if cvClean && !cvDedupe && !cvFillMissing {
		c.RemoveDuplicates, c.FillMissing = true, true
	}
	for _, name := range cvColumns {
		if name = strings.TrimSpace(name); name != "" {
			c.Columns = append(c.Columns, name)
		}
	}
	c.ShowChart = cvChart
	if cfg != nil {
		c.ChartWidth = cfg.ChartWidth
	}
	return c, nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&cvTo, "to", "csv", "output format: csv|xlsx")
	convertCmd.Flags().BoolVar(&cvClean, "clean", false, "enable cleaning (both operations unless one is named)")
	convertCmd.Flags().BoolVar(&cvDedupe, "dedupe", false, "remove duplicate rows")
	convertCmd.Flags().BoolVar(&cvFillMissing, "fill-missing", false, "fill missing numeric values with the column mean")
	convertCmd.Flags().StringSliceVar(&cvColumns, "columns", nil, "comma-separated columns to keep, in output order")
	convertCmd.Flags().BoolVar(&cvChart, "chart", false, "print a bar chart of the first two numeric columns")
	convertCmd.Flags().StringVar(&cvSheet, "sheet", "", "XLSX: sheet name to read (default first sheet)")
	convertCmd.Flags().StringVarP(&cvOutDir, "out-dir", "o", ".", "directory for converted files")
	convertCmd.Flags().StringVar(&cvReport, "report", "", "write a YAML summary of the batch to this path")
	convertCmd.Flags().BoolVar(&cvQuiet, "quiet", false, "suppress progress and non-essential output")
}
