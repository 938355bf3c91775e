package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/datasweeper/internal/analysis"
	"github.com/KaramelBytes/datasweeper/internal/chart"
	"github.com/KaramelBytes/datasweeper/internal/loader"
	"github.com/KaramelBytes/datasweeper/internal/session"
	"github.com/KaramelBytes/datasweeper/internal/utils"
	"github.com/spf13/cobra"
)

var (
	pvRows       int
	pvOutput     string
	pvSheet      string
	pvCorr       bool
	pvOutliers   bool
	pvOutlierThr float64
	pvChart      bool
	pvJSON       bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show the schema, statistics and first rows of a CSV/XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		f, err := session.ReadFile(args[0])
		if err != nil {
			return err
		}
		opts := loader.Options{Sheet: pvSheet}
		if !cmd.Flags().Changed("sheet") && cfg != nil {
			opts.Sheet = cfg.Sheet
		}
		s, err := session.Open(f, opts)
		if err != nil {
			return err
		}

		opt := analysis.DefaultOptions()
		switch {
		case cmd.Flags().Changed("rows"):
			opt.SampleRows = pvRows
		case cfg != nil && cfg.PreviewRows > 0:
			opt.SampleRows = cfg.PreviewRows
		}
		opt.Correlations = pvCorr
		opt.Outliers = pvOutliers
		if pvOutlierThr > 0 {
			opt.OutlierThreshold = pvOutlierThr
		}
		rep := s.Summary(opt)

		var body []byte
		if pvJSON {
			if body, err = utils.PrettyJSON(rep); err != nil {
				return err
			}
			body = append(body, '\n')
		} else {
			body = []byte(rep.Markdown())
		}

		if pvChart {
			s.Controls.ShowChart = true
			width := 0
			if cfg != nil {
				width = cfg.ChartWidth
			}
			c, err := s.Chart(width)
			switch {
			case errors.Is(err, chart.ErrNoNumericColumns):
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s: no numeric columns to chart\n", f.Name)
			case err != nil:
				return err
			case !pvJSON:
				body = append(body, "\n[CHART]\n"+c...)
			}
		}

		if pvOutput == "" {
			fmt.Fprint(out, string(body))
			return nil
		}
		if err := utils.SafeWriteFile(pvOutput, body); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Summary written to %s\n", pvOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVar(&pvRows, "rows", 5, "number of leading rows to show")
	previewCmd.Flags().StringVarP(&pvOutput, "output", "o", "", "write the summary to a file instead of stdout")
	previewCmd.Flags().StringVar(&pvSheet, "sheet", "", "XLSX: sheet name to read (default first sheet)")
	previewCmd.Flags().BoolVar(&pvCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	previewCmd.Flags().BoolVar(&pvOutliers, "outliers", false, "count robust outliers (MAD) in numeric columns")
	previewCmd.Flags().Float64Var(&pvOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers")
	previewCmd.Flags().BoolVar(&pvChart, "chart", false, "append a bar chart of the first two numeric columns")
	previewCmd.Flags().BoolVar(&pvJSON, "json", false, "print the summary as JSON")
}
