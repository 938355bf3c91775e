package cmd

import (
	"fmt"

	"github.com/KaramelBytes/datasweeper/internal/loader"
	"github.com/KaramelBytes/datasweeper/internal/session"
	"github.com/KaramelBytes/datasweeper/internal/tui"
	"github.com/KaramelBytes/datasweeper/internal/utils"
	"github.com/spf13/cobra"
)

var (
	tuiOutDir string
	tuiSheet  string
)

var tuiCmd = &cobra.Command{
	Use:   "tui <files...>",
	Short: "Interactively clean, chart and convert files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := utils.ExpandGlobs(args)
		if len(paths) == 0 {
			return fmt.Errorf("no input files matched")
		}
		var files []session.UploadedFile
		for _, p := range paths {
			f, err := session.ReadFile(p)
			if err != nil {
				return err
			}
			files = append(files, f)
		}

		opts := tui.Options{OutDir: tuiOutDir, Loader: loader.Options{Sheet: tuiSheet}}
		if cfg != nil {
			if !cmd.Flags().Changed("out-dir") && cfg.OutDir != "" {
				opts.OutDir = cfg.OutDir
			}
			if !cmd.Flags().Changed("sheet") {
				opts.Loader.Sheet = cfg.Sheet
			}
			opts.ChartWidth = cfg.ChartWidth
			if t, err := cfg.Target(); err == nil {
				opts.Target = t
			}
		}
		return tui.Run(files, opts)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVarP(&tuiOutDir, "out-dir", "o", ".", "directory for converted files")
	tuiCmd.Flags().StringVar(&tuiSheet, "sheet", "", "XLSX: sheet name to read (default first sheet)")
}
