package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KaramelBytes/datasweeper/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the convert and preview endpoints over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		opts := server.Options{}
		if cfg != nil {
			if !cmd.Flags().Changed("addr") && cfg.ServeAddr != "" {
				addr = cfg.ServeAddr
			}
			opts.MaxUploadBytes = int64(cfg.MaxUploadMB) << 20
			opts.Sheet = cfg.Sheet
			opts.ChartWidth = cfg.ChartWidth
		}
		srv := server.New(opts)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start(addr) }()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Listening on http://%s\n", addr)

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
}
