package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mytheresa/stockroom/app"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON HTTP API until SIGINT or SIGTERM.

Outside production the schema is migrated on start; in production run
"stockroom migrate" first.

Examples:
  stockroom serve                      # Listen on STOCKROOM_HTTP_ADDR (default :8080)
  stockroom serve --addr 127.0.0.1:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer d.Close()
			if addr == "" {
				addr = d.cfg.HTTPAddr
			}
			return runServe(cmd.Context(), d, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides STOCKROOM_HTTP_ADDR)")
	return cmd
}

func runServe(ctx context.Context, d *deps, addr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      app.NewRouter(d.svc, d.log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		d.log.Info("Server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	d.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	d.log.Info("Server exited")
	return nil
}
