package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API and diagnostics servers",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":3333", "application address")
	serveCmd.Flags().String("diag_addr", ":9999", "diagnostics address (metrics, health)")
	serveCmd.Flags().String("admin_token", "", "bearer token of the admin user")
	serveCmd.Flags().Int("trending_top", 10, "default size of the trending top list")
	for _, name := range []string{"addr", "diag_addr", "admin_token", "trending_top"} {
		if err := v.BindPFlag(name, serveCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, logger, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync() // nolint
	defer a.Close()     // nolint

	servers := []*http.Server{
		{Addr: a.config.Addr, Handler: a.Router(), ReadHeaderTimeout: 5 * time.Second},
		{Addr: a.config.DiagAddr, Handler: a.DiagRouter(), ReadHeaderTimeout: 5 * time.Second},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Infow("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Infow("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var err error
		for _, srv := range servers {
			err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		}

		return err
	})

	return g.Wait()
}
