package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equity-dashboard/internal/api"
	"equity-dashboard/internal/app"
	"equity-dashboard/internal/scheduler"
	"equity-dashboard/observability"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	Long: `Start the dashboard HTTP server.

Loads the company listing, connects to Postgres when DATABASE_URL is set
(series cache and run history) and schedules the cache janitor.

Examples:
  dashboard serve
  dashboard serve --addr :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.HTTP.Addr = serveAddr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := app.Wire(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	var sched *scheduler.Scheduler
	if rt.Repo != nil {
		sched = scheduler.NewScheduler(ctx, rt.Repo)
		if err := sched.RegisterJanitor(cfg.Cache.JanitorCron); err != nil {
			return err
		}
		sched.Start()
	}

	handler := api.NewHandler(rt.App, cfg)
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(handler, cfg),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 10*time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		observability.Info("starting HTTP server", "addr", cfg.HTTP.Addr, "provider", rt.App.Provider())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		observability.Info("shutting down HTTP server...")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if sched != nil {
		sched.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	rt.App.Shutdown(shutdownCtx)
	observability.Info("HTTP server stopped")
	return nil
}
