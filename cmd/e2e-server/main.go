// Package main provides a standalone HTTP server for E2E testing.
// It serves the same routes and handlers as the dashboard, with the listing and
// price provider replaced by in-process mock upstreams, making it suitable for
// browser tests.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equity-dashboard/e2e"
	"equity-dashboard/e2e/mocks"
	"equity-dashboard/internal/api"
	"equity-dashboard/internal/app"
	"equity-dashboard/observability"
)

func main() {
	// Initialize logger in development mode for tests
	observability.InitLogger(false)
	observability.InitMetrics()

	port := os.Getenv("E2E_SERVER_PORT")
	if port == "" {
		port = "9090"
	}

	mockServer := mocks.NewMockServer()
	defer mockServer.Close()

	// E2E_DATABASE_URL is optional; without it cache and run history are off
	cfg := e2e.NewMockConfig(mockServer, os.Getenv("E2E_DATABASE_URL"))
	if provider := os.Getenv("E2E_PRICE_PROVIDER"); provider != "" {
		cfg.Provider.Name = provider
		cfg.Alpaca.APIKey = "e2e-key"
		cfg.Alpaca.APISecret = "e2e-secret"
	}

	ctx := context.Background()

	rt, err := app.Wire(ctx, cfg)
	if err != nil {
		observability.Fatal("failed to wire application", "error", err)
	}
	defer rt.Close()

	observability.Info("mock upstreams started", "url", mockServer.URL(), "provider", rt.App.Provider())

	handler := api.NewHandler(rt.App, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	go func() {
		observability.Info("starting E2E test server", "port", port, "url", fmt.Sprintf("http://localhost:%s", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down E2E test server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	rt.App.Shutdown(shutdownCtx)
	observability.Info("E2E test server stopped")
}
