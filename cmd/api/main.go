package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fitresume/internal/bootstrap"
	"fitresume/internal/shared/config"
	"fitresume/internal/shared/server"
	"fitresume/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	closeLogs := telemetry.Setup(cfg.LogLevel, cfg.LogFile)
	defer func() { _ = closeLogs() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer func() { _ = app.Close() }()

	if err := app.Scheduler.Sync(ctx); err != nil {
		// Invalid stored expressions are skipped; valid ones are still armed.
		telemetry.Warn("scheduler.sync_failed", map[string]any{"error": err.Error()})
	}
	app.Scheduler.Start()

	addr := server.Addr(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	shutdownTimeout := cfg.ShutdownTimeout

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		telemetry.Info("api.listening", map[string]any{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		telemetry.Info("api.shutdown", map[string]any{"timeout_s": shutdownTimeout.Seconds()})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpErr := srv.Shutdown(shutdownCtx)
		schedErr := app.Scheduler.Shutdown(shutdownCtx)
		return errors.Join(httpErr, schedErr)
	})

	if err := g.Wait(); err != nil {
		telemetry.Error("api.exit", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
