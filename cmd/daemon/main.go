// SPDX-License-Identifier: MIT

// Command daemon runs the Boolean network analysis service: a model
// store, an HTTP API and an optional model directory watcher.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sybila/biodivine/internal/api"
	"github.com/sybila/biodivine/internal/cache"
	"github.com/sybila/biodivine/internal/config"
	"github.com/sybila/biodivine/internal/jobs"
	"github.com/sybila/biodivine/internal/log"
	"github.com/sybila/biodivine/internal/store"
	"github.com/sybila/biodivine/internal/telemetry"
	"github.com/sybila/biodivine/internal/version"
	"github.com/sybila/biodivine/internal/watch"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("biodivine %s (%s, %s)\n", version.Version, version.Commit, version.Date)
		return
	}

	if err := run(*configPath); err != nil {
		logger := log.WithComponent("daemon")
		logger.Error().Err(err).Msg("daemon failed")
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Service: "biodivine"})
	logger := log.WithComponent("daemon")
	logger.Info().
		Str("version", version.Version).
		Str("listen", cfg.Listen).
		Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	models, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = models.Close() }()

	jobStore, err := jobs.OpenStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = jobStore.Close() }()

	results, err := cache.New(cfg.Cache)
	if err != nil {
		return err
	}
	defer func() { _ = results.Close() }()
	cache.WarnIfDisabled(results)

	runner := jobs.NewRunner(models, jobStore, results, jobs.Options{
		Workers:     cfg.Workers,
		ExportDir:   filepath.Join(cfg.DataDir, "results"),
		SubmitRate:  rate.Limit(float64(cfg.RateLimit.RequestsPerMinute) / 60),
		SubmitBurst: cfg.RateLimit.RequestsPerMinute,
	})

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewServer(models, runner, results, cfg).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Listen, err)
	}
	listener = netutil.LimitListener(listener, cfg.MaxConns)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info().Str("listen", cfg.Listen).Msg("http server started")
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.ModelsDir != "" {
		watcher := watch.New(cfg.ModelsDir, models, results)
		group.Go(func() error {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("model watcher: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("http shutdown")
		}
		if err := runner.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("runner shutdown")
		}
		return nil
	})

	return group.Wait()
}
