package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rankbook/internal/app"
	"rankbook/internal/config"
	"rankbook/internal/leaderboard"
	"rankbook/internal/notify"
	"rankbook/internal/ratelimit"
	"rankbook/internal/refresh"
	"rankbook/internal/respcache"
	"rankbook/internal/riot"
)

func main() {
	// Load .env file
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	app.SetupLogger(cfg.LogLevel)

	// Fail fast on a dead key instead of failing every lookup mid-sweep.
	validator, err := riot.NewKeyValidator(cfg.Region)
	if err != nil {
		slog.Error("key validator setup failed", "err", err)
		os.Exit(1)
	}
	probeCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	valid, err := validator.ValidateKey(probeCtx, cfg.APIKey)
	cancel()
	if err != nil {
		slog.Warn("key validation probe failed, continuing anyway", "err", err)
	} else if !valid {
		slog.Error("API key rejected by upstream, renew it before starting the daemon")
		os.Exit(1)
	}

	blobs, err := app.OpenBlobstore(cfg)
	if err != nil {
		slog.Error("storage setup failed", "err", err)
		os.Exit(1)
	}
	board := leaderboard.NewStore(blobs)

	client, err := riot.NewClient(cfg.APIKey, ratelimit.New(), respcache.New(),
		riot.WithBaseURLTemplate(cfg.BaseURLTemplate),
		riot.WithEndpoints(app.Endpoints(cfg)),
	)
	if err != nil {
		slog.Error("client setup failed", "err", err)
		os.Exit(1)
	}

	opts := []refresh.Option{refresh.WithWorkerCount(cfg.RefreshWorkers)}
	if cfg.WebhookURL != "" {
		opts = append(opts, refresh.WithNotifier(notify.NewWebhookClient(cfg.WebhookURL)))
	}
	sweeper := refresh.NewSweeper(client, board, opts...)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			slog.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "err", err)
			}
		}()
	}

	ctx := refresh.SetupSignalHandler(func(shutdownCtx context.Context) {
		if metricsSrv != nil {
			metricsSrv.Shutdown(shutdownCtx)
		}
	})

	slog.Info("refresh daemon starting",
		"interval", cfg.RefreshInterval, "workers", cfg.RefreshWorkers)

	if err := sweeper.RunContinuous(ctx, cfg.RefreshInterval); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("refresh daemon stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("refresh daemon stopped")
}
