// Package main is the entry point for the finance tracker Telegram bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"gitlab.com/yelinaung/finance-tracker/internal/auth"
	"gitlab.com/yelinaung/finance-tracker/internal/bot"
	"gitlab.com/yelinaung/finance-tracker/internal/config"
	"gitlab.com/yelinaung/finance-tracker/internal/gemini"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/metrics"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
	"gitlab.com/yelinaung/finance-tracker/internal/telemetry"
	"gitlab.com/yelinaung/finance-tracker/internal/tracker"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("finance-tracker %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	if cfg.LogJSON {
		logger.SetJSON()
	}
	logger.SetLevel(cfg.LogLevel)
	logger.InitHashSalt()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.FromConfig(cfg, version))
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	m := metrics.New()
	store := repository.NewStore()
	users := repository.NewUserRepository()
	sessions := repository.NewSessionRepository()

	authSvc := auth.NewService(users, cfg.DefaultCurrency)
	if cfg.SeedDemoData {
		if err := authSvc.SeedDemo(ctx, store, cfg.Location); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}

	opts := []tracker.Option{tracker.WithMetrics(m)}
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Category suggestions disabled")
		} else {
			opts = append(opts, tracker.WithSuggester(client))
		}
	}
	trk := tracker.New(store, users, cfg.Location, opts...)

	telegramBot, err := bot.New(cfg, bot.Deps{
		Auth:     authSvc,
		Tracker:  trk,
		Sessions: sessions,
		Metrics:  m,
	})
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create bot")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		telegramBot.Start(ctx)
		return nil
	})
	g.Go(func() error {
		telegramBot.RunRecurringLoop(ctx)
		return nil
	})
	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           otelhttp.NewHandler(m.Handler(), "metrics"),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Log.Info().Str("addr", cfg.MetricsAddr).Msg("Metrics server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Log.Error().Err(err).Msg("Shutting down after error")
		return
	}
	logger.Log.Info().Msg("Shut down cleanly")
}
