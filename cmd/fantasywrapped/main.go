package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/omarshaarawi/fantasywrapped/internal/api/fantasy"
	"github.com/omarshaarawi/fantasywrapped/internal/api/yahoo"
	"github.com/omarshaarawi/fantasywrapped/internal/awards"
	"github.com/omarshaarawi/fantasywrapped/internal/bot"
	"github.com/omarshaarawi/fantasywrapped/internal/config"
	"github.com/omarshaarawi/fantasywrapped/internal/models"
	"github.com/omarshaarawi/fantasywrapped/internal/observability"
	"github.com/omarshaarawi/fantasywrapped/internal/repository/memory"
	"github.com/omarshaarawi/fantasywrapped/internal/repository/postgres"
	"github.com/omarshaarawi/fantasywrapped/internal/repository/redis"
	"github.com/omarshaarawi/fantasywrapped/internal/repository/sqlite"
	"github.com/omarshaarawi/fantasywrapped/internal/scheduler"
	"github.com/omarshaarawi/fantasywrapped/internal/server"
	"github.com/omarshaarawi/fantasywrapped/internal/service"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	store, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Error closing award cache", "error", err)
		}
	}()

	fantasyAPI := fantasy.NewAPI(fantasy.Config{
		ClientID:     cfg.Yahoo.ClientID,
		ClientSecret: cfg.Yahoo.ClientSecret,
		TokenURL:     cfg.Yahoo.TokenURL,
		Location:     location,
		Client: yahoo.ClientConfig{
			BaseURL:     cfg.Yahoo.BaseURL,
			Timeout:     cfg.Yahoo.Timeout,
			MaxRetries:  cfg.Yahoo.MaxRetries,
			BaseBackoff: cfg.Yahoo.BaseBackoff,
			MaxBackoff:  cfg.Yahoo.MaxBackoff,
			Metrics:     metrics,
		},
	})
	engine := awards.New(awards.Options{RosterConcurrency: cfg.Engine.RosterConcurrency})
	wrappedService := service.NewWrappedService(fantasyAPI, store, engine, metrics, service.Config{
		MetricTimeout: cfg.Engine.MetricTimeout,
		ReplayDelay:   cfg.HTTP.ReplayDelay,
	})

	serverCreds := models.Credentials{RefreshToken: cfg.Yahoo.RefreshToken}

	var sendMessage func(string) error
	if cfg.Telegram.Enabled() {
		telegramBot, err := bot.NewTelegramBot(cfg.Telegram.Token, cfg.Telegram.ChatID, bot.NewHandler(wrappedService, serverCreds))
		if err != nil {
			return err
		}
		sendMessage = telegramBot.SendMessage
		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	}

	if cfg.Scheduler.WarmCron != "" {
		sched, err := scheduler.NewScheduler(wrappedService, scheduler.Config{
			Cron:     cfg.Scheduler.WarmCron,
			Leagues:  cfg.Scheduler.Leagues,
			Creds:    serverCreds,
			Location: location,
		}, sendMessage)
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Error("Error stopping scheduler", "error", err)
			}
		}()
	}

	srv := server.New(wrappedService, server.Config{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		PrimeDelay:     cfg.HTTP.PrimeDelay,
		ToolCreds:      serverCreds,
		Gatherer:       reg,
		Version:        version,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", cfg.HTTP.Addr, "cache", cfg.Cache.Backend, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serving http: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type store interface {
	service.Store
	Close() error
}

func openStore(ctx context.Context, cfg config.Cache) (store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		return redis.NewRepository(ctx, cfg.RedisURL, cfg.RedisTTL)
	case config.BackendPostgres:
		return postgres.NewRepository(ctx, cfg.PostgresDSN)
	case config.BackendSQLite:
		return sqlite.NewRepository(ctx, cfg.SQLitePath)
	default:
		return memory.NewRepository(), nil
	}
}
