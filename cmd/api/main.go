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

	"github.com/mandalnilabja/goatrelay/internal/app"
	"github.com/mandalnilabja/goatrelay/internal/config"
	"github.com/mandalnilabja/goatrelay/internal/metrics"
	"github.com/mandalnilabja/goatrelay/internal/secrets"
	"github.com/mandalnilabja/goatrelay/internal/tokenizer"
	"github.com/mandalnilabja/goatrelay/internal/transport/http/handler"
	"github.com/mandalnilabja/goatrelay/internal/transport/http/handler/proxy"
	"github.com/mandalnilabja/goatrelay/internal/upstream"
)

// shutdownGrace is how long in-flight relays get to finish on SIGINT/SIGTERM.
const shutdownGrace = 30 * time.Second

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load()
	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := config.EnsureConfigFile(); err != nil {
		logger.Warn("could not create default config file", "path", config.ConfigPath(), "error", err)
	}

	store, err := openStats(cfg, logger)
	if err != nil {
		logger.Error("failed to open stats store", "path", cfg.StatsDBPath, "error", err)
		os.Exit(1)
	}
	if store != nil {
		defer store.Close()
	}

	client := upstream.NewHTTPClient()
	relay := proxy.New(secrets.Env{},
		upstream.NewInference(cfg.InferenceURL, client),
		upstream.NewAgent(cfg.AgentURL, client),
		cfg.Timeouts,
		logger,
	)
	relay.Tokenizer = tokenizer.New()
	relay.Metrics = metrics.NewCollector(nil)
	relay.Storage = store

	logCredentialPresence(logger, secrets.Env{})

	repo := handler.NewRepo(relay, store)
	router := app.NewRouter(repo, &app.RouterOptions{
		Logger:  logger,
		Metrics: relay.Metrics,
	})
	srv := app.NewServer(cfg, router, logger)

	printStartupBanner(cfg)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited unexpectedly", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}
}
