package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mandalnilabja/goatrelay/internal/config"
	"github.com/mandalnilabja/goatrelay/internal/version"
)

func setupLogger(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printStartupBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "🐐 Goatrelay %s - Playground Relay\n", version.Version)
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "Chat:       http://localhost%s/api/chat (timed, stream)\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Agents:     http://localhost%s/api/agent/{search,research}\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Metrics:    http://localhost%s/metrics\n", cfg.ServerPort)
	if cfg.StatsEnabled {
		fmt.Fprintf(os.Stderr, "Stats:      %s\n", cfg.StatsDBPath)
	}
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "\n")
}
