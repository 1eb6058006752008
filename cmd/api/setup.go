package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/mandalnilabja/goatrelay/internal/config"
	"github.com/mandalnilabja/goatrelay/internal/secrets"
	"github.com/mandalnilabja/goatrelay/internal/storage"
)

// loadDotEnv loads environment variables from path. Missing files are ignored
// and variables already set in the environment win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// openStats opens the stats store when enabled. It returns a nil Storage
// when stats are off.
func openStats(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if !cfg.StatsEnabled {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.StatsDBPath), 0700); err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStorage(cfg.StatsDBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("stats store enabled", "path", cfg.StatsDBPath)
	return store, nil
}

// logCredentialPresence reports which endpoint secrets are configured. Only
// presence is logged; requests still resolve secrets on every call.
func logCredentialPresence(logger *slog.Logger, src secrets.Source) {
	for _, key := range []string{
		secrets.InferenceAPIKey,
		secrets.AgentSearchToken,
		secrets.AgentSearchDeploymentID,
		secrets.AgentResearchToken,
		secrets.AgentResearchDeploymentID,
	} {
		_, err := secrets.Resolve(src, key)
		if err != nil {
			logger.Warn("secret not configured; dependent endpoints will return 500", "key", key)
			continue
		}
		logger.Debug("secret configured", "key", key, "present", true)
	}
}
