package config

import (
	"os"
	"strings"
	"time"
)

// Default upstream endpoints.
const (
	DefaultInferenceURL = "https://openrouter.ai/api/v1/chat/completions"
	DefaultAgentURL     = "https://api.agent-runtime.dev/v1"
)

// Config holds application configuration loaded from environment and file.
// Priority: Env vars → config.toml → defaults
//
// Secrets are deliberately absent; they are resolved per request through
// secrets.Source.
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":8080")
	ServerPort string

	// LogLevel is one of debug, info, warn, error
	LogLevel string

	// InferenceURL is the chat-completion endpoint requests are relayed to
	InferenceURL string

	// AgentURL is the base URL of the agent execution API
	AgentURL string

	// Timeouts bound each upstream call per endpoint
	Timeouts Timeouts

	// StatsEnabled turns on the aggregate relay stats store
	StatsEnabled bool

	// StatsDBPath is the SQLite file for relay stats
	StatsDBPath string
}

// Timeouts bounds the outbound call of each endpoint.
type Timeouts struct {
	Chat          time.Duration
	ChatStream    time.Duration
	AgentSearch   time.Duration
	AgentResearch time.Duration
}

// Longest returns the largest configured timeout.
func (t Timeouts) Longest() time.Duration {
	longest := t.Chat
	for _, d := range []time.Duration{t.ChatStream, t.AgentSearch, t.AgentResearch} {
		if d > longest {
			longest = d
		}
	}
	return longest
}

// DefaultTimeouts returns the built-in per-endpoint bounds.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Chat:          60 * time.Second,
		ChatStream:    120 * time.Second,
		AgentSearch:   120 * time.Second,
		AgentResearch: 300 * time.Second,
	}
}

// Load reads configuration from file and environment variables.
// Environment variables override file config values.
func Load() *Config {
	fileConfig, err := LoadFile()
	if err != nil {
		fileConfig = &FileConfig{} // unreadable file: fall back to env + defaults
	}
	return fromSources(fileConfig)
}

func fromSources(fileConfig *FileConfig) *Config {
	defaults := DefaultTimeouts()
	ft := fileConfig.Timeouts

	return &Config{
		ServerPort:   getEnvOrFile("SERVER_PORT", fileConfig.ServerPort, ":8080"),
		LogLevel:     strings.ToLower(getEnvOrFile("LOG_LEVEL", fileConfig.LogLevel, "info")),
		InferenceURL: getEnvOrFile("INFERENCE_API_URL", fileConfig.InferenceURL, DefaultInferenceURL),
		AgentURL:     strings.TrimSuffix(getEnvOrFile("AGENT_API_URL", fileConfig.AgentURL, DefaultAgentURL), "/"),
		Timeouts: Timeouts{
			Chat:          getDurationOrFile("CHAT_TIMEOUT", ft.Chat, defaults.Chat),
			ChatStream:    getDurationOrFile("CHAT_STREAM_TIMEOUT", ft.ChatStream, defaults.ChatStream),
			AgentSearch:   getDurationOrFile("AGENT_SEARCH_TIMEOUT", ft.AgentSearch, defaults.AgentSearch),
			AgentResearch: getDurationOrFile("AGENT_RESEARCH_TIMEOUT", ft.AgentResearch, defaults.AgentResearch),
		},
		StatsEnabled: getEnvBoolOrFile("STATS_ENABLED", fileConfig.StatsEnabled, false),
		StatsDBPath:  getEnvOrFile("STATS_DB_PATH", fileConfig.StatsDBPath, DBPath()),
	}
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvBoolOrFile returns env bool, file bool, or default (in priority order)
func getEnvBoolOrFile(key string, fileValue *bool, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getDurationOrFile parses a Go duration from env or file. Unparseable or
// non-positive values fall through to the next source.
func getDurationOrFile(key, fileValue string, defaultValue time.Duration) time.Duration {
	for _, raw := range []string{os.Getenv(key), fileValue} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
