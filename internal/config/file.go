package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	ServerPort   string       `toml:"server_port"`
	LogLevel     string       `toml:"log_level"`
	InferenceURL string       `toml:"inference_api_url"`
	AgentURL     string       `toml:"agent_api_url"`
	StatsEnabled *bool        `toml:"stats_enabled"`
	StatsDBPath  string       `toml:"stats_db_path"`
	Timeouts     FileTimeouts `toml:"timeouts"`
}

// FileTimeouts holds per-endpoint durations as Go duration strings ("90s").
type FileTimeouts struct {
	Chat          string `toml:"chat"`
	ChatStream    string `toml:"chat_stream"`
	AgentSearch   string `toml:"agent_search"`
	AgentResearch string `toml:"agent_research"`
}

// ConfigPath returns config.toml inside DataDir. GOATRELAY_CONFIG overrides it.
func ConfigPath() string {
	if p := os.Getenv("GOATRELAY_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DataDir(), "config.toml")
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	return loadFileAt(ConfigPath())
}

func loadFileAt(path string) (*FileConfig, error) {
	cfg := &FileConfig{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a default config file with commented examples if none exists.
func EnsureConfigFile() error {
	path := ConfigPath()

	// If config already exists, do nothing
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	defaultConfig := `# Goatrelay Configuration
# Secrets (INFERENCE_API_KEY, AGENT_*_TOKEN, AGENT_*_DEPLOYMENT_ID) are read
# from the environment only and never from this file.

# server_port = ":8080"
# log_level = "info"
# inference_api_url = "https://openrouter.ai/api/v1/chat/completions"
# agent_api_url = "https://api.agent-runtime.dev/v1"

# Aggregate relay counters (no request content is stored)
# stats_enabled = false
# stats_db_path = "/var/lib/goatrelay/stats.db"

# [timeouts]
# chat = "60s"
# chat_stream = "120s"
# agent_search = "120s"
# agent_research = "300s"
`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
