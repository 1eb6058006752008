package config

import (
	"os"
	"path/filepath"
)

const (
	// DataDirEnv overrides where goatrelay keeps config.toml and stats.db.
	DataDirEnv = "GOATRELAY_DATA_DIR"

	dataDirName = "goatrelay"
	statsDBName = "stats.db"
)

// DataDir returns the directory for goatrelay's local files. GOATRELAY_DATA_DIR
// wins; otherwise the per-user config directory is used, falling back to a
// dot directory in the working directory when no home can be found.
func DataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, dataDirName)
	}
	return "." + dataDirName
}

// DBPath returns the default location of the relay stats database.
func DBPath() string {
	return filepath.Join(DataDir(), statsDBName)
}
