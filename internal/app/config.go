package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/mentat/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mentat"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# mentat configuration
# Run: mentat --help

# Optional: override the SQLite database location.
# Can also be set via MENTAT_DB_PATH or --db-path.
# db_path: ~/.config/mentat/mentat.db

# Engine tuning. Out-of-range values fall back to the defaults shown.
# engine:
#   hot_keep_count: 20
#   warm_retention_days: 21
#   warm_max_count: 300
#   cold_max_count: 1000
#   compression_ratio: 0.85
#   history_delta_threshold: 30
#   rated_delta_threshold: 10
#   min_interval_minutes: 15
#   force_delta_without_interval: 90
#   max_patterns: 50
`
