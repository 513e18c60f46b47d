package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	DBPath string         `yaml:"db_path"`
	Engine EngineSettings `yaml:"engine"`
}

// EngineSettings are the numeric knobs of the memory/selection engine.
// Zero values mean "use the default"; out-of-range values are replaced,
// never fatal.
type EngineSettings struct {
	HotKeepCount              int     `yaml:"hot_keep_count" json:"hot_keep_count"`
	WarmRetentionDays         int     `yaml:"warm_retention_days" json:"warm_retention_days"`
	WarmMaxCount              int     `yaml:"warm_max_count" json:"warm_max_count"`
	ColdMaxCount              int     `yaml:"cold_max_count" json:"cold_max_count"`
	CompressionRatio          float64 `yaml:"compression_ratio" json:"compression_ratio"`
	HistoryDeltaThreshold     int     `yaml:"history_delta_threshold" json:"history_delta_threshold"`
	RatedDeltaThreshold       int     `yaml:"rated_delta_threshold" json:"rated_delta_threshold"`
	MinIntervalMinutes        int     `yaml:"min_interval_minutes" json:"min_interval_minutes"`
	ForceDeltaWithoutInterval int     `yaml:"force_delta_without_interval" json:"force_delta_without_interval"`
	MaxPatterns               int     `yaml:"max_patterns" json:"max_patterns"`
}

// Engine setting defaults.
const (
	defaultHotKeepCount       = 20
	defaultWarmRetentionDays  = 21
	defaultWarmMaxCount       = 300
	defaultColdMaxCount       = 1000
	defaultCompressionRatio   = 0.85
	defaultHistoryDelta       = 30
	defaultRatedDelta         = 10
	defaultMinIntervalMinutes = 15
	defaultForceDelta         = 90
	defaultMaxPatterns        = 50
)

// EffectiveEngineSettings returns validated engine settings with defaults.
// Invalid or missing config values fall back to safe defaults; every knob
// is clamped independently so one bad value never poisons the rest.
func EffectiveEngineSettings() EngineSettings {
	s, err := LoadSettings()
	if err != nil {
		return validateEngineSettings(EngineSettings{})
	}
	return validateEngineSettings(s.Engine)
}

func validateEngineSettings(in EngineSettings) EngineSettings {
	out := EngineSettings{
		HotKeepCount:              clampInt(in.HotKeepCount, 1, 500, defaultHotKeepCount),
		WarmRetentionDays:         clampInt(in.WarmRetentionDays, 1, 365, defaultWarmRetentionDays),
		WarmMaxCount:              clampInt(in.WarmMaxCount, 10, 10000, defaultWarmMaxCount),
		ColdMaxCount:              clampInt(in.ColdMaxCount, 50, 100000, defaultColdMaxCount),
		CompressionRatio:          clampFloat(in.CompressionRatio, 0.5, 1.0, defaultCompressionRatio),
		HistoryDeltaThreshold:     clampInt(in.HistoryDeltaThreshold, 1, 1000, defaultHistoryDelta),
		RatedDeltaThreshold:       clampInt(in.RatedDeltaThreshold, 1, 1000, defaultRatedDelta),
		MinIntervalMinutes:        clampInt(in.MinIntervalMinutes, 1, 1440, defaultMinIntervalMinutes),
		ForceDeltaWithoutInterval: clampInt(in.ForceDeltaWithoutInterval, 1, 10000, defaultForceDelta),
		MaxPatterns:               clampInt(in.MaxPatterns, 5, 500, defaultMaxPatterns),
	}
	return out
}

// clampInt returns v when it lies in [min,max]; otherwise def. Zero always
// means "unset" and yields the default.
func clampInt(v, min, max, def int) int {
	if v < min || v > max {
		return def
	}
	return v
}

func clampFloat(v, min, max, def float64) float64 {
	if v < min || v > max {
		return def
	}
	return v
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// dbPathOverrideMu and dbPathOverride implement a mutex-protected process-wide override for CLI --db-path.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	dbPathOverrideMu sync.RWMutex
	dbPathOverride   string
)

// SetDBPathOverride sets a process-wide database path override.
// Intended for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	dbPathOverrideMu.Lock()
	dbPathOverride = path
	dbPathOverrideMu.Unlock()
}

func getDBPathOverride() string {
	dbPathOverrideMu.RLock()
	v := dbPathOverride
	dbPathOverrideMu.RUnlock()
	return v
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/mentat/config.yaml
// 2) /etc/mentat/config.yaml
// 3) ./config.yaml (lowest priority; allows repo-local overrides if desired)
// Environment variables are handled separately.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		dir, err := ConfigDir()
		if err != nil {
			settingsErr = err
			return
		}
		if s, err := loadSettingsFile(filepath.Join(dir, "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		if s, err := loadSettingsFile(filepath.Join(string(os.PathSeparator), "etc", "mentat", "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		if s, err := loadSettingsFile("config.yaml"); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
