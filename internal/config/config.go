// Package config loads the tool's own ambient settings — the things that
// control how unreach runs, as opposed to domain.Config, which is the
// project-specific unreach.config.{js,ts} schema defined in §6.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// PerformanceConfig bounds the worker pool used by the parallel executor
// (§5: a single bounded-parallelism stage, capped at min(NumCPU, 8)).
type PerformanceConfig struct {
	MaxGoroutines  int `mapstructure:"max_goroutines" yaml:"max_goroutines"`
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Settings is the ambient, machine-local configuration read from
// .unreach.yaml (or the UNREACH_ env prefix), independent of the
// per-project unreach.config.js rules.
type Settings struct {
	Performance PerformanceConfig `mapstructure:"performance" yaml:"performance"`

	// NoColor is read from the settings file; no output path consults it,
	// so promptui and progressbar output keep their colors.
	NoColor bool `mapstructure:"no_color" yaml:"no_color"`

	// Interactive, when false, suppresses progress-bar rendering; nil or
	// true leaves it to whether stderr is a terminal.
	Interactive *bool `mapstructure:"interactive" yaml:"interactive"`
}

// DefaultMaxGoroutines mirrors the spec's min(NumCPU, 8) cap (§5).
func DefaultMaxGoroutines() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	if n < 1 {
		return 1
	}
	return n
}

// DefaultSettings returns the out-of-the-box ambient configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Performance: PerformanceConfig{
			MaxGoroutines:  DefaultMaxGoroutines(),
			TimeoutSeconds: 300,
		},
	}
}

// LoadSettings reads .unreach.yaml starting from targetPath and walking up
// to the filesystem root, falling back to defaults when none is found.
// Environment variables prefixed UNREACH_ override file values, following
// the teacher's viper wiring.
func LoadSettings(targetPath string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName(".unreach")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("UNREACH")
	v.AutomaticEnv()

	settings := DefaultSettings()

	path := findSettingsFile(targetPath)
	if path == "" {
		return settings, nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	if settings.Performance.MaxGoroutines <= 0 {
		settings.Performance.MaxGoroutines = DefaultMaxGoroutines()
	}
	if settings.Performance.TimeoutSeconds <= 0 {
		settings.Performance.TimeoutSeconds = 300
	}
	return settings, nil
}

// findSettingsFile walks from targetPath upward looking for .unreach.yaml,
// following the teacher's findDefaultConfig walk-to-root pattern.
func findSettingsFile(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}

	for dir := absPath; ; {
		candidate := filepath.Join(dir, ".unreach.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		candidate = filepath.Join(dir, ".unreach.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
