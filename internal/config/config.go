// Package config loads process-level and engine-level settings:
// environment variables with fallbacks for process settings, plus a YAML
// file for engine defaults that are too structured to live comfortably in
// env vars.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds process-level settings for the CLI entry point.
type Config struct {
	LogLevel string
}

// Load reads process settings from the environment, falling back to
// sensible defaults.
func Load() *Config {
	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// LegacyPiece identifies a piece exempt from the version-range upgrade
// normalize() applies (see internal/engine/normalize.go).
type LegacyPiece struct {
	Name       string `yaml:"name"`
	MinVersion string `yaml:"min_version"`
}

// EngineDefaults is the YAML-loaded configuration for engine behavior that
// is policy rather than mechanism: which pieces are exempt from the
// version-range upgrade. Ships with a built-in default list; callers may
// override it from a file.
type EngineDefaults struct {
	LegacyPieces []LegacyPiece `yaml:"legacy_pieces"`
}

// DefaultEngineDefaults returns the built-in legacy piece list.
func DefaultEngineDefaults() EngineDefaults {
	return EngineDefaults{
		LegacyPieces: []LegacyPiece{
			{Name: "google-sheets", MinVersion: "0.3.0"},
			{Name: "gmail", MinVersion: "0.3.0"},
		},
	}
}

// LoadEngineDefaults reads engine defaults from a YAML file at path. A
// missing file is not an error: the built-in defaults are returned.
func LoadEngineDefaults(path string) (EngineDefaults, error) {
	defaults := DefaultEngineDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("config: read engine defaults: %w", err)
	}

	var fromFile EngineDefaults
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return defaults, fmt.Errorf("config: parse engine defaults: %w", err)
	}
	if len(fromFile.LegacyPieces) > 0 {
		defaults.LegacyPieces = fromFile.LegacyPieces
	}
	return defaults, nil
}
