package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if COACH_CONFIG is set
//  3. env (prefix COACH_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("COACH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: COACH_DB_PATH, COACH_SMOOTH_WINDOW, ...
	// Keys map flat, COACH_DB_PATH -> db_path, preserving underscores to
	// match the koanf tags on the struct.
	envProvider := env.Provider("COACH_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "coach_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if cfg.PractitionerCSV == "" || cfg.ReferenceCSV == "" {
		return nil, fmt.Errorf("%w: practitioner_csv and reference_csv are required", ErrInvalidConfig)
	}
	return &cfg, nil
}
