// Package config assembles the tool's configuration from defaults, an
// optional YAML file, REPEAT_* environment variables, and command-line
// flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/repeat/internal/scheduler"
)

const envPrefix = "REPEAT_"

// Config is the full configuration surface. Every scheduling constant is
// replaceable here; the algorithm's shape, not its calibration, is fixed.
type Config struct {
	// DBPath is the SQLite file holding card states.
	DBPath string `koanf:"db_path" validate:"required"`
	// ReposDir is where git sources are cloned.
	ReposDir string `koanf:"repos_dir" validate:"required"`

	// CardLimit and NewCardLimit bound a drill session; 0 means unbounded.
	CardLimit    int `koanf:"card_limit" validate:"gte=0"`
	NewCardLimit int `koanf:"new_card_limit" validate:"gte=0"`

	// MatureThresholdDays separates young from mature cards in statistics.
	MatureThresholdDays float64 `koanf:"mature_threshold_days" validate:"gt=0"`
	// HistogramBuckets is the bucket count of the stats histograms.
	HistogramBuckets int `koanf:"histogram_buckets" validate:"gte=1"`

	Scheduler scheduler.Params `koanf:"scheduler"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		DBPath:              "repeat.db",
		ReposDir:            "repos",
		MatureThresholdDays: 21,
		HistogramBuckets:    5,
		Scheduler:           *scheduler.DefaultParams(),
	}
}

// Load builds the configuration. path names an optional YAML file (a
// missing file is not an error); flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	// REPEAT_DB_PATH -> db_path, REPEAT_SCHEDULER__DECAY -> scheduler.decay
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment config: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		}), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flag config: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
