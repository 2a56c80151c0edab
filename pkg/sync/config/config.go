// Package config implements the layered configuration surface (C12): struct
// defaults, overlaid by an optional YAML file, overlaid by environment
// variables, overlaid by explicit command-line flags, then validated as a
// whole. Only the primitive, serializable subset of engine.SyncOptions is
// exposed here — predicates, the journal state snapshot used for resume, and
// the metrics collector are runtime concerns wired by the CLI directly.
package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/rjfmedia/lempicka-sync/pkg/sync/engine"
)

// envPrefix namespaces every environment variable this package reads.
const envPrefix = "LEMPICKA_"

// FileConfig is the serializable portion of a sync run's configuration.
type FileConfig struct {
	LeftRoot  string `yaml:"left_root" env:"LEFT_ROOT"`
	RightRoot string `yaml:"right_root" env:"RIGHT_ROOT"`

	ContinueOnError bool `yaml:"continue_on_error" env:"CONTINUE_ON_ERROR" default:"false"`

	RetryCount       int `yaml:"retry_count" env:"RETRY_COUNT" default:"2" validate:"gte=0"`
	RetryBaseDelayMs int `yaml:"retry_base_delay_ms" env:"RETRY_BASE_DELAY_MS" default:"300" validate:"gte=0"`

	SmallFileThresholdBytes int64 `yaml:"small_file_threshold_bytes" env:"SMALL_FILE_THRESHOLD_BYTES" default:"4194304" validate:"gte=0"`
	MaxParallelSmallFiles   int   `yaml:"max_parallel_small_files" env:"MAX_PARALLEL_SMALL_FILES" default:"3" validate:"gte=1"`

	JournalPath string `yaml:"journal_path" env:"JOURNAL_PATH"`
}

// DefaultPath returns the reference configuration file location,
// ~/.config/lempicka-sync/config.yaml, honoring $HOME.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lempicka-sync", "config.yaml")
}

// Load builds a FileConfig by layering, in increasing precedence: struct
// defaults, the YAML file at path (if it exists; a missing file at the
// default path is not an error), environment variables prefixed with
// LEMPICKA_, and any flags already parsed into flagOverlay. The result is
// validated before being returned.
func Load(path string, flagOverlay *pflag.FlagSet) (*FileConfig, error) {
	cfg := &FileConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, err
	}

	applyFlagOverlay(cfg, flagOverlay)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFlagOverlay copies any explicitly-set flag value onto cfg, taking
// priority over the file/env layers beneath it. Flags the caller never
// registered or never set are left untouched.
func applyFlagOverlay(cfg *FileConfig, flags *pflag.FlagSet) {
	if flags == nil {
		return
	}

	flags.Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "continue-on-error":
			cfg.ContinueOnError, _ = flags.GetBool(flag.Name)
		case "retry-count":
			cfg.RetryCount, _ = flags.GetInt(flag.Name)
		case "retry-base-delay-ms":
			cfg.RetryBaseDelayMs, _ = flags.GetInt(flag.Name)
		case "small-file-threshold-bytes":
			value, _ := flags.GetInt64(flag.Name)
			cfg.SmallFileThresholdBytes = value
		case "max-parallel-small-files":
			cfg.MaxParallelSmallFiles, _ = flags.GetInt(flag.Name)
		case "journal":
			cfg.JournalPath = flag.Value.String()
		}
	})
}

// ToSyncOptions translates a FileConfig into the serializable fields of an
// engine.SyncOptions. Predicates, journal resume state, and the metrics
// collector are left at their zero values for the caller to wire.
func (c *FileConfig) ToSyncOptions() engine.SyncOptions {
	return engine.SyncOptions{
		LeftRoot:                c.LeftRoot,
		RightRoot:               c.RightRoot,
		ContinueOnError:         c.ContinueOnError,
		RetryCount:              c.RetryCount,
		RetryBaseDelayMs:        c.RetryBaseDelayMs,
		SmallFileThresholdBytes: c.SmallFileThresholdBytes,
		MaxParallelSmallFiles:   c.MaxParallelSmallFiles,
		JournalPath:             c.JournalPath,
	}
}
