// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"firestige.xyz/tagger/internal/core"
)

// Config represents the top-level configuration.
// Maps to the `tagger:` root key in YAML.
type Config struct {
	Log       LogConfig        `mapstructure:"log"`
	Ports     []PortBinding    `mapstructure:"ports"`
	Capture   CaptureConfig    `mapstructure:"capture"`
	Pipeline  PipelineConfig   `mapstructure:"pipeline"`
	Reporters []ReporterConfig `mapstructure:"reporters"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`   // debug / info / warn / error
	Format  string           `mapstructure:"format"`  // json / text
	Pattern string           `mapstructure:"pattern"` // text format only
	Time    string           `mapstructure:"time"`    // Go time layout
	Output  string           `mapstructure:"output"`  // stdout / stderr / none
	File    FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// ─── Tagging ───

// PortBinding binds an extra transport port to a protocol family,
// on top of the built-in 21/25/80 table.
type PortBinding struct {
	Port   int    `mapstructure:"port"`
	Family string `mapstructure:"family"` // smtp / http / ftp
}

// CaptureConfig configures how trace files are read.
type CaptureConfig struct {
	Filter string `mapstructure:"filter"` // host/src/dst/port/ip/ip6 expression
}

// PipelineConfig configures the tagging pass.
type PipelineConfig struct {
	Workers    int  `mapstructure:"workers"`     // 0 = GOMAXPROCS
	OnlyTagged bool `mapstructure:"only_tagged"` // report tagged packets only
}

// ReporterConfig selects a reporter plugin by name.
type ReporterConfig struct {
	Name   string         `mapstructure:"name"`
	Config map[string]any `mapstructure:"config"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `tagger: ...`.
type configRoot struct {
	Tagger Config `mapstructure:"tagger"`
}

// Load loads configuration from file. An empty path yields defaults plus
// environment overrides (e.g. TAGGER_LOG_LEVEL).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// The `tagger.` key prefix maps to `TAGGER_` through the key replacer.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Tagger

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// Defaults are static; failing here is a programming error.
		panic(err)
	}
	return cfg
}

// setDefaults sets default values for configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("tagger.log.level", "info")
	v.SetDefault("tagger.log.format", "text")
	v.SetDefault("tagger.log.output", "stderr")
	v.SetDefault("tagger.log.time", "2006-01-02 15:04:05.000")
	v.SetDefault("tagger.log.file.enabled", false)
	v.SetDefault("tagger.log.file.path", "/var/log/tagger/tagger.log")
	v.SetDefault("tagger.log.file.rotation.max_size_mb", 100)
	v.SetDefault("tagger.log.file.rotation.max_age_days", 30)
	v.SetDefault("tagger.log.file.rotation.max_backups", 5)
	v.SetDefault("tagger.log.file.rotation.compress", true)

	v.SetDefault("tagger.pipeline.workers", 0)
	v.SetDefault("tagger.pipeline.only_tagged", false)

	v.SetDefault("tagger.capture.filter", "")
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *Config) ValidateAndApplyDefaults() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("%w: invalid log level: %s (must be debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("%w: invalid log format: %s (must be json/text)", core.ErrConfigInvalid, cfg.Log.Format)
	}

	if cfg.Pipeline.Workers < 0 {
		return fmt.Errorf("%w: pipeline.workers must be >= 0, got %d", core.ErrConfigInvalid, cfg.Pipeline.Workers)
	}

	for i, b := range cfg.Ports {
		if b.Port < 1 || b.Port > core.MaxPort {
			return fmt.Errorf("%w: ports[%d]: port %d out of range", core.ErrConfigInvalid, i, b.Port)
		}
		if _, err := core.ParseFamily(b.Family); err != nil {
			return fmt.Errorf("%w: ports[%d]: %w", core.ErrConfigInvalid, i, err)
		}
	}

	if len(cfg.Reporters) == 0 {
		cfg.Reporters = []ReporterConfig{{Name: "console"}}
	}
	for i, r := range cfg.Reporters {
		if r.Name == "" {
			return fmt.Errorf("%w: reporters[%d]: name is required", core.ErrConfigInvalid, i)
		}
	}

	return nil
}
