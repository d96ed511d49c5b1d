// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads propbind CLI settings from an optional YAML file and
// command-line flags.
package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/propbind/internal/logging"
	"github.com/holomush/propbind/internal/xdg"
)

// Error codes returned by this package.
const (
	CodeLoad    = "CONFIG_LOAD"
	CodeInvalid = "CONFIG_INVALID"
)

// Default values for CLI flags.
const (
	DefaultLogFormat = logging.FormatText
	DefaultLogLevel  = "warn"
)

// Config holds settings shared by every subcommand. Keys match flag names.
type Config struct {
	LogFormat string `koanf:"log-format"`
	LogLevel  string `koanf:"log-level"`
	Manifest  string `koanf:"manifest"`
	Metrics   bool   `koanf:"metrics"`
}

// Validate checks that the configuration is valid.
func (cfg *Config) Validate() error {
	if cfg.LogFormat != logging.FormatJSON && cfg.LogFormat != logging.FormatText {
		return oops.In("config").Code(CodeInvalid).
			With("log-format", cfg.LogFormat).
			Errorf("log-format must be 'json' or 'text', got %q", cfg.LogFormat)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return oops.In("config").Code(CodeInvalid).With("log-level", cfg.LogLevel).Wrap(err)
	}
	return nil
}

// Load builds a Config. Flags explicitly set on the command line win over
// the file, which wins over flag defaults.
//
// path names the config file; when empty the XDG default is used if it
// exists. A named file that does not exist is an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	filePath, required := path, true
	if filePath == "" {
		filePath, required = xdg.ConfigFile(), false
	}
	if err := loadFile(k, filePath, required); err != nil {
		return nil, err
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.In("config").Code(CodeLoad).Wrapf(err, "load flags")
		}
	}

	cfg := &Config{
		LogFormat: DefaultLogFormat,
		LogLevel:  DefaultLogLevel,
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.In("config").Code(CodeLoad).Wrapf(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oops.In("config").Code(CodeLoad).With("path", path).Wrapf(err, "config file")
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.In("config").Code(CodeLoad).With("path", path).Wrapf(err, "load config file")
	}
	return nil
}
