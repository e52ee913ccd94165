/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Tabula Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/


// Package config loads view defaults from an optional config file and
// TABULA_ environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/google/tabula/core/logger"
	"github.com/google/tabula/core/paging"
	"github.com/google/tabula/core/views"
)

// EnvPrefix is prepended to every environment variable, e.g. TABULA_PAGE_SIZE.
const EnvPrefix = "TABULA"

// Config holds the settings shared by every view session.
type Config struct {
	PageSize         int      `mapstructure:"page_size"`
	PaginatePerGroup bool     `mapstructure:"paginate_per_group"`
	AutoResetPage    bool     `mapstructure:"auto_reset_page"`
	HiddenColumns    []string `mapstructure:"hidden_columns"`
	LogLevel         string   `mapstructure:"log_level"`
	LogFormat        string   `mapstructure:"log_format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("page_size", paging.DefaultPageSize)
	v.SetDefault("paginate_per_group", false)
	v.SetDefault("auto_reset_page", true)
	v.SetDefault("hidden_columns", []string{})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", string(logger.FormatAuto))
}

// Load reads the config file at path, if path is non-empty, then applies
// environment overrides. A missing file is an error only when path is set.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	// Defaults make every key known, so AutomaticEnv also feeds Unmarshal.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges viper cannot express.
func (c *Config) Validate() error {
	if err := paging.ValidatePageSize(c.PageSize); err != nil {
		return err
	}
	switch logger.Format(c.LogFormat) {
	case logger.FormatAuto, logger.FormatText, logger.FormatTerminal:
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "err", "error":
	default:
		return errors.New("log_level must be one of debug, info, warn, error")
	}
	return nil
}

// Logger applies the configured level and returns a logger in the configured format.
func (c *Config) Logger() *slog.Logger {
	logger.Level.SetByName(c.LogLevel)
	return logger.New(logger.Format(c.LogFormat))
}

// Options converts the config into controller options.
func (c *Config) Options(log *slog.Logger) views.Options {
	opts := views.DefaultOptions()
	opts.PageSize = c.PageSize
	opts.PaginatePerGroup = c.PaginatePerGroup
	opts.AutoResetPage = c.AutoResetPage
	opts.HiddenColumns = append([]string(nil), c.HiddenColumns...)
	opts.Logger = log
	return opts
}
