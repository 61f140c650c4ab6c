// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads dagsim's run defaults from (in ascending priority)
// built-in defaults, an XDG-located config file, and environment
// variables. CLI flags, bound by cmd via viper, take final priority over
// all of it. Viper resolves the file, environment and flags into one
// overlay, which dario.cat/mergo then merges over the defaults.
package config

import (
	"errors"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Slack holds the slack.* configuration keys. The serve command's
// deadline-miss notifier is configured from its --slack-token and
// --slack-channel flags and does not read this field.
type Slack struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// Telemetry holds the telemetry.* configuration keys. telemetry.Setup
// reads OTEL_EXPORTER_OTLP_ENDPOINT from the environment and does not read
// this field.
type Telemetry struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Config is dagsim's run configuration.
type Config struct {
	DAGsDir   string    `mapstructure:"dags_dir"`
	Cores     int       `mapstructure:"cores"`
	Duration  int32     `mapstructure:"duration"`
	Algorithm string    `mapstructure:"algorithm"`
	OutDir    string    `mapstructure:"out_dir"`
	Slack     Slack     `mapstructure:"slack"`
	Telemetry Telemetry `mapstructure:"telemetry"`
}

// Default returns dagsim's built-in configuration.
func Default() Config {
	return Config{
		Cores:     4,
		Duration:  1000,
		Algorithm: "global-edf",
		OutDir:    "./out",
	}
}

// dirName is both the XDG subdirectory and the config file's base name.
const dirName = "dagsim"

// Load resolves Config by starting from Default and overlaying, in
// increasing priority, a config file found on v's search path (XDG config
// dir, then the working directory), environment variables prefixed
// DAGSIM_, and any pflags the caller already bound into v. A zero-valued
// field anywhere in the overlay (e.g. an unset flag) never overrides
// Default — only fields a layer actually set do.
func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigName(dirName)
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(xdg.ConfigHome, dirName))
	v.AddConfigPath(".")
	v.SetEnvPrefix(dirName)
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys Viper already knows about; a
	// zero-valued default registers every key so Unmarshal sees it too.
	v.SetDefault("dags_dir", "")
	v.SetDefault("cores", 0)
	v.SetDefault("duration", 0)
	v.SetDefault("algorithm", "")
	v.SetDefault("out_dir", "")
	v.SetDefault("slack.webhook_url", "")
	v.SetDefault("telemetry.otlp_endpoint", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := Default()
	var overlay Config
	if err := v.Unmarshal(&overlay); err != nil {
		return nil, err
	}
	if err := mergo.Merge(&cfg, overlay, mergo.WithOverride); err != nil {
		return nil, err
	}
	return &cfg, nil
}
