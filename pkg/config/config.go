// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads minewatch settings from defaults, an optional config
// file, MINEWATCH_* environment variables and bound command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Thermoquad/minewatch/pkg/hazard"
	"github.com/Thermoquad/minewatch/pkg/link"
	"github.com/Thermoquad/minewatch/pkg/metrics"
	"github.com/Thermoquad/minewatch/pkg/position"
)

// EnvPrefix is the environment variable prefix, e.g. MINEWATCH_PORT
const EnvPrefix = "MINEWATCH"

// Keys
const (
	KeyPort            = "port"
	KeyBaud            = "baud"
	KeyUsername        = "username"
	KeyPassword        = "password"
	KeyNoSSLVerify     = "no_ssl_verify"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyLogFile         = "log_file"
	KeyMetricsAddr     = "metrics_addr"
	KeyStatsInterval   = "stats_interval"
	KeyMaxBuffer       = "max_buffer"
	KeyRetryDelay      = "retry_delay"
	KeyReadTimeout     = "read_timeout"
	KeyMailboxCapacity = "mailbox_capacity"
	KeyZones           = "zones"
	KeyFootprint       = "footprint"
)

// ErrInvalidSetting is returned for settings that fail validation
var ErrInvalidSetting = errors.New("invalid setting")

// Settings is the resolved configuration
type Settings struct {
	Port        string `mapstructure:"port"`
	Baud        int    `mapstructure:"baud"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	NoSSLVerify bool   `mapstructure:"no_ssl_verify"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	MetricsAddr   string        `mapstructure:"metrics_addr"`
	StatsInterval time.Duration `mapstructure:"stats_interval"`

	MaxBuffer       int           `mapstructure:"max_buffer"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	MailboxCapacity int           `mapstructure:"mailbox_capacity"`

	Zones     []hazard.Zone    `mapstructure:"zones"`
	Footprint hazard.Footprint `mapstructure:"footprint"`
}

// New returns a viper instance with defaults and environment binding applied
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default for every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "")
	v.SetDefault(KeyBaud, link.DefaultBaudRate)
	v.SetDefault(KeyUsername, "")
	v.SetDefault(KeyPassword, "")
	v.SetDefault(KeyNoSSLVerify, false)

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogFile, "")

	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyStatsInterval, 10*time.Second)

	v.SetDefault(KeyMaxBuffer, position.DefaultMaxBuffer)
	v.SetDefault(KeyRetryDelay, link.DefaultRetryDelay)
	v.SetDefault(KeyReadTimeout, link.DefaultReadTimeout)
	v.SetDefault(KeyMailboxCapacity, link.DefaultMailboxCapacity)

	zones := make([]map[string]any, 0, 3)
	for _, z := range hazard.DefaultZones() {
		zones = append(zones, map[string]any{
			"center":       map[string]any{"x": z.Center.X, "y": z.Center.Y},
			"outer_radius": z.OuterRadius,
			"inner_radius": z.InnerRadius,
		})
	}
	v.SetDefault(KeyZones, zones)

	fp := hazard.DefaultFootprint()
	v.SetDefault(KeyFootprint+".width", fp.Width)
	v.SetDefault(KeyFootprint+".height", fp.Height)
	v.SetDefault(KeyFootprint+".anchor_x", fp.AnchorX)
	v.SetDefault(KeyFootprint+".anchor_y", fp.AnchorY)
}

// ReadFile reads path when given, otherwise looks for minewatch.{yaml,json,toml}
// in the working directory and $HOME/.config/minewatch. A missing file is only
// an error when path was named explicitly.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("minewatch")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/minewatch")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load decodes and validates the settings held by v
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects settings that would fail at runtime. Hazard geometry is
// checked here so contract violations surface at load time.
func (s *Settings) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel)); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidSetting, s.LogLevel)
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log format %q (use console or json)", ErrInvalidSetting, s.LogFormat)
	}

	if s.Port != "" {
		if err := s.LinkConfig().Validate(); err != nil {
			return err
		}
	}

	if s.MaxBuffer < position.MinBuffer {
		return fmt.Errorf("%w: max_buffer must be at least %d", ErrInvalidSetting, position.MinBuffer)
	}
	if s.RetryDelay <= 0 || s.ReadTimeout <= 0 {
		return fmt.Errorf("%w: retry_delay and read_timeout must be positive", ErrInvalidSetting)
	}
	if s.StatsInterval < 0 {
		return fmt.Errorf("%w: stats_interval must not be negative", ErrInvalidSetting)
	}

	if _, err := s.Classifier(); err != nil {
		return err
	}
	return nil
}

// Classifier builds the hazard classifier from the configured geometry
func (s *Settings) Classifier() (*hazard.Classifier, error) {
	return hazard.NewClassifier(s.Zones, s.Footprint)
}

// LinkConfig returns the configured link, or nil when no port is set
func (s *Settings) LinkConfig() *link.Config {
	if s.Port == "" {
		return nil
	}
	return &link.Config{Port: s.Port, BaudRate: s.Baud}
}

// WebSocketOptions returns the WebSocket transport options
func (s *Settings) WebSocketOptions() link.WebSocketOptions {
	return link.WebSocketOptions{
		Username:      s.Username,
		Password:      s.Password,
		SkipTLSVerify: s.NoSSLVerify,
	}
}

// ReaderOptions returns the link reader options
func (s *Settings) ReaderOptions(logger zerolog.Logger, recorder metrics.Recorder) link.ReaderOptions {
	return link.ReaderOptions{
		RetryDelay: s.RetryDelay,
		MaxBuffer:  s.MaxBuffer,
		Logger:     logger,
		Metrics:    recorder,
	}
}
