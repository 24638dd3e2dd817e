// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package config loads jailwatch settings from a YAML file, an optional
// .env file and JAILWATCH_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/we-are-mono/jailwatch/dashboard"
	"github.com/we-are-mono/jailwatch/validation"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is where the config file is looked up when --config is not given.
	DefaultPath = "/etc/jailwatch/jailwatch.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "JAILWATCH_"
)

// Config holds every jailwatch setting.
type Config struct {
	Service          string        `yaml:"service"`
	AutoBlockService string        `yaml:"autoblock_service"`
	Fail2banClient   string        `yaml:"fail2ban_client"`
	AlertLog         string        `yaml:"alert_log"`
	PlainLog         string        `yaml:"plain_log"`
	RefreshInterval  time.Duration `yaml:"refresh_interval"`
	CommandTimeout   time.Duration `yaml:"command_timeout"`
	Workers          int           `yaml:"workers"`
	RecentLimit      int           `yaml:"recent_limit"`
	Timezone         string        `yaml:"timezone"` // UTC, Local or an IANA name
	AuditDB          string        `yaml:"audit_db"`
	MetricsAddr      string        `yaml:"metrics_addr"` // empty disables the exporter
	Log              LogConfig     `yaml:"log"`
}

// LogConfig selects log level, format and outputs.
type LogConfig struct {
	Level   string   `yaml:"level"`
	Format  string   `yaml:"format"`  // text or json
	Outputs []string `yaml:"outputs"` // stderr, file, journald
	File    string   `yaml:"file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Service:          "fail2ban",
		AutoBlockService: "firewall-auto-block",
		Fail2banClient:   "fail2ban-client",
		AlertLog:         "/var/log/firewall_alerts.json",
		PlainLog:         "/var/log/firewall_auto_block.log",
		RefreshInterval:  5 * time.Second,
		CommandTimeout:   5 * time.Second,
		Workers:          4,
		RecentLimit:      dashboard.DefaultRecentLimit,
		Timezone:         "UTC",
		AuditDB:          "/var/lib/jailwatch/audit.db",
		Log: LogConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"stderr"},
			File:    "/var/log/jailwatch/jailwatch.log",
		},
	}
}

// Load reads path (a missing file means defaults), applies .env and
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SERVICE":           &c.Service,
		"AUTOBLOCK_SERVICE": &c.AutoBlockService,
		"FAIL2BAN_CLIENT":   &c.Fail2banClient,
		"ALERT_LOG":         &c.AlertLog,
		"PLAIN_LOG":         &c.PlainLog,
		"TIMEZONE":          &c.Timezone,
		"AUDIT_DB":          &c.AuditDB,
		"METRICS_ADDR":      &c.MetricsAddr,
		"LOG_LEVEL":         &c.Log.Level,
		"LOG_FORMAT":        &c.Log.Format,
		"LOG_FILE":          &c.Log.File,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "LOG_OUTPUTS"); ok {
		c.Log.Outputs = splitList(v)
	}

	durations := map[string]*time.Duration{
		"REFRESH_INTERVAL": &c.RefreshInterval,
		"COMMAND_TIMEOUT":  &c.CommandTimeout,
	}
	for key, dst := range durations {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"WORKERS":      &c.Workers,
		"RECENT_LIMIT": &c.RecentLimit,
	}
	for key, dst := range ints {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	return nil
}

// Validate rejects settings the console cannot run with. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	v := validation.NewCollector()

	v.CheckMsg(validation.ValidateUnitName(c.Service), "service")
	if c.AutoBlockService != "" {
		v.CheckMsg(validation.ValidateUnitName(c.AutoBlockService), "autoblock_service")
	}
	if c.Fail2banClient == "" {
		v.Check(fmt.Errorf("fail2ban_client cannot be empty"))
	}
	if c.RefreshInterval <= 0 {
		v.Check(fmt.Errorf("refresh_interval must be positive"))
	}
	if c.CommandTimeout <= 0 {
		v.Check(fmt.Errorf("command_timeout must be positive"))
	}
	if c.Workers < 1 {
		v.Check(fmt.Errorf("workers must be >= 1"))
	}
	if c.RecentLimit < 1 || c.RecentLimit > dashboard.DefaultRecentLimit {
		v.Check(fmt.Errorf("recent_limit must be between 1 and %d", dashboard.DefaultRecentLimit))
	}
	if _, err := c.Location(); err != nil {
		v.Check(err)
	}
	v.CheckMsg(validation.ValidateListenAddr(c.MetricsAddr), "metrics_addr")

	switch c.Log.Format {
	case "text", "json":
	default:
		v.Check(fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return v.Error()
}

// Location resolves Timezone. The day boundary and the rendered alert
// times both use it.
func (c *Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Timezone) {
	case "", "UTC", "utc":
		return time.UTC, nil
	case "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
