// Package config loads server configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/leadline/crm-mcp/pkg/crm"
)

// Config is the full server configuration.
type Config struct {
	Listen   string      `yaml:"listen"`
	LogLevel string      `yaml:"log_level"`
	ReadOnly bool        `yaml:"read_only"`
	CRM      CRMConfig   `yaml:"crm"`
	Stdio    StdioConfig `yaml:"stdio"`
	Sweep    SweepConfig `yaml:"sweep"`
}

// CRMConfig points at the CRM backend.
type CRMConfig struct {
	BaseURL string `yaml:"base_url"`
}

// StdioConfig configures single-tenant stdio mode, where the token comes
// from configuration instead of a connection header.
type StdioConfig struct {
	Token string `yaml:"token"`
}

// SweepConfig configures the background inactivity sweep.
type SweepConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Schedule        string `yaml:"schedule"`
	ThresholdDays   int    `yaml:"threshold_days"`
	PipelineStageID string `yaml:"pipeline_stage_id"`
	Token           string `yaml:"token"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:   ":8321",
		LogLevel: "info",
		CRM:      CRMConfig{BaseURL: crm.DefaultBaseURL},
		Sweep: SweepConfig{
			Schedule:      "0 6 * * *",
			ThresholdDays: 30,
		},
	}
}

// Load reads configuration from path (optional) and applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CRM_MCP_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("CRM_MCP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CRM_MCP_READ_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ReadOnly = b
		}
	}
	if v := os.Getenv("CRM_MCP_BASE_URL"); v != "" {
		c.CRM.BaseURL = v
	}
	if v := os.Getenv("CRM_MCP_TOKEN"); v != "" {
		c.Stdio.Token = v
	}
	if v := os.Getenv("CRM_MCP_SWEEP_TOKEN"); v != "" {
		c.Sweep.Token = v
	}
}

func (c *Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.Sweep.Enabled {
		if c.Sweep.Schedule == "" {
			return fmt.Errorf("sweep.schedule is required when the sweep is enabled")
		}
		if c.Sweep.Token == "" {
			return fmt.Errorf("sweep.token (or CRM_MCP_SWEEP_TOKEN) is required when the sweep is enabled")
		}
		if c.Sweep.ThresholdDays < 1 || c.Sweep.ThresholdDays > 365 {
			return fmt.Errorf("sweep.threshold_days must be between 1 and 365, got %d", c.Sweep.ThresholdDays)
		}
	}
	return nil
}
