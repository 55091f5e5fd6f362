package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the fleetd server configuration
type Config struct {
	Server struct {
		Port         int    `yaml:"port"`
		MetricsPort  int    `yaml:"metrics_port"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`

	Database struct {
		Type string `yaml:"type"` // memory, sqlite, postgres
		DSN  string `yaml:"dsn"`
	} `yaml:"database"`

	Auth struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"auth"`

	RateLimit struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Logging struct {
		Level  string `yaml:"level"`
		JSON   bool   `yaml:"json"`
		LogDir string `yaml:"log_dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns a runnable local configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.MetricsPort = 9090
	cfg.Server.ReadTimeout = "15s"
	cfg.Server.WriteTimeout = "15s"
	cfg.Database.Type = "sqlite"
	cfg.Database.DSN = "fleet.db"
	cfg.RateLimit.RequestsPerSecond = 50
	cfg.RateLimit.Burst = 100
	cfg.Logging.Level = "INFO"
	cfg.Logging.LogDir = "./logs"
	return cfg
}

// LoadConfig reads a YAML config file, falling back to defaults for
// anything unset
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) readTimeout() time.Duration {
	return parseDurationOr(c.Server.ReadTimeout, 15*time.Second)
}

func (c *Config) writeTimeout() time.Duration {
	return parseDurationOr(c.Server.WriteTimeout, 15*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
