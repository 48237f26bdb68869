package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration.
// Precedence: YAML file -> defaults -> environment overrides -> CLI flags.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Trigger TriggerConfig `yaml:"trigger"`
	// DatabaseURL enables the upload audit table when set.
	DatabaseURL string `yaml:"database_url"`
}

type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	AllowedOrigin      string `yaml:"allowed_origin"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	StaticDir          string `yaml:"static_dir"`
}

type StorageConfig struct {
	UploadRoot  string `yaml:"upload_root"`
	MaxMemoryMB int64  `yaml:"max_memory_mb"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type TriggerConfig struct {
	// Mode is one of: log, http, copy, command.
	Mode    string        `yaml:"mode"`
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Dir     string        `yaml:"dir"`
	Command []string      `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"`
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoadConfig reads the optional YAML file at path, fills defaults and applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.AllowedOrigin == "" {
		cfg.Server.AllowedOrigin = "*"
	}
	if cfg.Storage.UploadRoot == "" {
		cfg.Storage.UploadRoot = "incoming_uploads"
	}
	if cfg.Storage.MaxMemoryMB <= 0 {
		cfg.Storage.MaxMemoryMB = 32
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Trigger.Mode == "" {
		cfg.Trigger.Mode = "log"
	}
	if cfg.Trigger.Timeout <= 0 {
		cfg.Trigger.Timeout = 5 * time.Minute
	}
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("ALLOWED_ORIGIN"); v != "" {
		cfg.Server.AllowedOrigin = v
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE %q: %w", v, err)
		}
		cfg.Server.RateLimitPerMinute = n
	}
	if v := os.Getenv("UPLOAD_ROOT"); v != "" {
		cfg.Storage.UploadRoot = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		cfg.Log.Path = v
	}
	if v := os.Getenv("TRIGGER_MODE"); v != "" {
		cfg.Trigger.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("TRIGGER_URL"); v != "" {
		cfg.Trigger.URL = v
	}
	if v := os.Getenv("TRIGGER_TOKEN"); v != "" {
		cfg.Trigger.Token = v
	}
	if v := os.Getenv("TRIGGER_DIR"); v != "" {
		cfg.Trigger.Dir = v
	}
	if v := os.Getenv("TRIGGER_COMMAND"); v != "" {
		cfg.Trigger.Command = strings.Fields(v)
	}
	if v := os.Getenv("TRIGGER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TRIGGER_TIMEOUT %q: %w", v, err)
		}
		cfg.Trigger.Timeout = d
	}
	return nil
}
