// Package config loads Parley's configuration and sets up logging.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphaelgruber/parley/internal/themes"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Chat service
	ServerURL string
	// Timeout for gateway calls; zero means no client-side timeout
	// (the service produces AI replies synchronously and can be slow).
	Timeout time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Display
	Theme string
}

// fileConfig is the YAML shape of the optional config file.
type fileConfig struct {
	ServerURL string `yaml:"server_url"`
	Timeout   string `yaml:"timeout"`
	LogFile   string `yaml:"log_file"`
	LogLevel  string `yaml:"log_level"`
	Theme     string `yaml:"theme"`
}

// Load reads configuration with env-over-file precedence: defaults,
// then ~/.config/parley/config.yaml, then PARLEY_* environment
// variables. A missing or unreadable file is not an error.
func Load() Config {
	return load(defaultConfigPath())
}

func load(path string) Config {
	cfg := Config{
		ServerURL: "http://localhost:8000/api",
		Timeout:   0,
		LogFile:   "/tmp/parley.log",
		LogLevel:  slog.LevelInfo,
		Theme:     themes.Default().Key,
	}

	if fc, err := readFile(path); err == nil {
		if fc.ServerURL != "" {
			cfg.ServerURL = fc.ServerURL
		}
		if fc.Timeout != "" {
			if d, err := time.ParseDuration(fc.Timeout); err == nil {
				cfg.Timeout = d
			}
		}
		if fc.LogFile != "" {
			cfg.LogFile = fc.LogFile
		}
		if fc.LogLevel != "" {
			cfg.LogLevel = parseLogLevel(fc.LogLevel)
		}
		if fc.Theme != "" {
			cfg.Theme = fc.Theme
		}
	}

	cfg.ServerURL = getEnv("PARLEY_SERVER_URL", cfg.ServerURL)
	if t := os.Getenv("PARLEY_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}
	cfg.LogFile = getEnv("PARLEY_LOG_FILE", cfg.LogFile)
	if lvl := os.Getenv("PARLEY_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = parseLogLevel(lvl)
	}
	cfg.Theme = getEnv("PARLEY_THEME", cfg.Theme)

	// Unknown theme keys fall back to the built-in default.
	cfg.Theme = themes.Lookup(cfg.Theme).Key

	return cfg
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "parley", "config.yaml")
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, fmt.Errorf("no config path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
