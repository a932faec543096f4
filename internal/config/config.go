package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	APIBaseURL     string `toml:"api_base_url"`
	RequestTimeout int    `toml:"request_timeout_seconds"`
	LogLevel       string `toml:"log_level"`
	PageSize       int    `toml:"page_size"`
}

func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:     "http://localhost:5000",
		RequestTimeout: 30,
		LogLevel:       "info",
		PageSize:       20,
	}
}

func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

func DealdeskDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".dealdesk"), nil
}

func ConfigPath() (string, error) {
	dir, err := DealdeskDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func StorePath() (string, error) {
	dir, err := DealdeskDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "db", "dealdesk.sqlite"), nil
}

func LogPath() (string, error) {
	dir, err := DealdeskDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "debug.log"), nil
}

func EnsureDirectories() error {
	dir, err := DealdeskDir()
	if err != nil {
		return err
	}

	// Create main directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Create db subdirectory
	dbDir := filepath.Join(dir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return err
	}

	return nil
}

func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := Save(cfg); err != nil {
			return nil, err
		}
		cfg.applyEnv()
		return cfg, nil
	}

	// Load existing config
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	return cfg, nil
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// applyEnv lets DEALDESK_* variables override the file, so one binary can be
// pointed at staging without editing the config.
func (c *Config) applyEnv() {
	if v := os.Getenv("DEALDESK_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("DEALDESK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DEALDESK_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RequestTimeout = n
		}
	}
}
