// Package config loads the tidesync configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Tidepool   TidepoolConfig   `yaml:"tidepool"`
	Nightscout NightscoutConfig `yaml:"nightscout"`
	Sync       SyncConfig       `yaml:"sync"`
}

type TidepoolConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type NightscoutConfig struct {
	BaseURL   string `yaml:"base_url"`
	APISecret string `yaml:"api_secret"`
}

type SyncConfig struct {
	// TargetLow is the low bound of the BG target band written to profiles.
	// The source only carries a single target value; the high bound becomes
	// TargetLow + that value.
	TargetLow float64 `yaml:"target_low"`
	EnteredBy string  `yaml:"entered_by"`
	Device    string  `yaml:"device"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix TIDESYNC_ and underscore-separated
// paths:
//
//	TIDESYNC_TIDEPOOL_BASE_URL, TIDESYNC_TIDEPOOL_USERNAME,
//	TIDESYNC_TIDEPOOL_PASSWORD, TIDESYNC_NIGHTSCOUT_BASE_URL,
//	TIDESYNC_NIGHTSCOUT_API_SECRET, TIDESYNC_SYNC_TARGET_LOW,
//	TIDESYNC_SYNC_ENTERED_BY, TIDESYNC_SYNC_DEVICE
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TIDESYNC_TIDEPOOL_BASE_URL"); v != "" {
		cfg.Tidepool.BaseURL = v
	}
	if v := os.Getenv("TIDESYNC_TIDEPOOL_USERNAME"); v != "" {
		cfg.Tidepool.Username = v
	}
	if v := os.Getenv("TIDESYNC_TIDEPOOL_PASSWORD"); v != "" {
		cfg.Tidepool.Password = v
	}
	if v := os.Getenv("TIDESYNC_NIGHTSCOUT_BASE_URL"); v != "" {
		cfg.Nightscout.BaseURL = v
	}
	if v := os.Getenv("TIDESYNC_NIGHTSCOUT_API_SECRET"); v != "" {
		cfg.Nightscout.APISecret = v
	}
	if v := os.Getenv("TIDESYNC_SYNC_TARGET_LOW"); v != "" {
		if low, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Sync.TargetLow = low
		}
	}
	if v := os.Getenv("TIDESYNC_SYNC_ENTERED_BY"); v != "" {
		cfg.Sync.EnteredBy = v
	}
	if v := os.Getenv("TIDESYNC_SYNC_DEVICE"); v != "" {
		cfg.Sync.Device = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Tidepool.BaseURL == "" {
		cfg.Tidepool.BaseURL = "https://api.tidepool.org"
	}
	if cfg.Sync.TargetLow == 0 {
		cfg.Sync.TargetLow = 80
	}
	if cfg.Sync.EnteredBy == "" {
		cfg.Sync.EnteredBy = "Tidepool"
	}
	if cfg.Sync.Device == "" {
		cfg.Sync.Device = "Tidepool"
	}
}

func (c *Config) validate() error {
	if c.Tidepool.Username == "" {
		return fmt.Errorf("tidepool.username is required")
	}
	if c.Tidepool.Password == "" {
		return fmt.Errorf("tidepool.password is required")
	}
	if c.Nightscout.BaseURL == "" {
		return fmt.Errorf("nightscout.base_url is required")
	}
	if c.Nightscout.APISecret == "" {
		return fmt.Errorf("nightscout.api_secret is required")
	}
	if c.Sync.TargetLow < 0 {
		return fmt.Errorf("sync.target_low must not be negative")
	}
	return nil
}
